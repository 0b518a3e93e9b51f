package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/services/rules"
)

const (
	// DefaultGapThreshold 跨炉 / 跨 grade 相对差距阈值 (%)
	DefaultGapThreshold = 20
	// DefaultTrendThreshold 最近一周吨成本涨幅阈值 (%)
	DefaultTrendThreshold = 10
	// DefaultTrendWindow 趋势比较的窗口长度 (天)
	DefaultTrendWindow = 7
	// DefaultAnomalyZ 离群判定的 z-score
	DefaultAnomalyZ = 2.0

	// 规则 ID (Ranker 产生的发现)
	RuleComparativeGap = "comparative_gap"
	RuleGradeVariance  = "grade_cost_variance"
	RuleCostTrend      = "cost_trend"
	RuleCostAnomaly    = "cost_anomaly"
	RuleCostDriver     = "cost_driver"

	plantScope = "Plant"
	dateLayout = "2006-01-02"
)

// tracked 参与跨炉对标的指标及方向
type tracked struct {
	metric    domain.Metric
	direction domain.Direction
}

func benchmarkMetrics() []tracked {
	return []tracked{
		{domain.MetricCostPerTon, domain.LowerIsBetter},
		{domain.MetricSpecificPower, domain.LowerIsBetter},
		{domain.MetricMnRecovery, domain.HigherIsBetter},
		{domain.MetricAvailability, domain.HigherIsBetter},
		{domain.MetricPerformanceScore, domain.HigherIsBetter},
		{domain.MetricCapacityUtilization, domain.HigherIsBetter},
	}
}

// ComparativeRanker 实现 ports.Ranker
type ComparativeRanker struct {
	gapThreshold   decimal.Decimal
	trendThreshold float64
	window         *domain.WindowAligner
	anomalyZ       float64
}

// NewRanker 使用默认阈值创建 Ranker
func NewRanker() *ComparativeRanker {
	return &ComparativeRanker{
		gapThreshold:   decimal.NewFromInt(DefaultGapThreshold),
		trendThreshold: DefaultTrendThreshold,
		window:         domain.NewWindowAligner(DefaultTrendWindow),
		anomalyZ:       DefaultAnomalyZ,
	}
}

// standing 一个分组在某指标上的取值
type standing struct {
	name  string
	value float64
}

// extremes 返回最好和最差的分组；少于两个分组或者全部相等时 ok 为 false
// 并列时取先出现者，保证同一分组不会同时是最好和最差
func extremes(xs []standing, dir domain.Direction) (best, worst standing, ok bool) {
	if len(xs) < 2 {
		return best, worst, false
	}
	bi, wi := 0, 0
	for i, x := range xs {
		better := x.value > xs[bi].value
		worse := x.value < xs[wi].value
		if dir == domain.LowerIsBetter {
			better, worse = x.value < xs[bi].value, x.value > xs[wi].value
		}
		if better {
			bi = i
		}
		if worse {
			wi = i
		}
	}
	if bi == wi {
		return best, worst, false
	}
	return xs[bi], xs[wi], true
}

// relativeGap |worst - best| / best × 100，best 必须为正
func relativeGap(best, worst float64) (decimal.Decimal, bool) {
	if best <= 0 {
		return decimal.Zero, false
	}
	b := decimal.NewFromFloat(best)
	w := decimal.NewFromFloat(worst)
	return w.Sub(b).Abs().Div(b).Mul(decimal.NewFromInt(100)), true
}

// Compare 跨炉对标
func (r *ComparativeRanker) Compare(furnaces []domain.Summary) []domain.Finding {
	var out []domain.Finding
	for _, tm := range benchmarkMetrics() {
		var xs []standing
		for _, s := range furnaces {
			if v, ok := s.Metric(tm.metric); ok {
				xs = append(xs, standing{name: s.Key.Furnace, value: v})
			}
		}
		best, worst, ok := extremes(xs, tm.direction)
		if !ok {
			continue
		}
		gap, ok := relativeGap(best.value, worst.value)
		if !ok || !gap.GreaterThan(r.gapThreshold) {
			continue
		}

		pct := gap.InexactFloat64()
		word := "lower"
		if tm.direction == domain.LowerIsBetter {
			word = "higher"
		}
		label := tm.metric.Label()
		out = append(out, domain.Finding{
			ID:             uuid.NewString(),
			RuleID:         RuleComparativeGap,
			Category:       domain.CategoryComparative,
			Severity:       domain.SeverityHigh,
			Title:          label + " Performance Gap",
			Description:    fmt.Sprintf("%s has %.1f%% %s %s than %s", worst.name, pct, word, strings.ToLower(label), best.name),
			Impact:         fmt.Sprintf("Opportunity to match %s performance", best.name),
			Recommendation: fmt.Sprintf("Benchmark operating parameters from %s to %s", best.name, worst.name),
			Evidence: &domain.Evidence{
				Metric:       tm.metric,
				Value:        worst.value,
				Target:       best.value,
				Threshold:    r.gapThreshold.InexactFloat64(),
				DeviationPct: pct,
			},
			DataPoints: []string{
				fmt.Sprintf("Best Performer: %s (%.1f)", best.name, best.value),
				fmt.Sprintf("Worst Performer: %s (%.1f)", worst.name, worst.value),
				fmt.Sprintf("Performance Gap: %.1f%%", pct),
			},
		})
	}
	return out
}

// CompareGrades 跨 grade 吨成本差异
func (r *ComparativeRanker) CompareGrades(grades []domain.Summary) []domain.Finding {
	var xs []standing
	for _, s := range grades {
		if v, ok := s.Metric(domain.MetricCostPerTon); ok {
			xs = append(xs, standing{name: s.Key.Grade, value: v})
		}
	}
	lowest, highest, ok := extremes(xs, domain.LowerIsBetter)
	if !ok {
		return nil
	}
	gap, ok := relativeGap(lowest.value, highest.value)
	if !ok || !gap.GreaterThan(r.gapThreshold) {
		return nil
	}

	pct := gap.InexactFloat64()
	return []domain.Finding{{
		ID:             uuid.NewString(),
		RuleID:         RuleGradeVariance,
		Category:       domain.CategoryGrade,
		Severity:       domain.SeverityHigh,
		Grade:          highest.name,
		Title:          "Significant Cost Variation by Grade",
		Description:    fmt.Sprintf("%s costs %.1f%% more per ton than %s", highest.name, pct, lowest.name),
		Impact:         fmt.Sprintf("Opportunity to optimize %s production or pricing", highest.name),
		Recommendation: fmt.Sprintf("Analyze cost drivers for %s and implement cost reduction measures", highest.name),
		Evidence: &domain.Evidence{
			Metric:       domain.MetricCostPerTon,
			Value:        highest.value,
			Target:       lowest.value,
			Threshold:    r.gapThreshold.InexactFloat64(),
			DeviationPct: pct,
		},
		DataPoints: []string{
			fmt.Sprintf("Highest Cost Grade: %s (%s/MT)", highest.name, rules.FormatMoney(highest.value)),
			fmt.Sprintf("Lowest Cost Grade: %s (%s/MT)", lowest.name, rules.FormatMoney(lowest.value)),
			fmt.Sprintf("Cost Difference: %.1f%%", pct),
		},
	}}
}

// dailyCost 按日期求吨成本均值 (同一天多个 grade 先平均)
func dailyCost(records []domain.Record) []domain.DatedValue {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, rec := range records {
		v, ok := rec.Get(domain.MetricCostPerTon)
		if !ok || !rec.HasDate() {
			continue
		}
		sums[rec.Date] += v
		counts[rec.Date]++
	}
	out := make([]domain.DatedValue, 0, len(sums))
	for d, sum := range sums {
		if v := sum / float64(counts[d]); domain.Finite(v) {
			out = append(out, domain.DatedValue{Date: d, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func byFurnace(records []domain.Record) (map[string][]domain.Record, []string) {
	groups := make(map[string][]domain.Record)
	for _, rec := range records {
		groups[rec.Furnace] = append(groups[rec.Furnace], rec)
	}
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return groups, ids
}

// Trends 最近 7 天 vs 之前 7 天的吨成本
// 每个炉子单独判断；两个及以上炉子时再对全厂日均值判断一次
func (r *ComparativeRanker) Trends(records []domain.Record) []domain.Finding {
	groups, ids := byFurnace(records)

	var out []domain.Finding
	for _, id := range ids {
		if f, ok := r.trend(id, dailyCost(groups[id])); ok {
			out = append(out, f)
		}
	}
	if len(ids) >= 2 {
		if f, ok := r.trend("", dailyCost(records)); ok {
			out = append(out, f)
		}
	}
	return out
}

func (r *ComparativeRanker) trend(furnace string, series []domain.DatedValue) (domain.Finding, bool) {
	recent, previous, ok := r.window.Split(series)
	if !ok {
		return domain.Finding{}, false
	}
	prev, cur := domain.MeanOf(previous), domain.MeanOf(recent)
	if prev <= 0 {
		return domain.Finding{}, false
	}
	increase := (cur/prev - 1) * 100
	if !domain.Finite(increase) || increase <= r.trendThreshold {
		return domain.Finding{}, false
	}

	scope := furnace
	if scope == "" {
		scope = plantScope
	}
	return domain.Finding{
		ID:             uuid.NewString(),
		RuleID:         RuleCostTrend,
		Category:       domain.CategoryTrend,
		Severity:       domain.SeverityMedium,
		Furnace:        furnace,
		Title:          "Recent Cost Increase Trend - " + scope,
		Description:    fmt.Sprintf("Cost per ton increased by %.1f%% in the last week", increase),
		Impact:         "If trend continues, will impact monthly profitability",
		Recommendation: "Investigate recent cost drivers (raw material prices, power rates, etc.)",
		Evidence: &domain.Evidence{
			Metric:       domain.MetricCostPerTon,
			Value:        cur,
			Target:       prev,
			Threshold:    r.trendThreshold,
			DeviationPct: increase,
		},
		DataPoints: []string{
			fmt.Sprintf("Previous Week Avg: %s/MT", rules.FormatMoney(prev)),
			fmt.Sprintf("Recent Week Avg: %s/MT", rules.FormatMoney(cur)),
			fmt.Sprintf("Increase: %.1f%%", increase),
		},
		ActionItems: []string{
			"Review recent raw material purchases",
			"Check for equipment issues",
			"Analyze power consumption trends",
		},
	}, true
}

// Anomalies 单炉内吨成本 z-score 超过阈值的日期
func (r *ComparativeRanker) Anomalies(records []domain.Record) []domain.Finding {
	groups, ids := byFurnace(records)

	var out []domain.Finding
	for _, id := range ids {
		series := dailyCost(groups[id])
		values := make([]float64, len(series))
		for i, p := range series {
			values[i] = p.Value
		}
		mean, ok := domain.Mean(values)
		if !ok {
			continue
		}
		std, ok := domain.StdDev(values)
		if !ok || std == 0 {
			continue
		}

		var points []string
		for _, p := range series {
			z := (p.Value - mean) / std
			if z > r.anomalyZ || z < -r.anomalyZ {
				points = append(points, fmt.Sprintf("%s: %s/MT (z=%.1f)", p.Date.Format(dateLayout), rules.FormatMoney(p.Value), z))
			}
		}
		if len(points) == 0 {
			continue
		}

		out = append(out, domain.Finding{
			ID:             uuid.NewString(),
			RuleID:         RuleCostAnomaly,
			Category:       domain.CategoryOperations,
			Severity:       domain.SeverityLow,
			Furnace:        id,
			Title:          "Cost Anomalies Detected - " + id,
			Description:    fmt.Sprintf("%d day(s) with cost per ton more than %.1f standard deviations from the %s average of %s", len(points), r.anomalyZ, id, rules.FormatMoney(mean)),
			Impact:         "Irregular days distort period averages and may hide data entry errors",
			Recommendation: "Verify the flagged days against shift logs and material receipts",
			DataPoints:     points,
		})
	}
	return out
}

// CostDriver 全厂占比最大的成本项
func (r *ComparativeRanker) CostDriver(furnaces []domain.Summary) []domain.Finding {
	total := decimal.Zero
	components := make(map[domain.Metric]decimal.Decimal)
	for _, s := range furnaces {
		if !s.HasTotalCost {
			continue
		}
		total = total.Add(s.TotalCost)
		for _, c := range s.CostBreakdown {
			components[c.Component] = components[c.Component].Add(c.Total)
		}
	}
	if !total.IsPositive() {
		return nil
	}

	var driver domain.Metric
	best := decimal.Zero
	for _, m := range domain.CostComponents() {
		if c, ok := components[m]; ok && c.GreaterThan(best) {
			driver, best = m, c
		}
	}
	if driver == "" {
		return nil
	}

	share := best.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
	label := driver.Label()
	short := strings.ToLower(strings.TrimSuffix(label, " Cost"))
	return []domain.Finding{{
		ID:             uuid.NewString(),
		RuleID:         RuleCostDriver,
		Category:       domain.CategoryCost,
		Severity:       domain.SeverityLow,
		Title:          "Primary Cost Driver: " + strings.TrimSuffix(label, " Cost"),
		Description:    fmt.Sprintf("%s accounts for %.1f%% of total production costs", label, share),
		Impact:         "Targeted cost reduction in this area will have maximum impact",
		Recommendation: fmt.Sprintf("Focus optimization efforts on %s usage", short),
		DataPoints: []string{
			fmt.Sprintf("%s: %s", label, rules.FormatMoney(best.InexactFloat64())),
			fmt.Sprintf("Total Cost: %s", rules.FormatMoney(total.InexactFloat64())),
		},
		ActionItems: []string{
			fmt.Sprintf("Analyze %s consumption patterns", short),
			"Review supplier contracts",
			"Explore alternative materials",
		},
	}}
}
