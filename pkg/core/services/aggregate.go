package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// Aggregate 实现 ports.MetricDeriver
// 求和: 产量、总成本 (decimal)、停机小时
// 均值: 其余所有指标，按存在该指标的记录求 mean-of-ratios
// 注意: 吨成本均值是记录级吨成本的平均，不等于 总成本/总产量
func (d *MetricDeriver) Aggregate(key domain.GroupKey, records []domain.Record) domain.Summary {
	s := domain.Summary{
		Key:             key,
		Records:         len(records),
		Means:           make(domain.Values),
		BreakdownCauses: make(domain.Values),
		TotalCost:       decimal.Zero,
	}
	if len(records) == 0 {
		return s
	}

	sums := make(map[domain.Metric]float64)
	counts := make(map[domain.Metric]int)
	componentTotals := make(map[domain.Metric]decimal.Decimal)
	daily := make(map[time.Time]float64)
	var breakdownMins float64
	var hasProduction bool

	for _, r := range records {
		for m, v := range r.Values {
			sums[m] += v
			counts[m]++
		}

		if p, ok := r.Get(domain.MetricProductionQty); ok {
			s.TotalProduction += p
			hasProduction = true
			if r.HasDate() {
				daily[r.Date] += p
			}
		}
		if c, ok := r.Get(domain.MetricTotalCost); ok {
			s.TotalCost = s.TotalCost.Add(decimal.NewFromFloat(c))
			s.HasTotalCost = true
		}
		if b, ok := r.Get(domain.MetricBreakdownTotal); ok {
			breakdownMins += b
		}
		for _, m := range domain.CostComponents() {
			if c, ok := r.Get(m); ok {
				componentTotals[m] = componentTotals[m].Add(decimal.NewFromFloat(c))
			}
		}

		if r.HasDate() {
			if s.FirstDate.IsZero() || r.Date.Before(s.FirstDate) {
				s.FirstDate = r.Date
			}
			if r.Date.After(s.LastDate) {
				s.LastDate = r.Date
			}
		}
	}
	s.BreakdownHours = breakdownMins / 60
	if !domain.Finite(s.TotalProduction) {
		s.TotalProduction = 0
		hasProduction = false
		clear(daily)
	}

	// 求和溢出的指标视为缺失
	for m, sum := range sums {
		if mean := sum / float64(counts[m]); domain.Finite(mean) {
			s.Means[m] = mean
		}
	}
	for _, m := range domain.BreakdownCauses() {
		if v, ok := s.Means[m]; ok {
			s.BreakdownCauses[m] = v
		}
	}

	// 日产量: 同一天多条记录 (多个 grade) 先求和
	dates := make([]time.Time, 0, len(daily))
	for t := range daily {
		dates = append(dates, t)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	s.Days = len(dates)
	s.DailyProduction = make([]float64, len(dates))
	for i, t := range dates {
		s.DailyProduction[i] = daily[t]
	}
	switch {
	case len(dates) > 0:
		if avg, ok := domain.Mean(s.DailyProduction); ok {
			s.Means[domain.MetricAvgDailyProduction] = avg
		}
	case hasProduction:
		s.Means[domain.MetricAvgDailyProduction] = s.TotalProduction / float64(counts[domain.MetricProductionQty])
	}

	if cv, ok := costVariation(records); ok {
		s.Means[domain.MetricCostVariation] = cv
	}

	s.CostBreakdown = costBreakdown(s.TotalCost, s.TotalProduction, componentTotals)
	return s
}

// costVariation 吨成本的变异系数 (标准差 / 均值 × 100)
func costVariation(records []domain.Record) (float64, bool) {
	var xs []float64
	for _, r := range records {
		if v, ok := r.Get(domain.MetricCostPerTon); ok {
			xs = append(xs, v)
		}
	}
	mean, ok := domain.Mean(xs)
	if !ok || mean <= 0 {
		return 0, false
	}
	std, ok := domain.StdDev(xs)
	if !ok {
		return 0, false
	}
	cv := std / mean * 100
	return cv, domain.Finite(cv)
}

func costBreakdown(total decimal.Decimal, production float64, components map[domain.Metric]decimal.Decimal) []domain.CostShare {
	if !total.IsPositive() {
		return nil
	}
	var out []domain.CostShare
	for _, m := range domain.CostComponents() {
		c, ok := components[m]
		if !ok {
			continue
		}
		share, _ := c.Div(total).Mul(decimal.NewFromInt(100)).Float64()
		cs := domain.CostShare{Component: m, Total: c, SharePct: share}
		if production > 0 {
			cs.PerTon, _ = c.Div(decimal.NewFromFloat(production)).Float64()
		}
		out = append(out, cs)
	}
	return out
}
