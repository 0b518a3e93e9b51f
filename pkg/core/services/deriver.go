package services

import (
	"fmt"
	"math"
	"slices"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// MinutesPerDay 一天的分钟数，停机分钟的上限
const MinutesPerDay = 1440

// performance_score 各分项权重
var performanceWeights = []struct {
	metric domain.Metric
	weight float64
}{
	{domain.MetricCostPerTon, 0.30},
	{domain.MetricSpecificPower, 0.20},
	{domain.MetricMnRecovery, 0.20},
	{domain.MetricYield, 0.15},
	{domain.MetricQualityScore, 0.15},
}

// MetricDeriver 计算派生指标与分组聚合
// 无状态，可被多个分析运行并发使用
type MetricDeriver struct{}

// NewDeriver 创建派生指标计算器
func NewDeriver() *MetricDeriver {
	return &MetricDeriver{}
}

// Derive 实现 ports.MetricDeriver
// 1. 逐条计算记录级指标 (输入缺失或分母 <= 0 时指标不存在)
// 2. 溢出为 ±Inf/NaN 的派生值视为缺失，并返回对应的 CellIssue
// 3. 以本次数据总体均值为基准计算 performance_score
func (d *MetricDeriver) Derive(records []domain.Record, targets domain.Targets) ([]domain.Record, []domain.CellIssue) {
	out := make([]domain.Record, len(records))
	var issues []domain.CellIssue
	for i, r := range records {
		c := r.Clone()
		for _, m := range deriveRecord(c.Values, targets) {
			issues = append(issues, domain.CellIssue{
				Row:    c.Row,
				Column: string(m),
				Kind:   domain.IssueOutOfRange,
				Reason: fmt.Sprintf("%s is not a finite number", m),
			})
		}
		out[i] = c
	}

	ref := make(map[domain.Metric]float64, 2)
	for _, m := range []domain.Metric{domain.MetricCostPerTon, domain.MetricSpecificPower} {
		if mean, ok := populationMean(out, m); ok {
			ref[m] = mean
		}
	}
	for i := range out {
		if s, ok := PerformanceScore(out[i].Values, ref); ok {
			out[i].Values[domain.MetricPerformanceScore] = s
		}
	}
	return out, issues
}

// deriveRecord 计算记录级指标，返回因溢出而删除的指标
func deriveRecord(v domain.Values, targets domain.Targets) []domain.Metric {
	prod, hasProd := v.Get(domain.MetricProductionQty)
	producing := hasProd && prod > 0

	if producing {
		if total, ok := v.Get(domain.MetricTotalCost); ok {
			v[domain.MetricCostPerTon] = total / prod
		}
		if pc, ok := v.Get(domain.MetricPowerCost); ok {
			v[domain.MetricPowerCostPerTon] = pc / prod
		}
	}

	if fp, ok := v.Get(domain.MetricFurnacePower); ok {
		total := fp
		if aux, ok := v.Get(domain.MetricAuxPower); ok {
			total += aux
		}
		v[domain.MetricTotalPower] = total
		if producing {
			v[domain.MetricPowerPerTon] = total / prod
		}
	}
	if _, ok := v.Get(domain.MetricSpecificPower); !ok {
		if ppt, ok := v.Get(domain.MetricPowerPerTon); ok {
			v[domain.MetricSpecificPower] = ppt
		}
	}

	if producing {
		if cake, ok := v.Get(domain.MetricCakeProductionQty); ok && cake > 0 {
			v[domain.MetricYield] = prod / cake * 100
		}
		if ore, ok := v.Get(domain.MetricOreInputQty); ok && ore > 0 {
			v[domain.MetricOreEfficiency] = prod / ore
		}
		if coke, ok := v.Get(domain.MetricCokeInputQty); ok && coke > 0 {
			v[domain.MetricCokeEfficiency] = prod / coke
		}
	}

	if plc, ok := v.Get(domain.MetricMnRecovery); ok {
		if feed, ok := v.Get(domain.MetricMnRecoveryFeeding); ok {
			v[domain.MetricMnRecoveryGap] = plc - feed
		}
	}
	if plc, ok := v.Get(domain.MetricSiRecovery); ok {
		if feed, ok := v.Get(domain.MetricSiRecoveryFeeding); ok {
			v[domain.MetricSiRecoveryGap] = plc - feed
		}
	}

	if bd, ok := v.Get(domain.MetricBreakdownTotal); ok {
		v[domain.MetricAvailability] = Availability(bd)
	}

	if q, ok := QualityScore(v, targets.Quality); ok {
		v[domain.MetricQualityScore] = q
	}
	return dropNonFinite(v)
}

// dropNonFinite 删除非有限值，返回排序后的指标名
func dropNonFinite(v domain.Values) []domain.Metric {
	var dropped []domain.Metric
	for m, x := range v {
		if !domain.Finite(x) {
			delete(v, m)
			dropped = append(dropped, m)
		}
	}
	slices.Sort(dropped)
	return dropped
}

// Availability 运行可用率 (%)，停机分钟超过一天时截断为 0
func Availability(breakdownMins float64) float64 {
	return domain.Clamp((MinutesPerDay-breakdownMins)/MinutesPerDay*100, 0, 100)
}

// QualityScore 化学成分综合评分 (0-100)
// 每项得分 = 100 - |实测 - 目标| × slope，slope 使 critical 边缘为 0 分
// 缺失的成分不参与，权重按存在的成分重新归一化
func QualityScore(v domain.Values, bands []domain.QualityBand) (float64, bool) {
	var score, weights float64
	for _, b := range bands {
		x, ok := v.Get(b.Metric)
		if !ok || b.Weight <= 0 {
			continue
		}
		sub := domain.Clamp(100-math.Abs(x-b.Target)*b.Slope(), 0, 100)
		score += sub * b.Weight
		weights += b.Weight
	}
	if weights == 0 {
		return 0, false
	}
	return domain.Clamp(score/weights, 0, 100), true
}

// PerformanceScore 综合绩效评分 (0-100)
// 成本与电耗相对 ref (总体均值) 评分: 100 - (x/ref - 1) × 50，优于均值即高于 50
// 回收率、收率直接截断到 0-100，质量分直接使用
func PerformanceScore(v domain.Values, ref map[domain.Metric]float64) (float64, bool) {
	var score, weights float64
	for _, pw := range performanceWeights {
		x, ok := v.Get(pw.metric)
		if !ok {
			continue
		}
		var sub float64
		switch pw.metric {
		case domain.MetricCostPerTon, domain.MetricSpecificPower:
			mean, ok := ref[pw.metric]
			if !ok || mean <= 0 {
				continue
			}
			sub = domain.Clamp(100-(x/mean-1)*50, 0, 100)
		default:
			sub = domain.Clamp(x, 0, 100)
		}
		score += sub * pw.weight
		weights += pw.weight
	}
	if weights == 0 {
		return 0, false
	}
	return domain.Clamp(score/weights, 0, 100), true
}

func populationMean(records []domain.Record, m domain.Metric) (float64, bool) {
	var xs []float64
	for _, r := range records {
		if v, ok := r.Values.Get(m); ok {
			xs = append(xs, v)
		}
	}
	return domain.Mean(xs)
}
