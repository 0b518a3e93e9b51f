package domain

import "math"

// QualityBand 化学成分的目标值与区间
// 落在 Optimal 之外为 medium，落在 Critical 之外为 high
type QualityBand struct {
	Metric   Metric     `yaml:"metric" json:"metric"`
	Target   float64    `yaml:"target" json:"target"`
	Optimal  [2]float64 `yaml:"optimal" json:"optimal"`
	Critical [2]float64 `yaml:"critical" json:"critical"`
	Weight   float64    `yaml:"weight" json:"weight"` // quality_score 权重
}

// Slope 每偏离 1 个单位扣除的分数，使 Critical 边缘恰好为 0 分
func (b QualityBand) Slope() float64 {
	half := math.Max(b.Target-b.Critical[0], b.Critical[1]-b.Target)
	if half <= 0 {
		return 0
	}
	return 100 / half
}

// Targets 目标值与阈值配置
// 每次运行构造一次，按值传递，运行期间不可修改
type Targets struct {
	CostPerTon     float64 // ₹/MT
	SpecificPower  float64 // kWh/MT
	MnRecovery     float64 // %
	SiRecovery     float64 // %
	YieldPct       float64 // %
	OreEfficiency  float64 // MT 产品 / MT 矿
	CokeEfficiency float64 // MT 产品 / MT 焦
	LoadFactor     float64 // %
	PowerFactor    float64
	Availability   float64 // %
	BreakdownMins  float64 // 每日停机分钟
	PowerTariff    float64 // ₹/kWh

	// RescaleThreshold 百分比字段整列最大值低于该值时视为小数并乘 100
	RescaleThreshold float64

	Quality []QualityBand
}

// DefaultTargets 默认目标值
func DefaultTargets() Targets {
	return Targets{
		CostPerTon:       50000,
		SpecificPower:    2500,
		MnRecovery:       80,
		SiRecovery:       45,
		YieldPct:         95,
		OreEfficiency:    0.55,
		CokeEfficiency:   4.0,
		LoadFactor:       85,
		PowerFactor:      0.95,
		Availability:     90,
		BreakdownMins:    80,
		PowerTariff:      8,
		RescaleThreshold: 10,
		Quality:          DefaultQualityBands(),
	}
}

// DefaultQualityBands grade MN / grade SI / C% / basicity 的默认区间
func DefaultQualityBands() []QualityBand {
	return []QualityBand{
		{Metric: MetricGradeMn, Target: 70, Optimal: [2]float64{68, 72}, Critical: [2]float64{65, 75}, Weight: 0.4},
		{Metric: MetricGradeSi, Target: 17.5, Optimal: [2]float64{16, 18}, Critical: [2]float64{15, 20}, Weight: 0.3},
		{Metric: MetricCarbon, Target: 7, Optimal: [2]float64{6.5, 7.5}, Critical: [2]float64{6, 8}, Weight: 0.2},
		{Metric: MetricBasicity, Target: 1.35, Optimal: [2]float64{1.3, 1.4}, Critical: [2]float64{1.2, 1.5}, Weight: 0.1},
	}
}

// Clone 返回不共享切片的副本
func (t Targets) Clone() Targets {
	c := t
	c.Quality = append([]QualityBand(nil), t.Quality...)
	return c
}

// Band 查找某个化学指标的区间
func (t Targets) Band(m Metric) (QualityBand, bool) {
	for _, b := range t.Quality {
		if b.Metric == m {
			return b, true
		}
	}
	return QualityBand{}, false
}

// Lookup 返回某个指标的目标值，未配置 (<= 0) 时返回 false
func (t Targets) Lookup(m Metric) (float64, bool) {
	var v float64
	switch m {
	case MetricCostPerTon:
		v = t.CostPerTon
	case MetricSpecificPower, MetricPowerPerTon:
		v = t.SpecificPower
	case MetricMnRecovery:
		v = t.MnRecovery
	case MetricSiRecovery:
		v = t.SiRecovery
	case MetricYield:
		v = t.YieldPct
	case MetricOreEfficiency:
		v = t.OreEfficiency
	case MetricCokeEfficiency:
		v = t.CokeEfficiency
	case MetricLoadFactor:
		v = t.LoadFactor
	case MetricPowerFactor:
		v = t.PowerFactor
	case MetricAvailability:
		v = t.Availability
	case MetricBreakdownTotal:
		v = t.BreakdownMins
	default:
		if b, ok := t.Band(m); ok {
			v = b.Target
		}
	}
	return v, v > 0
}

// ForFurnace 用炉子的容量配置覆盖全局目标
func (t Targets) ForFurnace(c FurnaceCapacity) Targets {
	out := t.Clone()
	if c.TargetCostMT > 0 {
		out.CostPerTon = c.TargetCostMT
	}
	if c.OptimalPowerKWhMT > 0 {
		out.SpecificPower = c.OptimalPowerKWhMT
	}
	if c.TargetMnRecovery > 0 {
		out.MnRecovery = c.TargetMnRecovery
	}
	if c.TargetSiRecovery > 0 {
		out.SiRecovery = c.TargetSiRecovery
	}
	return out
}
