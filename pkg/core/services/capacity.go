package services

import "github.com/renjie/furnace-core/pkg/core/domain"

const (
	// designCapacityQuantile 未配置设计产能时，取历史日产量的 P90
	designCapacityQuantile = 0.9
	// fallbackCapacityFactor 无日产量历史时，设计产能 = 日均产量 × 1.2
	fallbackCapacityFactor = 1.2
	daysPerMonth           = 30
)

// CapacityCalculator 实现 ports.CapacityModel
type CapacityCalculator struct{}

// NewCapacityModel 创建产能模型
func NewCapacityModel() *CapacityCalculator {
	return &CapacityCalculator{}
}

// Resolve 计算设计产能、产能利用率和 MVA/MT
// 利用率不做截断，可能超过 100
func (c *CapacityCalculator) Resolve(capacity domain.FurnaceCapacity, dailyProduction []float64, avgDaily float64) domain.CapacityInfo {
	info := domain.CapacityInfo{
		MVA:        capacity.MVA,
		AvgDailyMT: avgDaily,
		Source:     domain.CapacityUnknown,
	}

	switch {
	case capacity.DesignCapacityMT > 0:
		info.DesignCapacityMT = capacity.DesignCapacityMT
		info.Source = domain.CapacitySupplied
	case len(dailyProduction) > 0:
		if q, ok := domain.Quantile(dailyProduction, designCapacityQuantile); ok && q > 0 {
			info.DesignCapacityMT = q
			info.Source = domain.CapacityEstimated
		}
	case avgDaily > 0:
		info.DesignCapacityMT = avgDaily * fallbackCapacityFactor
		info.Source = domain.CapacityFallback
	}

	if info.DesignCapacityMT > 0 {
		if u := avgDaily / info.DesignCapacityMT * 100; domain.Finite(u) {
			info.Utilization = u
			info.HasUtilization = true
		}
	}
	if capacity.MVA > 0 && avgDaily > 0 {
		if v := capacity.MVA / avgDaily; domain.Finite(v) {
			info.MVAPerMT = v
		}
	}
	return info
}

// PotentialSavings 相对目标的潜在节约 (只计正向差距)
func PotentialSavings(s domain.Summary, targets domain.Targets) domain.Savings {
	var out domain.Savings
	avgDaily, _ := s.Metric(domain.MetricAvgDailyProduction)

	if cost, ok := s.Metric(domain.MetricCostPerTon); ok && targets.CostPerTon > 0 && cost > targets.CostPerTon {
		out.CostPerTon = cost - targets.CostPerTon
		out.MonthlyCost = finiteOrZero(out.CostPerTon * avgDaily * daysPerMonth)
	}
	if power, ok := s.Metric(domain.MetricSpecificPower); ok && targets.SpecificPower > 0 && power > targets.SpecificPower {
		out.PowerPerTon = power - targets.SpecificPower
		out.MonthlyPowerCost = finiteOrZero(out.PowerPerTon * avgDaily * daysPerMonth * targets.PowerTariff)
	}
	if rec, ok := s.Metric(domain.MetricMnRecovery); ok && targets.MnRecovery > 0 {
		out.HasMnRecoveryTarget = true
		if rec < targets.MnRecovery {
			out.MnRecoveryGap = targets.MnRecovery - rec
		}
	}
	return out
}

func finiteOrZero(v float64) float64 {
	if !domain.Finite(v) {
		return 0
	}
	return v
}
