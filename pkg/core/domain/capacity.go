package domain

// FurnaceCapacity 炉子的额定参数，由配置提供，运行期间不可变
// 0 表示未提供，使用全局目标或估算值
type FurnaceCapacity struct {
	FurnaceID         string  `yaml:"id" json:"id"`
	MVA               float64 `yaml:"mva" json:"mva"`
	DesignCapacityMT  float64 `yaml:"design_capacity_mt" json:"design_capacity_mt"` // MT/day
	OptimalPowerKWhMT float64 `yaml:"optimal_power_kwh_mt" json:"optimal_power_kwh_mt"`
	TargetMnRecovery  float64 `yaml:"target_mn_recovery" json:"target_mn_recovery"`
	TargetSiRecovery  float64 `yaml:"target_si_recovery" json:"target_si_recovery"`
	TargetCostMT      float64 `yaml:"target_cost_mt" json:"target_cost_mt"`
}

// CapacitySource 设计产能的来源
type CapacitySource string

const (
	CapacitySupplied  CapacitySource = "SUPPLIED"  // 配置提供
	CapacityEstimated CapacitySource = "ESTIMATED" // 历史日产量 P90
	CapacityFallback  CapacitySource = "FALLBACK"  // 无日产量历史，平均值 × 1.2
	CapacityUnknown   CapacitySource = "UNKNOWN"
)

// CapacityInfo Capacity Model 的输出
// Utilization 不截断，超过 100 表示超设计产能运行
type CapacityInfo struct {
	MVA              float64        `json:"mva,omitempty"`
	DesignCapacityMT float64        `json:"design_capacity_mt"`
	Source           CapacitySource `json:"source"`
	AvgDailyMT       float64        `json:"avg_daily_mt"`
	Utilization      float64        `json:"utilization"`
	HasUtilization   bool           `json:"has_utilization"`
	MVAPerMT         float64        `json:"mva_per_mt,omitempty"`
}

// Savings 相对目标的潜在节约
type Savings struct {
	CostPerTon          float64 `json:"cost_per_ton"`
	MonthlyCost         float64 `json:"monthly_cost"`
	PowerPerTon         float64 `json:"power_per_ton"` // kWh/MT
	MonthlyPowerCost    float64 `json:"monthly_power_cost"`
	MnRecoveryGap       float64 `json:"mn_recovery_gap"` // 百分点
	HasMnRecoveryTarget bool    `json:"has_mn_recovery_target"`
}
