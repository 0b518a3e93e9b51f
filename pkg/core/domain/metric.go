package domain

// Metric 标识一个数值字段 (原始列或派生指标)
// 记录和汇总都以 Metric 为键保存数值，缺失即不存在该键
type Metric string

// 原始数值字段
const (
	MetricProductionQty     Metric = "production_qty"
	MetricCakeProductionQty Metric = "cake_production_qty"
	MetricShortage          Metric = "shortage"
	MetricSlagQty           Metric = "slag_qty"
	MetricOreInputQty       Metric = "ore_input_qty"
	MetricCokeInputQty      Metric = "coke_input_qty"
	MetricUndersizeGen      Metric = "undersize_generation"

	MetricMnO      Metric = "mno_pct"
	MetricSiO2     Metric = "sio2_pct"
	MetricFeO      Metric = "feo_pct"
	MetricCaO      Metric = "cao_pct"
	MetricMgO      Metric = "mgo_pct"
	MetricAl2O3    Metric = "al2o3_pct"
	MetricBasicity Metric = "basicity"
	MetricGradeMn  Metric = "grade_mn"
	MetricGradeSi  Metric = "grade_si"
	MetricCarbon   Metric = "carbon_pct"

	MetricFurnacePower  Metric = "furnace_power"
	MetricAuxPower      Metric = "aux_power"
	MetricSpecificPower Metric = "specific_power"
	MetricLoadFactor    Metric = "load_factor"
	MetricPowerFactor   Metric = "power_factor"

	MetricMnRecoveryFeeding Metric = "mn_recovery_feeding"
	MetricMnRecovery        Metric = "mn_recovery" // PLC
	MetricSiRecoveryFeeding Metric = "si_recovery_feeding"
	MetricSiRecovery        Metric = "si_recovery" // PLC

	MetricOreCost       Metric = "ore_cost"
	MetricCokeCost      Metric = "coke_cost"
	MetricPowerCost     Metric = "power_cost"
	MetricFluxCost      Metric = "flux_cost"
	MetricUndersizeCost Metric = "undersize_cost"
	MetricOverheadCost  Metric = "overhead_cost"
	MetricTotalCost     Metric = "total_cost"
	MetricTargetCost    Metric = "target_cost"

	MetricBreakdownMechanical Metric = "breakdown_mechanical"
	MetricBreakdownElectrical Metric = "breakdown_electrical"
	MetricBreakdownProduction Metric = "breakdown_production"
	MetricBreakdownPreventive Metric = "breakdown_preventive"
	MetricBreakdownShutdown   Metric = "breakdown_shutdown"
	MetricBreakdownTotal      Metric = "breakdown_total"
)

// 派生指标 (每条记录)
const (
	MetricCostPerTon       Metric = "cost_per_ton"
	MetricPowerCostPerTon  Metric = "power_cost_per_ton"
	MetricTotalPower       Metric = "total_power"
	MetricPowerPerTon      Metric = "power_per_ton"
	MetricYield            Metric = "yield_pct"
	MetricOreEfficiency    Metric = "ore_efficiency"
	MetricCokeEfficiency   Metric = "coke_efficiency"
	MetricMnRecoveryGap    Metric = "mn_recovery_gap"
	MetricSiRecoveryGap    Metric = "si_recovery_gap"
	MetricAvailability     Metric = "availability"
	MetricQualityScore     Metric = "quality_score"
	MetricPerformanceScore Metric = "performance_score"
)

// 分组级指标
const (
	MetricAvgDailyProduction  Metric = "avg_daily_production"
	MetricCapacityUtilization Metric = "capacity_utilization"
	MetricMVAPerMT            Metric = "mva_per_mt"
	MetricCostVariation       Metric = "cost_variation" // 变异系数 (%)
)

// Direction 指标的优劣方向
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

var metricLabels = map[Metric]string{
	MetricProductionQty:       "Production",
	MetricCostPerTon:          "Cost per Ton",
	MetricPowerCostPerTon:     "Power Cost per Ton",
	MetricPowerPerTon:         "Power per Ton",
	MetricSpecificPower:       "Power Consumption",
	MetricMnRecovery:          "MN Recovery",
	MetricSiRecovery:          "SI Recovery",
	MetricYield:               "Yield",
	MetricOreEfficiency:       "Ore Efficiency",
	MetricCokeEfficiency:      "Coke Efficiency",
	MetricAvailability:        "Availability",
	MetricQualityScore:        "Quality Score",
	MetricPerformanceScore:    "Performance Score",
	MetricCapacityUtilization: "Capacity Utilization",
	MetricLoadFactor:          "Load Factor",
	MetricPowerFactor:         "Power Factor",
	MetricBreakdownTotal:      "Breakdown",
	MetricGradeMn:             "Grade MN",
	MetricGradeSi:             "Grade SI",
	MetricCarbon:              "Carbon",
	MetricBasicity:            "Basicity",
	MetricCostVariation:       "Cost Variation",
	MetricOreCost:             "Ore Cost",
	MetricCokeCost:            "Coke Cost",
	MetricPowerCost:           "Power Cost",
	MetricFluxCost:            "Flux Cost",
	MetricUndersizeCost:       "Undersize Cost",
	MetricOverheadCost:        "Overhead",
}

// Label 返回面向报表的显示名称
func (m Metric) Label() string {
	if l, ok := metricLabels[m]; ok {
		return l
	}
	return string(m)
}

// Values 以 Metric 为键的数值集合，缺失值不出现在 map 中
type Values map[Metric]float64

// Get 返回指标值以及是否存在
func (v Values) Get(m Metric) (float64, bool) {
	x, ok := v[m]
	return x, ok
}

// Clone 返回独立副本
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}
