package rules

import "github.com/renjie/furnace-core/pkg/core/domain"

// 规则 ID
const (
	RuleCostHigh          = "cost_high"
	RulePowerHigh         = "power_high"
	RuleRecoveryLowMn     = "recovery_low_mn"
	RuleRecoveryLowSi     = "recovery_low_si"
	RuleQualityGradeMn    = "quality_out_of_range_grade_mn"
	RuleQualityGradeSi    = "quality_out_of_range_grade_si"
	RuleQualityCarbon     = "quality_out_of_range_carbon"
	RuleQualityBasicity   = "quality_out_of_range_basicity"
	RuleCapacityLow       = "capacity_low"
	RuleCapacityHigh      = "capacity_high"
	RuleBreakdownHigh     = "breakdown_high"
	RuleAvailabilityLow   = "availability_low"
	RuleLoadFactorLow     = "load_factor_low"
	RulePowerFactorLow    = "power_factor_low"
	RuleYieldLow          = "yield_low"
	RuleOreEfficiencyLow  = "ore_efficiency_low"
	RuleCokeEfficiencyLow = "coke_efficiency_low"
	RuleCostVariation     = "cost_variation_high"
	RuleQualityScoreLow   = "quality_score_low"
)

// DefaultCatalog 内置规则目录
// 每次调用返回新切片，调用方可以按 ID 禁用或修改
func DefaultCatalog() []domain.RuleSpec {
	catalog := []domain.RuleSpec{
		{
			ID: RuleCostHigh, Type: domain.RuleTypeThreshold, Category: domain.CategoryCost, Severity: domain.SeverityHigh,
			Metric: domain.MetricCostPerTon, Comparison: domain.Above, Mode: domain.BandRelative, Factor: 1.15,
			Impact:         domain.ImpactExcessCost,
			Title:          "High Production Cost - {{.Scope}}",
			Description:    "Cost per ton ({{money .Value}}) is {{fixed 1 .Deviation}}% above target ({{money .Target}}){{with .Driver}}. {{label .Component}} accounts for {{fixed 1 .SharePct}}% of total cost{{end}}",
			ImpactText:     "Excess cost: {{money .Impact}}",
			Recommendation: "Review raw material procurement and optimize process parameters",
			ActionItems: []string{
				"Analyze cost components breakdown",
				"Review supplier contracts",
				"Optimize raw material mix",
			},
		},
		{
			ID: RulePowerHigh, Type: domain.RuleTypeThreshold, Category: domain.CategoryPower, Severity: domain.SeverityMedium,
			Metric: domain.MetricSpecificPower, Comparison: domain.Above, Mode: domain.BandRelative, Factor: 1.20,
			EscalateFactor: 1.40,
			Impact:         domain.ImpactExtraPower,
			Title:          "High Power Consumption - {{.Scope}}",
			Description:    `Power consumption ({{comma .Value}} kWh/MT) is {{fixed 1 .Deviation}}% above target. Load Factor: {{metricf .Summary "load_factor" "%.1f%%"}}, Power Factor: {{metricf .Summary "power_factor" "%.3f"}}`,
			ImpactText:     "Extra power cost: {{money .Impact}}",
			Recommendation: "Optimize electrode regulation and review power management",
			ActionItems: []string{
				"Check electrode positioning",
				"Review transformer tap settings",
				"Reduce furnace idling",
			},
		},
		{
			ID: RuleRecoveryLowMn, Type: domain.RuleTypeThreshold, Category: domain.CategoryRecovery, Severity: domain.SeverityHigh,
			Metric: domain.MetricMnRecovery, Comparison: domain.Below, Mode: domain.BandRelative, Factor: 0.90,
			Title:          "Low MN Recovery - {{.Scope}}",
			Description:    "MN recovery ({{fixed 1 .Value}}%) is {{fixed 1 .Gap}}% below target{{with .Causes}}. {{.}}{{end}}",
			ImpactText:     "Manganese lost to slag: {{fixed 1 .Gap}} percentage points against target ({{num .Target}}%)",
			Recommendation: "Optimize slag chemistry and basicity control",
			ActionItems: []string{
				"Review slag basicity",
				"Check tapping practice",
			},
		},
		{
			ID: RuleRecoveryLowSi, Type: domain.RuleTypeThreshold, Category: domain.CategoryRecovery, Severity: domain.SeverityMedium,
			Metric: domain.MetricSiRecovery, Comparison: domain.Below, Mode: domain.BandOffset, Offset: -5,
			Title:          "Low SI Recovery - {{.Scope}}",
			Description:    "SI recovery ({{fixed 1 .Value}}%) is {{fixed 1 .Gap}}% below target",
			ImpactText:     "Silicon recovery gap of {{fixed 1 .Gap}} percentage points",
			Recommendation: "Review quartz quality and reduction temperature",
		},
		qualityBand(RuleQualityGradeMn, domain.MetricGradeMn),
		qualityBand(RuleQualityGradeSi, domain.MetricGradeSi),
		qualityBand(RuleQualityCarbon, domain.MetricCarbon),
		qualityBand(RuleQualityBasicity, domain.MetricBasicity),
		{
			ID: RuleCapacityLow, Type: domain.RuleTypeThreshold, Category: domain.CategoryCapacity, Severity: domain.SeverityHigh,
			Metric: domain.MetricCapacityUtilization, Comparison: domain.Below, Mode: domain.BandAbsolute, Limit: 70,
			Impact:         domain.ImpactUnderCapacity,
			Title:          "Low Capacity Utilization - {{.Scope}}",
			Description:    "Operating at {{fixed 1 .Value}}% of design capacity ({{fixed 1 .Capacity.AvgDailyMT}} MT/day vs {{fixed 1 .Capacity.DesignCapacityMT}} MT/day)",
			ImpactText:     "Unused capacity worth {{money .Impact}} per month at target cost",
			Recommendation: "Increase furnace loading or review maintenance schedules",
			ActionItems: []string{
				"Identify production bottlenecks",
				"Review raw material availability",
			},
		},
		{
			ID: RuleCapacityHigh, Type: domain.RuleTypeThreshold, Category: domain.CategoryCapacity, Severity: domain.SeverityMedium,
			Metric: domain.MetricCapacityUtilization, Comparison: domain.Above, Mode: domain.BandAbsolute, Limit: 110,
			Title:          "Potential Overloading - {{.Scope}}",
			Description:    "Operating at {{fixed 1 .Value}}% of design capacity ({{fixed 1 .Capacity.AvgDailyMT}} MT/day vs {{fixed 1 .Capacity.DesignCapacityMT}} MT/day)",
			ImpactText:     "Sustained overloading increases equipment stress and breakdown risk",
			Recommendation: "Verify design capacity data and inspect equipment condition",
		},
		{
			ID: RuleBreakdownHigh, Type: domain.RuleTypeThreshold, Category: domain.CategoryOperations, Severity: domain.SeverityHigh,
			Metric: domain.MetricBreakdownTotal, Comparison: domain.Above, Mode: domain.BandRelative, Factor: 1.5,
			Title:          "High Breakdown Time - {{.Scope}}",
			Description:    "Average {{fixed 0 .Value}} minutes downtime per day ({{fixed 1 .Summary.BreakdownHours}} total hours){{with .Causes}}. {{.}}{{end}}",
			ImpactText:     "Production loss: {{downtimeLoss .Value .Summary}}",
			Recommendation: "Implement preventive maintenance and root cause analysis",
			ActionItems: []string{
				"Review breakdown logs",
				"Schedule preventive maintenance",
			},
		},
		{
			ID: RuleAvailabilityLow, Type: domain.RuleTypeThreshold, Category: domain.CategoryOperations, Severity: domain.SeverityMedium,
			Metric: domain.MetricAvailability, Comparison: domain.Below, Mode: domain.BandOffset, Offset: -5,
			Title:          "Low Operational Availability - {{.Scope}}",
			Description:    "Availability ({{fixed 1 .Value}}%) below target ({{num .Target}}%)",
			ImpactText:     "{{fixed 1 .Gap}} percentage points of operating time lost against target",
			Recommendation: "Reduce unplanned downtime and shorten restart times",
		},
		{
			ID: RuleLoadFactorLow, Type: domain.RuleTypeThreshold, Category: domain.CategoryPower, Severity: domain.SeverityMedium,
			Metric: domain.MetricLoadFactor, Comparison: domain.Below, Mode: domain.BandAbsolute, Limit: 75,
			Title:          "Low Load Factor - {{.Scope}}",
			Description:    "Load factor ({{fixed 1 .Value}}%) indicates inefficient power usage",
			ImpactText:     "Inefficient power usage raises specific power consumption",
			Recommendation: "Optimize furnace loading and power scheduling",
		},
		{
			ID: RulePowerFactorLow, Type: domain.RuleTypeThreshold, Category: domain.CategoryPower, Severity: domain.SeverityMedium,
			Metric: domain.MetricPowerFactor, Comparison: domain.Below, Mode: domain.BandAbsolute, Limit: 0.90,
			Title:          "Low Power Factor - {{.Scope}}",
			Description:    "Power factor ({{fixed 3 .Value}}) is below {{fixed 2 .Threshold}} (target {{fixed 2 .Target}})",
			ImpactText:     "Reactive power penalties and higher losses",
			Recommendation: "Install or service power factor correction capacitors",
		},
		{
			ID: RuleYieldLow, Type: domain.RuleTypeThreshold, Category: domain.CategoryProduction, Severity: domain.SeverityHigh,
			Metric: domain.MetricYield, Comparison: domain.Below, Mode: domain.BandOffset, Offset: -5,
			Title:          "Low Yield - {{.Scope}}",
			Description:    "Yield ({{fixed 1 .Value}}%) is {{fixed 1 .Gap}}% below target ({{num .Target}}%)",
			ImpactText:     "Material loss between cake and final production",
			Recommendation: "Reduce fines generation and handling losses",
		},
		{
			ID: RuleOreEfficiencyLow, Type: domain.RuleTypeThreshold, Category: domain.CategoryEfficiency, Severity: domain.SeverityMedium,
			Metric: domain.MetricOreEfficiency, Comparison: domain.Below, Mode: domain.BandRelative, Factor: 0.9,
			Title:          "Low Ore Efficiency - {{.Scope}}",
			Description:    "Ore efficiency ({{fixed 3 .Value}} MT/MT) below target ({{fixed 3 .Target}} MT/MT)",
			ImpactText:     "Higher ore consumption per ton of product",
			Recommendation: "Review ore quality and charge mix",
		},
		{
			ID: RuleCokeEfficiencyLow, Type: domain.RuleTypeThreshold, Category: domain.CategoryEfficiency, Severity: domain.SeverityMedium,
			Metric: domain.MetricCokeEfficiency, Comparison: domain.Below, Mode: domain.BandRelative, Factor: 0.9, RequirePositive: true,
			Title:          "Low Coke Efficiency - {{.Scope}}",
			Description:    "Coke efficiency ({{fixed 2 .Value}} MT/MT) below target ({{fixed 2 .Target}} MT/MT)",
			ImpactText:     "Higher reductant consumption per ton of product",
			Recommendation: "Check coke fixed carbon and moisture",
		},
		{
			ID: RuleCostVariation, Type: domain.RuleTypeThreshold, Category: domain.CategoryProduction, Severity: domain.SeverityMedium,
			Metric: domain.MetricCostVariation, Comparison: domain.Above, Mode: domain.BandAbsolute, Limit: 20,
			Title:          "High Cost Variability - {{.Scope}}",
			Description:    "Cost per ton varies by {{fixed 1 .Value}}% day to day (coefficient of variation)",
			ImpactText:     "Unstable operation makes cost planning unreliable",
			Recommendation: "Standardize operating practices across shifts",
		},
		{
			ID: RuleQualityScoreLow, Type: domain.RuleTypeThreshold, Category: domain.CategoryQuality, Severity: domain.SeverityMedium,
			Metric: domain.MetricQualityScore, Comparison: domain.Below, Mode: domain.BandAbsolute, Limit: 70,
			Title:          "Low Quality Score - {{.Scope}}",
			Description:    "Overall quality score ({{fixed 1 .Value}}) is below {{num .Threshold}}",
			ImpactText:     "Product may fall outside customer specifications",
			Recommendation: "Tighten chemistry control on grade MN, grade SI, carbon and basicity",
		},
	}
	for i := range catalog {
		catalog[i].Enabled = true
	}
	return catalog
}

func qualityBand(id string, m domain.Metric) domain.RuleSpec {
	return domain.RuleSpec{
		ID:             id,
		Type:           domain.RuleTypeQualityBand,
		Category:       domain.CategoryQuality,
		Severity:       domain.SeverityMedium,
		Metric:         m,
		Title:          "{{.Label}} Deviation - {{.Scope}}",
		Description:    "{{.Label}} ({{fixed 2 .Value}}) outside optimal range ({{num (index .Band.Optimal 0)}}-{{num (index .Band.Optimal 1)}})",
		ImpactText:     "Deviation of {{fixed 2 .Gap}} from the optimal band",
		Recommendation: "Adjust charge mix to bring {{lower .Label}} back to {{num .Target}}",
	}
}
