package rules_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/ports"
	"github.com/renjie/furnace-core/pkg/core/services/rules"
)

// catalogSpec 从内置目录中取出一条规则定义
func catalogSpec(t *testing.T, id string) domain.RuleSpec {
	t.Helper()
	for _, s := range rules.DefaultCatalog() {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("rule %s not in catalog", id)
	return domain.RuleSpec{}
}

func furnaceSummary(id string, production float64, means domain.Values) domain.Summary {
	return domain.Summary{
		Key:             domain.GroupKey{Furnace: id},
		TotalProduction: production,
		Means:           means,
	}
}

func ruleContext() ports.RuleContext {
	return ports.RuleContext{Targets: domain.DefaultTargets(), RunID: "run-1"}
}

func TestThresholdRule_CostBoundary(t *testing.T) {
	rule, err := rules.NewThresholdRule(catalogSpec(t, rules.RuleCostHigh))
	require.NoError(t, err)

	// 目标 50000 × 1.15 = 57500，比较为严格大于
	t.Run("exactly on the threshold does not fire", func(t *testing.T) {
		ev := rule.Evaluate(ruleContext(), furnaceSummary("F1", 1000, domain.Values{domain.MetricCostPerTon: 57500}))
		assert.False(t, ev.Matched)
		assert.False(t, ev.Skipped)
	})

	t.Run("just above the threshold fires with excess cost", func(t *testing.T) {
		ev := rule.Evaluate(ruleContext(), furnaceSummary("F1", 1000, domain.Values{domain.MetricCostPerTon: 57505}))
		require.True(t, ev.Matched)

		f := ev.Finding
		assert.Equal(t, rules.RuleCostHigh, f.RuleID)
		assert.Equal(t, domain.SeverityHigh, f.Severity)
		assert.Equal(t, domain.CategoryCost, f.Category)
		assert.Equal(t, "F1", f.Furnace)
		assert.Equal(t, "High Production Cost - F1", f.Title)
		assert.Contains(t, f.Description, "₹57,505")
		assert.Contains(t, f.Description, "15.0% above target (₹50,000)")
		require.True(t, f.FinancialImpact.Valid)
		assert.True(t, f.FinancialImpact.Decimal.Equal(decimal.NewFromInt(7505000)), f.FinancialImpact.Decimal.String())
		assert.Equal(t, "Excess cost: ₹7,505,000", f.Impact)
		assert.Len(t, f.ActionItems, 3)
		assert.NotEmpty(t, f.ID)
	})

	t.Run("missing metric is skipped", func(t *testing.T) {
		ev := rule.Evaluate(ruleContext(), furnaceSummary("F1", 1000, domain.Values{}))
		assert.True(t, ev.Skipped)
		assert.False(t, ev.Matched)
	})

	t.Run("top cost driver is mentioned", func(t *testing.T) {
		s := furnaceSummary("F1", 100, domain.Values{domain.MetricCostPerTon: 60000})
		s.CostBreakdown = []domain.CostShare{
			{Component: domain.MetricOreCost, SharePct: 55},
			{Component: domain.MetricPowerCost, SharePct: 30},
		}
		ev := rule.Evaluate(ruleContext(), s)
		require.True(t, ev.Matched)
		assert.Equal(t,
			"Cost per ton (₹60,000) is 20.0% above target (₹50,000). Ore Cost accounts for 55.0% of total cost",
			ev.Finding.Description)
	})
}

func TestThresholdRule_PowerEscalation(t *testing.T) {
	rule, err := rules.NewThresholdRule(catalogSpec(t, rules.RulePowerHigh))
	require.NoError(t, err)

	tests := []struct {
		name     string
		value    float64
		matched  bool
		severity domain.Severity
	}{
		{"below threshold", 2900, false, 0},
		{"above threshold", 3200, true, domain.SeverityMedium},
		{"above escalation edge", 3600, true, domain.SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := rule.Evaluate(ruleContext(), furnaceSummary("F2", 10, domain.Values{domain.MetricSpecificPower: tt.value}))
			assert.Equal(t, tt.matched, ev.Matched)
			if tt.matched {
				assert.Equal(t, tt.severity, ev.Finding.Severity)
			}
		})
	}

	t.Run("absent context metrics render as not available", func(t *testing.T) {
		ev := rule.Evaluate(ruleContext(), furnaceSummary("F2", 10, domain.Values{domain.MetricSpecificPower: 3200}))
		require.True(t, ev.Matched)
		assert.Contains(t, ev.Finding.Description, "Load Factor: "+rules.NotAvailable)
		// (3200 - 2500) × 10 × 8
		assert.True(t, ev.Finding.FinancialImpact.Decimal.Equal(decimal.NewFromInt(56000)))
	})
}

func TestThresholdRule_CatalogBoundaries(t *testing.T) {
	// 默认目标下每条阈值规则: 恰在阈值上不触发，越过一点触发
	tests := []struct {
		rule     string
		metric   domain.Metric
		at       float64
		past     float64
		severity domain.Severity
	}{
		{rules.RuleRecoveryLowMn, domain.MetricMnRecovery, 72, 71.9, domain.SeverityHigh},
		{rules.RuleRecoveryLowSi, domain.MetricSiRecovery, 40, 39.9, domain.SeverityMedium},
		{rules.RuleCapacityLow, domain.MetricCapacityUtilization, 70, 69.9, domain.SeverityHigh},
		{rules.RuleCapacityHigh, domain.MetricCapacityUtilization, 110, 110.1, domain.SeverityMedium},
		{rules.RuleBreakdownHigh, domain.MetricBreakdownTotal, 120, 121, domain.SeverityHigh},
		{rules.RuleAvailabilityLow, domain.MetricAvailability, 85, 84.9, domain.SeverityMedium},
		{rules.RuleLoadFactorLow, domain.MetricLoadFactor, 75, 74.9, domain.SeverityMedium},
		{rules.RulePowerFactorLow, domain.MetricPowerFactor, 0.90, 0.899, domain.SeverityMedium},
		{rules.RuleYieldLow, domain.MetricYield, 90, 89.9, domain.SeverityHigh},
		{rules.RuleOreEfficiencyLow, domain.MetricOreEfficiency, 0.495, 0.494, domain.SeverityMedium},
		{rules.RuleCokeEfficiencyLow, domain.MetricCokeEfficiency, 3.6, 3.59, domain.SeverityMedium},
		{rules.RuleCostVariation, domain.MetricCostVariation, 20, 20.1, domain.SeverityMedium},
		{rules.RuleQualityScoreLow, domain.MetricQualityScore, 70, 69.9, domain.SeverityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			rule, err := rules.NewThresholdRule(catalogSpec(t, tt.rule))
			require.NoError(t, err)

			ev := rule.Evaluate(ruleContext(), furnaceSummary("F3", 100, domain.Values{tt.metric: tt.at}))
			assert.False(t, ev.Matched, "on the threshold")
			assert.False(t, ev.Skipped)

			ev = rule.Evaluate(ruleContext(), furnaceSummary("F3", 100, domain.Values{tt.metric: tt.past}))
			require.True(t, ev.Matched, "past the threshold")
			assert.Equal(t, tt.rule, ev.Finding.RuleID)
			assert.Equal(t, tt.severity, ev.Finding.Severity)
			assert.Equal(t, "F3", ev.Finding.Furnace)
			assert.NotContains(t, ev.Finding.Title, "<")
			assert.NotContains(t, ev.Finding.Description, "<")
			assert.NotContains(t, ev.Finding.Impact, "<")
		})
	}
}

func TestThresholdRule_BreakdownWithoutProduction(t *testing.T) {
	rule, err := rules.NewThresholdRule(catalogSpec(t, rules.RuleBreakdownHigh))
	require.NoError(t, err)

	ev := rule.Evaluate(ruleContext(), furnaceSummary("F1", 0, domain.Values{domain.MetricBreakdownTotal: 240}))
	require.True(t, ev.Matched)
	assert.Equal(t, "Production loss: "+rules.NotAvailable, ev.Finding.Impact)

	ev = rule.Evaluate(ruleContext(), furnaceSummary("F1", 0, domain.Values{
		domain.MetricBreakdownTotal:     240,
		domain.MetricAvgDailyProduction: 120,
	}))
	require.True(t, ev.Matched)
	// 240 / 60 × 120 / 24
	assert.Equal(t, "Production loss: 20.0 tons/day", ev.Finding.Impact)
}

func TestThresholdRule_PowerFactorText(t *testing.T) {
	rule, err := rules.NewThresholdRule(catalogSpec(t, rules.RulePowerFactorLow))
	require.NoError(t, err)

	ev := rule.Evaluate(ruleContext(), furnaceSummary("F1", 100, domain.Values{domain.MetricPowerFactor: 0.85}))
	require.True(t, ev.Matched)
	assert.Equal(t, "Power factor (0.850) is below 0.90 (target 0.95)", ev.Finding.Description)
}

func TestThresholdRule_OverflowingImpact(t *testing.T) {
	rule, err := rules.NewThresholdRule(catalogSpec(t, rules.RuleCostHigh))
	require.NoError(t, err)

	ev := rule.Evaluate(ruleContext(), furnaceSummary("F1", 1e300, domain.Values{domain.MetricCostPerTon: 1e300}))
	require.True(t, ev.Matched)
	assert.False(t, ev.Finding.FinancialImpact.Valid)

	ev = rule.Evaluate(ruleContext(), furnaceSummary("F1", 10, domain.Values{domain.MetricCostPerTon: math.Inf(1)}))
	assert.True(t, ev.Skipped, "non-finite metric is absent")
}

func TestThresholdRule_FurnaceTargets(t *testing.T) {
	rule, err := rules.NewThresholdRule(catalogSpec(t, rules.RuleCostHigh))
	require.NoError(t, err)

	ctx := ruleContext()
	ctx.Targets = ctx.Targets.ForFurnace(domain.FurnaceCapacity{FurnaceID: "F1", TargetCostMT: 40000})
	ev := rule.Evaluate(ctx, furnaceSummary("F1", 1, domain.Values{domain.MetricCostPerTon: 47000}))
	assert.True(t, ev.Matched, "47000 > 40000 × 1.15")
}

func TestNewThresholdRule_Invalid(t *testing.T) {
	_, err := rules.NewThresholdRule(domain.RuleSpec{ID: "x", Comparison: domain.Above})
	assert.Error(t, err, "metric is required")

	_, err = rules.NewThresholdRule(domain.RuleSpec{ID: "x", Metric: domain.MetricCostPerTon, Comparison: "SIDEWAYS"})
	assert.Error(t, err)

	_, err = rules.NewThresholdRule(domain.RuleSpec{
		ID: "x", Metric: domain.MetricCostPerTon, Comparison: domain.Above, Title: "{{.Scope",
	})
	assert.ErrorContains(t, err, "parse title template")
}

func TestBreaches(t *testing.T) {
	thr := decimal.RequireFromString("0.9")
	assert.True(t, rules.Breaches(0.89, thr, domain.Below))
	assert.False(t, rules.Breaches(0.9, thr, domain.Below))
	assert.False(t, rules.Breaches(0.9, thr, domain.Above))
}

func TestCatalog(t *testing.T) {
	specs := rules.DefaultCatalog()
	seen := make(map[string]bool)
	for _, s := range specs {
		assert.True(t, s.Enabled, s.ID)
		assert.False(t, seen[s.ID], "duplicate rule id %s", s.ID)
		seen[s.ID] = true
	}
	assert.True(t, seen[rules.RuleQualityGradeMn])

	specs[0].Enabled = false
	assert.True(t, rules.DefaultCatalog()[0].Enabled, "catalog returns a fresh slice")
}
