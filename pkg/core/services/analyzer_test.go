package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjie/furnace-core/internal/sample"
	"github.com/renjie/furnace-core/pkg/adapters/memory"
	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/ports"
	"github.com/renjie/furnace-core/pkg/core/services"
	"github.com/renjie/furnace-core/pkg/core/services/rules"
)

// dailyTable 每个炉子 days 天，每天固定产量与总成本
func dailyTable(days int, furnaces map[string][2]float64) *domain.Table {
	table := &domain.Table{Columns: []string{"Furnace", "DATE", "Actual Production Qty", "Total Cost PLC"}}
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for d := 1; d <= days; d++ {
		for _, id := range slices.Sorted(maps.Keys(furnaces)) {
			v := furnaces[id]
			table.Rows = append(table.Rows, []string{id, fmt.Sprintf("2024-01-%02d", d), num(v[0]), num(v[1])})
		}
	}
	return table
}

func fixedClock() time.Time {
	return time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
}

// findingOpts 比较时忽略每次随机生成的 ID
func findingOpts() []cmp.Option {
	return []cmp.Option{
		cmpopts.IgnoreFields(domain.Finding{}, "ID"),
		cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	}
}

func TestAnalyze_HighCost(t *testing.T) {
	// F1: 10 天，每天 100 MT，总成本 6,000,000 -> 吨成本 60,000 (目标 50,000)
	table := dailyTable(10, map[string][2]float64{"F1": {100, 6000000}})

	report, err := services.NewAnalyzer(services.WithClock(fixedClock)).Analyze(context.Background(), table)
	require.NoError(t, err)

	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, rules.RuleCostHigh, f.RuleID)
	assert.Equal(t, domain.SeverityHigh, f.Severity)
	assert.Equal(t, "F1", f.Furnace)
	assert.Contains(t, f.Description, "₹60,000")
	assert.Contains(t, f.Description, "20.0%")
	assert.True(t, f.FinancialImpact.Decimal.Equal(decimal.NewFromInt(10000000)))

	assert.Equal(t, []domain.Finding{f}, report.Insights[domain.BucketCost])
	assert.Len(t, report.Insights, 1)

	s, ok := report.Furnace("F1")
	require.True(t, ok)
	assert.Equal(t, 10, s.Days)
	require.NotNil(t, s.Capacity)
	assert.Equal(t, domain.CapacityEstimated, s.Capacity.Source)
	require.NotNil(t, s.Savings)
	assert.InDelta(t, 30000000, s.Savings.MonthlyCost, 1e-6)

	o := report.Overall
	assert.Equal(t, 10, o.Rows)
	assert.Equal(t, []string{"F1"}, o.Furnaces)
	assert.Equal(t, 1000.0, o.TotalProduction)
	assert.True(t, o.TotalCost.Equal(decimal.NewFromInt(60000000)))
	assert.Equal(t, domain.SeverityCount{High: 1}, o.Findings)
	assert.Equal(t, fixedClock(), report.GeneratedAt)
	assert.NotEmpty(t, report.RunID)
}

func TestAnalyze_RunContext(t *testing.T) {
	ctx := domain.NewContext(context.Background(), domain.RunContext{RunID: "run-42", Source: "jan.csv"})
	report, err := services.NewAnalyzer().Analyze(ctx, dailyTable(1, map[string][2]float64{"F1": {100, 5000000}}))
	require.NoError(t, err)
	assert.Equal(t, "run-42", report.RunID)
	assert.Equal(t, "jan.csv", report.Source)
}

func TestAnalyze_Empty(t *testing.T) {
	report, err := services.NewAnalyzer().Analyze(context.Background(), &domain.Table{
		Columns: []string{"Furnace", "DATE"},
		Rows:    [][]string{{"", ""}},
	})
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.NotNil(t, report.Findings)
	assert.Empty(t, report.Findings)
	assert.NotNil(t, report.Insights)
	assert.Empty(t, report.Furnaces)
}

func TestAnalyze_OverflowingValues(t *testing.T) {
	// 两条 1e308 的吨成本求均值时溢出；F2 的产量极小使记录级吨成本溢出
	table := &domain.Table{
		Columns: []string{"Furnace", "Actual Production Qty", "Total Cost PLC"},
		Rows: [][]string{
			{"F1", "1", "1e308"},
			{"F1", "1", "1e308"},
			{"F2", "1e-10", "1e308"},
		},
	}

	var report *domain.Report
	require.NotPanics(t, func() {
		var err error
		report, err = services.NewAnalyzer().Analyze(context.Background(), table)
		require.NoError(t, err)
	})

	for _, id := range []string{"F1", "F2"} {
		s, ok := report.Furnace(id)
		require.True(t, ok, id)
		_, ok = s.Metric(domain.MetricCostPerTon)
		assert.False(t, ok, "%s cost per ton is absent", id)
	}
	assert.Empty(t, report.FindingsFor(rules.RuleCostHigh))
	assert.Contains(t, report.Issues, domain.CellIssue{
		Row:    3,
		Column: string(domain.MetricCostPerTon),
		Kind:   domain.IssueOutOfRange,
		Reason: "cost_per_ton is not a finite number",
	})

	_, err := json.Marshal(report)
	assert.NoError(t, err)
}

func TestAnalyze_ComponentCostIsNotTotal(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"Furnace", "Actual Production Qty", "Power Cost PLC", "Grade MN%"},
		Rows:    [][]string{{"F1", "100", "6000000", "70"}},
	}
	report, err := services.NewAnalyzer().Analyze(context.Background(), table)
	require.NoError(t, err)

	assert.Empty(t, report.FindingsFor(rules.RuleCostHigh))
	assert.Empty(t, report.FindingsFor(rules.RuleRecoveryLowMn))
	assert.Contains(t, report.Warnings, "column not found: total_cost")
}

func TestAnalyze_BreakdownClamped(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"Furnace", "Actual Production Qty", "Total Breakdown Mins"},
		Rows:    [][]string{{"F1", "100", "2000"}},
	}
	report, err := services.NewAnalyzer().Analyze(context.Background(), table)
	require.NoError(t, err)

	fs := report.FindingsFor(rules.RuleBreakdownHigh)
	require.Len(t, fs, 1)
	assert.Contains(t, fs[0].Description, "Average 1440 minutes downtime per day")
	assert.Equal(t, 1440.0, fs[0].Evidence.Value)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, domain.IssueClamped, report.Issues[0].Kind)
	assert.Equal(t, "2000", report.Issues[0].Raw)
}

func TestAnalyze_Errors(t *testing.T) {
	a := services.NewAnalyzer()

	_, err := a.Analyze(context.Background(), &domain.Table{})
	assert.ErrorIs(t, err, domain.ErrNotTabular)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Analyze(ctx, dailyTable(2, map[string][2]float64{"F1": {100, 5000000}}))
	assert.ErrorIs(t, err, context.Canceled)

	t.Run("unknown rule type fails the run", func(t *testing.T) {
		repo := memory.NewRuleRepository([]domain.RuleSpec{{ID: "bogus", Type: "BOGUS", Enabled: true}})
		_, err := services.NewAnalyzer(services.WithRuleRepository(repo)).
			Analyze(context.Background(), dailyTable(1, map[string][2]float64{"F1": {100, 5000000}}))
		assert.ErrorIs(t, err, domain.ErrUnknownRuleType)
	})
}

func TestAnalyze_RuleSources(t *testing.T) {
	table := dailyTable(10, map[string][2]float64{"F1": {100, 6000000}})

	t.Run("explicit rules replace the catalog", func(t *testing.T) {
		report, err := services.NewAnalyzer(services.WithRules(stubRule{id: "stub", fire: "F1"})).
			Analyze(context.Background(), table)
		require.NoError(t, err)
		require.Len(t, report.Findings, 1)
		assert.Equal(t, "stub", report.Findings[0].RuleID)
	})

	t.Run("disabled rules do not run", func(t *testing.T) {
		repo := memory.NewRuleRepository(rules.DefaultCatalog(), rules.RuleCostHigh)
		report, err := services.NewAnalyzer(services.WithRuleRepository(repo)).Analyze(context.Background(), table)
		require.NoError(t, err)
		assert.Empty(t, report.Findings)
	})
}

func TestAnalyze_CapacityAndEscalation(t *testing.T) {
	table := dailyTable(10, map[string][2]float64{"F1": {100, 6000000}})
	repo := memory.NewCapacityRepository(domain.FurnaceCapacity{FurnaceID: "F1", DesignCapacityMT: 200, MVA: 33})

	report, err := services.NewAnalyzer(services.WithCapacityRepository(repo)).Analyze(context.Background(), table)
	require.NoError(t, err)

	s, _ := report.Furnace("F1")
	assert.Equal(t, domain.CapacitySupplied, s.Capacity.Source)
	util, _ := s.Metric(domain.MetricCapacityUtilization)
	assert.Equal(t, 50.0, util)
	mva, _ := s.Metric(domain.MetricMVAPerMT)
	assert.InDelta(t, 0.33, mva, 1e-9)

	low := report.FindingsFor(rules.RuleCapacityLow)
	require.Len(t, low, 1)
	// (200 - 100) × 50,000 × 30
	assert.True(t, low[0].FinancialImpact.Decimal.Equal(decimal.NewFromInt(150000000)))

	critical := report.FindingsFor(rules.RuleMultipleCritical)
	require.Len(t, critical, 1)
	assert.Equal(t, "Multiple Critical Issues - F1", critical[0].Title)
	assert.True(t, critical[0].FinancialImpact.Decimal.Equal(decimal.NewFromInt(160000000)))
	assert.Equal(t, critical[0].RuleID, report.Findings[0].RuleID, "largest impact sorts first")
	assert.Len(t, report.Insights[domain.BucketCritical], 1)
}

func TestAnalyze_FurnaceTargetCost(t *testing.T) {
	table := dailyTable(10, map[string][2]float64{"F1": {100, 6000000}})

	t.Run("configured target wins", func(t *testing.T) {
		repo := memory.NewCapacityRepository(domain.FurnaceCapacity{FurnaceID: "F1", TargetCostMT: 58000})
		report, err := services.NewAnalyzer(services.WithCapacityRepository(repo)).Analyze(context.Background(), table)
		require.NoError(t, err)
		assert.Empty(t, report.FindingsFor(rules.RuleCostHigh), "60000 is within 58000 × 1.15")
	})

	t.Run("target cost column is used when nothing is configured", func(t *testing.T) {
		withTarget := &domain.Table{Columns: append(table.Columns, "Target cost")}
		for _, row := range table.Rows {
			withTarget.Rows = append(withTarget.Rows, append(append([]string(nil), row...), "56000"))
		}
		report, err := services.NewAnalyzer().Analyze(context.Background(), withTarget)
		require.NoError(t, err)
		assert.Empty(t, report.FindingsFor(rules.RuleCostHigh))
	})
}

func TestAnalyze_Comparative(t *testing.T) {
	table := dailyTable(3, map[string][2]float64{
		"F1": {100, 5000000},
		"F2": {100, 6500000},
	})
	report, err := services.NewAnalyzer().Analyze(context.Background(), table)
	require.NoError(t, err)

	gaps := report.FindingsFor(services.RuleComparativeGap)
	require.NotEmpty(t, gaps)
	assert.Equal(t, "F2 has 30.0% higher cost per ton than F1", gaps[0].Description)
	assert.Empty(t, gaps[0].Furnace)
	assert.Len(t, report.Insights[domain.BucketBenchmark], len(gaps))
	assert.Equal(t, []string{"F1", "F2"}, report.Overall.Furnaces)
}

func TestAnalyze_Deterministic(t *testing.T) {
	opts := sample.DefaultOptions()
	opts.Days = 21
	table := sample.Generate(opts)

	run := func(limit int) *domain.Report {
		r, err := services.NewAnalyzer(
			services.WithConcurrencyLimit(limit),
			services.WithClock(fixedClock),
		).Analyze(context.Background(), table)
		require.NoError(t, err)
		return r
	}
	serial, parallel := run(1), run(8)

	require.NotEmpty(t, serial.Findings)
	assert.Len(t, serial.Furnaces, 4)
	assert.NotEmpty(t, serial.Grades)
	assert.NotEmpty(t, serial.FurnaceGrades)
	assert.NotEmpty(t, serial.Corrections, "sample recoveries are fractions")
	if diff := cmp.Diff(serial.Findings, parallel.Findings, findingOpts()...); diff != "" {
		t.Errorf("findings differ between runs (-serial +parallel):\n%s", diff)
	}
	for i := range serial.Furnaces {
		assert.Equal(t, serial.Furnaces[i].Key, parallel.Furnaces[i].Key)
	}

	t.Run("findings are sorted by severity", func(t *testing.T) {
		for i := 1; i < len(serial.Findings); i++ {
			assert.GreaterOrEqual(t, int(serial.Findings[i-1].Severity), int(serial.Findings[i].Severity))
		}
	})
}

func TestAnalyze_WithoutGrades(t *testing.T) {
	report, err := services.NewAnalyzer(services.WithGradeAnalysis(false)).
		Analyze(context.Background(), sample.Generate(sample.DefaultOptions()))
	require.NoError(t, err)
	assert.Empty(t, report.Grades)
	assert.Empty(t, report.FindingsFor(services.RuleGradeVariance))
}

var _ ports.FurnaceAnalyzer = (*services.Analyzer)(nil)
