package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/services"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestDerive(t *testing.T) {
	d := services.NewDeriver()
	in := []domain.Record{
		{Furnace: "F1", Values: domain.Values{
			domain.MetricProductionQty: 100, domain.MetricTotalCost: 4000000,
			domain.MetricFurnacePower: 250000, domain.MetricAuxPower: 10000,
			domain.MetricCakeProductionQty: 110, domain.MetricBreakdownTotal: 144,
			domain.MetricMnRecovery: 78, domain.MetricMnRecoveryFeeding: 81,
		}},
		{Furnace: "F1", Values: domain.Values{
			domain.MetricProductionQty: 0, domain.MetricTotalCost: 900000,
			domain.MetricBreakdownTotal: 1500,
		}},
		{Furnace: "F2", Values: domain.Values{
			domain.MetricProductionQty: 50, domain.MetricTotalCost: 3000000,
		}},
	}
	out, issues := d.Derive(in, domain.DefaultTargets())
	require.Len(t, out, 3)
	assert.Empty(t, issues)

	t.Run("record ratios", func(t *testing.T) {
		v := out[0].Values
		assert.Equal(t, 40000.0, v[domain.MetricCostPerTon])
		assert.Equal(t, 260000.0, v[domain.MetricTotalPower])
		assert.Equal(t, 2600.0, v[domain.MetricPowerPerTon])
		assert.Equal(t, 2600.0, v[domain.MetricSpecificPower], "falls back to power per ton")
		assert.InDelta(t, 90.909, v[domain.MetricYield], 0.001)
		assert.Equal(t, -3.0, v[domain.MetricMnRecoveryGap])
		assert.InDelta(t, 90, v[domain.MetricAvailability], 1e-9)
	})

	t.Run("zero production leaves ratios absent", func(t *testing.T) {
		_, ok := out[1].Get(domain.MetricCostPerTon)
		assert.False(t, ok)
		assert.Equal(t, 0.0, out[1].Values[domain.MetricAvailability], "more than a day of breakdown clamps to 0")
	})

	t.Run("input is not modified", func(t *testing.T) {
		_, ok := in[0].Get(domain.MetricCostPerTon)
		assert.False(t, ok)
	})

	t.Run("performance score is relative to the population mean", func(t *testing.T) {
		// 吨成本均值 50000: 40000 -> 100 分, 60000 -> 90 分
		assert.InDelta(t, 60000, out[2].Values[domain.MetricCostPerTon], 1e-9)
		assert.InDelta(t, 90, out[2].Values[domain.MetricPerformanceScore], 1e-9)
	})
}

func TestDerive_Overflow(t *testing.T) {
	out, issues := services.NewDeriver().Derive([]domain.Record{
		{Row: 7, Furnace: "F1", Values: domain.Values{
			domain.MetricProductionQty: 1e-10, domain.MetricTotalCost: 1e308, domain.MetricPowerCost: 1e308,
		}},
	}, domain.DefaultTargets())

	require.Len(t, out, 1)
	_, ok := out[0].Get(domain.MetricCostPerTon)
	assert.False(t, ok)
	_, ok = out[0].Get(domain.MetricPowerCostPerTon)
	assert.False(t, ok)
	assert.Equal(t, 1e308, out[0].Values[domain.MetricTotalCost], "inputs are kept")

	require.Len(t, issues, 2)
	for _, is := range issues {
		assert.Equal(t, 7, is.Row)
		assert.Equal(t, domain.IssueOutOfRange, is.Kind)
	}
	assert.ElementsMatch(t,
		[]string{string(domain.MetricCostPerTon), string(domain.MetricPowerCostPerTon)},
		[]string{issues[0].Column, issues[1].Column})
}

func TestQualityScore(t *testing.T) {
	bands := domain.DefaultQualityBands()

	s, ok := services.QualityScore(domain.Values{domain.MetricGradeMn: 70}, bands)
	require.True(t, ok)
	assert.Equal(t, 100.0, s)

	s, _ = services.QualityScore(domain.Values{domain.MetricGradeMn: 72.5}, bands)
	assert.InDelta(t, 50, s, 1e-9)

	// 两项各自加权: MN 50 分 × 0.4, C 100 分 × 0.2
	s, _ = services.QualityScore(domain.Values{domain.MetricGradeMn: 72.5, domain.MetricCarbon: 7}, bands)
	assert.InDelta(t, (50*0.4+100*0.2)/0.6, s, 1e-9)

	s, _ = services.QualityScore(domain.Values{domain.MetricGradeMn: 90}, bands)
	assert.Equal(t, 0.0, s)

	_, ok = services.QualityScore(domain.Values{}, bands)
	assert.False(t, ok)
}

func TestAvailability(t *testing.T) {
	assert.Equal(t, 100.0, services.Availability(0))
	assert.Equal(t, 50.0, services.Availability(720))
	assert.Equal(t, 0.0, services.Availability(2000))
}

func TestAggregate(t *testing.T) {
	d := services.NewDeriver()
	records, _ := d.Derive([]domain.Record{
		{Furnace: "F1", Grade: "HC", Date: day(1), Values: domain.Values{
			domain.MetricProductionQty: 100, domain.MetricTotalCost: 5000000, domain.MetricOreCost: 3000000,
			domain.MetricBreakdownTotal: 60, domain.MetricBreakdownMechanical: 60,
		}},
		{Furnace: "F1", Grade: "MC", Date: day(1), Values: domain.Values{
			domain.MetricProductionQty: 50, domain.MetricTotalCost: 3000000, domain.MetricOreCost: 1000000,
		}},
		{Furnace: "F1", Grade: "HC", Date: day(2), Values: domain.Values{
			domain.MetricProductionQty: 120, domain.MetricTotalCost: 6000000, domain.MetricOreCost: 2000000,
			domain.MetricBreakdownTotal: 120, domain.MetricBreakdownElectrical: 120,
		}},
	}, domain.DefaultTargets())

	s := d.Aggregate(domain.GroupKey{Furnace: "F1"}, records)

	assert.Equal(t, 3, s.Records)
	assert.Equal(t, 2, s.Days)
	assert.Equal(t, day(1), s.FirstDate)
	assert.Equal(t, day(2), s.LastDate)
	assert.Equal(t, 270.0, s.TotalProduction)
	assert.True(t, s.HasTotalCost)
	assert.True(t, s.TotalCost.Equal(decimal.NewFromInt(14000000)))
	assert.Equal(t, 3.0, s.BreakdownHours)
	assert.Equal(t, []float64{150, 120}, s.DailyProduction)

	avg, _ := s.Metric(domain.MetricAvgDailyProduction)
	assert.Equal(t, 135.0, avg)

	// mean-of-ratios, 不是 总成本 / 总产量
	cost, _ := s.Metric(domain.MetricCostPerTon)
	assert.InDelta(t, 53333.33, cost, 0.01)

	cv, ok := s.Metric(domain.MetricCostVariation)
	require.True(t, ok)
	assert.InDelta(t, 10.83, cv, 0.01)

	require.Len(t, s.CostBreakdown, 1)
	assert.Equal(t, domain.MetricOreCost, s.CostBreakdown[0].Component)
	assert.InDelta(t, 42.857, s.CostBreakdown[0].SharePct, 0.001)
	assert.InDelta(t, 22222.22, s.CostBreakdown[0].PerTon, 0.01)

	cause, mins, ok := s.DominantBreakdownCause()
	require.True(t, ok)
	assert.Equal(t, domain.MetricBreakdownElectrical, cause)
	assert.Equal(t, 120.0, mins)

	t.Run("empty group", func(t *testing.T) {
		empty := d.Aggregate(domain.GroupKey{Grade: "HC"}, nil)
		assert.Equal(t, 0, empty.Records)
		assert.Empty(t, empty.Means)
		assert.True(t, empty.TotalCost.IsZero())
	})
}
