package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/services"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"1,234.5", 1234.5},
		{"₹ 60,000", 60000},
		{"$12", 12},
		{"85%", 85},
		{" 0.81 ", 0.81},
		{"(120)", -120},
		{"1e3", 1000},
	}
	for _, tt := range tests {
		got, err := services.ParseNumber(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	for _, raw := range []string{"", "-", "N/A", "nan", "#DIV/0!", "abc", "12kg", "Inf"} {
		_, err := services.ParseNumber(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{
		"2024-01-15",
		"2024-01-15T10:30:00Z",
		"2024-01-15 23:59:59",
		"15/01/2024",
		"15-01-2024",
		"15-Jan-2024",
		"Jan 15, 2024",
		"45306", // 电子表格序列号
	} {
		got, err := services.ParseDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%s parsed as %s", raw, got)
	}

	_, err := services.ParseDate("yesterday")
	assert.ErrorContains(t, err, "invalid date format")
	_, err = services.ParseDate("")
	assert.Error(t, err)
}

func TestResolveColumns(t *testing.T) {
	t.Run("exact, folded and keyword passes", func(t *testing.T) {
		res := services.ResolveColumns([]string{"furnace no", "Date of Report", "Prod Qty", "Total Cost", "Ore Cost", "Remarks"})

		want := map[string]domain.MatchConfidence{
			"furnace":                          domain.ConfidenceFolded,
			"date":                             domain.ConfidenceKeyword,
			string(domain.MetricProductionQty): domain.ConfidenceKeyword,
			string(domain.MetricTotalCost):     domain.ConfidenceExact,
			string(domain.MetricOreCost):       domain.ConfidenceExact,
		}
		for field, conf := range want {
			m, ok := res.Lookup(field)
			require.True(t, ok, field)
			assert.Equal(t, conf, m.Confidence, field)
		}
		assert.Equal(t, 4, res.Matches["ore_cost"].Index)
		assert.Equal(t, []string{"Remarks"}, res.Unused)
		assert.Contains(t, res.Missing, string(domain.MetricSpecificPower))
		assert.Empty(t, res.Warnings)
	})

	t.Run("ambiguous keyword picks the first column", func(t *testing.T) {
		res := services.ResolveColumns([]string{"Furnace", "Date", "Actual Production Qty", "Total Cost A", "Total Cost B"})
		m, ok := res.Lookup(string(domain.MetricTotalCost))
		require.True(t, ok)
		assert.Equal(t, "Total Cost A", m.Column)
		assert.Equal(t, domain.ConfidenceAmbiguous, m.Confidence)
		assert.Equal(t, []string{"Total Cost A", "Total Cost B"}, m.Candidates)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "ambiguous column for total_cost")
	})

	t.Run("component columns are not taken as totals", func(t *testing.T) {
		res := services.ResolveColumns([]string{"Furnace", "Actual Production Qty", "Power Cost PLC", "Grade MN%"})

		_, ok := res.Lookup(string(domain.MetricTotalCost))
		assert.False(t, ok, "a single cost component is not the total cost")
		_, ok = res.Lookup(string(domain.MetricMnRecovery))
		assert.False(t, ok, "grade MN is chemistry, not recovery")
		assert.Contains(t, res.Missing, string(domain.MetricTotalCost))
		assert.Contains(t, res.Missing, string(domain.MetricMnRecovery))
		assert.ElementsMatch(t, []string{"Power Cost PLC", "Grade MN%"}, res.Unused)
	})

	t.Run("total cost keyword needs both words", func(t *testing.T) {
		res := services.ResolveColumns([]string{"Furnace", "Cost (Total) Rs"})
		m, ok := res.Lookup(string(domain.MetricTotalCost))
		require.True(t, ok)
		assert.Equal(t, "Cost (Total) Rs", m.Column)
		assert.Equal(t, domain.ConfidenceKeyword, m.Confidence)
	})

	t.Run("a column is claimed at most once", func(t *testing.T) {
		res := services.ResolveColumns([]string{"Total Cost"})
		seen := make(map[int]string)
		for field, m := range res.Matches {
			prev, dup := seen[m.Index]
			assert.False(t, dup, "column %d claimed by %s and %s", m.Index, prev, field)
			seen[m.Index] = field
		}
	})
}
