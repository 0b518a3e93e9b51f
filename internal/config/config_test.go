package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjie/furnace-core/internal/config"
	"github.com/renjie/furnace-core/pkg/core/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "furnace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	assert.Equal(t, domain.DefaultTargets(), cfg.TargetsValue())
	timeout, err := cfg.GetReadTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
targets:
  cost_per_ton: 48000
  specific_power: 2400
furnaces:
  - id: F1
    mva: 33
    design_capacity_mt: 120
    target_cost_mt: 47000
  - id: F2
    mva: 27
rules:
  disabled: [cost_variation_high]
analysis:
  by_grade: false
  concurrency: 2
logging:
  level: debug
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 48000.0, cfg.Targets.CostPerTon)
	assert.Equal(t, 95.0, cfg.Targets.YieldPct, "unset fields keep defaults")
	assert.False(t, cfg.Analysis.ByGrade)
	assert.Equal(t, 2, cfg.Analysis.Concurrency)
	assert.Equal(t, []string{"cost_variation_high"}, cfg.Rules.Disabled)
	assert.Equal(t, "debug", cfg.Logging.Level)

	caps := cfg.Capacities()
	require.Len(t, caps, 2)
	assert.Equal(t, domain.FurnaceCapacity{FurnaceID: "F1", MVA: 33, DesignCapacityMT: 120, TargetCostMT: 47000}, caps[0])

	targets := cfg.TargetsValue()
	assert.Equal(t, 48000.0, targets.CostPerTon)
	assert.Len(t, targets.Quality, 4)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FURNACE_LOG_LEVEL", "warn")
	t.Setenv("FURNACE_HTTP_ADDR", ":9090")
	t.Setenv("FURNACE_TARGET_COST_PER_TON", "52000")
	t.Setenv("FURNACE_CONCURRENCY", "3")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 52000.0, cfg.Targets.CostPerTon)
	assert.Equal(t, 3, cfg.Analysis.Concurrency)

	t.Setenv("FURNACE_CONCURRENCY", "many")
	_, err = config.Load("")
	assert.ErrorContains(t, err, "FURNACE_CONCURRENCY")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed yaml", "targets: [", "failed to parse config"},
		{"negative target", "targets:\n  cost_per_ton: -1\n", "must not be negative"},
		{"zero concurrency", "analysis:\n  concurrency: 0\n", "concurrency"},
		{"duplicate furnace", "furnaces:\n  - id: F1\n  - id: F1\n", "duplicate furnace F1"},
		{"furnace without id", "furnaces:\n  - mva: 30\n", "without id"},
		{"bad timeout", "http:\n  read_timeout: soon\n", "read_timeout"},
		{"band order", `
quality:
  - metric: grade_mn
    target: 70
    optimal: [72, 68]
    critical: [65, 75]
    weight: 1
`, "lower bound above upper bound"},
		{"band nesting", `
quality:
  - metric: grade_mn
    target: 70
    optimal: [60, 72]
    critical: [65, 75]
    weight: 1
`, "inside critical band"},
		{"band weights", `
quality:
  - metric: grade_mn
    target: 70
    optimal: [68, 72]
    critical: [65, 75]
    weight: 0.5
`, "weights must sum to 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Furnaces = []domain.FurnaceCapacity{{FurnaceID: "F1", MVA: 33}}
	cfg.Rules.Disabled = []string{"yield_low"}

	path := filepath.Join(t.TempDir(), "nested", "furnace.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
