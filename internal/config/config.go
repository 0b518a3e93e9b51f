// Package config 从 YAML 加载 furnacectl 配置，环境变量可覆盖
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// Config 全部配置
type Config struct {
	Targets  TargetsConfig            `yaml:"targets"`
	Quality  []domain.QualityBand     `yaml:"quality"`
	Furnaces []domain.FurnaceCapacity `yaml:"furnaces,omitempty"`
	Rules    RulesConfig              `yaml:"rules"`
	Analysis AnalysisConfig           `yaml:"analysis"`
	Logging  LoggingConfig            `yaml:"logging"`
	HTTP     HTTPConfig               `yaml:"http"`
}

// TargetsConfig 全厂目标值
type TargetsConfig struct {
	CostPerTon     float64 `yaml:"cost_per_ton"`
	SpecificPower  float64 `yaml:"specific_power"`
	MnRecovery     float64 `yaml:"mn_recovery"`
	SiRecovery     float64 `yaml:"si_recovery"`
	YieldPct       float64 `yaml:"yield_pct"`
	OreEfficiency  float64 `yaml:"ore_efficiency"`
	CokeEfficiency float64 `yaml:"coke_efficiency"`
	LoadFactor     float64 `yaml:"load_factor"`
	PowerFactor    float64 `yaml:"power_factor"`
	Availability   float64 `yaml:"availability"`
	BreakdownMins  float64 `yaml:"breakdown_minutes"`
	PowerTariff    float64 `yaml:"power_tariff"`
}

// RulesConfig 规则开关
type RulesConfig struct {
	Disabled []string `yaml:"disabled,omitempty"`
}

// AnalysisConfig 分析流程参数
type AnalysisConfig struct {
	ByGrade          bool    `yaml:"by_grade"`
	Concurrency      int     `yaml:"concurrency"`
	RescaleThreshold float64 `yaml:"rescale_threshold"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// HTTPConfig serve 命令配置
type HTTPConfig struct {
	Addr        string `yaml:"addr"`
	ReadTimeout string `yaml:"read_timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	t := domain.DefaultTargets()
	return &Config{
		Targets: TargetsConfig{
			CostPerTon:     t.CostPerTon,
			SpecificPower:  t.SpecificPower,
			MnRecovery:     t.MnRecovery,
			SiRecovery:     t.SiRecovery,
			YieldPct:       t.YieldPct,
			OreEfficiency:  t.OreEfficiency,
			CokeEfficiency: t.CokeEfficiency,
			LoadFactor:     t.LoadFactor,
			PowerFactor:    t.PowerFactor,
			Availability:   t.Availability,
			BreakdownMins:  t.BreakdownMins,
			PowerTariff:    t.PowerTariff,
		},
		Quality: domain.DefaultQualityBands(),
		Analysis: AnalysisConfig{
			ByGrade:          true,
			Concurrency:      8,
			RescaleThreshold: t.RescaleThreshold,
		},
		Logging: LoggingConfig{Level: "info"},
		HTTP: HTTPConfig{
			Addr:        ":8080",
			ReadTimeout: "30s",
		},
	}
}

// Load 从 YAML 文件加载配置
// 文件不存在时使用默认值 (环境变量覆盖仍然生效)
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 环境变量覆盖
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save 保存配置到 YAML 文件
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides 应用环境变量覆盖
func (c *Config) applyEnvOverrides() error {
	if lvl := os.Getenv("FURNACE_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if addr := os.Getenv("FURNACE_HTTP_ADDR"); addr != "" {
		c.HTTP.Addr = addr
	}
	if v := os.Getenv("FURNACE_TARGET_COST_PER_TON"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FURNACE_TARGET_COST_PER_TON %q: %w", v, err)
		}
		c.Targets.CostPerTon = f
	}
	if v := os.Getenv("FURNACE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FURNACE_CONCURRENCY %q: %w", v, err)
		}
		c.Analysis.Concurrency = n
	}
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Targets.CostPerTon < 0 || c.Targets.SpecificPower < 0 || c.Targets.PowerTariff < 0 {
		return fmt.Errorf("targets must not be negative")
	}
	if c.Analysis.Concurrency < 1 {
		return fmt.Errorf("analysis.concurrency must be at least 1, got %d", c.Analysis.Concurrency)
	}
	if c.Analysis.RescaleThreshold < 0 {
		return fmt.Errorf("analysis.rescale_threshold must not be negative")
	}

	var weight float64
	for _, b := range c.Quality {
		if b.Optimal[0] > b.Optimal[1] || b.Critical[0] > b.Critical[1] {
			return fmt.Errorf("quality band %s: lower bound above upper bound", b.Metric)
		}
		if b.Optimal[0] < b.Critical[0] || b.Optimal[1] > b.Critical[1] {
			return fmt.Errorf("quality band %s: optimal band must lie inside critical band", b.Metric)
		}
		weight += b.Weight
	}
	if len(c.Quality) > 0 && (weight < 0.999 || weight > 1.001) {
		return fmt.Errorf("quality band weights must sum to 1, got %.3f", weight)
	}

	seen := make(map[string]bool, len(c.Furnaces))
	for _, f := range c.Furnaces {
		if f.FurnaceID == "" {
			return fmt.Errorf("furnace entry without id")
		}
		if seen[f.FurnaceID] {
			return fmt.Errorf("duplicate furnace %s", f.FurnaceID)
		}
		seen[f.FurnaceID] = true
	}

	if _, err := c.GetReadTimeout(); err != nil {
		return err
	}
	return nil
}

// GetReadTimeout 解析 HTTP 读超时
func (c *Config) GetReadTimeout() (time.Duration, error) {
	if c.HTTP.ReadTimeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.HTTP.ReadTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid http.read_timeout %q: %w", c.HTTP.ReadTimeout, err)
	}
	return d, nil
}

// TargetsValue 转换为运行期不可变的领域目标
func (c *Config) TargetsValue() domain.Targets {
	t := domain.Targets{
		CostPerTon:       c.Targets.CostPerTon,
		SpecificPower:    c.Targets.SpecificPower,
		MnRecovery:       c.Targets.MnRecovery,
		SiRecovery:       c.Targets.SiRecovery,
		YieldPct:         c.Targets.YieldPct,
		OreEfficiency:    c.Targets.OreEfficiency,
		CokeEfficiency:   c.Targets.CokeEfficiency,
		LoadFactor:       c.Targets.LoadFactor,
		PowerFactor:      c.Targets.PowerFactor,
		Availability:     c.Targets.Availability,
		BreakdownMins:    c.Targets.BreakdownMins,
		PowerTariff:      c.Targets.PowerTariff,
		RescaleThreshold: c.Analysis.RescaleThreshold,
		Quality:          c.Quality,
	}
	return t.Clone()
}

// Capacities 返回炉子额定参数的副本
func (c *Config) Capacities() []domain.FurnaceCapacity {
	return append([]domain.FurnaceCapacity(nil), c.Furnaces...)
}
