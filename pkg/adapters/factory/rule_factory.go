package factory

import (
	"fmt"
	"sync"

	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/ports"
	"github.com/renjie/furnace-core/pkg/core/services/rules"
)

// RuleBuilder defines the contract for creating a specific rule logic
type RuleBuilder func(spec domain.RuleSpec) (ports.InsightRule, error)

// RuleFactory is the registry for all available rule types
// Each Analyzer owns its own factory; there is no process-wide instance.
type RuleFactory struct {
	builders map[domain.RuleType]RuleBuilder
	mu       sync.RWMutex
}

// NewRuleFactory creates a new RuleFactory instance with built-in rules registered
func NewRuleFactory() *RuleFactory {
	f := &RuleFactory{
		builders: make(map[domain.RuleType]RuleBuilder),
	}
	f.Register(domain.RuleTypeThreshold, buildThresholdRule)
	f.Register(domain.RuleTypeQualityBand, buildQualityBandRule)
	return f
}

// Register adds or overrides a rule builder
func (f *RuleFactory) Register(ruleType domain.RuleType, builder RuleBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[ruleType] = builder
}

// CreateRule instantiates a rule strategy based on configuration
func (f *RuleFactory) CreateRule(spec domain.RuleSpec) (ports.InsightRule, error) {
	f.mu.RLock()
	builder, ok := f.builders[spec.Type]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("rule %s: %w: %q", spec.ID, domain.ErrUnknownRuleType, spec.Type)
	}
	return builder(spec)
}

// BuildAll converts every enabled spec; the first failing spec aborts the build
func (f *RuleFactory) BuildAll(specs []domain.RuleSpec) ([]ports.InsightRule, error) {
	out := make([]ports.InsightRule, 0, len(specs))
	for _, spec := range specs {
		if !spec.Enabled {
			continue
		}
		r, err := f.CreateRule(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func buildThresholdRule(spec domain.RuleSpec) (ports.InsightRule, error) {
	return rules.NewThresholdRule(spec)
}

func buildQualityBandRule(spec domain.RuleSpec) (ports.InsightRule, error) {
	return rules.NewQualityBandRule(spec)
}
