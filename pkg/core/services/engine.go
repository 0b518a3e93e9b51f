package services

import (
	"go.uber.org/zap"

	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/ports"
)

// RuleEngine 对每个炉子汇总执行全部洞察规则
type RuleEngine struct {
	rules  []ports.InsightRule
	logger *zap.Logger
}

// NewRuleEngine 创建规则引擎，logger 可为 nil
func NewRuleEngine(rules []ports.InsightRule, logger *zap.Logger) *RuleEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleEngine{rules: rules, logger: logger}
}

// Evaluate 按 subjects 顺序、规则顺序产出发现
// targetsFor 返回该汇总适用的目标 (已应用炉子级覆盖)
func (e *RuleEngine) Evaluate(runID string, subjects []domain.Summary, targetsFor func(domain.Summary) domain.Targets) []domain.Finding {
	var out []domain.Finding
	for _, s := range subjects {
		rc := ports.RuleContext{Targets: targetsFor(s), RunID: runID}
		for _, r := range e.rules {
			ev := r.Evaluate(rc, s)
			switch {
			case ev.Matched:
				out = append(out, ev.Finding)
			case ev.Skipped:
				e.logger.Debug("rule skipped",
					zap.String("run_id", runID),
					zap.String("rule", r.ID()),
					zap.String("scope", s.Key.String()),
					zap.String("reason", ev.Reason))
			}
		}
	}
	return out
}
