package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/renjie/furnace-core/pkg/core/ports"
	"github.com/renjie/furnace-core/pkg/core/services/rules"
)

// loadRules 决定本次运行使用的规则
// 优先级: WithRules 显式指定 > RuleRepository > 内置规则目录
func (a *Analyzer) loadRules(ctx context.Context) ([]ports.InsightRule, error) {
	if len(a.rules) > 0 {
		return a.rules, nil
	}

	specs := rules.DefaultCatalog()
	if a.ruleRepo != nil {
		var err error
		specs, err = a.ruleRepo.ListEnabled(ctx)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
	}

	built, err := a.factory.BuildAll(specs)
	if err != nil {
		// 严格模式: 规则配置错误直接失败，而不是静默少跑规则
		return nil, fmt.Errorf("build rules: %w", err)
	}
	a.logger.Debug("rules loaded", zap.Int("specs", len(specs)), zap.Int("rules", len(built)))
	return built, nil
}
