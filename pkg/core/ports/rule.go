package ports

import "github.com/renjie/furnace-core/pkg/core/domain"

// RuleContext 规则执行时的上下文信息
type RuleContext struct {
	Targets domain.Targets // 已按炉子容量配置覆盖后的目标
	RunID   string
}

// Evaluation 规则评估的结果
type Evaluation struct {
	Finding domain.Finding // 仅 Matched 为 true 时有效
	Matched bool           // 是否触发
	Skipped bool           // 所需指标缺失，未评估
	Reason  string         // 未触发或跳过的原因描述
}

// InsightRule 洞察规则接口
// 这是一个策略接口，每个规则只读取汇总行，不修改任何状态
type InsightRule interface {
	ID() string
	// Evaluate 对一个分组汇总执行规则，触发时产出一条 Finding
	Evaluate(ctx RuleContext, subject domain.Summary) Evaluation
}
