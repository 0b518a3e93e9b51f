package domain

import "context"

// RunContext 携带一次分析运行的上下文信息
type RunContext struct {
	RunID    string
	Source   string // 文件名或上传来源
	Operator string // 操作人 (SYSTEM 或 具体User)
}

type runContextKey struct{}

// NewContext returns a new Context that carries the RunContext value.
func NewContext(ctx context.Context, info RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, info)
}

// FromContext returns the RunContext value stored in ctx, if any.
func FromContext(ctx context.Context) (RunContext, bool) {
	info, ok := ctx.Value(runContextKey{}).(RunContext)
	return info, ok
}
