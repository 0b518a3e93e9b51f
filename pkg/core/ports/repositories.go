package ports

import (
	"context"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// CapacityRepository 炉子额定参数仓储接口
// 职责: 为 Capacity Model 提供外部配置的 MVA / 设计产能 / 目标值
type CapacityRepository interface {
	// Get 获取指定炉子的参数，未配置时 ok 为 false
	Get(ctx context.Context, furnaceID string) (capacity domain.FurnaceCapacity, ok bool, err error)

	// List 获取全部已配置的炉子
	List(ctx context.Context) ([]domain.FurnaceCapacity, error)
}

// RuleRepository 规则仓储接口
// 职责: 管理洞察规则的声明式配置，Analyzer 运行时通过此接口加载规则
type RuleRepository interface {
	// ListEnabled 获取所有启用的规则
	ListEnabled(ctx context.Context) ([]domain.RuleSpec, error)

	// GetByID 获取指定规则
	GetByID(ctx context.Context, id string) (*domain.RuleSpec, error)
}
