package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// ErrRuleNotFound 规则不存在
var ErrRuleNotFound = errors.New("rule not found")

// RuleRepository 基于内存的规则仓储，保持规则的声明顺序
type RuleRepository struct {
	mu    sync.RWMutex
	specs []domain.RuleSpec
}

// NewRuleRepository 以规则目录初始化，disabled 中的规则 ID 会被关闭
func NewRuleRepository(specs []domain.RuleSpec, disabled ...string) *RuleRepository {
	off := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		off[id] = true
	}
	r := &RuleRepository{specs: make([]domain.RuleSpec, len(specs))}
	for i, s := range specs {
		if off[s.ID] {
			s.Enabled = false
		}
		r.specs[i] = s
	}
	return r
}

// ListEnabled 实现 ports.RuleRepository
func (r *RuleRepository) ListEnabled(_ context.Context) ([]domain.RuleSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.RuleSpec
	for _, s := range r.specs {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out, nil
}

// GetByID 实现 ports.RuleRepository
func (r *RuleRepository) GetByID(_ context.Context, id string) (*domain.RuleSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.specs {
		if s.ID == id {
			spec := s
			return &spec, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, id)
}

// SetEnabled 启用或关闭一条规则
func (r *RuleRepository) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.specs {
		if r.specs[i].ID == id {
			r.specs[i].Enabled = enabled
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
}
