package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// CapacityRepository 基于内存的炉子额定参数仓储
type CapacityRepository struct {
	mu    sync.RWMutex
	items map[string]domain.FurnaceCapacity
}

// NewCapacityRepository 用配置中的炉子列表初始化
func NewCapacityRepository(items ...domain.FurnaceCapacity) *CapacityRepository {
	r := &CapacityRepository{items: make(map[string]domain.FurnaceCapacity, len(items))}
	for _, c := range items {
		r.items[c.FurnaceID] = c
	}
	return r
}

// Get 实现 ports.CapacityRepository
func (r *CapacityRepository) Get(_ context.Context, furnaceID string) (domain.FurnaceCapacity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[furnaceID]
	return c, ok, nil
}

// List 按炉号排序返回
func (r *CapacityRepository) List(_ context.Context) ([]domain.FurnaceCapacity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.FurnaceCapacity, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FurnaceID < out[j].FurnaceID })
	return out, nil
}

// Put 新增或覆盖
func (r *CapacityRepository) Put(c domain.FurnaceCapacity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.FurnaceID] = c
}
