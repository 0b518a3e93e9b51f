package domain

import (
	"sort"
	"time"
)

// DatedValue 带日期的观测值
type DatedValue struct {
	Date  time.Time
	Value float64
}

// WindowAligner 将按日期排序的序列切分为相邻的两个等长窗口
// 用于 "最近 N 条 vs 之前 N 条" 的趋势比较
type WindowAligner struct {
	Size int
}

// NewWindowAligner 创建窗口切分器
func NewWindowAligner(size int) *WindowAligner {
	return &WindowAligner{Size: size}
}

// Split 返回最近 Size 个点和紧邻其前的 Size 个点
// 输入不要求有序，不会修改入参；点数不足 2×Size 时 ok 为 false
func (a *WindowAligner) Split(points []DatedValue) (recent, previous []DatedValue, ok bool) {
	if a.Size <= 0 || len(points) < 2*a.Size {
		return nil, nil, false
	}

	sorted := append([]DatedValue(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	n := len(sorted)
	recent = sorted[n-a.Size:]
	previous = sorted[n-2*a.Size : n-a.Size]
	return recent, previous, true
}

// MeanOf 窗口均值
func MeanOf(points []DatedValue) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Value
	}
	return sum / float64(len(points))
}
