package ports

import (
	"context"
	"io"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// TableSource 表格数据源 (CSV / JSON / XLSX)
// 只负责把字节流转成通用命名列表格，不做列名识别
type TableSource interface {
	Read(ctx context.Context, r io.Reader) (*domain.Table, *domain.IngestionResult, error)
}

// Normalizer 将原始表格规范化为强类型记录集
// 只有结构性错误 (非表格) 会返回 error
type Normalizer interface {
	Normalize(ctx context.Context, table *domain.Table) (*domain.RecordSet, error)
}

// MetricDeriver 计算记录级派生指标以及分组聚合
type MetricDeriver interface {
	// Derive 返回带派生指标的新记录，不修改入参
	// 溢出的派生值被删除并以 CellIssue 报告
	Derive(records []domain.Record, targets domain.Targets) ([]domain.Record, []domain.CellIssue)
	// Aggregate 对一个分组的记录做求和/均值聚合
	Aggregate(key domain.GroupKey, records []domain.Record) domain.Summary
}

// CapacityModel 设计产能与产能利用率
type CapacityModel interface {
	Resolve(capacity domain.FurnaceCapacity, dailyProduction []float64, avgDaily float64) domain.CapacityInfo
}

// Ranker 跨炉 / 跨 grade 的对标与趋势检测
type Ranker interface {
	Compare(furnaces []domain.Summary) []domain.Finding
	CompareGrades(grades []domain.Summary) []domain.Finding
	Trends(records []domain.Record) []domain.Finding
	// Anomalies 单炉吨成本的离群日 (z-score)
	Anomalies(records []domain.Record) []domain.Finding
	// CostDriver 全厂占比最大的成本项
	CostDriver(furnaces []domain.Summary) []domain.Finding
}

// FurnaceAnalyzer 分析管线入口
type FurnaceAnalyzer interface {
	Analyze(ctx context.Context, table *domain.Table) (*domain.Report, error)
}
