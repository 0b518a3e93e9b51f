package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Severity 发现的严重程度，数值越大越严重
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalText 以小写名称序列化
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 支持配置文件中的 "high"/"medium"/"low"
func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeverity 解析严重程度名称 (忽略大小写)
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// Category 发现的业务类别 (由规则决定)
type Category string

const (
	CategoryCost        Category = "cost"
	CategoryPower       Category = "power"
	CategoryRecovery    Category = "recovery"
	CategoryQuality     Category = "quality"
	CategoryCapacity    Category = "capacity"
	CategoryProduction  Category = "production"
	CategoryEfficiency  Category = "efficiency"
	CategoryOperations  Category = "operations"
	CategoryComparative Category = "comparative"
	CategoryGrade       Category = "grade"
	CategoryTrend       Category = "trend"
	CategoryCritical    Category = "critical"
)

// Bucket 报表展示的分类标签
type Bucket string

const (
	BucketCritical   Bucket = "Critical Issues"
	BucketCost       Bucket = "Cost Optimization"
	BucketPower      Bucket = "Power Efficiency"
	BucketRecovery   Bucket = "Material Recovery"
	BucketQuality    Bucket = "Product Quality"
	BucketProduction Bucket = "Production Efficiency"
	BucketOperations Bucket = "Operational Excellence"
	BucketBenchmark  Bucket = "Performance Benchmarking"
	BucketTrend      Bucket = "Trend Analysis"
)

// BucketOrder 分类的展示顺序
func BucketOrder() []Bucket {
	return []Bucket{
		BucketCritical, BucketCost, BucketPower, BucketRecovery, BucketQuality,
		BucketProduction, BucketOperations, BucketBenchmark, BucketTrend,
	}
}

// Bucket 将类别映射到展示分类
func (c Category) Bucket() Bucket {
	switch c {
	case CategoryCritical:
		return BucketCritical
	case CategoryCost, CategoryGrade:
		return BucketCost
	case CategoryPower:
		return BucketPower
	case CategoryRecovery:
		return BucketRecovery
	case CategoryQuality:
		return BucketQuality
	case CategoryProduction, CategoryEfficiency, CategoryCapacity:
		return BucketProduction
	case CategoryComparative:
		return BucketBenchmark
	case CategoryTrend:
		return BucketTrend
	default:
		return BucketOperations
	}
}

// Evidence 触发规则时的数值快照
type Evidence struct {
	Metric       Metric  `json:"metric"`
	Value        float64 `json:"value"`
	Target       float64 `json:"target"`
	Threshold    float64 `json:"threshold"`
	DeviationPct float64 `json:"deviation_pct"` // |value - target| / target * 100
}

// Finding 一条洞察结论
// 每次分析重新生成，产出后不再修改
type Finding struct {
	ID       string   `json:"id"`
	RuleID   string   `json:"rule_id"`
	Category Category `json:"category"`
	Severity Severity `json:"severity"`

	Furnace string `json:"furnace,omitempty"`
	Grade   string `json:"grade,omitempty"`

	Title          string `json:"title"`
	Description    string `json:"description"`
	Impact         string `json:"impact,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`

	Evidence        *Evidence           `json:"evidence,omitempty"`
	FinancialImpact decimal.NullDecimal `json:"financial_impact"`
	DataPoints      []string            `json:"data_points,omitempty"`
	ActionItems     []string            `json:"action_items,omitempty"`
}

// Scoped 是否属于某个炉子
func (f Finding) Scoped() bool {
	return f.Furnace != ""
}

// SortFindings 按严重程度降序，其次财务影响降序，最后标题，保证输出稳定
func SortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		ai, bi := impactOf(a), impactOf(b)
		if !ai.Equal(bi) {
			return ai.GreaterThan(bi)
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.Furnace < b.Furnace
	})
}

func impactOf(f Finding) decimal.Decimal {
	if f.FinancialImpact.Valid {
		return f.FinancialImpact.Decimal
	}
	return decimal.Zero
}

// Categorize 按展示分类分桶，每个桶内按 SortFindings 排序
// 没有发现的分类不会出现在结果中
func Categorize(fs []Finding) map[Bucket][]Finding {
	out := make(map[Bucket][]Finding)
	for _, f := range fs {
		b := f.Category.Bucket()
		out[b] = append(out[b], f)
	}
	for _, list := range out {
		SortFindings(list)
	}
	return out
}
