package domain

// RuleType 规则类型，对应工厂中的构建器
type RuleType string

const (
	RuleTypeThreshold   RuleType = "THRESHOLD"    // 单指标与目标/阈值比较
	RuleTypeQualityBand RuleType = "QUALITY_BAND" // 化学成分区间 (optimal/critical)
)

// Comparison 比较方向
type Comparison string

const (
	Above Comparison = "ABOVE" // value > threshold
	Below Comparison = "BELOW" // value < threshold
)

// BandMode 阈值的构造方式
type BandMode string

const (
	BandRelative BandMode = "RELATIVE" // target × Factor
	BandOffset   BandMode = "OFFSET"   // target + Offset
	BandAbsolute BandMode = "ABSOLUTE" // Limit
)

// ImpactKind 财务影响的估算方式
type ImpactKind string

const (
	ImpactNone          ImpactKind = ""
	ImpactExcessCost    ImpactKind = "EXCESS_COST"    // (value - target) × 总产量
	ImpactExtraPower    ImpactKind = "EXTRA_POWER"    // (value - target) × 总产量 × 电价
	ImpactUnderCapacity ImpactKind = "UNDER_CAPACITY" // (设计产能 - 日均产量) × 目标吨成本 × 30
)

// RuleSpec 声明式规则定义
// 文本字段为 text/template 模板，由规则工厂在构建时解析
type RuleSpec struct {
	ID       string   `yaml:"id" json:"id"`
	Type     RuleType `yaml:"type" json:"type"`
	Category Category `yaml:"category" json:"category"`
	Severity Severity `yaml:"severity" json:"severity"`
	Enabled  bool     `yaml:"enabled" json:"enabled"`

	Metric     Metric     `yaml:"metric" json:"metric"`
	Comparison Comparison `yaml:"comparison" json:"comparison"`
	Mode       BandMode   `yaml:"mode" json:"mode"`
	Factor     float64    `yaml:"factor,omitempty" json:"factor,omitempty"`
	Offset     float64    `yaml:"offset,omitempty" json:"offset,omitempty"`
	Limit      float64    `yaml:"limit,omitempty" json:"limit,omitempty"`

	// EscalateFactor 非 0 时，超过 target × EscalateFactor 升级为 high
	EscalateFactor float64 `yaml:"escalate_factor,omitempty" json:"escalate_factor,omitempty"`
	// RequirePositive 指标不大于 0 时不评估 (如焦炭效率)
	RequirePositive bool `yaml:"require_positive,omitempty" json:"require_positive,omitempty"`

	Impact ImpactKind `yaml:"impact,omitempty" json:"impact,omitempty"`

	Title          string   `yaml:"title" json:"title"`
	Description    string   `yaml:"description" json:"description"`
	ImpactText     string   `yaml:"impact_text,omitempty" json:"impact_text,omitempty"`
	Recommendation string   `yaml:"recommendation,omitempty" json:"recommendation,omitempty"`
	ActionItems    []string `yaml:"action_items,omitempty" json:"action_items,omitempty"`
}
