package domain

import "time"

// UnassignedFurnace 缺少炉号的记录归入此分组
const UnassignedFurnace = "(unassigned)"

// Record 代表一条炉次日报记录 (furnace × date × 可选 grade)
// 数值字段与派生指标均存放在 Values 中，缺失即不存在
type Record struct {
	Row      int       `json:"row"` // 源表行号 (1-based, 不含表头)
	Furnace  string    `json:"furnace"`
	Date     time.Time `json:"date"`
	Grade    string    `json:"grade,omitempty"`
	Incharge string    `json:"incharge,omitempty"`
	Values   Values    `json:"values"`
}

// HasDate 是否带有观测日期
func (r Record) HasDate() bool {
	return !r.Date.IsZero()
}

// Get 读取数值
func (r Record) Get(m Metric) (float64, bool) {
	return r.Values.Get(m)
}

// Clone 深拷贝记录，派生阶段在副本上写入
func (r Record) Clone() Record {
	c := r
	c.Values = r.Values.Clone()
	return c
}

// RecordSet 是 Normalizer 的输出
type RecordSet struct {
	Records     []Record         `json:"records"`
	Resolution  ColumnResolution `json:"resolution"`
	Corrections []UnitCorrection `json:"corrections,omitempty"`
	Issues      []CellIssue      `json:"issues,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
	Skipped     int              `json:"skipped"` // 空白行
	Present     map[Metric]bool  `json:"-"`       // 已解析到列的数值字段
}

// Corrected 字段是否已做过百分比换算
func (s *RecordSet) Corrected(m Metric) bool {
	for _, c := range s.Corrections {
		if c.Metric == m {
			return true
		}
	}
	return false
}

// UnitCorrection 记录一次整列单位换算
type UnitCorrection struct {
	Metric      Metric  `json:"metric"`
	Factor      float64 `json:"factor"`
	ObservedMax float64 `json:"observed_max"`
}

// MatchConfidence 列名匹配置信度
type MatchConfidence string

const (
	ConfidenceExact     MatchConfidence = "exact"
	ConfidenceFolded    MatchConfidence = "folded"    // 忽略大小写/空白
	ConfidenceKeyword   MatchConfidence = "keyword"   // 关键词唯一命中
	ConfidenceAmbiguous MatchConfidence = "ambiguous" // 关键词多处命中，取第一个
)

// ColumnMatch 单个字段的列解析结果
type ColumnMatch struct {
	Field      string          `json:"field"`
	Column     string          `json:"column"`
	Index      int             `json:"index"`
	Confidence MatchConfidence `json:"confidence"`
	Candidates []string        `json:"candidates,omitempty"` // 仅 ambiguous
}

// ColumnResolution 列解析结果: 字段名 -> 匹配
type ColumnResolution struct {
	Matches  map[string]ColumnMatch `json:"matches"`
	Missing  []string               `json:"missing,omitempty"`
	Unused   []string               `json:"unused,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
}

// Lookup 返回字段对应的列
func (c ColumnResolution) Lookup(field string) (ColumnMatch, bool) {
	m, ok := c.Matches[field]
	return m, ok
}
