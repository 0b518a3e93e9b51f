package domain

import "time"

// Report 一次分析运行的完整输出
type Report struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Furnaces      []Summary    `json:"furnaces"`
	Grades        []Summary    `json:"grades,omitempty"`
	FurnaceGrades []Summary    `json:"furnace_grades,omitempty"`
	Overall       OverallStats `json:"overall"`

	// Findings 全部发现 (已排序)，Insights 为按分类分桶后的视图
	Findings []Finding            `json:"findings"`
	Insights map[Bucket][]Finding `json:"insights"`

	Columns     ColumnResolution `json:"columns"`
	Corrections []UnitCorrection `json:"corrections,omitempty"`
	Issues      []CellIssue      `json:"issues,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// Empty 没有任何有效记录
func (r *Report) Empty() bool {
	return r.Overall.Rows == 0
}

// Furnace 查找某个炉子的汇总
func (r *Report) Furnace(id string) (Summary, bool) {
	for _, s := range r.Furnaces {
		if s.Key.Furnace == id {
			return s, true
		}
	}
	return Summary{}, false
}

// FindingsFor 按规则 ID 过滤
func (r *Report) FindingsFor(ruleID string) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.RuleID == ruleID {
			out = append(out, f)
		}
	}
	return out
}
