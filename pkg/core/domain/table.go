package domain

import "strings"

// Table 通用的命名列表格 (原始字符串单元格)
// 由 ingest 适配器产生，Normalizer 消费
type Table struct {
	Name    string     `json:"name,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Cell 返回第 row 行第 col 列，越界返回空串
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// BlankRow 整行是否为空白
func (t *Table) BlankRow(row int) bool {
	for _, c := range t.Rows[row] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// IngestionResult 导入结果统计
type IngestionResult struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"` // 空行或其他原因跳过
	Errors  []string `json:"errors"`  // 具体的错误信息
}
