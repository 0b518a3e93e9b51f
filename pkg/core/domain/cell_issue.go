package domain

// IssueKind 非致命数据问题分类
type IssueKind string

const (
	IssueUnparseable IssueKind = "UNPARSEABLE_VALUE" // 单元格无法转换
	IssueOutOfRange  IssueKind = "OUT_OF_RANGE"      // 超出字段取值范围 (如负产量)
	IssueClamped     IssueKind = "CLAMPED"           // 派生值被截断 (如停机超过 1440 分钟)
)

// CellIssue 代表一个被置为缺失 (或被修正) 的单元格
// 数据不会因此被整行丢弃，仅记录原因供调用方展示
type CellIssue struct {
	Row    int       `json:"row"`
	Column string    `json:"column"`
	Raw    string    `json:"raw"`
	Kind   IssueKind `json:"kind"`
	Reason string    `json:"reason"`
}
