package domain

import "errors"

var (
	// ErrNotTabular 输入没有任何列，无法作为表格处理
	ErrNotTabular = errors.New("input is not tabular: no header columns")
	// ErrUnsupportedFormat 未知的输入格式
	ErrUnsupportedFormat = errors.New("unsupported input format")
	// ErrUnknownRuleType 规则工厂中没有对应的构建器
	ErrUnknownRuleType = errors.New("no builder registered for rule type")
)
