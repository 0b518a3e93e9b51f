package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// DefaultRescaleThreshold 百分比字段整列最大值低于该值时视为 0-1 小数
const DefaultRescaleThreshold = 10

// TableNormalizer 将原始表格转换为强类型记录集
// 列解析 -> 单元格类型转换 -> 缺失值策略 -> 整列单位修正
type TableNormalizer struct {
	rescaleThreshold float64
	logger           *zap.Logger
}

// NormalizerOption 定义配置选项函数
type NormalizerOption func(*TableNormalizer)

// WithRescaleThreshold 设置百分比换算阈值 (默认 10)
func WithRescaleThreshold(threshold float64) NormalizerOption {
	return func(n *TableNormalizer) {
		if threshold > 0 {
			n.rescaleThreshold = threshold
		}
	}
}

// WithNormalizerLogger 设置日志
func WithNormalizerLogger(logger *zap.Logger) NormalizerOption {
	return func(n *TableNormalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNormalizer 创建规范化器
func NewNormalizer(opts ...NormalizerOption) *TableNormalizer {
	n := &TableNormalizer{
		rescaleThreshold: DefaultRescaleThreshold,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize 实现 ports.Normalizer
func (n *TableNormalizer) Normalize(ctx context.Context, table *domain.Table) (*domain.RecordSet, error) {
	if table == nil || len(table.Columns) == 0 {
		return nil, domain.ErrNotTabular
	}

	res := ResolveColumns(table.Columns)
	set := &domain.RecordSet{
		Resolution: res,
		Present:    make(map[domain.Metric]bool),
		Warnings:   append([]string(nil), res.Warnings...),
	}
	for _, w := range res.Warnings {
		n.logger.Warn("column resolution", zap.String("warning", w))
	}
	// 缺失时需要提醒调用方的字段
	for _, f := range []string{"furnace", "date", string(domain.MetricProductionQty), string(domain.MetricTotalCost)} {
		if _, ok := res.Lookup(f); !ok {
			msg := fmt.Sprintf("column not found: %s", f)
			set.Warnings = append(set.Warnings, msg)
			n.logger.Warn("missing column", zap.String("field", f))
		}
	}

	specs := domain.Fields()
	var numeric []domain.FieldSpec
	for _, spec := range specs {
		if spec.Kind != domain.KindNumber {
			continue
		}
		if _, ok := res.Lookup(spec.Name); ok {
			numeric = append(numeric, spec)
			set.Present[spec.Metric] = true
		}
	}

	_, hasTotal := res.Lookup(string(domain.MetricBreakdownTotal))
	var hasCause bool
	for _, m := range domain.BreakdownCauses() {
		hasCause = hasCause || set.Present[m]
	}
	if !hasTotal && hasCause {
		set.Present[domain.MetricBreakdownTotal] = true
	}

	for row := range table.Rows {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if table.BlankRow(row) {
			set.Skipped++
			continue
		}

		rec := domain.Record{Row: row + 1, Values: make(domain.Values, len(numeric)+1)}
		n.readIdentity(table, row, res, &rec, set)

		for _, spec := range numeric {
			m := res.Matches[spec.Name]
			raw := table.Cell(row, m.Index)
			v, ok := n.readNumber(raw, spec, row+1, m.Column, set)
			if !ok {
				if spec.ZeroFill {
					rec.Values[spec.Metric] = 0
				}
				continue
			}
			rec.Values[spec.Metric] = v
		}

		if !hasTotal && hasCause {
			var total float64
			for _, c := range domain.BreakdownCauses() {
				total += rec.Values[c]
			}
			rec.Values[domain.MetricBreakdownTotal] = total
		}
		clampBreakdown(&rec, res, set)

		set.Records = append(set.Records, rec)
	}

	// 单位修正必须在任何聚合之前完成
	for _, c := range CorrectUnits(set, n.rescaleThreshold) {
		n.logger.Debug("percent field rescaled",
			zap.String("metric", string(c.Metric)),
			zap.Float64("observed_max", c.ObservedMax))
	}

	n.logger.Debug("table normalized",
		zap.Int("rows", len(table.Rows)),
		zap.Int("records", len(set.Records)),
		zap.Int("skipped", set.Skipped),
		zap.Int("issues", len(set.Issues)))
	return set, nil
}

func (n *TableNormalizer) readIdentity(table *domain.Table, row int, res domain.ColumnResolution, rec *domain.Record, set *domain.RecordSet) {
	cell := func(field string) (string, string, bool) {
		m, ok := res.Lookup(field)
		if !ok {
			return "", "", false
		}
		return strings.TrimSpace(table.Cell(row, m.Index)), m.Column, true
	}

	rec.Furnace = domain.UnassignedFurnace
	if v, _, ok := cell("furnace"); ok && v != "" {
		rec.Furnace = v
	}
	if v, col, ok := cell("date"); ok {
		t, err := ParseDate(v)
		switch {
		case err == nil:
			rec.Date = t
		case !errors.Is(err, errMissing):
			set.Issues = append(set.Issues, domain.CellIssue{
				Row: row + 1, Column: col, Raw: v, Kind: domain.IssueUnparseable, Reason: err.Error(),
			})
		}
	}
	if v, _, ok := cell("grade"); ok {
		rec.Grade = v
	}
	if v, _, ok := cell("incharge"); ok {
		rec.Incharge = v
	}
}

// clampBreakdown 停机总分钟不能超过一天，超出部分截断并记录 CellIssue
func clampBreakdown(rec *domain.Record, res domain.ColumnResolution, set *domain.RecordSet) {
	total, ok := rec.Values[domain.MetricBreakdownTotal]
	if !ok || total <= MinutesPerDay {
		return
	}
	column := string(domain.MetricBreakdownTotal)
	if m, ok := res.Lookup(column); ok {
		column = m.Column
	}
	set.Issues = append(set.Issues, domain.CellIssue{
		Row:    rec.Row,
		Column: column,
		Raw:    strconv.FormatFloat(total, 'f', -1, 64),
		Kind:   domain.IssueClamped,
		Reason: fmt.Sprintf("breakdown of %s minutes exceeds %d minutes per day", strconv.FormatFloat(total, 'f', -1, 64), MinutesPerDay),
	})
	rec.Values[domain.MetricBreakdownTotal] = MinutesPerDay
}

// readNumber 解析数值单元格，失败记录 CellIssue 并返回 false
func (n *TableNormalizer) readNumber(raw string, spec domain.FieldSpec, row int, column string, set *domain.RecordSet) (float64, bool) {
	v, err := ParseNumber(raw)
	if err != nil {
		if !errors.Is(err, errMissing) {
			set.Issues = append(set.Issues, domain.CellIssue{
				Row: row, Column: column, Raw: raw, Kind: domain.IssueUnparseable, Reason: err.Error(),
			})
		}
		return 0, false
	}
	if spec.NonNegative && v < 0 {
		set.Issues = append(set.Issues, domain.CellIssue{
			Row: row, Column: column, Raw: raw, Kind: domain.IssueOutOfRange,
			Reason: fmt.Sprintf("value %.2f below 0", v),
		})
		return 0, false
	}
	return v, true
}

// NeedsPercentRescale 判断一整列是否以 0-1 小数表示百分比
// 条件: 列中有正值，且观测最大值 < threshold
func NeedsPercentRescale(values []float64, threshold float64) bool {
	var peak float64
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	return peak > 0 && peak < threshold
}

// RescalePercent 将记录中某个字段整列乘以 100
func RescalePercent(records []domain.Record, m domain.Metric) {
	for i := range records {
		if v, ok := records[i].Values[m]; ok {
			records[i].Values[m] = v * 100
		}
	}
}

// CorrectUnits 对 Percent 字段执行整列换算
// 已在 set.Corrections 中的字段不会再次判断，因此重复调用是幂等的
// 返回本次新增的修正
func CorrectUnits(set *domain.RecordSet, threshold float64) []domain.UnitCorrection {
	var applied []domain.UnitCorrection
	for _, spec := range domain.Fields() {
		if !spec.Percent || !set.Present[spec.Metric] || set.Corrected(spec.Metric) {
			continue
		}

		var values []float64
		var observed float64
		for _, r := range set.Records {
			if v, ok := r.Values[spec.Metric]; ok {
				values = append(values, v)
				if v > observed {
					observed = v
				}
			}
		}
		if !NeedsPercentRescale(values, threshold) {
			continue
		}

		RescalePercent(set.Records, spec.Metric)
		c := domain.UnitCorrection{Metric: spec.Metric, Factor: 100, ObservedMax: observed}
		set.Corrections = append(set.Corrections, c)
		applied = append(applied, c)
	}
	return applied
}
