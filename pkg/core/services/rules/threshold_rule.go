package rules

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/ports"
)

// ThresholdRule 实现单指标阈值检查
// 阈值 = target × Factor | target + Offset | Limit，比较为严格不等
type ThresholdRule struct {
	Spec      domain.RuleSpec
	templates *textTemplates
}

// NewThresholdRule 解析模板并创建规则
func NewThresholdRule(spec domain.RuleSpec) (*ThresholdRule, error) {
	if spec.Metric == "" {
		return nil, fmt.Errorf("rule %s: metric is required", spec.ID)
	}
	if spec.Comparison != domain.Above && spec.Comparison != domain.Below {
		return nil, fmt.Errorf("rule %s: invalid comparison %q", spec.ID, spec.Comparison)
	}
	tt, err := parseTemplates(spec)
	if err != nil {
		return nil, err
	}
	return &ThresholdRule{Spec: spec, templates: tt}, nil
}

func (r *ThresholdRule) ID() string { return r.Spec.ID }

// Evaluate 检查汇总指标是否越过阈值
func (r *ThresholdRule) Evaluate(ctx ports.RuleContext, subject domain.Summary) ports.Evaluation {
	value, ok := subject.Metric(r.Spec.Metric)
	if !ok {
		return ports.Evaluation{Skipped: true, Reason: fmt.Sprintf("metric %s not available", r.Spec.Metric)}
	}
	if r.Spec.RequirePositive && value <= 0 {
		return ports.Evaluation{Skipped: true, Reason: fmt.Sprintf("metric %s not positive", r.Spec.Metric)}
	}

	target, hasTarget := ctx.Targets.Lookup(r.Spec.Metric)
	threshold, ok := r.threshold(target, hasTarget)
	if !ok {
		return ports.Evaluation{Skipped: true, Reason: fmt.Sprintf("no target configured for %s", r.Spec.Metric)}
	}

	if !Breaches(value, threshold, r.Spec.Comparison) {
		return ports.Evaluation{Reason: fmt.Sprintf("%s %.4f within threshold %s", r.Spec.Metric, value, threshold)}
	}

	severity := r.Spec.Severity
	if r.Spec.EscalateFactor > 0 && hasTarget {
		edge := decimal.NewFromFloat(target).Mul(decimal.NewFromFloat(r.Spec.EscalateFactor))
		if Breaches(value, edge, r.Spec.Comparison) {
			severity = domain.SeverityHigh
		}
	}

	thr, _ := threshold.Float64()
	data := r.data(ctx, subject, value, target, thr)
	f := domain.Finding{
		ID:       uuid.NewString(),
		RuleID:   r.Spec.ID,
		Category: r.Spec.Category,
		Severity: severity,
		Furnace:  subject.Key.Furnace,
		Grade:    subject.Key.Grade,
		Evidence: &domain.Evidence{
			Metric:       r.Spec.Metric,
			Value:        value,
			Target:       target,
			Threshold:    thr,
			DeviationPct: data.Deviation,
		},
	}
	if impact, ok := estimateImpact(r.Spec.Impact, ctx.Targets, subject, value, target); ok && domain.Finite(impact) {
		data.Impact = impact
		f.FinancialImpact = decimal.NewNullDecimal(decimal.NewFromFloat(impact).Round(0))
	}
	r.templates.render(data, &f)
	return ports.Evaluation{Finding: f, Matched: true}
}

// threshold 构造阈值 (decimal 保证边界精确，例如 50000 × 1.15 = 57500)
func (r *ThresholdRule) threshold(target float64, hasTarget bool) (decimal.Decimal, bool) {
	switch r.Spec.Mode {
	case domain.BandRelative:
		if !hasTarget {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(target).Mul(decimal.NewFromFloat(r.Spec.Factor)), true
	case domain.BandOffset:
		if !hasTarget {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(target).Add(decimal.NewFromFloat(r.Spec.Offset)), true
	default:
		return decimal.NewFromFloat(r.Spec.Limit), true
	}
}

func (r *ThresholdRule) data(ctx ports.RuleContext, s domain.Summary, value, target, threshold float64) templateData {
	d := templateData{
		Scope:     s.Key.String(),
		Furnace:   s.Key.Furnace,
		Grade:     s.Key.Grade,
		Label:     r.Spec.Metric.Label(),
		Value:     value,
		Target:    target,
		Threshold: threshold,
		Summary:   s,
		Causes:    causesFor(r.Spec.Metric, s, ctx.Targets),
	}
	if target > 0 {
		if dev := math.Abs(value-target) / target * 100; domain.Finite(dev) {
			d.Deviation = dev
		}
	}
	if r.Spec.Comparison == domain.Above {
		d.Gap = value - target
	} else {
		d.Gap = target - value
	}
	d.AvgDaily, _ = s.Metric(domain.MetricAvgDailyProduction)
	if s.Capacity != nil {
		d.Capacity = *s.Capacity
	}
	if drv, ok := s.TopCostDriver(); ok {
		d.Driver = &drv
	}
	return d
}

// Breaches 严格比较: Above 为 value > threshold，Below 为 value < threshold
func Breaches(value float64, threshold decimal.Decimal, cmp domain.Comparison) bool {
	v := decimal.NewFromFloat(value)
	if cmp == domain.Above {
		return v.GreaterThan(threshold)
	}
	return v.LessThan(threshold)
}
