package rules

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/ports"
)

// QualityBandRule 化学成分区间检查
// optimal 区间外为 Spec.Severity (medium)，critical 区间外升级为 high
type QualityBandRule struct {
	Spec      domain.RuleSpec
	templates *textTemplates
}

// NewQualityBandRule 解析模板并创建规则
func NewQualityBandRule(spec domain.RuleSpec) (*QualityBandRule, error) {
	if spec.Metric == "" {
		return nil, fmt.Errorf("rule %s: metric is required", spec.ID)
	}
	tt, err := parseTemplates(spec)
	if err != nil {
		return nil, err
	}
	return &QualityBandRule{Spec: spec, templates: tt}, nil
}

func (r *QualityBandRule) ID() string { return r.Spec.ID }

// Evaluate 区间边界包含在区间内
func (r *QualityBandRule) Evaluate(ctx ports.RuleContext, subject domain.Summary) ports.Evaluation {
	value, ok := subject.Metric(r.Spec.Metric)
	if !ok {
		return ports.Evaluation{Skipped: true, Reason: fmt.Sprintf("metric %s not available", r.Spec.Metric)}
	}
	band, ok := ctx.Targets.Band(r.Spec.Metric)
	if !ok {
		return ports.Evaluation{Skipped: true, Reason: fmt.Sprintf("no quality band for %s", r.Spec.Metric)}
	}
	if within(value, band.Optimal) {
		return ports.Evaluation{Reason: fmt.Sprintf("%s %.4f within optimal band", r.Spec.Metric, value)}
	}

	severity := r.Spec.Severity
	if !within(value, band.Critical) {
		severity = domain.SeverityHigh
	}

	// 偏差取到最近的 optimal 边界的距离
	nearest := band.Optimal[0]
	if value > band.Optimal[1] {
		nearest = band.Optimal[1]
	}
	deviation := math.Abs(value - nearest)

	data := templateData{
		Scope:     subject.Key.String(),
		Furnace:   subject.Key.Furnace,
		Grade:     subject.Key.Grade,
		Label:     r.Spec.Metric.Label(),
		Value:     value,
		Target:    band.Target,
		Threshold: nearest,
		Gap:       deviation,
		Band:      band,
		Summary:   subject,
	}
	if band.Target != 0 {
		data.Deviation = math.Abs(value-band.Target) / band.Target * 100
	}

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
			Target:       band.Target,
			Threshold:    nearest,
			DeviationPct: data.Deviation,
		},
	}
	r.templates.render(data, &f)
	return ports.Evaluation{Finding: f, Matched: true}
}

func within(v float64, band [2]float64) bool {
	return v >= band[0] && v <= band[1]
}
