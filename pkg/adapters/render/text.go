// Package render 将分析报告渲染为终端文本
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/services/rules"
)

const dateLayout = "2006-01-02"

// TextRenderer 纯文本报告
type TextRenderer struct {
	styles Styles
}

// NewTextRenderer 创建渲染器
func NewTextRenderer(styles Styles) *TextRenderer {
	return &TextRenderer{styles: styles}
}

// Render 写出完整报告
func (r *TextRenderer) Render(w io.Writer, report *domain.Report) error {
	var b strings.Builder
	st := r.styles

	b.WriteString(st.Title.Render("Furnace Operations Report"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", st.Muted.Render(fmt.Sprintf("run %s  generated %s", report.RunID, report.GeneratedAt.Format("2006-01-02 15:04"))))
	if report.Source != "" {
		fmt.Fprintf(&b, "%s\n", st.Muted.Render("source "+report.Source))
	}

	if report.Empty() {
		b.WriteString("\nNo records to analyze.\n")
		r.writeWarnings(&b, report)
		_, err := io.WriteString(w, b.String())
		return err
	}

	r.writeOverview(&b, report.Overall)
	r.writeFurnaces(&b, report.Furnaces)
	r.writeInsights(&b, report.Insights)
	r.writeWarnings(&b, report)

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *TextRenderer) writeOverview(b *strings.Builder, o domain.OverallStats) {
	st := r.styles
	fmt.Fprintf(b, "\n%s\n", st.Section.Render("Overview"))
	row := func(label, value string) {
		fmt.Fprintf(b, "  %-22s %s\n", st.Label.Render(label), value)
	}
	row("Records", humanize.Comma(int64(o.Rows)))
	row("Furnaces", strings.Join(o.Furnaces, ", "))
	if len(o.Grades) > 0 {
		row("Grades", strings.Join(o.Grades, ", "))
	}
	if !o.FirstDate.IsZero() {
		row("Period", fmt.Sprintf("%s to %s", o.FirstDate.Format(dateLayout), o.LastDate.Format(dateLayout)))
	}
	row("Total production", rules.FormatComma(o.TotalProduction)+" MT")
	if o.TotalCost.IsPositive() {
		row("Total cost", rules.FormatMoney(o.TotalCost.InexactFloat64()))
	}
	if v, ok := o.Means.Get(domain.MetricCostPerTon); ok {
		row("Avg cost per ton", rules.FormatMoney(v))
	}
	row("Findings", fmt.Sprintf("%d high, %d medium, %d low", o.Findings.High, o.Findings.Medium, o.Findings.Low))
}

func (r *TextRenderer) writeFurnaces(b *strings.Builder, furnaces []domain.Summary) {
	st := r.styles
	fmt.Fprintf(b, "\n%s\n", st.Section.Render("Furnaces"))
	header := fmt.Sprintf("  %-10s %5s %13s %13s %13s %13s %13s %13s", "Furnace", "Days", "Production", "Cost/MT", "kWh/MT", "MN %", "Avail %", "Util %")
	b.WriteString(st.Label.Render(header))
	b.WriteString("\n")
	for _, s := range furnaces {
		fmt.Fprintf(b, "  %-10s %5d %13s %13s %13s %13s %13s %13s\n",
			s.Key.Furnace,
			s.Days,
			rules.FormatComma(s.TotalProduction),
			metric(s, domain.MetricCostPerTon, rules.FormatMoney),
			metric(s, domain.MetricSpecificPower, rules.FormatComma),
			metric(s, domain.MetricMnRecovery, fixed1),
			metric(s, domain.MetricAvailability, fixed1),
			metric(s, domain.MetricCapacityUtilization, fixed1))
	}
}

func (r *TextRenderer) writeInsights(b *strings.Builder, insights map[domain.Bucket][]domain.Finding) {
	st := r.styles
	fmt.Fprintf(b, "\n%s\n", st.Section.Render("Insights"))
	if len(insights) == 0 {
		b.WriteString("  No issues found.\n")
		return
	}
	for _, bucket := range domain.BucketOrder() {
		fs := insights[bucket]
		if len(fs) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n  %s (%d)\n", st.Label.Render(string(bucket)), len(fs))
		for _, f := range fs {
			fmt.Fprintf(b, "  %s %s\n", r.badge(f.Severity), st.Finding.Render(f.Title))
			lines := []string{f.Description}
			if f.Impact != "" {
				lines = append(lines, "Impact: "+f.Impact)
			}
			if f.FinancialImpact.Valid {
				lines = append(lines, "Financial impact: "+rules.FormatMoney(f.FinancialImpact.Decimal.InexactFloat64()))
			}
			if f.Recommendation != "" {
				lines = append(lines, "Recommendation: "+f.Recommendation)
			}
			for _, a := range f.ActionItems {
				lines = append(lines, "- "+a)
			}
			b.WriteString(st.Indented.Render(strings.Join(lines, "\n")))
			b.WriteString("\n")
		}
	}
}

func (r *TextRenderer) writeWarnings(b *strings.Builder, report *domain.Report) {
	if len(report.Warnings) == 0 && len(report.Corrections) == 0 && len(report.Issues) == 0 {
		return
	}
	st := r.styles
	fmt.Fprintf(b, "\n%s\n", st.Section.Render("Data quality"))
	for _, c := range report.Corrections {
		fmt.Fprintf(b, "  %s rescaled from fraction to percent (max %.2f, x%s)\n", c.Metric, c.ObservedMax, humanize.Ftoa(c.Factor))
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(b, "  %s\n", w)
	}
	if n := len(report.Issues); n > 0 {
		fmt.Fprintf(b, "  %s cell issue(s)\n", humanize.Comma(int64(n)))
	}
}

func (r *TextRenderer) badge(s domain.Severity) string {
	label := "[" + strings.ToUpper(s.String()) + "]"
	switch s {
	case domain.SeverityHigh:
		return r.styles.High.Render(label)
	case domain.SeverityMedium:
		return r.styles.Medium.Render(label)
	default:
		return r.styles.Low.Render(label)
	}
}

func metric(s domain.Summary, m domain.Metric, format func(float64) string) string {
	v, ok := s.Metric(m)
	if !ok {
		return rules.NotAvailable
	}
	return format(v)
}

func fixed1(v float64) string {
	return rules.FormatFixed(1, v)
}
