package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// NotAvailable 缺失指标在文本中的占位
const NotAvailable = "not available"

// FormatMoney 货币格式: ₹60,000
func FormatMoney(v float64) string {
	if !representable(v) {
		return NotAvailable
	}
	return "₹" + humanize.Comma(int64(math.Round(v)))
}

// FormatComma 整数千分位格式: 2,750
func FormatComma(v float64) string {
	if !representable(v) {
		return NotAvailable
	}
	return humanize.Comma(int64(math.Round(v)))
}

// representable 能否无损转为 int64 千分位
func representable(v float64) bool {
	return domain.Finite(v) && math.Abs(v) < math.MaxInt64
}

// FormatFixed 固定小数位
func FormatFixed(prec int, v float64) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

var funcs = template.FuncMap{
	"money": FormatMoney,
	"comma": FormatComma,
	"fixed": FormatFixed,
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"label": func(m domain.Metric) string { return m.Label() },
	"lower": strings.ToLower,
	// metricf 读取汇总指标并格式化，缺失时返回 not available
	"metricf": func(s domain.Summary, name, format string) string {
		v, ok := s.Metric(domain.Metric(name))
		if !ok {
			return NotAvailable
		}
		return fmt.Sprintf(format, v)
	},
	// downtimeLoss 停机分钟折算的日产量损失，缺少日均产量时返回 not available
	"downtimeLoss": func(minutes float64, s domain.Summary) string {
		avg, ok := s.Metric(domain.MetricAvgDailyProduction)
		if !ok {
			return NotAvailable
		}
		return FormatFixed(1, minutes/60*avg/24) + " tons/day"
	},
	"mul": func(a, b float64) float64 { return a * b },
	"div": func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return a / b
	},
	"sub": func(a, b float64) float64 { return a - b },
}

// templateData 模板可用的字段
type templateData struct {
	Scope     string
	Furnace   string
	Grade     string
	Label     string
	Value     float64
	Target    float64
	Threshold float64
	Deviation float64 // |value - target| / target × 100
	Gap       float64 // 不利方向上的差值 (绝对值)
	Impact    float64
	AvgDaily  float64
	Causes    string
	Driver    *domain.CostShare
	Band      domain.QualityBand
	Capacity  domain.CapacityInfo
	Summary   domain.Summary
}

// textTemplates 一条规则解析后的全部模板
type textTemplates struct {
	title, description, impact, recommendation *template.Template
	actions                                    []*template.Template
}

func parseTemplates(spec domain.RuleSpec) (*textTemplates, error) {
	parse := func(field, text string) (*template.Template, error) {
		t, err := template.New(spec.ID + "." + field).Funcs(funcs).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("rule %s: parse %s template: %w", spec.ID, field, err)
		}
		return t, nil
	}

	var tt textTemplates
	var err error
	if tt.title, err = parse("title", spec.Title); err != nil {
		return nil, err
	}
	if tt.description, err = parse("description", spec.Description); err != nil {
		return nil, err
	}
	if tt.impact, err = parse("impact", spec.ImpactText); err != nil {
		return nil, err
	}
	if tt.recommendation, err = parse("recommendation", spec.Recommendation); err != nil {
		return nil, err
	}
	for i, a := range spec.ActionItems {
		t, err := parse(fmt.Sprintf("action%d", i), a)
		if err != nil {
			return nil, err
		}
		tt.actions = append(tt.actions, t)
	}
	return &tt, nil
}

// render 渲染全部文本；模板执行出错时将错误写入文本而不是中断分析
func (tt *textTemplates) render(data templateData, f *domain.Finding) {
	f.Title = execute(tt.title, data)
	f.Description = execute(tt.description, data)
	f.Impact = execute(tt.impact, data)
	f.Recommendation = execute(tt.recommendation, data)
	for _, a := range tt.actions {
		f.ActionItems = append(f.ActionItems, execute(a, data))
	}
}

func execute(t *template.Template, data templateData) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return fmt.Sprintf("<%s: %v>", t.Name(), err)
	}
	return b.String()
}
