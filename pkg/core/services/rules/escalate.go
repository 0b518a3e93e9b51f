package rules

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// RuleMultipleCritical 合成规则 ID
const RuleMultipleCritical = "multiple_critical"

// MinHighForCritical 同一炉子 high 级发现达到该数量时追加 critical 发现
const MinHighForCritical = 2

// Escalate 返回需要追加的 "multiple critical issues" 发现
// 原有发现保持不变；按炉号排序保证输出稳定
func Escalate(findings []domain.Finding) []domain.Finding {
	high := make(map[string][]domain.Finding)
	for _, f := range findings {
		if f.Severity == domain.SeverityHigh && f.Scoped() && f.Category != domain.CategoryCritical {
			high[f.Furnace] = append(high[f.Furnace], f)
		}
	}

	furnaces := make([]string, 0, len(high))
	for id, fs := range high {
		if len(fs) >= MinHighForCritical {
			furnaces = append(furnaces, id)
		}
	}
	sort.Strings(furnaces)

	var out []domain.Finding
	for _, id := range furnaces {
		fs := high[id]
		n := len(fs)

		var titles []string
		total := decimal.Zero
		var hasImpact bool
		for _, f := range fs {
			titles = append(titles, f.Title)
			if f.FinancialImpact.Valid {
				total = total.Add(f.FinancialImpact.Decimal)
				hasImpact = true
			}
		}

		f := domain.Finding{
			ID:             uuid.NewString(),
			RuleID:         RuleMultipleCritical,
			Category:       domain.CategoryCritical,
			Severity:       domain.SeverityHigh,
			Furnace:        id,
			Title:          fmt.Sprintf("Multiple Critical Issues - %s", id),
			Description:    fmt.Sprintf("%s has %d high-priority issues requiring immediate attention", id, n),
			Impact:         "Combined issues are compounding operational and financial losses",
			Recommendation: fmt.Sprintf("Prioritize a root cause review of all high-severity findings for %s", id),
			DataPoints:     titles,
			ActionItems:    []string{fmt.Sprintf("Address %d identified issues", n)},
		}
		if hasImpact {
			f.FinancialImpact = decimal.NewNullDecimal(total)
		}
		out = append(out, f)
	}
	return out
}
