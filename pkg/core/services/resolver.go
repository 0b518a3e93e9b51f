package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// ResolveColumns 将原始列名映射到字段目录
// 1. 精确匹配 (别名或规范名)
// 2. 忽略大小写与多余空白
// 3. 关键词匹配 (关键词内各词须同时出现)，多列命中时取第一列并给出 ambiguous 警告
// 已被前一轮认领的列不会被再次使用；结果永远不会是错误
func ResolveColumns(columns []string) domain.ColumnResolution {
	specs := domain.Fields()
	res := domain.ColumnResolution{Matches: make(map[string]domain.ColumnMatch)}
	claimed := make(map[int]bool)

	folded := make([]string, len(columns))
	for i, c := range columns {
		folded[i] = fold(c)
	}

	claim := func(spec domain.FieldSpec, idx int, conf domain.MatchConfidence, candidates []string) {
		claimed[idx] = true
		res.Matches[spec.Name] = domain.ColumnMatch{
			Field:      spec.Name,
			Column:     columns[idx],
			Index:      idx,
			Confidence: conf,
			Candidates: candidates,
		}
	}

	// Pass 1: exact
	for _, spec := range specs {
		names := append([]string{spec.Name}, spec.Aliases...)
		if idx := findColumn(columns, claimed, func(i int) bool {
			return slices.Contains(names, strings.TrimSpace(columns[i]))
		}); idx >= 0 {
			claim(spec, idx, domain.ConfidenceExact, nil)
		}
	}

	// Pass 2: case / whitespace folded
	for _, spec := range specs {
		if _, ok := res.Matches[spec.Name]; ok {
			continue
		}
		names := []string{fold(spec.Name)}
		for _, a := range spec.Aliases {
			names = append(names, fold(a))
		}
		if idx := findColumn(columns, claimed, func(i int) bool {
			return slices.Contains(names, folded[i])
		}); idx >= 0 {
			claim(spec, idx, domain.ConfidenceFolded, nil)
		}
	}

	// Pass 3: keywords
	for _, spec := range specs {
		if _, ok := res.Matches[spec.Name]; ok || len(spec.Keywords) == 0 {
			continue
		}
		var hits []int
		for i := range columns {
			if claimed[i] {
				continue
			}
			for _, kw := range spec.Keywords {
				if containsAll(folded[i], kw) {
					hits = append(hits, i)
					break
				}
			}
		}
		switch {
		case len(hits) == 1:
			claim(spec, hits[0], domain.ConfidenceKeyword, nil)
		case len(hits) > 1:
			candidates := make([]string, len(hits))
			for j, h := range hits {
				candidates[j] = columns[h]
			}
			claim(spec, hits[0], domain.ConfidenceAmbiguous, candidates)
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"ambiguous column for %s: picked %q from %s", spec.Name, columns[hits[0]], quoteAll(candidates)))
		}
	}

	for _, spec := range specs {
		if _, ok := res.Matches[spec.Name]; !ok {
			res.Missing = append(res.Missing, spec.Name)
		}
	}
	for i, c := range columns {
		if !claimed[i] && strings.TrimSpace(c) != "" {
			res.Unused = append(res.Unused, c)
		}
	}
	return res
}

func findColumn(columns []string, claimed map[int]bool, match func(int) bool) int {
	for i := range columns {
		if !claimed[i] && match(i) {
			return i
		}
	}
	return -1
}

// containsAll 关键词中的每个词都出现在列名中
func containsAll(column, keyword string) bool {
	terms := strings.Fields(keyword)
	for _, t := range terms {
		if !strings.Contains(column, t) {
			return false
		}
	}
	return len(terms) > 0
}

func fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(q, ", ") + "]"
}
