package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// missingTokens 视为缺失的单元格内容 (小写)
var missingTokens = map[string]struct{}{
	"":        {},
	"-":       {},
	"--":      {},
	"na":      {},
	"n/a":     {},
	"nan":     {},
	"null":    {},
	"none":    {},
	"#div/0!": {},
	"#n/a":    {},
	"#value!": {},
}

// errMissing 单元格为空，不算解析失败
var errMissing = errors.New("missing")

// ParseNumber 将单元格转为数值
// 去掉千分位、货币符号和百分号；空白或占位符返回 errMissing
func ParseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if _, ok := missingTokens[strings.ToLower(s)]; ok {
		return 0, errMissing
	}

	s = strings.NewReplacer(",", "", "₹", "", "$", "", "%", "", " ", "").Replace(s)
	// 会计格式的负数 (123)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.Trim(s, "()")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number: %q", raw)
	}
	return v, nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"2/1/2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006/01/02",
}

// ParseDate 解析日期单元格，只保留日历日期
// 纯数字按电子表格序列号处理 (1900 日期系统)
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if _, ok := missingTokens[strings.ToLower(s)]; ok {
		return time.Time{}, errMissing
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %q", raw)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
