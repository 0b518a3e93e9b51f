package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/ports"
)

// Format 输入文件格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// DetectFormat 根据扩展名判断格式
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filename)
}

// ForFormat 返回对应格式的数据源
// sheet 只对 XLSX 有效
func ForFormat(format Format, sheet string) (ports.TableSource, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatCSV:
		return NewCSVSource(), nil
	case FormatJSON:
		return NewJSONSource(), nil
	case FormatXLSX:
		return NewXLSXSource(sheet), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
}
