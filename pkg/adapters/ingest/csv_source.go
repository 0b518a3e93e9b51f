package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// checkEvery 每读取多少行检查一次 ctx
const checkEvery = 100

// CSVSource 实现 ports.TableSource
// 第一行为表头，其余行原样保留为字符串单元格
type CSVSource struct {
	Comma rune // 默认 ','
}

// NewCSVSource 创建 CSV 数据源
func NewCSVSource() *CSVSource {
	return &CSVSource{Comma: ','}
}

// Read 逐行读取 CSV 流
func (c *CSVSource) Read(ctx context.Context, stream io.Reader) (*domain.Table, *domain.IngestionResult, error) {
	reader := csv.NewReader(stream)
	// 允许变长字段，避免因某些行缺少非必填字段报错
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if c.Comma != 0 {
		reader.Comma = c.Comma
	}

	result := &domain.IngestionResult{}
	table := &domain.Table{}

	// 1. Read Header
	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return table, result, nil
		}
		return nil, nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	table.Columns = headers

	// 2. Read Records
	for {
		if result.Total%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, result, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.Total++
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("csv read error at line %d: %v", result.Total+1, err)) // +1 for header
			continue
		}
		if blank(record) {
			result.Skipped++
			continue
		}

		table.Rows = append(table.Rows, record)
		result.Success++
	}
	return table, result, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
