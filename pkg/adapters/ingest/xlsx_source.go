package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// XLSXSource 实现 ports.TableSource
// 读取一个工作表 (默认第一个)，第一行为表头
// 使用原始单元格值，日期以 Excel 序列号形式交给 Normalizer 解析
type XLSXSource struct {
	Sheet string
}

// NewXLSXSource 创建 XLSX 数据源，sheet 为空时读取第一个工作表
func NewXLSXSource(sheet string) *XLSXSource {
	return &XLSXSource{Sheet: sheet}
}

// Read 实现 ports.TableSource
func (x *XLSXSource) Read(ctx context.Context, stream io.Reader) (*domain.Table, *domain.IngestionResult, error) {
	f, err := excelize.OpenReader(stream, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("workbook has no sheets: %w", domain.ErrNotTabular)
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("open sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	result := &domain.IngestionResult{}
	table := &domain.Table{Name: sheet}
	header := true
	for rows.Next() {
		if result.Total%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, result, err
			}
		}

		cells, err := rows.Columns()
		if err != nil {
			result.Total++
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("sheet %s row %d: %v", sheet, result.Total+1, err))
			continue
		}
		if header {
			table.Columns = cells
			header = false
			continue
		}

		result.Total++
		if blank(cells) {
			result.Skipped++
			continue
		}
		table.Rows = append(table.Rows, cells)
		result.Success++
	}
	if err := rows.Error(); err != nil {
		return nil, result, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return table, result, nil
}
