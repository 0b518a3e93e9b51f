package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// JSONSource 实现 ports.TableSource
// 支持两种形状:
//   - 记录数组 [{"Furnace": "F1", ...}, ...]，列顺序取首次出现的顺序
//   - 表格对象 {"columns": [...], "rows": [[...], ...]}
type JSONSource struct{}

// NewJSONSource 创建 JSON 数据源
func NewJSONSource() *JSONSource {
	return &JSONSource{}
}

// Read 实现 ports.TableSource
func (j *JSONSource) Read(ctx context.Context, stream io.Reader) (*domain.Table, *domain.IngestionResult, error) {
	// 使用 bufio.Reader 预读首字节，避免消耗 Token
	bufStream := bufio.NewReader(stream)
	head, err := peekNonSpace(bufStream)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.Table{}, &domain.IngestionResult{}, nil
		}
		return nil, nil, fmt.Errorf("failed to peek start token: %w", err)
	}

	decoder := json.NewDecoder(bufStream)
	decoder.UseNumber()

	switch head {
	case '[':
		// Consume '['
		if _, err := decoder.Token(); err != nil {
			return nil, nil, err
		}
		return j.decodeArray(ctx, decoder)
	case '{':
		var t domain.Table
		if err := decoder.Decode(&t); err != nil {
			return nil, nil, fmt.Errorf("failed to decode table object: %w", err)
		}
		return &t, &domain.IngestionResult{Total: len(t.Rows), Success: len(t.Rows)}, nil
	}
	return nil, nil, fmt.Errorf("unexpected JSON format (expected '[' or '{', got '%c'): %w", head, domain.ErrNotTabular)
}

func peekNonSpace(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := r.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}

func (j *JSONSource) decodeArray(ctx context.Context, decoder *json.Decoder) (*domain.Table, *domain.IngestionResult, error) {
	result := &domain.IngestionResult{}
	table := &domain.Table{}
	index := make(map[string]int)
	var objects []map[string]string

	for decoder.More() {
		if result.Total%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, result, err
			}
		}

		result.Total++
		obj, keys, err := readObject(decoder)
		if err != nil {
			return nil, result, fmt.Errorf("decode error inside array at item %d: %w", result.Total, err)
		}
		for _, k := range keys {
			if _, ok := index[k]; !ok {
				index[k] = len(table.Columns)
				table.Columns = append(table.Columns, k)
			}
		}
		if len(obj) == 0 {
			result.Skipped++
			continue
		}
		objects = append(objects, obj)
		result.Success++
	}

	// Consume closing ']'
	if _, err := decoder.Token(); err != nil {
		return nil, result, err
	}

	for _, obj := range objects {
		row := make([]string, len(table.Columns))
		for k, v := range obj {
			row[index[k]] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, result, nil
}

// readObject 读取一个扁平对象并保留键的顺序
// 所有值转为字符串单元格: 字符串原样，null 为空，其余使用 JSON 字面量
func readObject(decoder *json.Decoder) (map[string]string, []string, error) {
	tok, err := decoder.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	obj := make(map[string]string)
	var keys []string
	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", key, err)
		}
		if _, seen := obj[key]; !seen {
			keys = append(keys, key)
		}
		obj[key] = cellText(raw)
	}
	// Consume closing '}'
	if _, err := decoder.Token(); err != nil {
		return nil, nil, err
	}
	return obj, keys, nil
}

func cellText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return ""
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
