package ingest_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjie/furnace-core/pkg/adapters/ingest"
	"github.com/renjie/furnace-core/pkg/core/domain"
)

func TestJSONSource_RecordArray(t *testing.T) {
	file, err := os.Open("testdata/furnace_daily.json")
	require.NoError(t, err)
	defer file.Close()

	table, result, err := ingest.NewJSONSource().Read(context.Background(), file)
	require.NoError(t, err)

	// 列顺序为键首次出现的顺序
	assert.Equal(t, []string{"Furnace", "DATE", "Actual Production Qty", "Total Cost PLC", "Incharge", "Grade MN"}, table.Columns)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"F1", "2024-01-01", "100", "5000000", "", ""}, table.Rows[0])
	assert.Equal(t, "105.5", table.Rows[1][2], "numbers keep their literal text")
	assert.Equal(t, "5,150,000", table.Rows[1][3])
	assert.Equal(t, []string{"F2", "2024-01-01", "95", "", "", "70.4"}, table.Rows[2])

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 3, result.Success)
	assert.Equal(t, 1, result.Skipped)
}

func TestJSONSource_TableObject(t *testing.T) {
	in := `{"name": "jan", "columns": ["Furnace", "Production"], "rows": [["F1", "100"], ["F2", "90"]]}`
	table, result, err := ingest.NewJSONSource().Read(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "jan", table.Name)
	assert.Equal(t, []string{"Furnace", "Production"}, table.Columns)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, 2, result.Success)
}

func TestJSONSource_Errors(t *testing.T) {
	_, _, err := ingest.NewJSONSource().Read(context.Background(), strings.NewReader(`  "just a string"`))
	assert.ErrorIs(t, err, domain.ErrNotTabular)

	_, _, err = ingest.NewJSONSource().Read(context.Background(), strings.NewReader(`[{"Furnace": "F1"}, 42]`))
	assert.ErrorContains(t, err, "item 2")

	_, _, err = ingest.NewJSONSource().Read(context.Background(), strings.NewReader(`[{"Furnace": "F1"`))
	assert.Error(t, err)

	table, _, err := ingest.NewJSONSource().Read(context.Background(), strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
}
