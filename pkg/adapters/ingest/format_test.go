package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjie/furnace-core/pkg/adapters/ingest"
	"github.com/renjie/furnace-core/pkg/core/domain"
)

func TestDetectFormat(t *testing.T) {
	tests := map[string]ingest.Format{
		"jan.csv":          ingest.FormatCSV,
		"export.TXT":       ingest.FormatCSV,
		"/tmp/report.json": ingest.FormatJSON,
		"Daily.XLSX":       ingest.FormatXLSX,
		"macro.xlsm":       ingest.FormatXLSX,
	}
	for name, want := range tests {
		got, err := ingest.DetectFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ingest.DetectFormat("legacy.xls")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestForFormat(t *testing.T) {
	src, err := ingest.ForFormat("CSV", "")
	require.NoError(t, err)
	assert.IsType(t, &ingest.CSVSource{}, src)

	src, err = ingest.ForFormat(ingest.FormatXLSX, "Daily")
	require.NoError(t, err)
	assert.Equal(t, &ingest.XLSXSource{Sheet: "Daily"}, src)

	_, err = ingest.ForFormat("parquet", "")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
