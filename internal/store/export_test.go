package store

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestExportCSV(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertTrigger(ctx, sampleEvent("export me", 7.0))
	require.NoError(t, err)
	_, err = st.InsertTrigger(ctx, sampleEvent("export me too", 5.5))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "triggers.csv")
	n, err := ExportCSV(ctx, st, Filter{}, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "export me", records[1][3])
	assert.Equal(t, "7.0", records[1][5])
}

func TestExportCSVEmptyStore(t *testing.T) {
	st := newTestSQLiteStore(t)

	path := filepath.Join(t.TempDir(), "empty.csv")
	n, err := ExportCSV(context.Background(), st, Filter{}, path)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Header row still written.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Trigger Score")
}

func TestExportXLSX(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertTrigger(ctx, sampleEvent("sheet row", 6.1))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "triggers.xlsx")
	n, err := ExportXLSX(ctx, st, Filter{}, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	assert.Equal(t, "Triggers", sheet.Name)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "sheet row", sheet.Rows[1].Cells[3].Value)
}
