package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetpress/domain/table"
)

func testFrame() (*table.Frame, map[string]table.ColumnType) {
	frame := &table.Frame{
		Columns: []string{"Code client", "Montant", table.ProvenanceColumn},
		Rows: []table.Row{
			{table.NewTextValue("C1"), table.NewNumericValue(100.5), table.NewTextValue("jan.xlsx")},
			{table.NewTextValue("C2"), table.NewMissingValue(), table.NewTextValue("feb.xlsx")},
		},
	}
	columnTypes := map[string]table.ColumnType{
		"Code client": table.ColumnTypeText,
		"Montant":     table.ColumnTypeNumeric,
	}
	return frame, columnTypes
}

// TestWriteFileRoundTrip tests that the written database holds exactly the
// frame's rows in the DATA table, with NULL for missing cells
func TestWriteFileRoundTrip(t *testing.T) {
	frame, columnTypes := testFrame()
	destPath := filepath.Join(t.TempDir(), "out.db")

	require.NoError(t, NewWriter().WriteFile(context.Background(), frame, columnTypes, destPath))

	db, err := sqlx.Connect("sqlite", destPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM "DATA"`))
	assert.Equal(t, 2, count)

	rows := []struct {
		Code    string   `db:"Code client"`
		Montant *float64 `db:"Montant"`
		Source  string   `db:"Source_File"`
	}{}
	require.NoError(t, db.Select(&rows, `SELECT * FROM "DATA" ORDER BY "Code client"`))
	require.Len(t, rows, 2)

	assert.Equal(t, "C1", rows[0].Code)
	require.NotNil(t, rows[0].Montant)
	assert.Equal(t, 100.5, *rows[0].Montant)
	assert.Equal(t, "jan.xlsx", rows[0].Source)

	assert.Nil(t, rows[1].Montant, "missing cell must round-trip as NULL")
}

// TestWriteFileReplacesExisting tests re-running against the same target
func TestWriteFileReplacesExisting(t *testing.T) {
	frame, columnTypes := testFrame()
	destPath := filepath.Join(t.TempDir(), "out.db")

	require.NoError(t, NewWriter().WriteFile(context.Background(), frame, columnTypes, destPath))

	smaller := &table.Frame{
		Columns: frame.Columns,
		Rows:    frame.Rows[:1],
	}
	require.NoError(t, NewWriter().WriteFile(context.Background(), smaller, columnTypes, destPath))

	db, err := sqlx.Connect("sqlite", destPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM "DATA"`))
	assert.Equal(t, 1, count, "second run must fully replace the table")
}

// TestWriteFileLeavesNoTempOnFailure tests the staging cleanup
func TestWriteFileLeavesNoTempOnFailure(t *testing.T) {
	frame, columnTypes := testFrame()
	dir := t.TempDir()

	// Destination inside a path that cannot be renamed into.
	destPath := filepath.Join(dir, "missing", "out.db")
	err := NewWriter().WriteFile(context.Background(), frame, columnTypes, destPath)
	require.Error(t, err)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "staging temp file must be cleaned up")
}

// TestWriteBytes tests the in-memory variant used by the download handler
func TestWriteBytes(t *testing.T) {
	frame, columnTypes := testFrame()

	data, err := NewWriter().WriteBytes(context.Background(), frame, columnTypes)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// SQLite files start with this 16-byte magic header.
	assert.Equal(t, "SQLite format 3\x00", string(data[:16]))
}

// TestDateColumnsStoredAsText tests the YYYY-MM-DD storage form
func TestDateColumnsStoredAsText(t *testing.T) {
	frame := &table.Frame{
		Columns: []string{"Date facture", table.ProvenanceColumn},
		Rows: []table.Row{
			{normalizedDate(t), table.NewTextValue("f.xlsx")},
		},
	}
	columnTypes := map[string]table.ColumnType{"Date facture": table.ColumnTypeDate}
	destPath := filepath.Join(t.TempDir(), "out.db")

	require.NoError(t, NewWriter().WriteFile(context.Background(), frame, columnTypes, destPath))

	db, err := sqlx.Connect("sqlite", destPath)
	require.NoError(t, err)
	defer db.Close()

	var stored string
	require.NoError(t, db.Get(&stored, `SELECT "Date facture" FROM "DATA"`))
	assert.Equal(t, "2024-03-15", stored)
}

func normalizedDate(t *testing.T) table.CellValue {
	t.Helper()
	d, err := time.Parse("2006-01-02", "2024-03-15")
	require.NoError(t, err)
	return table.NewDateValue(d)
}
