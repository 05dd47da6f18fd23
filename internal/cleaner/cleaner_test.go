package cleaner

import (
	"testing"

	"sheetpress/domain/table"
)

// TestCleanProvenanceAndTypes tests the full per-file pipeline: typed
// normalization, provenance stamping and trailing-blank trimming
func TestCleanProvenanceAndTypes(t *testing.T) {
	raw := &table.RawFrame{
		Columns: []string{"Code client", "Montant", "Date facture"},
		Rows: [][]string{
			{"C001", "1 234,56", "2024-03-15"},
			{"C002", "N/A", "45366"},
			{"", "", ""},
		},
	}
	columnTypes := map[string]table.ColumnType{
		"Code client":  table.ColumnTypeText,
		"Montant":      table.ColumnTypeNumeric,
		"Date facture": table.ColumnTypeDate,
	}

	got := New(Options{}).Clean(raw, "/exports/march/invoices.xlsx", columnTypes)

	wantColumns := []string{"Code client", "Montant", "Date facture", table.ProvenanceColumn}
	if len(got.Columns) != len(wantColumns) {
		t.Fatalf("columns = %v, want %v", got.Columns, wantColumns)
	}
	for i, name := range wantColumns {
		if got.Columns[i] != name {
			t.Fatalf("columns = %v, want %v", got.Columns, wantColumns)
		}
	}

	if got.NumRows() != 2 {
		t.Fatalf("expected trailing blank row trimmed, got %d rows", got.NumRows())
	}

	if v := got.Rows[0][1].NumericVal; v == nil || *v != 1234.56 {
		t.Errorf("Montant not coerced: %+v", got.Rows[0][1])
	}
	if d := got.Rows[0][2].DateVal; d == nil || d.Format(table.DateFormat) != "2024-03-15" {
		t.Errorf("Date facture not coerced: %+v", got.Rows[0][2])
	}
	if !got.Rows[1][1].IsMissing {
		t.Error("N/A numeric cell should be Missing")
	}
	if d := got.Rows[1][2].DateVal; d == nil || d.Format(table.DateFormat) != "2024-03-15" {
		t.Errorf("serial date cell not coerced: %+v", got.Rows[1][2])
	}

	// Provenance is the base name only, on every surviving row.
	for i, row := range got.Rows {
		prov := row[len(row)-1]
		if prov.TextVal == nil || *prov.TextVal != "invoices.xlsx" {
			t.Errorf("row %d provenance = %+v, want invoices.xlsx", i, prov)
		}
	}

	// Input must not be mutated.
	if len(raw.Rows) != 3 || len(raw.Columns) != 3 {
		t.Error("input raw frame mutated")
	}
}

// TestCleanUnknownColumnFallsBackToText tests the stray-column guard
func TestCleanUnknownColumnFallsBackToText(t *testing.T) {
	raw := &table.RawFrame{
		Columns: []string{"Mystery"},
		Rows:    [][]string{{"42"}},
	}

	got := New(Options{}).Clean(raw, "f.xlsx", map[string]table.ColumnType{})
	cell := got.Rows[0][0]
	if cell.TextVal == nil || *cell.TextVal != "42" {
		t.Errorf("unknown column should normalize as Text, got %+v", cell)
	}
}

// TestCleanShortRows tests that ragged rows read as blank cells
func TestCleanShortRows(t *testing.T) {
	raw := &table.RawFrame{
		Columns: []string{"A", "B"},
		Rows:    [][]string{{"x"}},
	}

	got := New(Options{}).Clean(raw, "f.xlsx", map[string]table.ColumnType{
		"A": table.ColumnTypeText,
		"B": table.ColumnTypeText,
	})
	if got.NumRows() != 1 {
		t.Fatalf("expected 1 row, got %d", got.NumRows())
	}
	if !got.Rows[0][1].IsMissing {
		t.Error("short row cell should be Missing")
	}
}
