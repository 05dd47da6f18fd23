package cleaner

import (
	"path/filepath"

	"sheetpress/domain/table"
)

// Cleaner turns one file's raw frame into a typed frame ready for
// concatenation: normalize every cell, stamp provenance, trim trailing
// blank rows.
type Cleaner struct {
	opts Options
}

// New creates a cleaner with the given trimming options.
func New(opts Options) *Cleaner {
	return &Cleaner{opts: opts}
}

// Clean normalizes raw according to columnTypes, appends the provenance
// column holding the base name of sourceName, and trims trailing blank rows
// (data columns only). Columns missing from columnTypes are treated as Text;
// schema validation upstream makes that a should-not-occur case, but a stray
// column must not panic the run. The input frame is not mutated.
//
// Cells are processed column by column so the type lookup and dispatch
// happen once per column rather than once per cell.
func (c *Cleaner) Clean(raw *table.RawFrame, sourceName string, columnTypes map[string]table.ColumnType) *table.Frame {
	dataColumns := len(raw.Columns)

	out := &table.Frame{
		Columns: make([]string, dataColumns+1),
		Rows:    make([]table.Row, len(raw.Rows)),
	}
	copy(out.Columns, raw.Columns)
	out.Columns[dataColumns] = table.ProvenanceColumn

	for i := range out.Rows {
		out.Rows[i] = make(table.Row, dataColumns+1)
	}

	for j, name := range raw.Columns {
		columnType, ok := columnTypes[name]
		if !ok {
			columnType = table.ColumnTypeText
		}
		for i, rawRow := range raw.Rows {
			// Readers pad ragged rows, but hand-built frames may not; a
			// short row reads as blank cells.
			var rawCell string
			if j < len(rawRow) {
				rawCell = rawRow[j]
			}
			out.Rows[i][j] = Normalize(rawCell, columnType)
		}
	}

	provenance := table.NewTextValue(filepath.Base(sourceName))
	for i := range out.Rows {
		out.Rows[i][dataColumns] = provenance
	}

	return TrimTrailingBlank(out, dataColumns, c.opts)
}
