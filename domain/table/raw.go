package table

// RawFrame holds a file's contents as read from its container format:
// trimmed header names plus rows of raw string cells. No typing has been
// applied yet; blank cells are empty strings. Readers pad ragged rows to the
// header width so every row has one cell per column. This is the input
// contract of the cleaning pipeline regardless of source format.
type RawFrame struct {
	Columns []string
	Rows    [][]string
}

// NumRows returns the data row count (headers excluded).
func (f *RawFrame) NumRows() int { return len(f.Rows) }

// Empty reports whether the frame yielded no columns at all. A file with
// headers but no data rows is not empty for schema purposes.
func (f *RawFrame) Empty() bool { return len(f.Columns) == 0 }
