package table

import (
	"strconv"
	"time"
)

// ColumnType is the user-confirmable storage type for a column.
type ColumnType string

const (
	ColumnTypeText    ColumnType = "Text"
	ColumnTypeNumeric ColumnType = "Numeric"
	ColumnTypeDate    ColumnType = "Date"
)

// ColumnTypes lists the selectable types in the order the UI presents them.
var ColumnTypes = []ColumnType{ColumnTypeText, ColumnTypeNumeric, ColumnTypeDate}

// ParseColumnType maps a form value to a ColumnType, defaulting to Text.
func ParseColumnType(s string) ColumnType {
	switch ColumnType(s) {
	case ColumnTypeNumeric:
		return ColumnTypeNumeric
	case ColumnTypeDate:
		return ColumnTypeDate
	}
	return ColumnTypeText
}

// DateFormat is the on-disk rendering for Date cells (no time component).
const DateFormat = "2006-01-02"

// CellValue represents a typed cell value or the explicit Missing marker.
type CellValue struct {
	TextVal    *string
	NumericVal *float64
	DateVal    *time.Time
	IsMissing  bool
}

// NewTextValue creates a text cell.
func NewTextValue(s string) CellValue {
	return CellValue{TextVal: &s}
}

// NewNumericValue creates a numeric cell.
func NewNumericValue(n float64) CellValue {
	return CellValue{NumericVal: &n}
}

// NewDateValue creates a date cell.
func NewDateValue(t time.Time) CellValue {
	return CellValue{DateVal: &t}
}

// NewMissingValue creates the canonical Missing marker.
func NewMissingValue() CellValue {
	return CellValue{IsMissing: true}
}

// SQLValue returns the value as a driver-bindable primitive: float64 for
// numeric cells, string for text and date cells (dates as YYYY-MM-DD), and
// nil for Missing. No string form of a missing value ever escapes here.
func (v CellValue) SQLValue() interface{} {
	switch {
	case v.IsMissing:
		return nil
	case v.NumericVal != nil:
		return *v.NumericVal
	case v.DateVal != nil:
		return v.DateVal.Format(DateFormat)
	case v.TextVal != nil:
		return *v.TextVal
	}
	return nil
}

// Display renders the cell for previews; Missing renders as an empty string.
func (v CellValue) Display() string {
	switch {
	case v.IsMissing:
		return ""
	case v.NumericVal != nil:
		return strconv.FormatFloat(*v.NumericVal, 'f', -1, 64)
	case v.DateVal != nil:
		return v.DateVal.Format(DateFormat)
	case v.TextVal != nil:
		return *v.TextVal
	}
	return ""
}

// Row is one ordered record; cells line up with the owning Frame's columns.
type Row []CellValue

// Frame is an in-memory table: ordered rows over named columns. After
// cleaning, the last column is the provenance column.
type Frame struct {
	Columns []string
	Rows    []Row
}

// NumRows returns the row count.
func (f *Frame) NumRows() int { return len(f.Rows) }

// Head returns up to n rows for previews without copying cell data.
func (f *Frame) Head(n int) []Row {
	if n > len(f.Rows) {
		n = len(f.Rows)
	}
	return f.Rows[:n]
}

// Concat appends all rows of other frames sharing this frame's columns.
// Order is preserved: frames in argument order, rows in frame order.
func Concat(frames []*Frame) *Frame {
	if len(frames) == 0 {
		return &Frame{}
	}
	out := &Frame{Columns: frames[0].Columns}
	total := 0
	for _, f := range frames {
		total += len(f.Rows)
	}
	out.Rows = make([]Row, 0, total)
	for _, f := range frames {
		out.Rows = append(out.Rows, f.Rows...)
	}
	return out
}
