package cleaner

import "sheetpress/domain/table"

// Options controls the blankness rule used when trimming trailing rows.
type Options struct {
	// ZeroAsBlank additionally counts numeric zero cells as blank, matching
	// the legacy batch behavior. Off by default: a trailing row of real
	// zeros is data, not padding.
	ZeroAsBlank bool
}

// TrimTrailingBlank returns the prefix of frame ending at the last row that
// is not fully blank across the first dataColumns columns (the provenance
// column is excluded from the blankness test). If every row is fully blank
// the result has zero rows and the same columns. Single reverse scan; the
// input frame is not mutated.
func TrimTrailingBlank(frame *table.Frame, dataColumns int, opts Options) *table.Frame {
	last := -1
	for i := len(frame.Rows) - 1; i >= 0; i-- {
		if !rowFullyBlank(frame.Rows[i], dataColumns, opts) {
			last = i
			break
		}
	}
	return &table.Frame{Columns: frame.Columns, Rows: frame.Rows[:last+1]}
}

func rowFullyBlank(row table.Row, dataColumns int, opts Options) bool {
	for j := 0; j < dataColumns && j < len(row); j++ {
		cell := row[j]
		if cell.IsMissing {
			continue
		}
		if opts.ZeroAsBlank && cell.NumericVal != nil && *cell.NumericVal == 0 {
			continue
		}
		return false
	}
	return true
}
