// Package cleaner implements the per-file cleaning pipeline: cell
// normalization against a confirmed column-type mapping, provenance
// stamping, and trailing-blank-row trimming. It is pure and stateless; both
// execution modes (web and batch) share it.
package cleaner

import (
	"math"
	"strconv"
	"strings"
	"time"

	"sheetpress/domain/table"
)

// Residual string forms of a missing value that earlier tooling is known to
// leak into text columns. Compared case-insensitively after trimming.
var missingSentinels = map[string]bool{
	"n/a":  true,
	"nan":  true,
	"<na>": true,
	"nat":  true,
}

// IsMissingRaw reports whether a raw cell must become Missing before any
// type coercion is attempted: blank, whitespace-only, or "N/A" in any case.
func IsMissingRaw(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || strings.EqualFold(trimmed, "n/a")
}

// Normalize maps a raw cell to a typed value or the Missing marker. Parse
// failures are data, not faults: an unparseable numeric or date cell becomes
// Missing and no error is ever returned.
func Normalize(raw string, columnType table.ColumnType) table.CellValue {
	if IsMissingRaw(raw) {
		return table.NewMissingValue()
	}

	switch columnType {
	case table.ColumnTypeNumeric:
		if n, ok := parseNumeric(raw); ok {
			return table.NewNumericValue(n)
		}
		return table.NewMissingValue()

	case table.ColumnTypeDate:
		if t, ok := parseDate(raw); ok {
			return table.NewDateValue(t)
		}
		return table.NewMissingValue()
	}

	// Text: the textual form survives as-is unless it is itself a leaked
	// missing sentinel.
	if missingSentinels[strings.ToLower(strings.TrimSpace(raw))] {
		return table.NewMissingValue()
	}
	return table.NewTextValue(raw)
}

// parseNumeric parses a number from spreadsheet text. The source data is
// French invoicing exports, so it tolerates currency symbols, percent signs,
// parenthesized negatives, and both "1,234.56" and "1 234,56" style
// separators. Infinities and NaN are rejected.
func parseNumeric(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"€", "$", "£", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	// Non-breaking spaces show up as thousands separators in French exports.
	cleanVal = strings.ReplaceAll(cleanVal, " ", " ")
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// "1.234,56" or "1 234,56": comma is the decimal separator when few
		// digits follow it, otherwise it is a thousands separator.
		commaIdx := strings.LastIndex(cleanVal, ",")
		if len(cleanVal)-commaIdx-1 <= 3 {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		// Only a comma: decimal separator in the French exports this tool
		// was built for ("12,5" -> 12.5).
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// Layouts tried in order when parsing date cells. ISO forms first, then the
// slash and dash forms spreadsheets commonly format into.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-06",
	"02-Jan-2006",
	"2-Jan-06",
}

// Excel's day-zero. Set two days before 1900-01-01 to compensate for the
// fictitious 1900-02-29 Excel inherited from Lotus 1-2-3.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseDate parses a calendar date from spreadsheet text. Besides formatted
// date strings it accepts raw Excel serial numbers, which binary sheet
// readers surface for date cells that carry no number format.
func parseDate(raw string) (time.Time, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleanVal); err == nil {
			return t, true
		}
	}

	if serial, err := strconv.ParseFloat(cleanVal, 64); err == nil {
		// Accept serials for roughly 1900..2173; anything outside is more
		// likely a plain number that landed in a date column.
		if serial >= 1 && serial < 100000 {
			days := math.Floor(serial)
			return excelEpoch.AddDate(0, 0, int(days)), true
		}
	}

	return time.Time{}, false
}
