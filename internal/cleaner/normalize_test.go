package cleaner

import (
	"testing"
	"time"

	"sheetpress/domain/table"
)

// TestIsMissingRaw tests missing detection before any type coercion
func TestIsMissingRaw(t *testing.T) {
	tests := []struct {
		input   string
		missing bool
	}{
		{"", true},
		{"   ", true},
		{"\t \n", true},
		{"N/A", true},
		{"n/a", true},
		{"  N/a  ", true},
		{"NA", false},
		{"0", false},
		{"hello", false},
	}

	for _, test := range tests {
		if got := IsMissingRaw(test.input); got != test.missing {
			t.Errorf("IsMissingRaw(%q) = %v, want %v", test.input, got, test.missing)
		}
	}
}

// TestNormalizeMissingAllTypes tests that blank and N/A cells become Missing
// regardless of the column type
func TestNormalizeMissingAllTypes(t *testing.T) {
	for _, columnType := range table.ColumnTypes {
		for _, raw := range []string{"", "   ", "N/A", "n/a"} {
			cell := Normalize(raw, columnType)
			if !cell.IsMissing {
				t.Errorf("Normalize(%q, %s) should be Missing", raw, columnType)
			}
			if cell.SQLValue() != nil {
				t.Errorf("Missing cell from %q must bind as nil, got %v", raw, cell.SQLValue())
			}
		}
	}
}

// TestNormalizeNumeric tests numeric coercion including French formats
func TestNormalizeNumeric(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		missing bool
	}{
		{"42", 42, false},
		{"  3.14  ", 3.14, false},
		{"12,5", 12.5, false},
		{"1 234,56", 1234.56, false},
		{"1.234,56", 1234.56, false},
		{"1,234.56", 1234.56, false},
		{"€ 99,90", 99.9, false},
		{"$100", 100, false},
		{"(250)", -250, false},
		{"-17", -17, false},
		{"15%", 15, false},
		{"abc", 0, true},
		{"12abc", 0, true},
	}

	for _, test := range tests {
		cell := Normalize(test.input, table.ColumnTypeNumeric)
		if test.missing {
			if !cell.IsMissing {
				t.Errorf("Normalize(%q, Numeric) should be Missing, got %+v", test.input, cell)
			}
			continue
		}
		if cell.IsMissing || cell.NumericVal == nil {
			t.Fatalf("Normalize(%q, Numeric) unexpectedly Missing", test.input)
		}
		if *cell.NumericVal != test.want {
			t.Errorf("Normalize(%q, Numeric) = %v, want %v", test.input, *cell.NumericVal, test.want)
		}
	}
}

// TestNormalizeDate tests date coercion from formatted strings and Excel
// serial numbers
func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		missing bool
	}{
		{"2024-03-15", "2024-03-15", false},
		{"2024-03-15 10:30:00", "2024-03-15", false},
		{"2024/03/15", "2024-03-15", false},
		{"03/15/2024", "2024-03-15", false},
		// Serial 45366 is 2024-03-15.
		{"45366", "2024-03-15", false},
		{"2", "1900-01-01", false},
		{"not a date", "", true},
		{"123456789", "", true},
	}

	for _, test := range tests {
		cell := Normalize(test.input, table.ColumnTypeDate)
		if test.missing {
			if !cell.IsMissing {
				t.Errorf("Normalize(%q, Date) should be Missing", test.input)
			}
			continue
		}
		if cell.IsMissing || cell.DateVal == nil {
			t.Fatalf("Normalize(%q, Date) unexpectedly Missing", test.input)
		}
		if got := cell.DateVal.Format(table.DateFormat); got != test.want {
			t.Errorf("Normalize(%q, Date) = %s, want %s", test.input, got, test.want)
		}
	}
}

// TestNormalizeText tests that text survives as-is except leaked sentinels
func TestNormalizeText(t *testing.T) {
	cell := Normalize("  Facture 2024  ", table.ColumnTypeText)
	if cell.IsMissing || cell.TextVal == nil {
		t.Fatal("text cell unexpectedly Missing")
	}
	if *cell.TextVal != "  Facture 2024  " {
		t.Errorf("text cell mutated: %q", *cell.TextVal)
	}

	for _, sentinel := range []string{"NaN", "nan", "<NA>", "NaT"} {
		if !Normalize(sentinel, table.ColumnTypeText).IsMissing {
			t.Errorf("leaked sentinel %q should become Missing in text columns", sentinel)
		}
	}
}

// TestExcelEpoch pins the serial date origin
func TestExcelEpoch(t *testing.T) {
	want := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	if !excelEpoch.Equal(want) {
		t.Errorf("excelEpoch = %s, want %s", excelEpoch, want)
	}
}
