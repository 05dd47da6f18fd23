package table

import "strings"

// ProvenanceColumn is appended to every cleaned frame and records the base
// name of the file each row came from.
const ProvenanceColumn = "Source_File"

// Schema is the ordered column-name sequence established from the first
// readable, non-empty file. It is immutable for the remainder of a run:
// every subsequently accepted file must match it exactly.
type Schema []string

// NewSchema copies the given column names into a Schema.
func NewSchema(columns []string) Schema {
	s := make(Schema, len(columns))
	copy(s, columns)
	return s
}

// Matches reports whether candidate has exactly the same names in exactly
// the same order. Files that do not match are skipped, never reordered.
func (s Schema) Matches(candidate []string) bool {
	if len(candidate) != len(s) {
		return false
	}
	for i, name := range s {
		if candidate[i] != name {
			return false
		}
	}
	return true
}

// Keyword sets for type inference. The data this tool was built around is
// French invoicing exports, hence the French column-name keywords.
var (
	dateKeywords = []string{"date", "facture", "échéance", "dt", "time"}

	numericKeywords = []string{
		"code", "montant", "prix", "qté", "taux", "total", "num", "id",
		"valeur", "quantity", "amount", "sum", "count",
	}
)

// InferColumnType proposes a default type for a column from its name, to
// seed the user's confirmation form. Substring match, case-insensitive,
// against the whole name. Date keywords are checked first, so a name
// matching both ("Date Total") infers Date.
func InferColumnType(columnName string) ColumnType {
	lower := strings.ToLower(columnName)
	for _, kw := range dateKeywords {
		if strings.Contains(lower, kw) {
			return ColumnTypeDate
		}
	}
	for _, kw := range numericKeywords {
		if strings.Contains(lower, kw) {
			return ColumnTypeNumeric
		}
	}
	return ColumnTypeText
}

// InferColumnTypes proposes defaults for every column of a schema.
func InferColumnTypes(s Schema) map[string]ColumnType {
	types := make(map[string]ColumnType, len(s))
	for _, col := range s {
		types[col] = InferColumnType(col)
	}
	return types
}
