package table

import "testing"

// TestSchemaMatches tests exact-order column validation
func TestSchemaMatches(t *testing.T) {
	schema := NewSchema([]string{"A", "B", "C"})

	tests := []struct {
		name      string
		candidate []string
		want      bool
	}{
		{"identical", []string{"A", "B", "C"}, true},
		{"reordered", []string{"B", "A", "C"}, false},
		{"missing column", []string{"A", "B"}, false},
		{"extra column", []string{"A", "B", "C", "D"}, false},
		{"renamed", []string{"A", "B", "X"}, false},
		{"case differs", []string{"a", "B", "C"}, false},
		{"empty", nil, false},
	}

	for _, test := range tests {
		if got := schema.Matches(test.candidate); got != test.want {
			t.Errorf("%s: Matches(%v) = %v, want %v", test.name, test.candidate, got, test.want)
		}
	}
}

// TestNewSchemaCopies tests that later mutation of the input slice does not
// leak into the schema
func TestNewSchemaCopies(t *testing.T) {
	columns := []string{"A", "B"}
	schema := NewSchema(columns)
	columns[0] = "Z"
	if schema[0] != "A" {
		t.Errorf("schema aliased its input: %v", schema)
	}
}

// TestInferColumnType tests keyword-based type proposals
func TestInferColumnType(t *testing.T) {
	tests := []struct {
		column string
		want   ColumnType
	}{
		{"Date facture", ColumnTypeDate},
		{"Échéance", ColumnTypeDate},
		{"DT_CREATION", ColumnTypeDate},
		{"Montant HT", ColumnTypeNumeric},
		{"Code client", ColumnTypeNumeric},
		{"Prix unitaire", ColumnTypeNumeric},
		{"Qté", ColumnTypeNumeric},
		{"Libellé", ColumnTypeText},
		{"Commentaire", ColumnTypeText},
		// Date keywords win when both sets match.
		{"Date Total", ColumnTypeDate},
	}

	for _, test := range tests {
		if got := InferColumnType(test.column); got != test.want {
			t.Errorf("InferColumnType(%q) = %s, want %s", test.column, got, test.want)
		}
	}
}

// TestInferColumnTypes tests that every schema column gets a proposal
func TestInferColumnTypes(t *testing.T) {
	schema := NewSchema([]string{"Date", "Montant", "Libellé"})
	types := InferColumnTypes(schema)
	if len(types) != 3 {
		t.Fatalf("expected 3 proposals, got %d", len(types))
	}
	if types["Date"] != ColumnTypeDate || types["Montant"] != ColumnTypeNumeric || types["Libellé"] != ColumnTypeText {
		t.Errorf("unexpected proposals: %v", types)
	}
}
