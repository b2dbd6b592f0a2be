package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTableSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	content := `name: tumor
columns:
  - name: Diagnose
    keywords: [Karzinom, Tumor]
  - name: Therapie
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	spec, err := LoadTableSpec(path)
	if err != nil {
		t.Fatalf("LoadTableSpec failed: %v", err)
	}
	if spec.Name != "tumor" || len(spec.Columns) != 2 {
		t.Fatalf("Unexpected spec %+v", spec)
	}
	if got := spec.Columns[0].Keywords; len(got) != 2 || got[1] != "Tumor" {
		t.Errorf("Unexpected keywords %v", got)
	}
	if labels := spec.Labels(); labels[0] != "Diagnose" || labels[1] != "Therapie" {
		t.Errorf("Expected labels in table order, got %v", labels)
	}
}

func TestTableSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    TableSpec
		wantErr bool
	}{
		{"valid", TableSpec{Columns: []Column{{Name: "A"}, {Name: "B"}}}, false},
		{"no columns", TableSpec{}, true},
		{"empty name", TableSpec{Columns: []Column{{Name: " "}}}, true},
		{"duplicate", TableSpec{Columns: []Column{{Name: "A"}, {Name: "A"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.spec.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
