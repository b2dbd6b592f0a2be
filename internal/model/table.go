package model

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Column is one target column of a table. Its name is the label spans are
// retrieved for.
type Column struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// TableSpec lists the columns evidence is collected for
type TableSpec struct {
	Name    string   `yaml:"name" json:"name"`
	Columns []Column `yaml:"columns" json:"columns"`
}

// Labels returns the column names in table order
func (t TableSpec) Labels() []string {
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Name
	}
	return labels
}

// Validate checks that every column has a unique, non-empty name
func (t TableSpec) Validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", t.Name)
	}
	seen := make(map[string]bool)
	for i, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("table %q: column %d has no name", t.Name, i)
		}
		if seen[name] {
			return fmt.Errorf("table %q: duplicate column %q", t.Name, name)
		}
		seen[name] = true
	}
	return nil
}

// LoadTableSpec reads a table specification from a YAML file
func LoadTableSpec(path string) (TableSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TableSpec{}, fmt.Errorf("read table spec: %w", err)
	}

	var spec TableSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return TableSpec{}, fmt.Errorf("parse table spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return TableSpec{}, err
	}
	return spec, nil
}
