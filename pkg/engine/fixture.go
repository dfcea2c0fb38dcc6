package engine

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// fixtureDoc mirrors the teacher's LoadFromYAML schema shape (pkg/schema
// loader.go), trimmed to the columns this engine actually has: name and
// type tag, plus an optional row list for seeding test data.
type fixtureDoc struct {
	Name   string `yaml:"name"`
	Tables []struct {
		Name    string `yaml:"name"`
		Columns []struct {
			Name string `yaml:"name"`
			Type string `yaml:"type"`
		} `yaml:"columns"`
		Rows []map[string]any `yaml:"rows,omitempty"`
	} `yaml:"tables"`
}

// LoadFixtureYAML builds a Database from a YAML fixture document, used by
// package tests to seed a database without hand-writing SQL for every
// case.
func LoadFixtureYAML(data []byte) (*Database, error) {
	var doc fixtureDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("engine: parse fixture: %w", err)
	}

	db := NewDatabase(doc.Name)
	for _, td := range doc.Tables {
		cols := make([]Column, 0, len(td.Columns))
		for _, cd := range td.Columns {
			cols = append(cols, Column{Name: cd.Name, Type: ColumnType(cd.Type)})
		}
		schema, err := NewSchema(cols)
		if err != nil {
			return nil, fmt.Errorf("engine: fixture table %q: %w", td.Name, err)
		}
		if err := db.AddTable(td.Name, schema, nil); err != nil {
			return nil, fmt.Errorf("engine: fixture table %q: %w", td.Name, err)
		}
		table, _ := db.Table(td.Name)
		for _, rowDoc := range td.Rows {
			cells := make([]Value, schema.Len())
			for _, col := range schema.Columns() {
				if v, ok := rowDoc[col.Name]; ok {
					cells[schema.IndexOf(col.Name)] = normalizeYAMLNumber(v)
				}
			}
			table.AppendRow(NewRow(cells))
		}
	}
	return db, nil
}

// normalizeYAMLNumber converts yaml.v3's int decoding to int64 for
// INTEGER-typed cells, since the decoder otherwise hands back a plain int.
func normalizeYAMLNumber(v any) any {
	if i, ok := v.(int); ok {
		return int64(i)
	}
	return v
}
