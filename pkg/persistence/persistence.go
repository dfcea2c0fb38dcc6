// Package persistence is the thin JSON reader/writer for a Database,
// specified only at its interface in spec.md (an external collaborator):
// {"name","size","tables":[{"name","schema","rows"}],"joined_table"?,
// per-table "default_values"?}. Grounded on the teacher's
// pkg/schema/loader.go LoadFromJSON (open -> io.ReadAll -> json.Unmarshal,
// errors wrapped with fmt.Errorf("...: %w", err)).
package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-embeddb/embeddb/pkg/engine"
)

type document struct {
	Name        string     `json:"name"`
	Size        int        `json:"size"`
	Tables      []tableDoc `json:"tables"`
	JoinedTable *string    `json:"joined_table"`
}

type tableDoc struct {
	Name          string           `json:"name"`
	Schema        []map[string]string `json:"schema"`
	Rows          []map[string]any `json:"rows"`
	DefaultValues map[string]any   `json:"default_values,omitempty"`
	IsView        bool             `json:"is_view,omitempty"`
	ViewColumns   []string         `json:"view_columns,omitempty"`
	Statement     string           `json:"statement,omitempty"`
	BackingTable  string           `json:"backing_table,omitempty"`
}

// Load reads and decodes a Database from path. Missing optional fields
// (joined_table, default_values, view metadata) are tolerated.
func Load(path string) (*engine.Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persistence: read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses a Database from its JSON document form.
func Decode(data []byte) (*engine.Database, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("persistence: decode: %w", err)
	}

	db := engine.NewDatabase(doc.Name)
	for _, td := range doc.Tables {
		cols := make([]engine.Column, 0, len(td.Schema))
		for _, pair := range td.Schema {
			for name, typ := range pair {
				cols = append(cols, engine.Column{Name: name, Type: engine.ColumnType(typ)})
			}
		}
		schema, err := engine.NewSchema(cols)
		if err != nil {
			return nil, fmt.Errorf("persistence: table %q: %w", td.Name, err)
		}

		defaults := map[string]engine.Value{}
		for name, v := range td.DefaultValues {
			defaults[name] = normalizeNumber(v, schema.TypeOf(name))
		}

		if td.IsView {
			viewSchema := engine.DeriveViewSchema(schema, td.ViewColumns)
			view := engine.NewView(td.Name, td.BackingTable, td.ViewColumns, viewSchema, nil, td.Statement)
			if err := db.AddView(view); err != nil {
				return nil, fmt.Errorf("persistence: view %q: %w", td.Name, err)
			}
			continue
		}

		if err := db.AddTable(td.Name, schema, defaults); err != nil {
			return nil, fmt.Errorf("persistence: table %q: %w", td.Name, err)
		}
		table, _ := db.Table(td.Name)
		for _, rowDoc := range td.Rows {
			cells := make([]engine.Value, schema.Len())
			for _, col := range schema.Columns() {
				idx := schema.IndexOf(col.Name)
				if v, ok := rowDoc[col.Name]; ok {
					cells[idx] = normalizeNumber(v, col.Type)
				}
			}
			table.AppendRow(engine.NewRow(cells))
		}
	}

	return db, nil
}

// normalizeNumber converts encoding/json's float64 decoding back to int64
// for values written without a fractional part, since JSON itself carries
// no int/float distinction. Values of REAL-typed columns stay float64; in
// untyped and BLOB columns a whole-valued number comes back as int64.
func normalizeNumber(v any, ct engine.ColumnType) any {
	if ct == engine.TypeReal {
		return v
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return v
}

// Save encodes db and writes it to path.
func Save(path string, db *engine.Database) error {
	data, err := Encode(db)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("persistence: write %s: %w", path, err)
	}
	return nil
}

// Encode serializes db to its JSON document form, emitting each row's
// columns in schema declaration order.
func Encode(db *engine.Database) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"name":`)
	nameJSON, _ := json.Marshal(db.Name)
	buf.Write(nameJSON)
	fmt.Fprintf(&buf, `,"size":%d,"tables":[`, db.Size())

	for i, name := range db.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		rel, _ := db.Get(name)
		if err := encodeRelation(&buf, rel); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`]`)

	if db.JoinedTable != nil {
		buf.WriteString(`,"joined_table":"joined_table"`)
	} else {
		buf.WriteString(`,"joined_table":null`)
	}
	buf.WriteString(`}`)
	return buf.Bytes(), nil
}

func encodeRelation(buf *bytes.Buffer, rel engine.Relation) error {
	table, isTable := rel.(*engine.Table)
	view, isView := rel.(*engine.View)

	var name string
	var schema *engine.Schema
	var rows []*engine.Row
	var defaults map[string]engine.Value

	switch {
	case isView:
		name = view.Name()
		schema = view.Schema()
		rows = view.Rows()
	case isTable:
		name = table.Name()
		schema = table.Schema()
		rows = table.Rows()
		defaults = table.Defaults()
	}

	nameJSON, _ := json.Marshal(name)
	buf.WriteString(`{"name":`)
	buf.Write(nameJSON)

	buf.WriteString(`,"schema":[`)
	for i, col := range schema.Columns() {
		if i > 0 {
			buf.WriteByte(',')
		}
		colJSON, err := json.Marshal(map[string]string{col.Name: string(col.Type)})
		if err != nil {
			return fmt.Errorf("persistence: encode schema: %w", err)
		}
		buf.Write(colJSON)
	}
	buf.WriteString(`]`)

	buf.WriteString(`,"rows":[`)
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range schema.Columns() {
			if j > 0 {
				buf.WriteByte(',')
			}
			keyJSON, _ := json.Marshal(col.Name)
			valJSON, err := json.Marshal(row.At(j))
			if err != nil {
				return fmt.Errorf("persistence: encode row cell %q: %w", col.Name, err)
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			buf.Write(valJSON)
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`]`)

	if len(defaults) > 0 {
		defJSON, err := json.Marshal(defaults)
		if err != nil {
			return fmt.Errorf("persistence: encode default_values: %w", err)
		}
		buf.WriteString(`,"default_values":`)
		buf.Write(defJSON)
	}

	if isView {
		buf.WriteString(`,"is_view":true`)
		if len(view.ViewColumns) > 0 {
			colsJSON, _ := json.Marshal(view.ViewColumns)
			buf.WriteString(`,"view_columns":`)
			buf.Write(colsJSON)
		}
		stmtJSON, _ := json.Marshal(view.Source)
		buf.WriteString(`,"statement":`)
		buf.Write(stmtJSON)
		backingJSON, _ := json.Marshal(view.BackingTable)
		buf.WriteString(`,"backing_table":`)
		buf.Write(backingJSON)
	}

	buf.WriteByte('}')
	return nil
}
