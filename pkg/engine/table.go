package engine

import "fmt"

// Table is a named schema plus an insertion-ordered row collection.
// Invariants (SPEC_FULL.md §3): every row's arity equals len(schema); every
// cell is type-compatible with its column or null; size equals len(rows).
type Table struct {
	name     string
	schema   *Schema
	defaults map[string]Value
	rows     []*Row
}

// NewTable creates an empty table with the given name and schema.
func NewTable(name string, schema *Schema, defaults map[string]Value) *Table {
	if defaults == nil {
		defaults = map[string]Value{}
	}
	return &Table{name: name, schema: schema, defaults: defaults}
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Schema returns the table's schema.
func (t *Table) Schema() *Schema { return t.schema }

// Defaults returns the table's per-column default values.
func (t *Table) Defaults() map[string]Value { return t.defaults }

// Size returns the number of rows.
func (t *Table) Size() int { return len(t.rows) }

// Rows returns the table's rows in insertion order. The slice must not be
// mutated directly.
func (t *Table) Rows() []*Row { return t.rows }

// AppendRow appends a pre-built row without running insert-mode type
// checking, used by pkg/persistence when restoring rows already known to
// satisfy the schema.
func (t *Table) AppendRow(row *Row) { t.rows = append(t.rows, row) }

// InsertMode selects one of spec.md §4.3's three insert sub-modes.
type InsertMode int

const (
	// InsertDefault fills every column from its default, or null.
	InsertDefault InsertMode = iota
	// InsertColumns fills named columns from values, the rest from
	// defaults or null.
	InsertColumns
	// InsertPositional fills columns left-to-right from values, right
	// padding with null when short.
	InsertPositional
)

// Insert appends a row built from values per mode, silently dropping the
// entire insert on any type mismatch or (positional and column-list modes)
// a value list longer than the schema, per SPEC_FULL.md §4.3.
func (t *Table) Insert(mode InsertMode, columns []string, values []Value) {
	n := t.schema.Len()
	var cells []Value

	switch mode {
	case InsertDefault:
		cells = make([]Value, n)
		for i, c := range t.schema.Columns() {
			if dv, ok := t.defaults[c.Name]; ok {
				cells[i] = dv
			}
		}

	case InsertColumns:
		if len(values) > n {
			return // over-wide value list: silently drop the entire insert
		}
		cells = make([]Value, n)
		for i, c := range t.schema.Columns() {
			pos := indexOfString(columns, c.Name)
			switch {
			case pos >= 0 && pos < len(values):
				cells[i] = values[pos]
			case pos >= 0:
				cells[i] = nil // named but value list ran short
			default:
				if dv, ok := t.defaults[c.Name]; ok {
					cells[i] = dv
				}
			}
		}

	case InsertPositional:
		if len(values) > n {
			return // over-wide value list: silently drop the entire insert
		}
		cells = make([]Value, n)
		for i := range cells {
			if i < len(values) {
				cells[i] = values[i]
			}
		}
	}

	for i, c := range t.schema.Columns() {
		if !Accepts(c.Type, cells[i]) {
			return // type mismatch: silently drop the entire insert
		}
	}

	t.rows = append(t.rows, &Row{cells: cells})
}

func indexOfString(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// Update applies assignments to every row matching pred (or all rows if
// pred is nil). A no-op on an empty table.
func (t *Table) Update(assignments []Assignment, pred *Predicate) {
	if t.Size() == 0 {
		return
	}
	for _, row := range t.rows {
		if pred != nil {
			idx := t.schema.IndexOf(pred.Column)
			if idx < 0 || !row.Check(idx, pred.Op, pred.Value) {
				continue
			}
		}
		for _, a := range assignments {
			if idx := t.schema.IndexOf(a.Column); idx >= 0 {
				row.Set(idx, a.Value)
			}
		}
	}
}

// Assignment is a single SET col = value pair.
type Assignment struct {
	Column string
	Value  Value
}

// Delete removes every row matching pred, or all rows if pred is nil.
func (t *Table) Delete(pred *Predicate) {
	if t.Size() == 0 {
		return
	}
	if pred == nil {
		t.rows = nil
		return
	}
	idx := t.schema.IndexOf(pred.Column)
	if idx < 0 {
		return
	}
	kept := t.rows[:0:0]
	for _, row := range t.rows {
		if !row.Check(idx, pred.Op, pred.Value) {
			kept = append(kept, row)
		}
	}
	t.rows = kept
}

// Clone returns a deep copy of the table (schema, defaults, and rows).
func (t *Table) Clone() *Table {
	rows := make([]*Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = r.Clone()
	}
	defaults := make(map[string]Value, len(t.defaults))
	for k, v := range t.defaults {
		defaults[k] = v
	}
	return &Table{name: t.name, schema: t.schema.Clone(), defaults: defaults, rows: rows}
}

// Equal reports structural equality: same name, schema, and rows in order.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.name != other.name || t.Size() != other.Size() || !t.schema.Equal(other.schema) {
		return false
	}
	for i, r := range t.rows {
		if !r.Equal(other.rows[i]) {
			return false
		}
	}
	return true
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%s, cols=%d, rows=%d)", t.name, t.schema.Len(), t.Size())
}
