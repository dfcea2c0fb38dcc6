package engine

import "fmt"

// Relation is satisfied by both *Table and *View; most executors operate
// on it without caring which concrete kind they were handed.
type Relation interface {
	Name() string
	Schema() *Schema
	Size() int
	Rows() []*Row
}

// Database is a named collection of tables and views, plus a single
// scratch slot holding the most recently materialized join
// (SPEC_FULL.md §3).
type Database struct {
	Name        string
	relations   map[string]Relation
	order       []string // insertion order, for stable persistence round-trips
	JoinedTable *Table
}

// NewDatabase creates an empty, named database.
func NewDatabase(name string) *Database {
	return &Database{Name: name, relations: map[string]Relation{}}
}

// Size is the number of tables plus views.
func (d *Database) Size() int { return len(d.relations) }

// Has reports whether name is a known table or view.
func (d *Database) Has(name string) bool {
	_, ok := d.relations[name]
	return ok
}

// Get returns the relation named name.
func (d *Database) Get(name string) (Relation, bool) {
	r, ok := d.relations[name]
	return r, ok
}

// Table returns the relation named name as a *Table. For a view it returns
// the view's embedded *Table, holding whatever rows the view last
// materialized (callers that need view-aware behavior should use Get
// instead).
func (d *Database) Table(name string) (*Table, bool) {
	r, ok := d.relations[name]
	if !ok {
		return nil, false
	}
	if v, ok := r.(*View); ok {
		return v.Table, true
	}
	t, ok := r.(*Table)
	return t, ok
}

// Names returns the known table/view names in the order they were added.
func (d *Database) Names() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// AddTable creates and registers a new table. Returns an error if the name
// is already taken (callers enforce IF NOT EXISTS before calling this).
func (d *Database) AddTable(name string, schema *Schema, defaults map[string]Value) error {
	if d.Has(name) {
		return fmt.Errorf("table %q already exists", name)
	}
	d.relations[name] = NewTable(name, schema, defaults)
	d.order = append(d.order, name)
	return nil
}

// RemoveTable drops a table or view. Returns an error if absent (callers
// enforce IF EXISTS before calling this).
func (d *Database) RemoveTable(name string) error {
	if !d.Has(name) {
		return fmt.Errorf("table %q does not exist", name)
	}
	delete(d.relations, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// AddView registers a new view. Returns an error if the name is taken.
func (d *Database) AddView(view *View) error {
	if d.Has(view.Name()) {
		return fmt.Errorf("table or view %q already exists", view.Name())
	}
	d.relations[view.Name()] = view
	d.order = append(d.order, view.Name())
	return nil
}

// ReplaceView swaps in a freshly re-materialized view, used when a read
// against a view replaces its ephemeral rows before projection.
func (d *Database) ReplaceView(view *View) {
	d.relations[view.Name()] = view
}

// Clone performs a deep copy of the database: every table/view and all of
// its rows. This is the snapshot-isolation mechanism (SPEC_FULL.md §4.4):
// a write-touching transaction operates on a private Clone until commit.
func (d *Database) Clone() *Database {
	out := &Database{
		Name:      d.Name,
		relations: make(map[string]Relation, len(d.relations)),
		order:     append([]string(nil), d.order...),
	}
	for name, rel := range d.relations {
		switch v := rel.(type) {
		case *View:
			cloned := &View{
				Table:        v.Table.Clone(),
				Select:       v.Select,
				Source:       v.Source,
				ViewColumns:  append([]string(nil), v.ViewColumns...),
				BackingTable: v.BackingTable,
			}
			out.relations[name] = cloned
		case *Table:
			out.relations[name] = v.Clone()
		}
	}
	if d.JoinedTable != nil {
		out.JoinedTable = d.JoinedTable.Clone()
	}
	return out
}

// Equal reports structural equality: same name, size, and every
// correspondingly-named table/view structurally equal.
func (d *Database) Equal(other *Database) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Name != other.Name || d.Size() != other.Size() {
		return false
	}
	for name, rel := range d.relations {
		otherRel, ok := other.relations[name]
		if !ok {
			return false
		}
		t, tok := rel.(*Table)
		if !tok {
			if v, vok := rel.(*View); vok {
				t = v.Table
			}
		}
		ot, otok := otherRel.(*Table)
		if !otok {
			if v, vok := otherRel.(*View); vok {
				ot = v.Table
			}
		}
		if !t.Equal(ot) {
			return false
		}
	}
	return true
}
