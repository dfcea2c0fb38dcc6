package engine

import "fmt"

// Column describes one position of a Schema.
type Column struct {
	Name string
	Type ColumnType
}

// Schema is an ordered, name-unique mapping from column name to type tag.
// Order is significant: positional inserts and SELECT * honor declaration
// order (SPEC_FULL.md §3), grounded on pkg/schema/schema.go's Column/DataType
// struct shapes from the teacher.
type Schema struct {
	columns []Column
	index   map[string]int
}

// NewSchema builds a Schema from an ordered column list. It returns an
// error if a column name repeats.
func NewSchema(columns []Column) (*Schema, error) {
	s := &Schema{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if err := s.add(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schema) add(c Column) error {
	if _, exists := s.index[c.Name]; exists {
		return fmt.Errorf("duplicate column %q in schema", c.Name)
	}
	s.index[c.Name] = len(s.columns)
	s.columns = append(s.columns, c)
	return nil
}

// Len returns the column count.
func (s *Schema) Len() int { return len(s.columns) }

// Columns returns the schema's columns in declaration order. The returned
// slice must not be mutated.
func (s *Schema) Columns() []Column { return s.columns }

// Names returns the column names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// IndexOf returns the position of name, or -1 if absent.
func (s *Schema) IndexOf(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether name is declared.
func (s *Schema) Has(name string) bool { return s.IndexOf(name) >= 0 }

// TypeOf returns the declared type for name, or TypeNone if absent.
func (s *Schema) TypeOf(name string) ColumnType {
	if i := s.IndexOf(name); i >= 0 {
		return s.columns[i].Type
	}
	return TypeNone
}

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	cols := make([]Column, len(s.columns))
	copy(cols, s.columns)
	idx := make(map[string]int, len(s.index))
	for k, v := range s.index {
		idx[k] = v
	}
	return &Schema{columns: cols, index: idx}
}

// Equal reports structural equality between two schemas (same columns, same
// order, same types).
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.columns) != len(other.columns) {
		return false
	}
	for i, c := range s.columns {
		if other.columns[i] != c {
			return false
		}
	}
	return true
}

// Unqualify returns a new schema with any "table." prefix stripped from
// column names, used to derive a view's schema from its backing table's
// (possibly join-qualified) schema.
func (s *Schema) Unqualify() *Schema {
	out := &Schema{columns: make([]Column, 0, len(s.columns)), index: make(map[string]int, len(s.columns))}
	for _, c := range s.columns {
		name := c.Name
		if idx := lastDot(name); idx >= 0 {
			name = name[idx+1:]
		}
		// A later qualified column may collide after unqualification (e.g.
		// a join of two tables sharing a column name); the last one wins,
		// matching the Python reference's plain dict-assignment semantics.
		if i, exists := out.index[name]; exists {
			out.columns[i] = Column{Name: name, Type: c.Type}
			continue
		}
		out.index[name] = len(out.columns)
		out.columns = append(out.columns, Column{Name: name, Type: c.Type})
	}
	return out
}

// Restrict returns a new schema containing only the named columns, in the
// order given. Names not present in s are silently skipped.
func (s *Schema) Restrict(names []string) *Schema {
	out := &Schema{columns: make([]Column, 0, len(names)), index: make(map[string]int, len(names))}
	for _, n := range names {
		if i := s.IndexOf(n); i >= 0 {
			out.add(s.columns[i])
		}
	}
	return out
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
