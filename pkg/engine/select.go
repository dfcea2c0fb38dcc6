package engine

import (
	"fmt"
	"sort"
)

// Tuple is one output row of a SELECT: a positional slice of cell values.
type Tuple []Value

// OrderBy is an ORDER BY clause: columns applied left-to-right, with a
// single trailing DESC reversing the whole compound key (SPEC_FULL.md
// §4.6 / the resolved Open Question in DESIGN.md).
type OrderBy struct {
	Columns []string
	Desc    bool
}

// SelectSpec describes one SELECT's shape: requested display columns
// (bare names, "*", or join-qualified "t.col"; pkg/sqldb's displayColumns
// strips the qualification for a single-table select before calling), an
// optional single DISTINCT column ("*" meaning the whole row), an optional
// predicate, optional ordering, and an optional MIN/MAX aggregate.
type SelectSpec struct {
	Columns   []string
	Distinct  string // "" = no DISTINCT
	Predicate *Predicate
	Order     *OrderBy
	Aggregate string // "", "MIN", or "MAX"
}

// Select runs spec against rel's current rows and returns the projected
// result tuples, per SPEC_FULL.md §4.3/§4.6.
func Select(rel Relation, spec SelectSpec) []Tuple {
	schema := rel.Schema()

	filtered := filterRows(rel.Rows(), schema, spec.Predicate)

	if spec.Order != nil {
		sortRows(filtered, schema, spec.Order)
	}

	var result []Tuple
	seen := map[string]bool{}
	wholeRowDistinct := spec.Distinct == "*"
	distinctIdx := -1
	if spec.Distinct != "" && !wholeRowDistinct {
		distinctIdx = schema.IndexOf(spec.Distinct)
	}

	for _, row := range filtered {
		if wholeRowDistinct {
			key := tupleKey(row.Cells())
			if seen[key] {
				continue
			}
			seen[key] = true
		} else if distinctIdx >= 0 {
			key := fmt.Sprint(row.At(distinctIdx))
			if seen[key] {
				continue
			}
			seen[key] = true
		}

		tuple := project(row, schema, spec.Columns)
		if len(tuple) == 0 {
			continue // empty projection: dropped per SPEC_FULL.md §4.6
		}
		result = append(result, tuple)
	}

	if spec.Aggregate == "MIN" || spec.Aggregate == "MAX" {
		result = reduceAggregate(result, spec.Aggregate)
	}

	return result
}

func filterRows(rows []*Row, schema *Schema, pred *Predicate) []*Row {
	if pred == nil {
		return rows
	}
	idx := schema.IndexOf(pred.Column)
	if idx < 0 {
		return nil
	}
	out := make([]*Row, 0, len(rows))
	for _, r := range rows {
		if r.Check(idx, pred.Op, pred.Value) {
			out = append(out, r)
		}
	}
	return out
}

func sortRows(rows []*Row, schema *Schema, order *OrderBy) {
	var indices []int
	for _, name := range order.Columns {
		if i := schema.IndexOf(name); i >= 0 {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, idx := range indices {
			c := Compare(rows[i].At(idx), rows[j].At(idx))
			if c != 0 {
				if order.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return false
	})
}

func project(row *Row, schema *Schema, columns []string) Tuple {
	var out Tuple
	for _, c := range columns {
		if c == "*" {
			out = append(out, row.Cells()...)
			continue
		}
		if idx := schema.IndexOf(c); idx >= 0 {
			out = append(out, row.At(idx))
		}
		// unresolved column names are silently skipped, matching the
		// reference's column-index resolution loop.
	}
	return out
}

func tupleKey(cells []Value) string {
	return fmt.Sprint(cells)
}

// reduceAggregate implements MIN/MAX: a one-row result holding the
// lexicographic minimum/maximum tuple.
func reduceAggregate(rows []Tuple, which string) []Tuple {
	if len(rows) == 0 {
		return rows
	}
	best := rows[0]
	for _, t := range rows[1:] {
		c := compareTuples(t, best)
		if (which == "MIN" && c < 0) || (which == "MAX" && c > 0) {
			best = t
		}
	}
	return []Tuple{best}
}

func compareTuples(a, b Tuple) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}
