package engine

import "fmt"

// LeftOuterJoin materializes the left outer join of left and right on the
// given key columns, per SPEC_FULL.md §4.3: the joined schema is the
// concatenation of both schemas with column names qualified as "t.col";
// every left row is emitted once, paired with its first matching right row
// or an all-null right side when no right row matches.
func LeftOuterJoin(left *Table, right *Table, leftKey, rightKey string) (*Table, error) {
	leftIdx := left.Schema().IndexOf(leftKey)
	rightIdx := right.Schema().IndexOf(rightKey)
	if leftIdx < 0 {
		return nil, fmt.Errorf("join key %q not found in table %q", leftKey, left.Name())
	}
	if rightIdx < 0 {
		return nil, fmt.Errorf("join key %q not found in table %q", rightKey, right.Name())
	}

	cols := make([]Column, 0, left.Schema().Len()+right.Schema().Len())
	for _, c := range left.Schema().Columns() {
		cols = append(cols, Column{Name: left.Name() + "." + c.Name, Type: c.Type})
	}
	for _, c := range right.Schema().Columns() {
		cols = append(cols, Column{Name: right.Name() + "." + c.Name, Type: c.Type})
	}
	schema, err := NewSchema(cols)
	if err != nil {
		return nil, err
	}
	joined := NewTable("joined_table", schema, nil)

	keys := make(map[string]bool, left.Size())
	for _, row := range left.Rows() {
		keys[fmt.Sprint(row.At(leftIdx))] = true
	}

	rightCols := right.Schema().Len()
	for _, lrow := range left.Rows() {
		lkey := lrow.At(leftIdx)
		var matched *Row
		for _, rrow := range right.Rows() {
			if keys[fmt.Sprint(rrow.At(rightIdx))] && Equal(rrow.At(rightIdx), lkey) {
				matched = rrow
				break
			}
		}
		cells := make([]Value, 0, left.Schema().Len()+rightCols)
		cells = append(cells, lrow.Cells()...)
		if matched != nil {
			cells = append(cells, matched.Cells()...)
		} else {
			for i := 0; i < rightCols; i++ {
				cells = append(cells, nil)
			}
		}
		joined.rows = append(joined.rows, &Row{cells: cells})
	}

	return joined, nil
}
