package engine

// View wraps a stored SELECT with an ephemeral row set, re-evaluated on
// every read. ViewColumns may be the single wildcard "*"; BackingTable
// names the table (or joined_table) the view was declared over. Select
// holds the query to re-run at read time (opaque to pkg/engine — it is a
// *ast.SelectStatement in practice, threaded through by pkg/sqldb); Source
// carries the same query's descriptive text, used by pkg/persistence.
type View struct {
	*Table
	Select       any
	Source       string
	ViewColumns  []string
	BackingTable string
}

// NewView builds a View. viewSchema is the already-unqualified, restricted
// schema (SPEC_FULL.md §4.3's "View's schema is derived by stripping any
// table. qualification... and, when not wildcard, restricting to the named
// columns in list order").
func NewView(name string, backingTable string, viewColumns []string, viewSchema *Schema, selectStmt any, source string) *View {
	return &View{
		Table:        NewTable(name, viewSchema, nil),
		Select:       selectStmt,
		Source:       source,
		ViewColumns:  viewColumns,
		BackingTable: backingTable,
	}
}

// Replace swaps the view's ephemeral row set for freshly materialized rows,
// discarding whatever was there before a read.
func (v *View) Replace(rows []*Row) {
	v.Table.rows = rows
}

// DeriveViewSchema implements SPEC_FULL.md §4.3's view schema derivation:
// strip any "table." qualification from backingSchema, then — unless
// viewColumns is the single wildcard "*" — restrict to the named columns
// in list order.
func DeriveViewSchema(backingSchema *Schema, viewColumns []string) *Schema {
	unqualified := backingSchema.Unqualify()
	if len(viewColumns) == 1 && viewColumns[0] == "*" {
		return unqualified
	}
	return unqualified.Restrict(viewColumns)
}
