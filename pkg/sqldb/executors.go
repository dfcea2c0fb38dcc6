package sqldb

import (
	"fmt"

	"github.com/go-embeddb/embeddb/pkg/ast"
	"github.com/go-embeddb/embeddb/pkg/engine"
)

// executeRead runs selector under a read lock, releasing the lock
// immediately afterward in auto-commit mode (spec.md §4.4: "take shared,
// release after").
func (c *Connection) executeRead(selector func(db *engine.Database) []engine.Tuple) ([]engine.Tuple, error) {
	if err := c.lockCheck(actionRead); err != nil {
		return nil, err
	}
	tuples := selector(c.db)
	if c.txMode == "" {
		if err := c.lockCheck(actionRelinquish); err != nil {
			return nil, err
		}
	}
	return tuples, nil
}

// executeWrite runs mutator under a write lock, implicitly committing in
// auto-commit mode once it succeeds.
func (c *Connection) executeWrite(mutator func(db *engine.Database) error) ([]engine.Tuple, error) {
	if err := c.lockCheck(actionWrite); err != nil {
		return nil, err
	}
	if err := mutator(c.db); err != nil {
		return nil, err
	}
	if c.txMode == "" {
		if err := c.lockCheck(actionCommit); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func predicateFrom(p *ast.Predicate) *engine.Predicate {
	if p == nil {
		return nil
	}
	return &engine.Predicate{Column: p.Column, Op: engine.Op(p.Op), Value: p.Value}
}

func orderFrom(o *ast.OrderBy) *engine.OrderBy {
	if o == nil {
		return nil
	}
	return &engine.OrderBy{Columns: o.Columns, Desc: o.Desc}
}

// displayColumns strips table-qualification from display column names for
// a plain single-table select (whose schema stores bare names); a
// join-backed select keeps qualification, since the joined schema itself
// stores "t.col"-qualified names (see pkg/engine/join.go).
func displayColumns(columns []string, joined bool) []string {
	if joined {
		return columns
	}
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = unqualifyCol(c)
	}
	return out
}

func (c *Connection) executeSelect(stmt *ast.SelectStatement) ([]engine.Tuple, error) {
	return c.executeRead(func(db *engine.Database) []engine.Tuple {
		var rel engine.Relation

		if stmt.Join != nil {
			left, ok := db.Table(stmt.From)
			if !ok {
				return nil
			}
			right, ok := db.Table(stmt.Join.Table)
			if !ok {
				return nil
			}
			joined, err := engine.LeftOuterJoin(left, right, unqualifyCol(stmt.Join.LeftOn), unqualifyCol(stmt.Join.RightOn))
			if err != nil {
				return nil
			}
			db.JoinedTable = joined
			rel = joined
		} else {
			r, ok := db.Get(stmt.From)
			if !ok {
				return nil
			}
			if view, isView := r.(*engine.View); isView {
				c.refreshView(db, view)
			}
			r, _ = db.Get(stmt.From)
			rel = r
		}

		spec := engine.SelectSpec{
			Columns:   displayColumns(stmt.Columns, stmt.Join != nil),
			Distinct:  stmt.Distinct,
			Predicate: predicateFrom(stmt.Where),
			Order:     orderFrom(stmt.Order),
			Aggregate: stmt.Aggregate,
		}
		return engine.Select(rel, spec)
	})
}

// refreshView re-executes a view's stored SELECT against db and replaces
// its ephemeral row set, per spec.md §4.3: "any read against a view
// re-executes its stored statement and replaces the row set before
// projection."
func (c *Connection) refreshView(db *engine.Database, view *engine.View) {
	sel, ok := view.Select.(*ast.SelectStatement)
	if !ok || sel == nil {
		return
	}

	var base engine.Relation
	if sel.Join != nil {
		left, ok := db.Table(sel.From)
		if !ok {
			view.Replace(nil)
			return
		}
		right, ok := db.Table(sel.Join.Table)
		if !ok {
			view.Replace(nil)
			return
		}
		joined, err := engine.LeftOuterJoin(left, right, unqualifyCol(sel.Join.LeftOn), unqualifyCol(sel.Join.RightOn))
		if err != nil {
			view.Replace(nil)
			return
		}
		db.JoinedTable = joined
		base = joined
	} else {
		r, ok := db.Get(sel.From)
		if !ok {
			view.Replace(nil)
			return
		}
		base = r
	}

	tuples := engine.Select(base, engine.SelectSpec{
		Columns:   displayColumns(sel.Columns, sel.Join != nil),
		Distinct:  sel.Distinct,
		Predicate: predicateFrom(sel.Where),
		Order:     orderFrom(sel.Order),
		Aggregate: sel.Aggregate,
	})
	rows := make([]*engine.Row, len(tuples))
	for i, t := range tuples {
		rows[i] = engine.NewRow(t)
	}
	view.Replace(rows)
}

func (c *Connection) executeInsert(stmt *ast.InsertStatement) ([]engine.Tuple, error) {
	return c.executeWrite(func(db *engine.Database) error {
		table, ok := db.Table(stmt.Table)
		if !ok {
			return &Error{Kind: ErrSchemaViolation, Message: fmt.Sprintf("no such table: %s", stmt.Table)}
		}
		switch {
		case stmt.Default:
			table.Insert(engine.InsertDefault, nil, nil)
		case len(stmt.Columns) > 0:
			for _, row := range stmt.Rows {
				table.Insert(engine.InsertColumns, stmt.Columns, row)
			}
		default:
			for _, row := range stmt.Rows {
				table.Insert(engine.InsertPositional, nil, row)
			}
		}
		return nil
	})
}

func (c *Connection) executeUpdate(stmt *ast.UpdateStatement) ([]engine.Tuple, error) {
	return c.executeWrite(func(db *engine.Database) error {
		table, ok := db.Table(stmt.Table)
		if !ok {
			return &Error{Kind: ErrSchemaViolation, Message: fmt.Sprintf("no such table: %s", stmt.Table)}
		}
		assignments := make([]engine.Assignment, 0, len(stmt.Assignments))
		for col, val := range stmt.Assignments {
			assignments = append(assignments, engine.Assignment{Column: col, Value: val})
		}
		table.Update(assignments, predicateFrom(stmt.Where))
		return nil
	})
}

func (c *Connection) executeDelete(stmt *ast.DeleteStatement) ([]engine.Tuple, error) {
	return c.executeWrite(func(db *engine.Database) error {
		table, ok := db.Table(stmt.Table)
		if !ok {
			return &Error{Kind: ErrSchemaViolation, Message: fmt.Sprintf("no such table: %s", stmt.Table)}
		}
		table.Delete(predicateFrom(stmt.Where))
		return nil
	})
}

func (c *Connection) executeCreateTable(stmt *ast.CreateTableStatement) ([]engine.Tuple, error) {
	return c.executeWrite(func(db *engine.Database) error {
		if db.Has(stmt.Table) {
			if stmt.IfNotExists {
				return nil
			}
			return &Error{Kind: ErrSchemaViolation, Message: fmt.Sprintf("table %q already exists", stmt.Table)}
		}
		cols := make([]engine.Column, 0, len(stmt.Columns))
		defaults := map[string]engine.Value{}
		for _, cd := range stmt.Columns {
			cols = append(cols, engine.Column{Name: cd.Name, Type: engine.ColumnType(cd.Type)})
			if cd.HasDefault {
				defaults[cd.Name] = cd.Default
			}
		}
		schema, err := engine.NewSchema(cols)
		if err != nil {
			return &Error{Kind: ErrSchemaViolation, Message: err.Error()}
		}
		return db.AddTable(stmt.Table, schema, defaults)
	})
}

func (c *Connection) executeCreateView(stmt *ast.CreateViewStatement) ([]engine.Tuple, error) {
	return c.executeWrite(func(db *engine.Database) error {
		if db.Has(stmt.View) {
			return &Error{Kind: ErrSchemaViolation, Message: fmt.Sprintf("view %q already exists", stmt.View)}
		}

		backing := stmt.Select.From
		var schema *engine.Schema

		if stmt.Select.Join != nil {
			left, ok := db.Table(stmt.Select.From)
			if !ok {
				return &Error{Kind: ErrSchemaViolation, Message: fmt.Sprintf("no such table: %s", stmt.Select.From)}
			}
			right, ok := db.Table(stmt.Select.Join.Table)
			if !ok {
				return &Error{Kind: ErrSchemaViolation, Message: fmt.Sprintf("no such table: %s", stmt.Select.Join.Table)}
			}
			joined, err := engine.LeftOuterJoin(left, right, unqualifyCol(stmt.Select.Join.LeftOn), unqualifyCol(stmt.Select.Join.RightOn))
			if err != nil {
				return &Error{Kind: ErrSchemaViolation, Message: err.Error()}
			}
			db.JoinedTable = joined
			backing = "joined_table"
			schema = joined.Schema()
		} else {
			t, ok := db.Table(stmt.Select.From)
			if !ok {
				return &Error{Kind: ErrSchemaViolation, Message: fmt.Sprintf("no such table: %s", stmt.Select.From)}
			}
			schema = t.Schema()
		}

		viewCols := stmt.Columns
		if len(viewCols) == 0 {
			viewCols = []string{"*"}
		}
		viewSchema := engine.DeriveViewSchema(schema, viewCols)
		view := engine.NewView(stmt.View, backing, viewCols, viewSchema, stmt.Select, stmt.Select.String())

		err := db.AddView(view)
		db.JoinedTable = nil // scratch slot consumed
		return err
	})
}

func (c *Connection) executeDropTable(stmt *ast.DropTableStatement) ([]engine.Tuple, error) {
	return c.executeWrite(func(db *engine.Database) error {
		if !db.Has(stmt.Table) {
			if stmt.IfExists {
				return nil
			}
			return &Error{Kind: ErrSchemaViolation, Message: fmt.Sprintf("no such table: %s", stmt.Table)}
		}
		return db.RemoveTable(stmt.Table)
	})
}
