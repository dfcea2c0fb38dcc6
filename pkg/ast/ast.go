// Package ast defines the tagged-variant statement tree produced by
// pkg/parser and consumed by pkg/sqldb, grounded on the teacher's
// pkg/parser/ast.go Node/Statement/BaseNode shape.
package ast

import "fmt"

// Node is the root interface implemented by every AST node.
type Node interface {
	String() string
	Type() string
}

// Statement is a top-level, directly executable node.
type Statement interface {
	Node
	statementNode()
}

// BaseNode supplies the default, overridable Node methods.
type BaseNode struct{}

func (BaseNode) String() string { return "" }
func (BaseNode) Type() string   { return "BaseNode" }

// Predicate is a single WHERE condition: column op value.
type Predicate struct {
	Column string
	Op     string
	Value  any
}

// OrderBy is an ORDER BY clause.
type OrderBy struct {
	Columns []string
	Desc    bool
}

// JoinClause is a LEFT OUTER JOIN ... ON left.col = right.col clause.
type JoinClause struct {
	Table   string
	LeftOn  string
	RightOn string
}

// ColumnDef is one column of a CREATE TABLE statement.
type ColumnDef struct {
	Name       string
	Type       string // TEXT, INTEGER, REAL, BLOB, or "" (untyped)
	Default    any
	HasDefault bool
}

// SelectStatement is SELECT [DISTINCT col|*] [MIN|MAX] cols FROM name
// [JOIN ...] [WHERE ...] [ORDER BY ...].
type SelectStatement struct {
	BaseNode
	Columns   []string
	Distinct  string // "" = none, "*" = whole row
	Aggregate string // "", "MIN", "MAX"
	From      string
	Join      *JoinClause
	Where     *Predicate
	Order     *OrderBy
}

func (*SelectStatement) statementNode() {}
func (*SelectStatement) Type() string   { return "SelectStatement" }
func (s *SelectStatement) String() string {
	return fmt.Sprintf("SELECT %d column(s) FROM %s", len(s.Columns), s.From)
}

// InsertStatement is INSERT INTO name [(cols...)] VALUES (...)[,...] or
// INSERT INTO name DEFAULT VALUES.
type InsertStatement struct {
	BaseNode
	Table   string
	Columns []string // empty for DEFAULT VALUES or positional form
	Default bool
	Rows    [][]any
}

func (*InsertStatement) statementNode() {}
func (*InsertStatement) Type() string   { return "InsertStatement" }
func (s *InsertStatement) String() string {
	return fmt.Sprintf("INSERT INTO %s (%d row(s))", s.Table, len(s.Rows))
}

// UpdateStatement is UPDATE name SET col=val[,...] [WHERE ...].
type UpdateStatement struct {
	BaseNode
	Table       string
	Assignments map[string]any
	Where       *Predicate
}

func (*UpdateStatement) statementNode() {}
func (*UpdateStatement) Type() string   { return "UpdateStatement" }
func (s *UpdateStatement) String() string { return fmt.Sprintf("UPDATE %s", s.Table) }

// DeleteStatement is DELETE FROM name [WHERE ...].
type DeleteStatement struct {
	BaseNode
	Table string
	Where *Predicate
}

func (*DeleteStatement) statementNode() {}
func (*DeleteStatement) Type() string   { return "DeleteStatement" }
func (s *DeleteStatement) String() string { return fmt.Sprintf("DELETE FROM %s", s.Table) }

// CreateTableStatement is CREATE TABLE [IF NOT EXISTS] name (col type, ...).
type CreateTableStatement struct {
	BaseNode
	Table       string
	IfNotExists bool
	Columns     []ColumnDef
}

func (*CreateTableStatement) statementNode() {}
func (*CreateTableStatement) Type() string   { return "CreateTableStatement" }
func (s *CreateTableStatement) String() string {
	return fmt.Sprintf("CREATE TABLE %s", s.Table)
}

// CreateViewStatement is CREATE VIEW name [(cols...)] AS <select>.
type CreateViewStatement struct {
	BaseNode
	View    string
	Columns []string // empty means "*"
	Select  *SelectStatement
	Source  string // not set by pkg/parser; the view stores Select.String() instead
}

func (*CreateViewStatement) statementNode() {}
func (*CreateViewStatement) Type() string   { return "CreateViewStatement" }
func (s *CreateViewStatement) String() string {
	return fmt.Sprintf("CREATE VIEW %s", s.View)
}

// DropTableStatement is DROP TABLE [IF EXISTS] name.
type DropTableStatement struct {
	BaseNode
	Table    string
	IfExists bool
}

func (*DropTableStatement) statementNode() {}
func (*DropTableStatement) Type() string   { return "DropTableStatement" }
func (s *DropTableStatement) String() string {
	return fmt.Sprintf("DROP TABLE %s", s.Table)
}

// TransactionMode names a BEGIN statement's locking mode.
type TransactionMode string

const (
	ModeDeferred  TransactionMode = "DEFERRED"
	ModeImmediate TransactionMode = "IMMEDIATE"
	ModeExclusive TransactionMode = "EXCLUSIVE"
)

// BeginStatement is BEGIN [DEFERRED|IMMEDIATE|EXCLUSIVE] TRANSACTION.
type BeginStatement struct {
	BaseNode
	Mode TransactionMode
}

func (*BeginStatement) statementNode() {}
func (*BeginStatement) Type() string   { return "BeginStatement" }
func (s *BeginStatement) String() string { return fmt.Sprintf("BEGIN %s TRANSACTION", s.Mode) }

// CommitStatement is COMMIT TRANSACTION.
type CommitStatement struct{ BaseNode }

func (*CommitStatement) statementNode()   {}
func (*CommitStatement) Type() string     { return "CommitStatement" }
func (*CommitStatement) String() string   { return "COMMIT TRANSACTION" }

// RollbackStatement is ROLLBACK TRANSACTION.
type RollbackStatement struct{ BaseNode }

func (*RollbackStatement) statementNode() {}
func (*RollbackStatement) Type() string   { return "RollbackStatement" }
func (*RollbackStatement) String() string { return "ROLLBACK TRANSACTION" }
