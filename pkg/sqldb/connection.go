// Package sqldb ties the tokenizer, parser, relational engine, and lock
// manager together behind a single Connection, implementing the five-mode
// transaction protocol and Connection.lock_check(action) policy procedure
// of SPEC_FULL.md §4.4/§4.7.
package sqldb

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-embeddb/embeddb/pkg/ast"
	"github.com/go-embeddb/embeddb/pkg/engine"
	"github.com/go-embeddb/embeddb/pkg/lexer"
	"github.com/go-embeddb/embeddb/pkg/parser"
	"github.com/go-embeddb/embeddb/pkg/persistence"
	"github.com/go-embeddb/embeddb/pkg/registry"
	"github.com/go-embeddb/embeddb/pkg/txn"
	"go.uber.org/zap"
)

// Connection is one logical client of a named database file. Multiple
// Connections may share a filename; visibility between them is governed
// entirely by the lock manager and the Registry's published snapshot.
type Connection struct {
	filename string
	registry registry.Registry
	lm       *txn.LockManager

	db       *engine.Database
	txMode   ast.TransactionMode // "" means auto-commit (no open transaction)
	lockHeld txn.Mode

	log *zap.Logger
}

// Connect lazily opens or creates the database named filename via reg.
func Connect(reg registry.Registry, filename string) (*Connection, error) {
	db, lm, err := reg.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("sqldb: connect %q: %w", filename, err)
	}
	return &Connection{
		filename: filename,
		registry: reg,
		lm:       lm,
		db:       db,
		log:      zap.NewNop(),
	}, nil
}

// SetLogger overrides the Connection's structured logger.
func (c *Connection) SetLogger(log *zap.Logger) {
	if log != nil {
		c.log = log
	}
}

// Execute runs one semicolon-terminated statement and returns its result
// tuples (empty for anything but SELECT). ctx is checked only at this
// boundary — no executor contains a suspension point, matching
// SPEC_FULL.md §5's single-threaded cooperative scheduling model.
func (c *Connection) Execute(ctx context.Context, statement string) ([]engine.Tuple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens, err := lexer.Tokenize(statement)
	if err != nil {
		return nil, &Error{Kind: ErrMalformedStatement, Message: err.Error()}
	}
	stmt, err := parser.New(tokens).ParseStatement()
	if err != nil {
		if err == ast.ErrUnknownStatement {
			return nil, nil
		}
		if errors.Is(err, ast.ErrUnknownTransactionMode) {
			return nil, &Error{Kind: ErrTransactionState, Message: err.Error()}
		}
		return nil, &Error{Kind: ErrMalformedStatement, Message: err.Error()}
	}

	switch s := stmt.(type) {
	case *ast.SelectStatement:
		return c.executeSelect(s)
	case *ast.InsertStatement:
		return c.executeInsert(s)
	case *ast.UpdateStatement:
		return c.executeUpdate(s)
	case *ast.DeleteStatement:
		return c.executeDelete(s)
	case *ast.CreateTableStatement:
		return c.executeCreateTable(s)
	case *ast.CreateViewStatement:
		return c.executeCreateView(s)
	case *ast.DropTableStatement:
		return c.executeDropTable(s)
	case *ast.BeginStatement:
		return nil, c.beginTransaction(s)
	case *ast.CommitStatement:
		return nil, c.commitTransaction()
	case *ast.RollbackStatement:
		return nil, c.rollbackTransaction()
	default:
		return nil, nil
	}
}

// ExecuteMany substitutes each parameter tuple into the statement's '?'
// placeholders left-to-right (text parameters single-quoted, others their
// decimal representation) and executes the result, per spec.md §6.
func (c *Connection) ExecuteMany(ctx context.Context, statement string, params [][]any) error {
	for _, tuple := range params {
		rendered, err := substitutePlaceholders(statement, tuple)
		if err != nil {
			return err
		}
		if _, err := c.Execute(ctx, rendered); err != nil {
			return err
		}
	}
	return nil
}

func substitutePlaceholders(statement string, params []any) (string, error) {
	var out []byte
	pi := 0
	for i := 0; i < len(statement); i++ {
		if statement[i] != '?' {
			out = append(out, statement[i])
			continue
		}
		if pi >= len(params) {
			return "", fmt.Errorf("sqldb: not enough parameters for statement %q", statement)
		}
		out = append(out, renderParam(params[pi])...)
		pi++
	}
	return string(out), nil
}

func renderParam(v any) string {
	switch tv := v.(type) {
	case string:
		return "'" + tv + "'"
	case nil:
		return "NULL"
	default:
		return fmt.Sprint(tv)
	}
}

// Close publishes the connection's current database and flushes it to disk
// via pkg/persistence.
func (c *Connection) Close() error {
	if err := c.registry.Publish(c.filename, c.db); err != nil {
		return err
	}
	return persistence.Save(c.filename, c.db)
}

func unqualifyCol(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}
