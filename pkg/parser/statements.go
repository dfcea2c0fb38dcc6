package parser

import (
	"fmt"

	"github.com/go-embeddb/embeddb/pkg/ast"
	"github.com/go-embeddb/embeddb/pkg/token"
)

// parseSelect parses:
//
//	SELECT [DISTINCT col|*] [MIN|MAX] cols FROM name
//	  [LEFT OUTER JOIN name ON l.col = r.col]
//	  [WHERE col op val] [ORDER BY col[,col...] [ASC|DESC]]
func (p *Parser) parseSelect() (*ast.SelectStatement, error) {
	p.nextToken() // consume SELECT
	stmt := &ast.SelectStatement{}

	if p.curIs(token.DISTINCT) {
		p.nextToken()
		col, err := p.parseColumnName()
		if err != nil {
			return nil, err
		}
		stmt.Distinct = col
	}

	if p.curIs(token.MIN) {
		stmt.Aggregate = "MIN"
		p.nextToken()
	} else if p.curIs(token.MAX) {
		stmt.Aggregate = "MAX"
		p.nextToken()
	}

	cols, err := p.parseColumnList()
	if err != nil {
		return nil, err
	}
	stmt.Columns = cols

	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	from, err := p.parseIdentLike()
	if err != nil {
		return nil, err
	}
	stmt.From = from

	if p.curIs(token.LEFT) {
		p.nextToken()
		if _, err := p.expect(token.OUTER); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.JOIN); err != nil {
			return nil, err
		}
		joinTable, err := p.parseIdentLike()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ON); err != nil {
			return nil, err
		}
		leftOn, err := p.parseColumnName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		rightOn, err := p.parseColumnName()
		if err != nil {
			return nil, err
		}
		stmt.Join = &ast.JoinClause{Table: joinTable, LeftOn: leftOn, RightOn: rightOn}
	}

	where, err := p.parseWhere()
	if err != nil {
		return nil, err
	}
	stmt.Where = where

	order, err := p.parseOrderBy()
	if err != nil {
		return nil, err
	}
	stmt.Order = order

	return stmt, nil
}

// parseColumnName parses a single bare or qualified ("t.col") column name,
// or the "*" wildcard.
func (p *Parser) parseColumnName() (string, error) {
	if p.curIs(token.IDENT) && p.curToken.Literal == "*" {
		p.nextToken()
		return "*", nil
	}
	return p.parseIdentLike()
}

// parseColumnList parses a comma-separated list of column names. Stops at
// the first token that starts a new clause (FROM).
func (p *Parser) parseColumnList() ([]string, error) {
	var cols []string
	for {
		col, err := p.parseColumnName()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return cols, nil
}

// parseInsert parses:
//
//	INSERT INTO name DEFAULT VALUES;
//	INSERT INTO name [(col,...)] VALUES (v,...)[, (v,...)...];
func (p *Parser) parseInsert() (*ast.InsertStatement, error) {
	p.nextToken() // consume INSERT
	if _, err := p.expect(token.INTO); err != nil {
		return nil, err
	}
	table, err := p.parseIdentLike()
	if err != nil {
		return nil, err
	}
	stmt := &ast.InsertStatement{Table: table}

	if p.curIs(token.DEFAULT) {
		p.nextToken()
		if _, err := p.expect(token.VALUES); err != nil {
			return nil, err
		}
		stmt.Default = true
		return stmt, nil
	}

	if p.curIs(token.LPAREN) {
		p.nextToken()
		cols, err := p.parseColumnList()
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.VALUES); err != nil {
		return nil, err
	}

	for {
		row, err := p.parseValueTuple()
		if err != nil {
			return nil, err
		}
		stmt.Rows = append(stmt.Rows, row)
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	return stmt, nil
}

func (p *Parser) parseValueTuple() ([]any, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var values []any
	for {
		v, err := p.parseLiteralValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return values, nil
}

// parseUpdate parses: UPDATE name SET col=val[,...] [WHERE ...].
func (p *Parser) parseUpdate() (*ast.UpdateStatement, error) {
	p.nextToken() // consume UPDATE
	table, err := p.parseIdentLike()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SET); err != nil {
		return nil, err
	}
	assignments := map[string]any{}
	for {
		col, err := p.parseIdentLike()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		val, err := p.parseLiteralValue()
		if err != nil {
			return nil, err
		}
		assignments[col] = val
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	where, err := p.parseWhere()
	if err != nil {
		return nil, err
	}
	return &ast.UpdateStatement{Table: table, Assignments: assignments, Where: where}, nil
}

// parseDelete parses: DELETE FROM name [WHERE ...].
func (p *Parser) parseDelete() (*ast.DeleteStatement, error) {
	p.nextToken() // consume DELETE
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	table, err := p.parseIdentLike()
	if err != nil {
		return nil, err
	}
	where, err := p.parseWhere()
	if err != nil {
		return nil, err
	}
	return &ast.DeleteStatement{Table: table, Where: where}, nil
}

// parseCreate dispatches CREATE TABLE vs CREATE VIEW.
func (p *Parser) parseCreate() (ast.Statement, error) {
	p.nextToken() // consume CREATE
	switch p.curToken.Type {
	case token.TABLE:
		return p.parseCreateTable()
	case token.VIEW:
		return p.parseCreateView()
	default:
		return nil, fmt.Errorf("expected TABLE or VIEW after CREATE, got %s %q", p.curToken.Type, p.curToken.Literal)
	}
}

// parseCreateTable parses: CREATE TABLE [IF NOT EXISTS] name (col type [DEFAULT v], ...).
func (p *Parser) parseCreateTable() (*ast.CreateTableStatement, error) {
	p.nextToken() // consume TABLE
	stmt := &ast.CreateTableStatement{}

	if p.curIs(token.IF) {
		p.nextToken()
		if _, err := p.expect(token.NOT); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}

	name, err := p.parseIdentLike()
	if err != nil {
		return nil, err
	}
	stmt.Table = name

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	for {
		colName, err := p.parseIdentLike()
		if err != nil {
			return nil, err
		}
		colType, err := p.parseIdentLike()
		if err != nil {
			return nil, err
		}
		def := ast.ColumnDef{Name: colName, Type: colType}
		if p.curIs(token.DEFAULT) {
			p.nextToken()
			v, err := p.parseLiteralValue()
			if err != nil {
				return nil, err
			}
			def.Default = v
			def.HasDefault = true
		}
		stmt.Columns = append(stmt.Columns, def)
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseCreateView parses: CREATE VIEW name [(col,...)] AS <select>.
func (p *Parser) parseCreateView() (*ast.CreateViewStatement, error) {
	p.nextToken() // consume VIEW
	name, err := p.parseIdentLike()
	if err != nil {
		return nil, err
	}
	stmt := &ast.CreateViewStatement{View: name}

	if p.curIs(token.LPAREN) {
		p.nextToken()
		cols, err := p.parseColumnList()
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}
	if !p.curIs(token.SELECT) {
		return nil, fmt.Errorf("expected SELECT after AS, got %s %q", p.curToken.Type, p.curToken.Literal)
	}
	sel, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	stmt.Select = sel
	if len(stmt.Columns) == 0 {
		stmt.Columns = sel.Columns
	}
	return stmt, nil
}

// parseDropTable parses: DROP TABLE [IF EXISTS] name.
func (p *Parser) parseDropTable() (*ast.DropTableStatement, error) {
	p.nextToken() // consume DROP
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	stmt := &ast.DropTableStatement{}
	if p.curIs(token.IF) {
		p.nextToken()
		if _, err := p.expect(token.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfExists = true
	}
	name, err := p.parseIdentLike()
	if err != nil {
		return nil, err
	}
	stmt.Table = name
	return stmt, nil
}

// parseBegin parses: BEGIN [DEFERRED|IMMEDIATE|EXCLUSIVE] TRANSACTION.
// A bare "BEGIN TRANSACTION" defaults to DEFERRED, matching the reference's
// default lock-acquisition behaviour.
func (p *Parser) parseBegin() (*ast.BeginStatement, error) {
	p.nextToken() // consume BEGIN
	mode := ast.ModeDeferred
	switch p.curToken.Type {
	case token.DEFERRED:
		mode = ast.ModeDeferred
		p.nextToken()
	case token.IMMEDIATE:
		mode = ast.ModeImmediate
		p.nextToken()
	case token.EXCLUSIVE:
		mode = ast.ModeExclusive
		p.nextToken()
	case token.TRANSACTION:
		// no explicit mode keyword; falls through to expect below
	default:
		return nil, fmt.Errorf("%w: %q", ast.ErrUnknownTransactionMode, p.curToken.Literal)
	}
	if _, err := p.expect(token.TRANSACTION); err != nil {
		return nil, err
	}
	return &ast.BeginStatement{Mode: mode}, nil
}

// parseCommit parses: COMMIT TRANSACTION.
func (p *Parser) parseCommit() (*ast.CommitStatement, error) {
	p.nextToken() // consume COMMIT
	if _, err := p.expect(token.TRANSACTION); err != nil {
		return nil, err
	}
	return &ast.CommitStatement{}, nil
}

// parseRollback parses: ROLLBACK TRANSACTION.
func (p *Parser) parseRollback() (*ast.RollbackStatement, error) {
	p.nextToken() // consume ROLLBACK
	if _, err := p.expect(token.TRANSACTION); err != nil {
		return nil, err
	}
	return &ast.RollbackStatement{}, nil
}
