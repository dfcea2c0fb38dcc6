// Package parser turns a token stream into a tagged ast.Statement, replacing
// the reference implementation's positional token scanning per
// SPEC_FULL.md §4.2 (and the teacher's own curToken/peekToken idiom).
package parser

import (
	"fmt"

	"github.com/go-embeddb/embeddb/pkg/ast"
	"github.com/go-embeddb/embeddb/pkg/token"
)

// Parser consumes a fixed token slice produced by pkg/lexer.
type Parser struct {
	tokens    []token.Token
	pos       int
	curToken  token.Token
	peekToken token.Token
}

// New constructs a Parser over tokens (which need not include a trailing
// EOF; one is synthesized if absent).
func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF, Literal: ""})
	}
	p := &Parser{tokens: tokens}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = token.Token{Type: token.EOF}
	}
}

func (p *Parser) curIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expect(t token.Type) (token.Token, error) {
	if !p.curIs(t) {
		return token.Token{}, fmt.Errorf("expected %s, got %s %q", t, p.curToken.Type, p.curToken.Literal)
	}
	tok := p.curToken
	p.nextToken()
	return tok, nil
}

// ParseStatement parses exactly one terminated statement from the token
// stream. An unrecognized leading verb yields ast.ErrUnknownStatement; a
// missing trailing ';' (or any other structural defect) yields a plain
// error that callers treat as malformed-statement (SPEC_FULL.md §4.2).
func (p *Parser) ParseStatement() (ast.Statement, error) {
	var stmt ast.Statement
	var err error

	switch p.curToken.Type {
	case token.SELECT:
		stmt, err = p.parseSelect()
	case token.INSERT:
		stmt, err = p.parseInsert()
	case token.UPDATE:
		stmt, err = p.parseUpdate()
	case token.DELETE:
		stmt, err = p.parseDelete()
	case token.CREATE:
		stmt, err = p.parseCreate()
	case token.DROP:
		stmt, err = p.parseDropTable()
	case token.BEGIN:
		stmt, err = p.parseBegin()
	case token.COMMIT:
		stmt, err = p.parseCommit()
	case token.ROLLBACK:
		stmt, err = p.parseRollback()
	default:
		return nil, ast.ErrUnknownStatement
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, fmt.Errorf("malformed statement: missing terminating semicolon: %w", err)
	}
	return stmt, nil
}

func (p *Parser) parseIdentLike() (string, error) {
	if p.curIs(token.IDENT) {
		lit := p.curToken.Literal
		p.nextToken()
		return lit, nil
	}
	// allow keywords to double as identifiers in column/table position
	// (e.g. a column literally named "MAX").
	if name := token.KeywordName(p.curToken.Type); name != "" {
		p.nextToken()
		return name, nil
	}
	return "", fmt.Errorf("expected identifier, got %s %q", p.curToken.Type, p.curToken.Literal)
}

func (p *Parser) parseLiteralValue() (any, error) {
	switch p.curToken.Type {
	case token.INT, token.REAL, token.STRING:
		v := p.curToken.Value
		p.nextToken()
		return v, nil
	case token.NULLTOK:
		p.nextToken()
		return nil, nil
	default:
		return nil, fmt.Errorf("expected literal value, got %s %q", p.curToken.Type, p.curToken.Literal)
	}
}

func opFromToken(t token.Type) string {
	switch t {
	case token.EQ:
		return "="
	case token.NOT_EQ:
		return "!="
	case token.LT:
		return "<"
	case token.LTE:
		return "<="
	case token.GT:
		return ">"
	case token.GTE:
		return ">="
	default:
		return ""
	}
}

// parseWhere parses an optional WHERE column op value clause.
func (p *Parser) parseWhere() (*ast.Predicate, error) {
	if !p.curIs(token.WHERE) {
		return nil, nil
	}
	p.nextToken()
	col, err := p.parseIdentLike()
	if err != nil {
		return nil, err
	}
	if p.curIs(token.IS) {
		p.nextToken()
		op := "IS"
		if p.curIs(token.NOT) {
			p.nextToken()
			op = "IS NOT"
		}
		if _, err := p.expect(token.NULLTOK); err != nil {
			return nil, err
		}
		return &ast.Predicate{Column: col, Op: op}, nil
	}
	op := opFromToken(p.curToken.Type)
	if op == "" {
		return nil, fmt.Errorf("expected comparison operator, got %s %q", p.curToken.Type, p.curToken.Literal)
	}
	p.nextToken()
	val, err := p.parseLiteralValue()
	if err != nil {
		return nil, err
	}
	return &ast.Predicate{Column: col, Op: op, Value: val}, nil
}

// parseOrderBy parses an optional ORDER BY col[,col...] [ASC|DESC] clause.
func (p *Parser) parseOrderBy() (*ast.OrderBy, error) {
	if !p.curIs(token.ORDER) {
		return nil, nil
	}
	p.nextToken()
	if _, err := p.expect(token.BY); err != nil {
		return nil, err
	}
	ob := &ast.OrderBy{}
	for {
		col, err := p.parseIdentLike()
		if err != nil {
			return nil, err
		}
		ob.Columns = append(ob.Columns, col)
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if p.curIs(token.DESC) {
		ob.Desc = true
		p.nextToken()
	} else if p.curIs(token.ASC) {
		p.nextToken()
	}
	return ob, nil
}
