// Package lexer turns SQL source text into a stream of token.Token values
// per the grammar in SPEC_FULL.md §4.1: identifiers (including qualified
// table.col and the wildcard *), integer/real/text literals, the NULL
// marker, punctuation, and comparison operators.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-embeddb/embeddb/pkg/token"
)

// Lexer scans a single SQL statement into tokens.
type Lexer struct {
	input string
	pos   int
}

// New returns a Lexer positioned at the start of input.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

const identStart = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_"
const identRest = identStart + "0123456789.*"
const numRest = "0123456789-.E"

// Tokenize scans the entire input and returns its tokens, always ending
// with a token.EOF. It fails with a malformed-statement error if a single
// scan iteration fails to consume any input, mirroring the reference
// tokenizer's no-progress check. Single-character operator tokens are
// folded into compound operators (!=, >=, =<) immediately after scanning,
// mirroring the reference tokenizer's in-place extension of tokens[-1].
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var tokens []token.Token
	for {
		before := l.pos
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if isOperatorChar(tok) && len(tokens) > 0 {
			if combined, ok := ExtendOperator(tokens[len(tokens)-1], tok.Literal[0]); ok {
				tokens[len(tokens)-1] = combined
				if l.pos == before {
					return nil, fmt.Errorf("malformed statement: tokenizer made no progress at position %d", before)
				}
				continue
			}
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
		if l.pos == before {
			return nil, fmt.Errorf("malformed statement: tokenizer made no progress at position %d", before)
		}
	}
	return tokens, nil
}

func (l *Lexer) next() (token.Token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, Position: l.pos}, nil
	}

	c := l.input[l.pos]
	switch {
	case strings.IndexByte(identStart, c) >= 0:
		return l.scanWord(), nil
	case c == '(' || c == ')' || c == ',' || c == ';':
		return l.scanPunct(c), nil
	case c == '*':
		start := l.pos
		l.pos++
		return token.Token{Type: token.IDENT, Literal: "*", Value: "*", Position: start}, nil
	case c == '\'':
		return l.scanString()
	case isDigit(c) || c == '-':
		return l.scanNumber(), nil
	case c == '<' || c == '>' || c == '=' || c == '!':
		return l.scanOperator(c), nil
	}

	return token.Token{}, fmt.Errorf("malformed statement: unexpected character %q at position %d", c, l.pos)
}

func isOperatorChar(tok token.Token) bool {
	switch tok.Type {
	case token.EQ, token.LT, token.GT:
		return true
	}
	return tok.Type == token.ILLEGAL && tok.Literal == "!"
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && isWhitespace(l.input[l.pos]) {
		l.pos++
	}
}

func isWhitespace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }

// scanWord consumes the longest run of identifier characters and emits
// either the NULL marker or an identifier token.
func (l *Lexer) scanWord() token.Token {
	start := l.pos
	for l.pos < len(l.input) && strings.IndexByte(identRest, l.input[l.pos]) >= 0 {
		l.pos++
	}
	word := l.input[start:l.pos]
	if word == "NULL" {
		return token.Token{Type: token.NULLTOK, Literal: word, Value: nil, Position: start}
	}
	return token.Token{Type: token.LookupIdent(word), Literal: word, Value: word, Position: start}
}

func (l *Lexer) scanPunct(c byte) token.Token {
	start := l.pos
	l.pos++
	var t token.Type
	switch c {
	case '(':
		t = token.LPAREN
	case ')':
		t = token.RPAREN
	case ',':
		t = token.COMMA
	case ';':
		t = token.SEMICOLON
	}
	return token.Token{Type: t, Literal: string(c), Position: start}
}

// scanString consumes a single-quoted text literal, collapsing '' into a
// single embedded quote.
func (l *Lexer) scanString() (token.Token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.input) {
			return token.Token{}, fmt.Errorf("malformed statement: unterminated text literal starting at position %d", start)
		}
		c := l.input[l.pos]
		if c == '\'' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				sb.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			break
		}
		sb.WriteByte(c)
		l.pos++
	}
	text := sb.String()
	return token.Token{Type: token.STRING, Literal: text, Value: text, Position: start}, nil
}

// scanNumber consumes a run of digits/-./E and emits an INT or REAL token,
// a real iff the run contains '.' or the exponent marker 'E'.
func (l *Lexer) scanNumber() token.Token {
	start := l.pos
	for l.pos < len(l.input) && strings.IndexByte(numRest, l.input[l.pos]) >= 0 {
		l.pos++
	}
	text := l.input[start:l.pos]
	if strings.ContainsAny(text, ".E") {
		v, _ := strconv.ParseFloat(text, 64)
		return token.Token{Type: token.REAL, Literal: text, Value: v, Position: start}
	}
	v, _ := strconv.ParseInt(text, 10, 64)
	return token.Token{Type: token.INT, Literal: text, Value: v, Position: start}
}

// scanOperator consumes a single operator character. Compound operators
// (!=, >=, =<) are never produced here — Tokenize folds two adjacent
// single-char operator tokens together immediately after each scan, which
// is where opType for the compound forms is resolved.
func (l *Lexer) scanOperator(c byte) token.Token {
	start := l.pos
	l.pos++
	return token.Token{Type: opType(string(c)), Literal: string(c), Position: start}
}

func opType(lit string) token.Type {
	switch lit {
	case "=":
		return token.EQ
	case "<":
		return token.LT
	case ">":
		return token.GT
	case "!=":
		return token.NOT_EQ
	case ">=":
		return token.GTE
	case "=<":
		return token.LTE
	default:
		return token.ILLEGAL // lone "!" never forms a valid standalone operator
	}
}

// ExtendOperator reports whether appending next to prev's literal forms a
// recognized compound operator, returning the combined token if so.
func ExtendOperator(prev token.Token, next byte) (token.Token, bool) {
	if len(prev.Literal) != 1 {
		return token.Token{}, false
	}
	switch {
	case (prev.Literal == "!" || prev.Literal == ">" || prev.Literal == "=") && next == '=':
		lit := prev.Literal + "="
		return token.Token{Type: opType(lit), Literal: lit, Position: prev.Position}, true
	case prev.Literal == "=" && next == '<':
		lit := "=<"
		return token.Token{Type: opType(lit), Literal: lit, Position: prev.Position}, true
	}
	return token.Token{}, false
}
