package lexer

import (
	"testing"

	"github.com/go-embeddb/embeddb/pkg/token"
)

func TestTokenizeKeywordsAndIdents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Type
	}{
		{
			name:  "simple select",
			input: "SELECT * FROM names;",
			want:  []token.Type{token.SELECT, token.IDENT, token.FROM, token.IDENT, token.SEMICOLON, token.EOF},
		},
		{
			name:  "qualified column",
			input: "SELECT names.id FROM names;",
			want:  []token.Type{token.SELECT, token.IDENT, token.FROM, token.IDENT, token.SEMICOLON, token.EOF},
		},
		{
			name:  "null literal",
			input: "WHERE id IS NOT NULL;",
			want:  []token.Type{token.WHERE, token.IDENT, token.IS, token.NOT, token.NULLTOK, token.SEMICOLON, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) returned error: %v", tt.input, err)
			}
			if len(toks) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %d tokens, want %d: %v", tt.input, len(toks), len(tt.want), toks)
			}
			for i, typ := range tt.want {
				if toks[i].Type != typ {
					t.Errorf("token %d: got %s, want %s", i, toks[i].Type, typ)
				}
			}
		})
	}
}

func TestTokenizeOperatorExtension(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Type
	}{
		{"not equal", "id != 3;", []token.Type{token.IDENT, token.NOT_EQ, token.INT, token.SEMICOLON, token.EOF}},
		{"greater equal", "id >= 3;", []token.Type{token.IDENT, token.GTE, token.INT, token.SEMICOLON, token.EOF}},
		{"equal extends to =<", "id =< 3;", []token.Type{token.IDENT, token.LTE, token.INT, token.SEMICOLON, token.EOF}},
		{
			// The reference tokenizer never folds '<' followed by '=' into
			// a single token; a literal "<=" spelling stays two tokens.
			"literal <= stays split",
			"id <= 3;",
			[]token.Type{token.IDENT, token.LT, token.EQ, token.INT, token.SEMICOLON, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) returned error: %v", tt.input, err)
			}
			if len(toks) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %d tokens, want %d: %v", tt.input, len(toks), len(tt.want), toks)
			}
			for i, typ := range tt.want {
				if toks[i].Type != typ {
					t.Errorf("token %d: got %s, want %s", i, toks[i].Type, typ)
				}
			}
		})
	}
}

func TestTokenizeStringEscape(t *testing.T) {
	toks, err := Tokenize(`'it''s' ;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Type != token.STRING || toks[0].Value != "it's" {
		t.Fatalf("got %+v, want STRING \"it's\"", toks[0])
	}
}

func TestTokenizeNumbers(t *testing.T) {
	toks, err := Tokenize("1 2.5 1E3;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Type != token.INT || toks[0].Value != int64(1) {
		t.Errorf("got %+v, want INT 1", toks[0])
	}
	if toks[1].Type != token.REAL || toks[1].Value != 2.5 {
		t.Errorf("got %+v, want REAL 2.5", toks[1])
	}
	if toks[2].Type != token.REAL {
		t.Errorf("got %+v, want REAL for exponent form", toks[2])
	}
}

func TestTokenizeMalformedStatement(t *testing.T) {
	if _, err := Tokenize("SELECT @ FROM t;"); err == nil {
		t.Fatal("expected malformed-statement error for unexpected character")
	}
}
