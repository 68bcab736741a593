package lexer

import (
	"testing"

	"github.com/ardnew/sx/lang/token"
)

func TestNext_Punctuation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Kind
	}{
		{
			name:  "parens",
			input: "()",
			want:  []token.Kind{token.ParenOpen, token.ParenClose},
		},
		{
			name:  "braces are parens",
			input: "{}",
			want:  []token.Kind{token.ParenOpen, token.ParenClose},
		},
		{
			name:  "brackets",
			input: "[]",
			want:  []token.Kind{token.BracketOpen, token.BracketClose},
		},
		{
			name:  "quote dot slash",
			input: "~ . /",
			want:  []token.Kind{token.Quote, token.Dot, token.Slash},
		},
		{
			name:  "commas are whitespace",
			input: "(,)",
			want:  []token.Kind{token.ParenOpen, token.ParenClose},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx := NewFromString(tt.input)

			for i, want := range tt.want {
				tok := lx.Next()
				if tok.Kind != want {
					t.Errorf("token %d: expected %v, got %v", i, want, tok.Kind)
				}
			}

			if tok := lx.Next(); tok.Kind != token.EOF {
				t.Errorf("expected EOF, got %v", tok.Kind)
			}
		})
	}
}

func TestNext_Identifiers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  token.Kind
		text  string
	}{
		{name: "simple", input: "foo", kind: token.Identifier, text: "foo"},
		{name: "underscore start", input: "_x", kind: token.Identifier, text: "_x"},
		{
			name:  "hyphen and digits",
			input: "log-level2",
			kind:  token.Identifier,
			text:  "log-level2",
		},
		{name: "true keyword", input: "true", kind: token.Boolean, text: "true"},
		{name: "false keyword", input: "false", kind: token.Boolean, text: "false"},
		{name: "null keyword", input: "null", kind: token.Null, text: "null"},
		{
			name:  "keyword prefix stays identifier",
			input: "nullable",
			kind:  token.Identifier,
			text:  "nullable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := NewFromString(tt.input).Next()

			if tok.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, tok.Kind)
			}

			if tok.Text != tt.text {
				t.Errorf("expected text %q, got %q", tt.text, tok.Text)
			}
		})
	}
}

func TestNext_Strings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  token.Kind
		text  string
	}{
		{name: "empty", input: "''", kind: token.String, text: ""},
		{name: "plain", input: "'hello'", kind: token.String, text: "hello"},
		{
			name:  "newline escape",
			input: `'hello\nworld'`,
			kind:  token.String,
			text:  "hello\nworld",
		},
		{
			name:  "all escapes",
			input: `'\\\'\n\r\t'`,
			kind:  token.String,
			text:  "\\'\n\r\t",
		},
		{
			name:  "raw string keeps backslashes",
			input: "`a\\nb`",
			kind:  token.String,
			text:  `a\nb`,
		},
		{
			name:  "raw string keeps newlines",
			input: "`a\nb`",
			kind:  token.String,
			text:  "a\nb",
		},
		{name: "unterminated", input: "'abc", kind: token.Error},
		{name: "unterminated raw", input: "`abc", kind: token.Error},
		{name: "unknown escape", input: `'\q'`, kind: token.Error},
		{name: "eof after backslash", input: `'abc\`, kind: token.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := NewFromString(tt.input).Next()

			if tok.Kind != tt.kind {
				t.Fatalf("expected kind %v, got %v (%q)", tt.kind, tok.Kind, tok.Text)
			}

			if tt.kind == token.String && tok.Text != tt.text {
				t.Errorf("expected text %q, got %q", tt.text, tok.Text)
			}
		})
	}
}

func TestNext_EscapedStringLength(t *testing.T) {
	tok := NewFromString(`'hello\nworld'`).Next()

	if tok.Kind != token.String {
		t.Fatalf("expected String, got %v", tok.Kind)
	}

	if len(tok.Text) != 11 {
		t.Errorf("expected decoded length 11, got %d", len(tok.Text))
	}
}

func TestNext_Numbers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  token.Kind
		text  string
	}{
		{name: "integer", input: "5", kind: token.Integer, text: "5"},
		{name: "negative integer", input: "-17", kind: token.Integer, text: "-17"},
		{name: "decimal", input: "1.5", kind: token.Decimal, text: "1.5"},
		{name: "double suffix", input: "1.5d", kind: token.Double, text: "1.5"},
		{name: "float suffix", input: "1.5f", kind: token.Float, text: "1.5"},
		{name: "double without dot", input: "2d", kind: token.Double, text: "2"},
		{name: "float without dot", input: "2f", kind: token.Float, text: "2"},
		{
			name:  "multiple dots pass the lexer",
			input: "1.5.5",
			kind:  token.Decimal,
			text:  "1.5.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := NewFromString(tt.input).Next()

			if tok.Kind != tt.kind {
				t.Fatalf("expected kind %v, got %v", tt.kind, tok.Kind)
			}

			if tok.Text != tt.text {
				t.Errorf("expected text %q, got %q", tt.text, tok.Text)
			}
		})
	}
}

func TestNext_EOFIsSticky(t *testing.T) {
	lx := NewFromString("x")

	if tok := lx.Next(); tok.Kind != token.Identifier {
		t.Fatalf("expected Identifier, got %v", tok.Kind)
	}

	for range 3 {
		if tok := lx.Next(); tok.Kind != token.EOF {
			t.Errorf("expected sticky EOF, got %v", tok.Kind)
		}
	}
}

func TestNext_Positions(t *testing.T) {
	lx := NewFromString("  foo 'bar'")

	tok := lx.Next()
	if tok.Pos != 2 {
		t.Errorf("expected identifier at offset 2, got %d", tok.Pos)
	}

	tok = lx.Next()
	if tok.Pos != 6 {
		t.Errorf("expected string at offset 6, got %d", tok.Pos)
	}
}

func TestNext_UnexpectedCharacter(t *testing.T) {
	tok := NewFromString("#").Next()

	if tok.Kind != token.Error {
		t.Errorf("expected Error, got %v", tok.Kind)
	}
}
