// Package token defines the lexical tokens of the sx language.
package token

import "strconv"

// Kind identifies the lexical class of a token.
type Kind int

const (
	// EOF marks the end of input. Once emitted, the lexer keeps emitting it.
	EOF Kind = iota

	// Error carries a lexical error message in the token text.
	Error

	// ParenOpen is "(" or "{".
	ParenOpen

	// ParenClose is ")" or "}".
	ParenClose

	// BracketOpen is "[".
	BracketOpen

	// BracketClose is "]".
	BracketClose

	// Quote is "~".
	Quote

	// Dot is ".".
	Dot

	// Slash is "/".
	Slash

	// Identifier is a name matching [A-Za-z_][A-Za-z0-9_-]*.
	Identifier

	// Boolean is the reclassified identifier "true" or "false".
	Boolean

	// Null is the reclassified identifier "null".
	Null

	// String is a quoted ('...') or raw (`...`) string literal.
	// The token text holds the decoded value with delimiters stripped.
	String

	// Integer is a numeric literal with no decimal point or suffix.
	Integer

	// Decimal is a numeric literal with a decimal point and no suffix.
	Decimal

	// Double is a numeric literal with a trailing "d" suffix.
	Double

	// Float is a numeric literal with a trailing "f" suffix.
	Float
)

// String returns a human-readable name for the token kind.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Error:
		return "Error"
	case ParenOpen:
		return "ParenOpen"
	case ParenClose:
		return "ParenClose"
	case BracketOpen:
		return "BracketOpen"
	case BracketClose:
		return "BracketClose"
	case Quote:
		return "Quote"
	case Dot:
		return "Dot"
	case Slash:
		return "Slash"
	case Identifier:
		return "Identifier"
	case Boolean:
		return "Boolean"
	case Null:
		return "Null"
	case String:
		return "String"
	case Integer:
		return "Integer"
	case Decimal:
		return "Decimal"
	case Double:
		return "Double"
	case Float:
		return "Float"
	default:
		return "Unknown"
	}
}

// Token is a single positioned lexeme. Tokens are immutable once produced.
type Token struct {
	// Pos is the rune offset of the token's first character in the source.
	Pos int

	// Kind is the lexical class.
	Kind Kind

	// Text is the token's value text. For String tokens it holds the decoded
	// string; for Error tokens it holds the diagnostic message; for
	// punctuation it is empty.
	Text string
}

// String returns a diagnostic representation of the token.
func (t Token) String() string {
	s := t.Kind.String()
	if t.Text != "" {
		s += "(" + strconv.Quote(t.Text) + ")"
	}

	return s + "@" + strconv.Itoa(t.Pos)
}

// Is reports whether the token has the given kind.
func (t Token) Is(k Kind) bool { return t.Kind == k }
