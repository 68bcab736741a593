// Package lexer converts sx source text into a stream of positioned tokens.
//
// The lexer is pulled one token at a time by the parser. It maintains a
// single rune of lookahead and a running rune offset that becomes each
// token's position. It never backtracks; once end of input is observed,
// every subsequent call returns an EOF token.
package lexer

import (
	"github.com/ardnew/sx/lang/token"
)

// Lexer produces tokens from a fixed source text.
// A Lexer holds a cursor over one input and is not safe for concurrent use.
type Lexer struct {
	src []rune
	pos int // rune offset of the next unread character
}

// New creates a Lexer over the given source runes.
func New(src []rune) *Lexer {
	return &Lexer{src: src}
}

// NewFromString creates a Lexer over the given source string.
func NewFromString(src string) *Lexer {
	return New([]rune(src))
}

// Pos returns the rune offset of the next unread character.
func (l *Lexer) Pos() int { return l.pos }

const eof = rune(-1)

// peek returns the next character without consuming it.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return eof
	}

	return l.src[l.pos]
}

// next consumes and returns the next character.
func (l *Lexer) next() rune {
	r := l.peek()
	if r != eof {
		l.pos++
	}

	return r
}

// isSpace reports whether r belongs to the insignificant whitespace class.
// Commas are whitespace, so argument lists may be written with or without
// separators.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', ',', '\r', '\n':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '-'
}

// Next returns the next token in the source.
func (l *Lexer) Next() token.Token {
	for isSpace(l.peek()) {
		l.next()
	}

	start := l.pos

	r := l.peek()

	switch {
	case r == eof:
		return token.Token{Pos: start, Kind: token.EOF}

	case r == '(' || r == '{':
		l.next()

		return token.Token{Pos: start, Kind: token.ParenOpen}

	case r == ')' || r == '}':
		l.next()

		return token.Token{Pos: start, Kind: token.ParenClose}

	case r == '[':
		l.next()

		return token.Token{Pos: start, Kind: token.BracketOpen}

	case r == ']':
		l.next()

		return token.Token{Pos: start, Kind: token.BracketClose}

	case r == '~':
		l.next()

		return token.Token{Pos: start, Kind: token.Quote}

	case r == '.':
		l.next()

		return token.Token{Pos: start, Kind: token.Dot}

	case r == '/':
		l.next()

		return token.Token{Pos: start, Kind: token.Slash}

	case r == '\'':
		return l.lexString(start)

	case r == '`':
		return l.lexRawString(start)

	case isDigit(r) || r == '-':
		return l.lexNumber(start)

	case isIdentStart(r):
		return l.lexIdentifier(start)

	default:
		l.next()

		return token.Token{
			Pos:  start,
			Kind: token.Error,
			Text: "unexpected character " + string(r),
		}
	}
}

// lexIdentifier scans an identifier and reclassifies the boolean and null
// keywords.
func (l *Lexer) lexIdentifier(start int) token.Token {
	for isIdentPart(l.peek()) {
		l.next()
	}

	text := string(l.src[start:l.pos])

	switch text {
	case "true", "false":
		return token.Token{Pos: start, Kind: token.Boolean, Text: text}
	case "null":
		return token.Token{Pos: start, Kind: token.Null, Text: text}
	default:
		return token.Token{Pos: start, Kind: token.Identifier, Text: text}
	}
}

// lexString scans a single-quoted string literal, decoding backslash escapes.
// The supported escapes are \\ \' \n \r \t; anything else is a lexical error,
// as is end of input before the closing quote.
func (l *Lexer) lexString(start int) token.Token {
	l.next() // opening quote

	var out []rune

	for {
		r := l.next()

		switch r {
		case eof:
			return token.Token{
				Pos:  start,
				Kind: token.Error,
				Text: "unterminated string literal",
			}

		case '\'':
			return token.Token{Pos: start, Kind: token.String, Text: string(out)}

		case '\\':
			esc := l.next()

			switch esc {
			case '\\':
				out = append(out, '\\')
			case '\'':
				out = append(out, '\'')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case eof:
				return token.Token{
					Pos:  start,
					Kind: token.Error,
					Text: "unterminated string literal",
				}
			default:
				return token.Token{
					Pos:  start,
					Kind: token.Error,
					Text: "unknown escape character " + string(esc),
				}
			}

		default:
			out = append(out, r)
		}
	}
}

// lexRawString scans a backtick-delimited raw string literal. No escape
// processing occurs; every character, including newlines, is copied verbatim
// until the closing backtick.
func (l *Lexer) lexRawString(start int) token.Token {
	l.next() // opening backtick

	var out []rune

	for {
		r := l.next()

		switch r {
		case eof:
			return token.Token{
				Pos:  start,
				Kind: token.Error,
				Text: "unterminated raw string literal",
			}

		case '`':
			return token.Token{Pos: start, Kind: token.String, Text: string(out)}

		default:
			out = append(out, r)
		}
	}
}

// lexNumber scans a numeric literal. Digits and decimal points are
// accumulated; a second decimal point is accepted here and rejected later by
// the numeric parse. A trailing "d" forces Double, a trailing "f" forces
// Float, otherwise the presence of a decimal point selects Decimal and its
// absence selects Integer.
func (l *Lexer) lexNumber(start int) token.Token {
	dotted := false

	if l.peek() == '-' {
		l.next()
	}

	for {
		r := l.peek()

		switch {
		case isDigit(r):
			l.next()

		case r == '.':
			dotted = true

			l.next()

		default:
			text := string(l.src[start:l.pos])

			switch r {
			case 'd':
				l.next()

				return token.Token{Pos: start, Kind: token.Double, Text: text}

			case 'f':
				l.next()

				return token.Token{Pos: start, Kind: token.Float, Text: text}
			}

			if dotted {
				return token.Token{Pos: start, Kind: token.Decimal, Text: text}
			}

			return token.Token{Pos: start, Kind: token.Integer, Text: text}
		}
	}
}
