package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput          = NewError("failed to read input")
	ErrUnboundName        = NewError("unbound identifier")
	ErrUndefinedFunction  = NewError("undefined function")
	ErrExternRedefined    = NewError("extern function already registered")
	ErrBindingRedefined   = NewError("binding already defined")
	ErrArityMismatch      = NewError("wrong number of arguments")
	ErrTypeMismatch       = NewError("type mismatch")
	ErrNotQuoted          = NewError("eval argument is not a quoted expression")
	ErrNullReceiver       = NewError("null receiver in instance member call")
	ErrUnresolvedType     = NewError("unresolved host type")
	ErrUnresolvedMember   = NewError("unresolved host member")
	ErrNoBinder           = NewError("no host binder configured")
	ErrInvalidNode        = NewError("invalid node kind")
	ErrInvalidNumber      = NewError("invalid number value")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target shares this error's base message, so errors
// derived from a sentinel via [Error.Wrap] or [Error.With] still match the
// sentinel under errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// ParseError is the raised form of a parse-failure node, produced by the
// convenience entry points. Library callers that parse with [Parse] may
// instead inspect the Error node directly.
type ParseError struct {
	Message string // The failure description from the Error node
	Pos     int    // Rune offset of the offending token
	Source  string // The original source input, for snippet rendering
}

// NewParseError creates a ParseError from an Error node and its source.
func NewParseError(node *SExpr, source string) *ParseError {
	return &ParseError{
		Message: node.Message,
		Pos:     node.Start.Pos,
		Source:  source,
	}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Source == "" {
		return "parse error at offset " + strconv.Itoa(e.Pos) + ": " + e.Message
	}

	line, col := e.lineCol()

	var buf strings.Builder

	// Write error location and description
	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(col))
	buf.WriteString(": ")
	buf.WriteString(e.Message)
	buf.WriteString("\n")

	// Show the offending line with a caret marker
	lines := strings.Split(e.Source, "\n")
	if line > 0 && line <= len(lines) {
		text := lines[line-1]

		buf.WriteString("  ")
		buf.WriteString(strconv.Itoa(line))
		buf.WriteString(" | ")
		buf.WriteString(text)
		buf.WriteRune('\n')

		// +5 accounts for: 2 leading spaces + " | " (3 chars)
		lineNumWidth := len(strconv.Itoa(line))
		padding := strings.Repeat(" ", lineNumWidth+5)

		if col > 0 {
			padding += strings.Repeat(" ", col-1)
		}

		buf.WriteString(padding + "^")
	}

	return buf.String()
}

// lineCol converts the rune offset into 1-based line and column numbers.
func (e *ParseError) lineCol() (line, col int) {
	line, col = 1, 1

	for i, r := range []rune(e.Source) {
		if i >= e.Pos {
			break
		}

		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return line, col
}
