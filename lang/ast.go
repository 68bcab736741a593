package lang

import (
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ardnew/sx/lang/token"
)

// SExpr is a single node of the parsed syntax tree. It is a closed tagged
// union: Kind selects which payload fields are meaningful. Nodes are
// immutable once constructed and never mutated by evaluation, so a parsed
// tree may be evaluated any number of times, including concurrently.
type SExpr struct {
	Kind Kind

	// Start and End are the first and last tokens this node was parsed from,
	// retained for diagnostics.
	Start token.Token
	End   token.Token

	// Message is the parse failure description (KindError only).
	Message string

	// Inner is the deferred expression wrapped by a quote (KindQuote only).
	Inner *SExpr

	// Ident is the identifier-form node naming the invocation target, and
	// Params are the unevaluated arguments (KindInvocation only).
	Ident  *SExpr
	Params []*SExpr

	// Items are the elements of a literal list (KindList only).
	Items []*SExpr

	// Name is the variable name (KindScoped) or member name
	// (KindInstanceMember, KindStaticMember).
	Name string

	// TypePath is the dotted host type path (KindStaticMember only).
	TypePath []string

	// Literal payloads.
	Text   string          // KindString
	Int    int64           // KindInteger
	Dec    decimal.Decimal // KindDecimal
	Double float64         // KindDouble
	Float  float32         // KindFloat
	Bool   bool            // KindBoolean
}

// Kind identifies the variant of an SExpr node.
type Kind int

const (
	// KindError is a terminal parse-failure node. It never contains a
	// sub-expression.
	KindError Kind = iota

	// KindQuote wraps a deferred, unevaluated expression.
	KindQuote

	// KindInvocation applies an identifier form to a parameter list.
	KindInvocation

	// KindList is a literal data list, parsed eagerly and evaluated only
	// when walked.
	KindList

	// KindScoped is a bare name resolved through the scope chain (or, in
	// invocation position, through the extern registry).
	KindScoped

	// KindInstanceMember is a leading-dot member name; the first invocation
	// parameter supplies the receiver.
	KindInstanceMember

	// KindStaticMember is a dotted host type path plus a member name.
	KindStaticMember

	// Literal kinds evaluate to themselves.
	KindString
	KindInteger
	KindDecimal
	KindDouble
	KindFloat
	KindBoolean
	KindNull
)

// String returns a string representation of the node kind.
func (k Kind) String() string {
	switch k {
	case KindError:
		return "Error"
	case KindQuote:
		return "Quote"
	case KindInvocation:
		return "Invocation"
	case KindList:
		return "List"
	case KindScoped:
		return "ScopedIdentifier"
	case KindInstanceMember:
		return "InstanceMemberIdentifier"
	case KindStaticMember:
		return "StaticMemberIdentifier"
	case KindString:
		return "String"
	case KindInteger:
		return "Integer"
	case KindDecimal:
		return "Decimal"
	case KindDouble:
		return "Double"
	case KindFloat:
		return "Float"
	case KindBoolean:
		return "Boolean"
	case KindNull:
		return "Null"
	default:
		return "Unknown"
	}
}

// IsError reports whether the node is a parse-failure node.
func (s *SExpr) IsError() bool { return s != nil && s.Kind == KindError }

// IsLiteral reports whether the node is a self-evaluating literal.
func (s *SExpr) IsLiteral() bool {
	if s == nil {
		return false
	}

	switch s.Kind {
	case KindString, KindInteger, KindDecimal, KindDouble, KindFloat,
		KindBoolean, KindNull:
		return true
	default:
		return false
	}
}

// Equal reports whether two nodes are equal in kind and value, recursively.
// Token spans are not compared, so a formatted and re-parsed node compares
// equal to the original.
func (s *SExpr) Equal(o *SExpr) bool {
	if s == nil || o == nil {
		return s == o
	}

	if s.Kind != o.Kind {
		return false
	}

	switch s.Kind {
	case KindError:
		return s.Message == o.Message

	case KindQuote:
		return s.Inner.Equal(o.Inner)

	case KindInvocation:
		if !s.Ident.Equal(o.Ident) || len(s.Params) != len(o.Params) {
			return false
		}

		for i := range s.Params {
			if !s.Params[i].Equal(o.Params[i]) {
				return false
			}
		}

		return true

	case KindList:
		if len(s.Items) != len(o.Items) {
			return false
		}

		for i := range s.Items {
			if !s.Items[i].Equal(o.Items[i]) {
				return false
			}
		}

		return true

	case KindScoped, KindInstanceMember:
		return s.Name == o.Name

	case KindStaticMember:
		if s.Name != o.Name || len(s.TypePath) != len(o.TypePath) {
			return false
		}

		for i := range s.TypePath {
			if s.TypePath[i] != o.TypePath[i] {
				return false
			}
		}

		return true

	case KindString:
		return s.Text == o.Text

	case KindInteger:
		return s.Int == o.Int

	case KindDecimal:
		return s.Dec.Equal(o.Dec)

	case KindDouble:
		return s.Double == o.Double

	case KindFloat:
		return s.Float == o.Float

	case KindBoolean:
		return s.Bool == o.Bool

	case KindNull:
		return true

	default:
		return false
	}
}

// Print writes an indented tree representation of the node to the writer.
func (s *SExpr) Print(w io.Writer) {
	s.printIndent(w, 0)
}

func (s *SExpr) printIndent(w io.Writer, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)

	if s == nil {
		put("\n", prefix+"(nil)")

		return
	}

	switch s.Kind {
	case KindError:
		put("\n", prefix+"Error", s.Message)

	case KindQuote:
		put(":\n", prefix+"Quote")
		s.Inner.printIndent(w, indent+1)

	case KindInvocation:
		put(":\n", prefix+"Invocation")
		s.Ident.printIndent(w, indent+1)

		if len(s.Params) > 0 {
			put(":\n", prefix+"  Parameters")

			for _, p := range s.Params {
				p.printIndent(w, indent+2)
			}
		}

	case KindList:
		if len(s.Items) == 0 {
			put("\n", prefix+"List (empty)")

			return
		}

		put(":\n", prefix+"List")

		for _, item := range s.Items {
			item.printIndent(w, indent+1)
		}

	case KindScoped, KindInstanceMember:
		put("\n", prefix+s.Kind.String(), s.Name)

	case KindStaticMember:
		put("\n", prefix+s.Kind.String(),
			strings.Join(s.TypePath, ".")+"/"+s.Name)

	default:
		put("\n", prefix+s.Kind.String(), s.literalText())
	}
}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		_, err := io.WriteString(w, strings.Join(item, ": ")+eol)
		if err != nil {
			panic(err)
		}
	}
}
