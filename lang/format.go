package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"
)

// Format writes the node in canonical sx source syntax to the writer.
// Formatting a parsed node and re-parsing the output yields a node equal in
// kind and value to the original.
func (s *SExpr) Format(w io.Writer) error {
	_, err := io.WriteString(w, s.String())

	return err
}

// String returns the node in canonical sx source syntax.
func (s *SExpr) String() string {
	var sb strings.Builder

	s.format(&sb)

	return sb.String()
}

func (s *SExpr) format(sb *strings.Builder) {
	if s == nil {
		return
	}

	switch s.Kind {
	case KindError:
		// Error nodes have no source form; render a diagnostic placeholder.
		sb.WriteString("<error: ")
		sb.WriteString(s.Message)
		sb.WriteString(">")

	case KindQuote:
		sb.WriteString("~")
		s.Inner.format(sb)

	case KindInvocation:
		sb.WriteString("(")
		s.Ident.format(sb)

		for _, p := range s.Params {
			sb.WriteString(" ")
			p.format(sb)
		}

		sb.WriteString(")")

	case KindList:
		sb.WriteString("[")

		for i, item := range s.Items {
			if i > 0 {
				sb.WriteString(" ")
			}

			item.format(sb)
		}

		sb.WriteString("]")

	case KindScoped:
		sb.WriteString(s.Name)

	case KindInstanceMember:
		sb.WriteString(".")
		sb.WriteString(s.Name)

	case KindStaticMember:
		sb.WriteString(strings.Join(s.TypePath, "."))
		sb.WriteString("/")
		sb.WriteString(s.Name)

	default:
		sb.WriteString(s.literalText())
	}
}

// literalText renders a literal node's value as source text.
func (s *SExpr) literalText() string {
	switch s.Kind {
	case KindString:
		return quoteString(s.Text)

	case KindInteger:
		return strconv.FormatInt(s.Int, 10)

	case KindDecimal:
		return decimalText(s.Dec)

	case KindDouble:
		return strconv.FormatFloat(s.Double, 'f', -1, 64) + "d"

	case KindFloat:
		return strconv.FormatFloat(float64(s.Float), 'f', -1, 32) + "f"

	case KindBoolean:
		return strconv.FormatBool(s.Bool)

	case KindNull:
		return "null"

	default:
		return "<" + s.Kind.String() + ">"
	}
}

// decimalText renders a decimal with an explicit decimal point so the text
// re-parses as a Decimal rather than an Integer.
func decimalText(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// quoteString renders a single-quoted string literal, escaping exactly the
// characters the lexer decodes.
func quoteString(v string) string {
	var sb strings.Builder

	sb.WriteString("'")

	for _, r := range v {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteString("'")

	return sb.String()
}

// FormatResult renders an evaluation result in native sx syntax.
func FormatResult(result any) string {
	switch v := result.(type) {
	case nil:
		return "null"

	case bool:
		return strconv.FormatBool(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case int:
		return strconv.Itoa(v)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64) + "d"

	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32) + "f"

	case decimal.Decimal:
		return decimalText(v)

	case string:
		return quoteString(v)

	case *SExpr:
		// A quoted expression renders as its deferred source form.
		return "~" + v.String()

	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = FormatResult(item)
		}

		return "[" + strings.Join(parts, " ") + "]"

	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatJSON writes an evaluation result as JSON to the writer.
func FormatJSON(_ context.Context, w io.Writer, result any, indent int) error {
	var (
		data []byte
		err  error
	)

	v := normalizeResult(result)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes an evaluation result as YAML to the writer.
func FormatYAML(ctx context.Context, w io.Writer, result any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, normalizeResult(result), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// normalizeResult converts runtime values without a useful marshal form into
// plain Go data: decimals become their exact string representation and
// quoted expressions become their source text.
func normalizeResult(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.String()

	case *SExpr:
		return "~" + t.String()

	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeResult(item)
		}

		return out

	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeResult(item)
		}

		return out

	default:
		return v
	}
}

// ToNative converts a parsed node to a plain Go data structure without
// evaluating it, suitable for JSON or YAML rendering of the syntax tree.
func (s *SExpr) ToNative() any {
	if s == nil {
		return nil
	}

	switch s.Kind {
	case KindError:
		return map[string]any{"error": s.Message}

	case KindQuote:
		return map[string]any{"quote": s.Inner.ToNative()}

	case KindInvocation:
		params := make([]any, len(s.Params))
		for i, p := range s.Params {
			params[i] = p.ToNative()
		}

		return map[string]any{
			"call": s.Ident.String(),
			"args": params,
		}

	case KindList:
		items := make([]any, len(s.Items))
		for i, item := range s.Items {
			items[i] = item.ToNative()
		}

		return items

	case KindScoped, KindInstanceMember, KindStaticMember:
		return s.String()

	case KindString:
		return s.Text

	case KindInteger:
		return s.Int

	case KindDecimal:
		return s.Dec.String()

	case KindDouble:
		return s.Double

	case KindFloat:
		return s.Float

	case KindBoolean:
		return s.Bool

	case KindNull:
		return nil

	default:
		return nil
	}
}
