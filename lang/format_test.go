package lang

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestString_Canonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "integer", input: "5", want: "5"},
		{name: "negative integer", input: "-17", want: "-17"},
		{name: "decimal", input: "1.5", want: "1.5"},
		{name: "double", input: "1.5d", want: "1.5d"},
		{name: "float", input: "1.5f", want: "1.5f"},
		{name: "string", input: "'hello'", want: "'hello'"},
		{name: "string escapes", input: `'a\nb'`, want: `'a\nb'`},
		{name: "boolean", input: "true", want: "true"},
		{name: "null", input: "null", want: "null"},
		{name: "list", input: "[1,2,3]", want: "[1 2 3]"},
		{name: "empty list", input: "[]", want: "[]"},
		{name: "invocation", input: "{add 1 2}", want: "(add 1 2)"},
		{name: "zero parameters", input: "(now)", want: "(now)"},
		{name: "quote", input: "~(eq 1 1)", want: "~(eq 1 1)"},
		{name: "instance member", input: "(.count b)", want: "(.count b)"},
		{
			name:  "static member",
			input: "(math . rand / intn 10)",
			want:  "(math.rand/intn 10)",
		},
		{
			name:  "nested",
			input: "(if (eq 1 1) [1 ~x] 'no')",
			want:  "(if (eq 1 1) [1 ~x] 'no')",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := mustParse(t, tt.input)

			if got := node.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestString_RoundTrip(t *testing.T) {
	inputs := []string{
		"5",
		"-17",
		"1.5",
		"1.50",
		"1.5d",
		"1.5f",
		"2d",
		"'hello'",
		`'tab\there'`,
		"''",
		"true",
		"false",
		"null",
		"[1 2.5 'three' true null]",
		"~(if true true false)",
		"(add 1 (add 2 3))",
		"(.length 'hello')",
		"(math.rand/intn 10)",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := mustParse(t, input)

			again, err := ParseString(context.Background(), first.String())
			if err != nil {
				t.Fatalf("re-parse error: %v", err)
			}

			if !first.Equal(again) {
				t.Errorf("round trip changed %q: %q", input, first.String())
			}
		})
	}
}

func TestString_DecimalKeepsDot(t *testing.T) {
	// A decimal with no fractional digits must still render with a point,
	// or it would re-parse as an integer.
	node := &SExpr{Kind: KindDecimal, Dec: decimal.RequireFromString("3.0")}

	text := node.String()
	if !strings.Contains(text, ".") {
		t.Fatalf("expected decimal point in %q", text)
	}

	again, err := ParseString(context.Background(), text)
	if err != nil {
		t.Fatalf("re-parse error: %v", err)
	}

	if again.Kind != KindDecimal {
		t.Errorf("expected Decimal after round trip, got %v", again.Kind)
	}
}

func TestFormat_Writer(t *testing.T) {
	var buf bytes.Buffer

	if err := mustParse(t, "(eq 1 1)").Format(&buf); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if buf.String() != "(eq 1 1)" {
		t.Errorf("expected (eq 1 1), got %q", buf.String())
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "null", value: nil, want: "null"},
		{name: "boolean", value: true, want: "true"},
		{name: "integer", value: int64(5), want: "5"},
		{name: "double", value: float64(1.5), want: "1.5d"},
		{name: "float", value: float32(1.5), want: "1.5f"},
		{name: "decimal", value: decimal.RequireFromString("1.5"), want: "1.5"},
		{name: "string", value: "hi", want: "'hi'"},
		{
			name:  "list",
			value: []any{int64(1), "a", nil},
			want:  "[1 'a' null]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatResult(tt.value); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormatResult_Quote(t *testing.T) {
	ev := NewEvaluator()

	got, err := evalString(t, ev, "~(eq 1 1)")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if text := FormatResult(got); text != "~(eq 1 1)" {
		t.Errorf("expected ~(eq 1 1), got %q", text)
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer

	err := FormatJSON(context.Background(), &buf, []any{int64(1), "a"}, 0)
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != `[1,"a"]` {
		t.Errorf("expected [1,\"a\"], got %q", got)
	}
}

func TestFormatYAML(t *testing.T) {
	var buf bytes.Buffer

	err := FormatYAML(context.Background(), &buf, []any{int64(1), "a"}, 2)
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "- 1") || !strings.Contains(out, "- a") {
		t.Errorf("unexpected yaml output %q", out)
	}
}

func TestToNative(t *testing.T) {
	node := mustParse(t, "[1 'a' (add 2 3) ~x null]")

	native, ok := node.ToNative().([]any)
	if !ok {
		t.Fatalf("expected []any, got %T", node.ToNative())
	}

	if len(native) != 5 {
		t.Fatalf("expected 5 items, got %d", len(native))
	}

	if native[0] != int64(1) || native[1] != "a" || native[4] != nil {
		t.Errorf("unexpected native literals: %v", native)
	}

	call, ok := native[2].(map[string]any)
	if !ok || call["call"] != "add" {
		t.Errorf("expected invocation map, got %v", native[2])
	}

	quote, ok := native[3].(map[string]any)
	if !ok || quote["quote"] != "x" {
		t.Errorf("expected quote map, got %v", native[3])
	}
}
