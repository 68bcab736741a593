package lang

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

// mustParse parses a single expression or fails the test.
func mustParse(t *testing.T, input string) *SExpr {
	t.Helper()

	node, err := ParseString(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return node
}

// evalString parses and evaluates a single expression.
func evalString(t *testing.T, ev *Evaluator, input string) (any, error) {
	t.Helper()

	return ev.Eval(context.Background(), mustParse(t, input))
}

func TestEval_Literals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{name: "integer", input: "5", want: int64(5)},
		{name: "double", input: "1.5d", want: float64(1.5)},
		{name: "float", input: "1.5f", want: float32(1.5)},
		{name: "string", input: "'hello'", want: "hello"},
		{name: "boolean", input: "true", want: true},
		{name: "null", input: "null", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluator()

			got, err := evalString(t, ev, tt.input)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestEval_DecimalLiteral(t *testing.T) {
	ev := NewEvaluator()

	got, err := evalString(t, ev, "1.5")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	dec, ok := got.(decimal.Decimal)
	if !ok {
		t.Fatalf("expected decimal.Decimal, got %T", got)
	}

	if !dec.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("expected 1.5, got %s", dec)
	}
}

func TestEval_List(t *testing.T) {
	ev := NewEvaluator()

	got, err := evalString(t, ev, "[1 2 3]")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	want := []any{int64(1), int64(2), int64(3)}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestEval_ListEvaluatesElements(t *testing.T) {
	ev := NewEvaluator()
	ev.Bind("x", int64(7))

	got, err := evalString(t, ev, "[x (eq 1 1)]")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	want := []any{int64(7), true}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestEval_ScopedLookup(t *testing.T) {
	ev := NewEvaluator()
	ev.Bind("greeting", "hello")

	got, err := evalString(t, ev, "greeting")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != "hello" {
		t.Errorf("expected hello, got %v", got)
	}
}

func TestEval_UnboundName(t *testing.T) {
	ev := NewEvaluator()

	_, err := evalString(t, ev, "missing")
	if !errors.Is(err, ErrUnboundName) {
		t.Errorf("expected ErrUnboundName, got %v", err)
	}
}

func TestEval_ScopeShadowing(t *testing.T) {
	ev := NewEvaluator()
	ev.Bind("x", int64(1))

	inner := NewScope(ev.Global())
	inner.Define("x", typeOf(int64(2)), int64(2))

	got, err := ev.EvalIn(context.Background(), mustParse(t, "x"), inner)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != int64(2) {
		t.Errorf("expected inner binding 2, got %v", got)
	}
}

func TestEval_NullBindingIsNotUnbound(t *testing.T) {
	ev := NewEvaluator()
	ev.Bind("nothing", nil)

	got, err := evalString(t, ev, "nothing")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != nil {
		t.Errorf("expected null, got %v", got)
	}
}

func TestEval_UndefinedFunction(t *testing.T) {
	ev := NewEvaluator()

	_, err := evalString(t, ev, "(missing 1)")
	if !errors.Is(err, ErrUndefinedFunction) {
		t.Errorf("expected ErrUndefinedFunction, got %v", err)
	}
}

func TestEval_Quote(t *testing.T) {
	ev := NewEvaluator()

	got, err := evalString(t, ev, "~(if true true false)")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	node, ok := got.(*SExpr)
	if !ok {
		t.Fatalf("expected *SExpr, got %T", got)
	}

	if node.Kind != KindInvocation {
		t.Errorf("expected quoted invocation, got %v", node.Kind)
	}
}

func TestEval_EvalForcesQuote(t *testing.T) {
	ev := NewEvaluator()

	got, err := evalString(t, ev, "(eval ~(if true true false))")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != true {
		t.Errorf("expected true, got %v", got)
	}
}

func TestEval_EvalRequiresQuote(t *testing.T) {
	ev := NewEvaluator()

	_, err := evalString(t, ev, "(eval 5)")
	if !errors.Is(err, ErrNotQuoted) {
		t.Errorf("expected ErrNotQuoted, got %v", err)
	}
}

func TestEval_EvalArity(t *testing.T) {
	ev := NewEvaluator()

	_, err := evalString(t, ev, "(eval ~1 ~2)")
	if !errors.Is(err, ErrArityMismatch) {
		t.Errorf("expected ErrArityMismatch, got %v", err)
	}
}

func TestEval_If(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{
			name:  "true takes then branch",
			input: "(if true 'yes' 'no')",
			want:  "yes",
		},
		{
			name:  "false takes else branch",
			input: "(if false 'yes' 'no')",
			want:  "no",
		},
		{
			name:  "null takes else branch",
			input: "(if null 'yes' 'no')",
			want:  "no",
		},
		{
			name:  "eq test",
			input: "(if (eq 1 1) 'yes' 'no')",
			want:  "yes",
		},
		{
			name:  "non-null string takes then branch",
			input: "(if 'anything' 'yes' 'no')",
			want:  "yes",
		},
		{
			name:  "non-null list takes then branch",
			input: "(if [1] 'yes' 'no')",
			want:  "yes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluator()

			got, err := evalString(t, ev, tt.input)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEval_IfRejectsNonBooleanPrimitive(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "integer test", input: "(if 1 'yes' 'no')"},
		{name: "double test", input: "(if 1.5d 'yes' 'no')"},
		{name: "decimal test", input: "(if 1.5 'yes' 'no')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluator()

			_, err := evalString(t, ev, tt.input)
			if !errors.Is(err, ErrTypeMismatch) {
				t.Errorf("expected ErrTypeMismatch, got %v", err)
			}
		})
	}
}

func TestEval_IfShortCircuits(t *testing.T) {
	ev := NewEvaluator()

	var fired []string

	err := ev.Register("probe",
		func(ctx context.Context, ev *Evaluator, scope *Scope, node *SExpr) (any, error) {
			v, err := ev.EvalIn(ctx, node.Params[0], scope)
			if err != nil {
				return nil, err
			}

			name, _ := v.(string)
			fired = append(fired, name)

			return name, nil
		})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}

	got, err := evalString(t, ev, "(if true (probe 'then') (probe 'else'))")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != "then" {
		t.Errorf("expected then, got %v", got)
	}

	if len(fired) != 1 || fired[0] != "then" {
		t.Errorf("untaken branch was evaluated: fired=%v", fired)
	}
}

func TestEval_IfArity(t *testing.T) {
	ev := NewEvaluator()

	_, err := evalString(t, ev, "(if true 1)")
	if !errors.Is(err, ErrArityMismatch) {
		t.Errorf("expected ErrArityMismatch, got %v", err)
	}
}

func TestEval_Equality(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{name: "equal integers", input: "(eq 1 1)", want: true},
		{name: "unequal integers", input: "(eq 1 2)", want: false},
		{name: "ne inverts", input: "(ne 1 2)", want: true},
		{name: "null equals null", input: "(eq null null)", want: true},
		{name: "null unequal to value", input: "(eq null 1)", want: false},
		{name: "value unequal to null", input: "(ne 1 null)", want: true},
		{name: "equal strings", input: "(eq 'a' 'a')", want: true},
		{name: "equal lists", input: "(eq [1 2] [1 2])", want: true},
		{name: "unequal lists", input: "(eq [1 2] [2 1])", want: false},
		{name: "decimal scale ignored", input: "(eq 1.5 1.50)", want: true},
		{name: "mixed numeric kinds differ", input: "(eq 1 1.0d)", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluator()

			got, err := evalString(t, ev, tt.input)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEval_EqualityArity(t *testing.T) {
	ev := NewEvaluator()

	_, err := evalString(t, ev, "(eq 1)")
	if !errors.Is(err, ErrArityMismatch) {
		t.Errorf("expected ErrArityMismatch, got %v", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	ev := NewEvaluator()

	first := func(ctx context.Context, ev *Evaluator, scope *Scope, node *SExpr) (any, error) {
		return "first", nil
	}
	second := func(ctx context.Context, ev *Evaluator, scope *Scope, node *SExpr) (any, error) {
		return "second", nil
	}

	if err := ev.Register("probe", first); err != nil {
		t.Fatalf("register error: %v", err)
	}

	err := ev.Register("probe", second)
	if !errors.Is(err, ErrExternRedefined) {
		t.Fatalf("expected ErrExternRedefined, got %v", err)
	}

	// The first registration must remain active.
	got, err := evalString(t, ev, "(probe)")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != "first" {
		t.Errorf("expected first registration to remain active, got %v", got)
	}
}

func TestEval_ExternReceivesRawNode(t *testing.T) {
	ev := NewEvaluator()

	err := ev.Register("arity",
		func(ctx context.Context, ev *Evaluator, scope *Scope, node *SExpr) (any, error) {
			// Parameters arrive unevaluated; report how many there are
			// without touching them.
			return int64(len(node.Params)), nil
		})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}

	got, err := evalString(t, ev, "(arity missing (also missing) 3)")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != int64(3) {
		t.Errorf("expected 3 unevaluated parameters, got %v", got)
	}
}

func TestEval_NestedExpressions(t *testing.T) {
	ev := NewEvaluator()

	got, err := evalString(t, ev, "(if (ne 1 2) (if true 'a' 'b') 'c')")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != "a" {
		t.Errorf("expected a, got %v", got)
	}
}

func TestEval_MemberWithoutBinder(t *testing.T) {
	ev := NewEvaluator()

	_, err := evalString(t, ev, "(.length 'hello')")
	if !errors.Is(err, ErrNoBinder) {
		t.Errorf("expected ErrNoBinder, got %v", err)
	}

	_, err = evalString(t, ev, "(a.b/c 1)")
	if !errors.Is(err, ErrNoBinder) {
		t.Errorf("expected ErrNoBinder, got %v", err)
	}
}

func TestEval_Flatten(t *testing.T) {
	ev := NewEvaluator()
	ev.Bind("a", int64(1))
	ev.Bind("b", int64(2))

	inner := NewScope(ev.Global())
	inner.Define("b", typeOf(int64(3)), int64(3))

	flat := inner.Flatten()

	if flat["a"] != int64(1) {
		t.Errorf("expected outer a=1, got %v", flat["a"])
	}

	if flat["b"] != int64(3) {
		t.Errorf("expected inner b=3 to shadow, got %v", flat["b"])
	}
}
