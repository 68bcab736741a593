package lang

import (
	"context"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Extern is a named builtin function invoked from an invocation node.
//
// An extern receives the evaluator, the scope of the enclosing evaluation,
// and the unevaluated invocation node. Each extern owns its own
// argument-evaluation policy and order: it decides which of the node's
// parameters to evaluate, when, and whether at all. This is what lets "if"
// skip the untaken branch and quoting defer evaluation indefinitely.
type Extern func(
	ctx context.Context,
	ev *Evaluator,
	scope *Scope,
	node *SExpr,
) (any, error)

// Binding is a named storage slot in a scope.
type Binding struct {
	Name  string
	Type  reflect.Type
	Value any
}

// Scope is one link of the variable scope chain. Lookup walks the chain
// innermost-first. A scope borrows its parent; the parent must outlive any
// child holding the reference, which holds trivially since scopes are
// created and discarded in strict nesting order.
type Scope struct {
	parent   *Scope
	bindings map[string]*Binding
}

// NewScope creates a scope with the given parent. A nil parent creates a
// root scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:   parent,
		bindings: make(map[string]*Binding),
	}
}

// Define sets a binding in this scope, shadowing any same-named binding in
// an outer scope.
func (s *Scope) Define(name string, typ reflect.Type, value any) {
	s.bindings[name] = &Binding{Name: name, Type: typ, Value: value}
}

// Lookup resolves a name by walking the scope chain innermost-first.
func (s *Scope) Lookup(name string) (*Binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			return b, true
		}
	}

	return nil, false
}

// Flatten collapses the scope chain into a single map of visible bindings.
// Inner bindings shadow outer ones of the same name.
func (s *Scope) Flatten() map[string]any {
	flat := make(map[string]any)

	for cur := s; cur != nil; cur = cur.parent {
		for name, b := range cur.bindings {
			if _, ok := flat[name]; !ok {
				flat[name] = b.Value
			}
		}
	}

	return flat
}

// Evaluator walks a parsed tree and produces a dynamic runtime value.
//
// The extern registry and global scope are mutable only during a setup phase
// before evaluation begins; there is no internal locking. Concurrent
// read-only evaluation of independent trees against one Evaluator is safe
// once registration has finished.
type Evaluator struct {
	global  *Scope
	externs map[string]Extern
	binder  Binder
	cfg     config
}

// WithBinder sets the host-dispatch capability used to resolve static and
// instance member invocations.
func WithBinder(b Binder) Option {
	return func(c *config) {
		c.binder = b
	}
}

// NewEvaluator creates an evaluator with the four standard externs
// registered: eval, if, eq, and ne.
func NewEvaluator(opts ...Option) *Evaluator {
	ev := &Evaluator{
		global:  NewScope(nil),
		externs: make(map[string]Extern),
		cfg:     applyOptions(opts...),
	}

	ev.binder = ev.cfg.binder

	// Standard externs. Registration cannot fail on an empty registry.
	_ = ev.Register("eval", externEval)
	_ = ev.Register("if", externIf)
	_ = ev.Register("eq", externEq)
	_ = ev.Register("ne", externNe)

	return ev
}

// Register adds a named extern to the registry. The registry is append-only:
// registering a name that already exists is a setup error and leaves the
// first registration active. The namespace is flat and case-sensitive.
func (ev *Evaluator) Register(name string, fn Extern) error {
	if _, ok := ev.externs[name]; ok {
		return ErrExternRedefined.With(slog.String("name", name))
	}

	ev.externs[name] = fn

	return nil
}

// Externs returns the names of all registered externs in sorted order.
func (ev *Evaluator) Externs() []string {
	return slices.Sorted(maps.Keys(ev.externs))
}

// Bind seeds a variable into the global scope before evaluation begins.
// The binding's declared type is taken from the value's runtime type.
func (ev *Evaluator) Bind(name string, value any) {
	ev.global.Define(name, typeOf(value), value)
}

// BindTyped seeds a variable with an explicit declared type.
func (ev *Evaluator) BindTyped(name string, typ reflect.Type, value any) {
	ev.global.Define(name, typ, value)
}

// Global returns the root scope.
func (ev *Evaluator) Global() *Scope { return ev.global }

// Eval evaluates a node against the global scope.
func (ev *Evaluator) Eval(ctx context.Context, node *SExpr) (any, error) {
	return ev.EvalIn(ctx, node, ev.global)
}

// EvalIn evaluates a node against the given scope. Externs call back into
// EvalIn to evaluate their own parameters.
func (ev *Evaluator) EvalIn(
	ctx context.Context,
	node *SExpr,
	scope *Scope,
) (any, error) {
	if node == nil {
		return nil, ErrInvalidNode
	}

	ev.cfg.logger.TraceContext(
		ctx,
		"eval node",
		slog.String("kind", node.Kind.String()),
		slog.Int("pos", node.Start.Pos),
	)

	switch node.Kind {
	case KindString:
		return node.Text, nil

	case KindInteger:
		return node.Int, nil

	case KindDecimal:
		return node.Dec, nil

	case KindDouble:
		return node.Double, nil

	case KindFloat:
		return node.Float, nil

	case KindBoolean:
		return node.Bool, nil

	case KindNull:
		return nil, nil

	case KindQuote:
		// A quote evaluates to the wrapped node itself, a first-class
		// unevaluated expression.
		return node.Inner, nil

	case KindList:
		items := make([]any, len(node.Items))

		for i, item := range node.Items {
			v, err := ev.EvalIn(ctx, item, scope)
			if err != nil {
				return nil, err
			}

			items[i] = v
		}

		return items, nil

	case KindScoped:
		b, ok := scope.Lookup(node.Name)
		if !ok {
			return nil, ErrUnboundName.With(slog.String("name", node.Name))
		}

		return b.Value, nil

	case KindInvocation:
		return ev.invoke(ctx, node, scope)

	case KindError:
		return nil, ErrInvalidNode.
			With(slog.String("kind", "Error")).
			With(slog.String("message", node.Message))

	default:
		return nil, ErrInvalidNode.With(slog.String("kind", node.Kind.String()))
	}
}

// invoke dispatches an invocation node by the form of its identifier.
func (ev *Evaluator) invoke(
	ctx context.Context,
	node *SExpr,
	scope *Scope,
) (any, error) {
	switch node.Ident.Kind {
	case KindScoped:
		fn, ok := ev.externs[node.Ident.Name]
		if !ok {
			return nil, ErrUndefinedFunction.
				With(slog.String("name", node.Ident.Name))
		}

		// The extern receives the raw invocation node and evaluates its own
		// parameters as it sees fit.
		return fn(ctx, ev, scope, node)

	case KindStaticMember:
		return ev.invokeStatic(ctx, node, scope)

	case KindInstanceMember:
		return ev.invokeInstance(ctx, node, scope)

	default:
		return nil, ErrInvalidNode.
			With(slog.String("kind", node.Ident.Kind.String()))
	}
}

// invokeStatic resolves a host type from the dotted type path and invokes a
// member on its static surface. Parameters are evaluated eagerly, left to
// right. Members are resolved by name only: first a callable method, then a
// property accessor fallback.
func (ev *Evaluator) invokeStatic(
	ctx context.Context,
	node *SExpr,
	scope *Scope,
) (any, error) {
	if ev.binder == nil {
		return nil, ErrNoBinder
	}

	path := node.Ident.TypePath

	handle, ok := ev.binder.ResolveType(path)
	if !ok {
		return nil, ErrUnresolvedType.
			With(slog.String("type", strings.Join(path, ".")))
	}

	args := make([]any, len(node.Params))

	for i, param := range node.Params {
		v, err := ev.EvalIn(ctx, param, scope)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	// Static resolution is by name only; nil argument types request no
	// signature matching from the binder.
	member, ok := ev.binder.ResolveMember(handle, node.Ident.Name, nil)
	if !ok {
		return nil, ErrUnresolvedMember.
			With(slog.String("member", node.Ident.Name)).
			With(slog.String("type", strings.Join(path, ".")))
	}

	return member(args)
}

// invokeInstance evaluates the first parameter as the receiver and invokes a
// member on its runtime type. Remaining parameters are evaluated eagerly,
// left to right, and their runtime types participate in member resolution to
// disambiguate overloads where the host supports them.
func (ev *Evaluator) invokeInstance(
	ctx context.Context,
	node *SExpr,
	scope *Scope,
) (any, error) {
	if ev.binder == nil {
		return nil, ErrNoBinder
	}

	if len(node.Params) == 0 {
		return nil, ErrArityMismatch.
			With(slog.String("member", node.Ident.Name)).
			With(slog.String("reason", "missing receiver"))
	}

	recv, err := ev.EvalIn(ctx, node.Params[0], scope)
	if err != nil {
		return nil, err
	}

	if recv == nil {
		return nil, ErrNullReceiver.
			With(slog.String("member", node.Ident.Name))
	}

	args := make([]any, len(node.Params)-1)
	argTypes := make([]reflect.Type, len(node.Params)-1)

	for i, param := range node.Params[1:] {
		v, err := ev.EvalIn(ctx, param, scope)
		if err != nil {
			return nil, err
		}

		args[i] = v
		argTypes[i] = typeOf(v)
	}

	member, ok := ev.binder.ResolveMember(recv, node.Ident.Name, argTypes)
	if !ok {
		return nil, ErrUnresolvedMember.
			With(slog.String("member", node.Ident.Name)).
			With(slog.String("type", typeName(recv)))
	}

	return member(args)
}

// externEval forces evaluation of a previously quoted expression.
func externEval(
	ctx context.Context,
	ev *Evaluator,
	scope *Scope,
	node *SExpr,
) (any, error) {
	if len(node.Params) != 1 {
		return nil, ErrArityMismatch.
			With(slog.String("function", "eval")).
			With(slog.Int("expected", 1)).
			With(slog.Int("got", len(node.Params)))
	}

	v, err := ev.EvalIn(ctx, node.Params[0], scope)
	if err != nil {
		return nil, err
	}

	q, ok := v.(*SExpr)
	if !ok {
		return nil, ErrNotQuoted.With(slog.String("got", typeName(v)))
	}

	return ev.EvalIn(ctx, q, scope)
}

// externIf evaluates its test and then exactly one branch. The untaken
// branch is never evaluated; short-circuiting is a contract, not an
// optimization, so side effects in the untaken branch must not occur.
func externIf(
	ctx context.Context,
	ev *Evaluator,
	scope *Scope,
	node *SExpr,
) (any, error) {
	if len(node.Params) != 3 {
		return nil, ErrArityMismatch.
			With(slog.String("function", "if")).
			With(slog.Int("expected", 3)).
			With(slog.Int("got", len(node.Params)))
	}

	test, err := ev.EvalIn(ctx, node.Params[0], scope)
	if err != nil {
		return nil, err
	}

	branch := node.Params[1]

	switch v := test.(type) {
	case nil:
		branch = node.Params[2]

	case bool:
		if !v {
			branch = node.Params[2]
		}

	default:
		// Any non-null reference value selects the then branch; a non-null
		// primitive value other than boolean is a type error.
		if isPrimitiveValue(test) {
			return nil, ErrTypeMismatch.
				With(slog.String("function", "if")).
				With(slog.String("test", typeName(test)))
		}
	}

	return ev.EvalIn(ctx, branch, scope)
}

// externEq compares its two evaluated operands for value equality.
func externEq(
	ctx context.Context,
	ev *Evaluator,
	scope *Scope,
	node *SExpr,
) (any, error) {
	eq, err := compareParams(ctx, ev, scope, node, "eq")
	if err != nil {
		return nil, err
	}

	return eq, nil
}

// externNe compares its two evaluated operands for value inequality.
func externNe(
	ctx context.Context,
	ev *Evaluator,
	scope *Scope,
	node *SExpr,
) (any, error) {
	eq, err := compareParams(ctx, ev, scope, node, "ne")
	if err != nil {
		return nil, err
	}

	return !eq, nil
}

// compareParams evaluates both operands of eq/ne and reports equality.
// Null equals null; null is unequal to any non-null value; otherwise the
// runtime values' native equality decides.
func compareParams(
	ctx context.Context,
	ev *Evaluator,
	scope *Scope,
	node *SExpr,
	name string,
) (bool, error) {
	if len(node.Params) != 2 {
		return false, ErrArityMismatch.
			With(slog.String("function", name)).
			With(slog.Int("expected", 2)).
			With(slog.Int("got", len(node.Params)))
	}

	a, err := ev.EvalIn(ctx, node.Params[0], scope)
	if err != nil {
		return false, err
	}

	b, err := ev.EvalIn(ctx, node.Params[1], scope)
	if err != nil {
		return false, err
	}

	return equalValues(a, b), nil
}
