// Package ext provides optional externs that extend the sx language with
// capabilities outside its core, implemented on the host side of the extern
// boundary.
//
// The expr extern bridges to expr-lang for infix arithmetic and string
// manipulation, which sx itself deliberately omits:
//
//	(expr '1 + 2 * x')
//
// The bridged expression sees every binding visible in the sx scope at the
// call site, plus an env(key) function exposing the process environment and
// path helpers for manipulating PATH-like delimited lists.
package ext

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr"

	"github.com/ardnew/sx/lang"
)

// ErrExprCompile reports a failure to compile a bridged expression.
var ErrExprCompile = lang.NewError("cannot compile expression")

// ErrExprRun reports a failure while running a bridged expression.
var ErrExprRun = lang.NewError("cannot evaluate expression")

// Register installs the expr extern on the evaluator.
// It follows the evaluator's registration rules: installing over an existing
// extern of the same name fails and leaves the original active.
func Register(ev *lang.Evaluator) error {
	return ev.Register("expr", exprExtern)
}

// exprExtern evaluates its single parameter to a source string, compiles it
// with expr-lang against the visible sx bindings, and runs it.
func exprExtern(
	ctx context.Context,
	ev *lang.Evaluator,
	scope *lang.Scope,
	node *lang.SExpr,
) (any, error) {
	if len(node.Params) != 1 {
		return nil, lang.ErrArityMismatch.With(
			slog.String("extern", "expr"),
			slog.Int("want", 1),
			slog.Int("have", len(node.Params)),
		)
	}

	value, err := ev.EvalIn(ctx, node.Params[0], scope)
	if err != nil {
		return nil, err
	}

	source, ok := value.(string)
	if !ok {
		return nil, lang.ErrTypeMismatch.With(
			slog.String("extern", "expr"),
			slog.String("want", "string"),
		)
	}

	env := scope.Flatten()
	env["env"] = envFunc()
	env["path"] = map[string]any{
		"prefix":   pathPrefix,
		"prefixif": pathPrefixIf,
	}

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, ErrExprCompile.Wrap(err).
			With(slog.String("source", source))
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrExprRun.Wrap(err).
			With(slog.String("source", source))
	}

	return result, nil
}

// pathPrefix prepends elements to a PATH-like delimited list, deduplicating
// via mung.
func pathPrefix(subject string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

// pathPrefixIf is pathPrefix restricted to elements satisfying the predicate.
func pathPrefixIf(
	subject string,
	predicate func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}

// envFunc returns the built-in env() function that provides process
// environment access to bridged expressions.
func envFunc() func(string) string {
	return func(key string) string {
		for _, entry := range os.Environ() {
			k, v, ok := strings.Cut(entry, "=")
			if ok && k == key {
				return v
			}
		}

		return ""
	}
}
