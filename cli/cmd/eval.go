package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/sx/ext"
	"github.com/ardnew/sx/lang"
	"github.com/ardnew/sx/log"
)

// Eval evaluates sx expressions given as arguments or read from a source.
type Eval struct {
	Expr   []string `arg:"" help:"Expressions to evaluate" name:"expr" optional:""`
	Source string   `default:"-" help:"Source input file or '-' for stdin" short:"f"`
	Output string   `default:"native" enum:"native,json,yaml" help:"Result output format" short:"o"`
	Indent int      `default:"2" help:"Indent width for structured output" short:"i"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ev, err := newEvaluator()
	if err != nil {
		return err
	}

	var exprs []*lang.SExpr

	// Expression arguments win over source input.
	if len(e.Expr) > 0 {
		for _, src := range e.Expr {
			node, err := lang.ParseString(ctx, src, lang.WithLogger(log.Default()))
			if err != nil {
				return err
			}

			exprs = append(exprs, node)
		}
	} else {
		reader, done, err := sourceReader(ctx, e.Source)
		if err != nil {
			return err
		}
		defer done()

		exprs, err = lang.ParseReader(
			ctx,
			bufio.NewReader(reader),
			lang.WithLogger(log.Default()),
		)
		if err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "eval"))
		}
	}

	for _, node := range exprs {
		result, err := ev.Eval(ctx, node)
		if err != nil {
			return lang.WrapError(err).
				With(
					slog.String("command", "eval"),
					slog.String("expression", node.String()),
				)
		}

		if err := e.write(ctx, os.Stdout, result); err != nil {
			return err
		}
	}

	return nil
}

// write renders one evaluation result in the selected output format.
func (e *Eval) write(ctx context.Context, w io.Writer, result any) error {
	switch e.Output {
	case "json":
		return lang.FormatJSON(ctx, w, result, e.Indent)

	case "yaml":
		return lang.FormatYAML(ctx, w, result, e.Indent)

	default:
		_, err := fmt.Fprintln(w, lang.FormatResult(result))

		return err
	}
}

// newEvaluator builds the evaluator shared by eval and repl, with the host
// registry and the expression-bridge extern installed.
func newEvaluator() (*lang.Evaluator, error) {
	reg := lang.NewRegistry()
	if err := reg.RegisterType("str", hostStrings{}); err != nil {
		return nil, err
	}

	ev := lang.NewEvaluator(
		lang.WithLogger(log.Default()),
		lang.WithBinder(reg),
	)

	if err := ext.Register(ev); err != nil {
		return nil, err
	}

	return ev, nil
}
