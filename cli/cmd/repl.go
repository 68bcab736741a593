package cmd

import (
	"bufio"
	"context"
	"io"

	"github.com/ardnew/sx/cli/cmd/repl"
	"github.com/ardnew/sx/lang"
	"github.com/ardnew/sx/log"
)

// Repl starts an interactive read-eval-print loop.
type Repl struct{}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	cacheDir, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok {
		panic("internal error: cache namespace undefined")
	}

	ev, err := newEvaluator()
	if err != nil {
		return err
	}

	// Evaluate any source files given with --source before going
	// interactive, so their effects are visible to the session.
	if srcs := sourceFilesFrom(ctx); srcs != nil {
		if err := r.preload(ctx, ev, srcs); err != nil {
			return err
		}
	}

	return repl.Run(ctx, ev, cacheDir, log.Default())
}

func (r *Repl) preload(
	ctx context.Context,
	ev *lang.Evaluator,
	src io.Reader,
) error {
	exprs, err := lang.ParseReader(
		ctx,
		bufio.NewReader(src),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}

	for _, node := range exprs {
		if _, err := ev.Eval(ctx, node); err != nil {
			return err
		}
	}

	return nil
}
