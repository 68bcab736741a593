package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/sx/lang"
	"github.com/ardnew/sx/log"
)

// Fmt parses sx source and renders it in the chosen representation.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical sx syntax (default)."`
	JSON   JSON   `cmd:"" help:"Format the syntax tree as JSON."`
	YAML   YAML   `cmd:"" help:"Format the syntax tree as YAML."`
	AST    AST    `cmd:"" help:"Format as an indented syntax tree dump."`
}

// parseSource reads and parses every top-level expression of a command's
// input.
func parseSource(
	ctx context.Context,
	path, format string,
) ([]*lang.SExpr, error) {
	reader, done, err := sourceReader(ctx, path)
	if err != nil {
		return nil, err
	}
	defer done()

	exprs, err := lang.ParseReader(
		ctx,
		bufio.NewReader(reader),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, lang.WrapError(err).
			With(slog.String("format", format))
	}

	return exprs, nil
}

// Native formats input as canonical sx syntax, one expression per line.
type Native struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	exprs, err := parseSource(ctx, f.Source, "native")
	if err != nil {
		return err
	}

	for _, node := range exprs {
		if _, err := fmt.Fprintln(os.Stdout, node.String()); err != nil {
			return err
		}
	}

	return nil
}

// JSON renders the unevaluated syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	exprs, err := parseSource(ctx, j.Source, "json")
	if err != nil {
		return err
	}

	err = lang.FormatJSON(ctx, os.Stdout, nativeProgram(exprs), j.Indent)
	if err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	return nil
}

// YAML renders the unevaluated syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	exprs, err := parseSource(ctx, y.Source, "yaml")
	if err != nil {
		return err
	}

	err = lang.FormatYAML(ctx, os.Stdout, nativeProgram(exprs), y.Indent)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// AST renders an indented tree dump of the parsed source.
type AST struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	exprs, err := parseSource(ctx, a.Source, "ast")
	if err != nil {
		return err
	}

	printProgram(os.Stdout, exprs)

	return nil
}

// nativeProgram converts parsed expressions to plain Go data. A single
// expression converts to its own value; multiple expressions convert to a
// slice.
func nativeProgram(exprs []*lang.SExpr) any {
	if len(exprs) == 1 {
		return exprs[0].ToNative()
	}

	vals := make([]any, len(exprs))
	for i, node := range exprs {
		vals[i] = node.ToNative()
	}

	return vals
}

func printProgram(w io.Writer, exprs []*lang.SExpr) {
	for _, node := range exprs {
		node.Print(w)
	}
}
