package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/sx/lang"
	"github.com/ardnew/sx/log"
	"github.com/ardnew/sx/profile"
)

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config namespace undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	for _, node := range i.buildConfig(ctx) {
		_, err = fmt.Fprintln(file, node.String())
		if err != nil {
			return ErrWriteConfig.
				With(slog.String("file", confPath)).
				Wrap(err)
		}
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildConfig constructs a config expression for each settable CLI flag.
func (i *Init) buildConfig(ctx context.Context) []*lang.SExpr {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ktx := kongContextFrom(ctx)

	var entries []*lang.SExpr

	prefixIgnore := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val := i.flagValue(ctx, flag.Name)
		if val != nil {
			entries = append(entries, &lang.SExpr{
				Kind:   lang.KindInvocation,
				Ident:  &lang.SExpr{Kind: lang.KindScoped, Name: flag.Name},
				Params: []*lang.SExpr{val},
			})
		}
	}

	return entries
}

// flagValue returns the literal node for a CLI flag value, or nil if unset.
func (i *Init) flagValue(ctx context.Context, name string) *lang.SExpr {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ktx := kongContextFrom(ctx)

	idx := slices.IndexFunc(ktx.Model.Flags, func(flag *kong.Flag) bool {
		return flag.Name == name
	})
	if idx == -1 {
		return nil
	}

	val := ktx.FlagValue(ktx.Model.Flags[idx])
	if val == nil {
		return nil
	}

	return literalNode(val)
}

// literalNode converts a Go value to a literal syntax node, or nil when the
// value has no useful representation (empty strings and slices).
func literalNode(val any) *lang.SExpr {
	switch v := val.(type) {
	case bool:
		return &lang.SExpr{Kind: lang.KindBoolean, Bool: v}

	case string:
		if v == "" {
			return nil
		}

		return &lang.SExpr{Kind: lang.KindString, Text: v}

	case int:
		return &lang.SExpr{Kind: lang.KindInteger, Int: int64(v)}

	case int64:
		return &lang.SExpr{Kind: lang.KindInteger, Int: v}

	case uint64:
		return &lang.SExpr{Kind: lang.KindInteger, Int: int64(v)}

	case float64:
		return &lang.SExpr{Kind: lang.KindDouble, Double: v}

	case float32:
		return &lang.SExpr{Kind: lang.KindFloat, Float: v}

	case []string:
		if len(v) == 0 {
			return nil
		}

		items := make([]*lang.SExpr, len(v))
		for i, s := range v {
			items[i] = &lang.SExpr{Kind: lang.KindString, Text: s}
		}

		return &lang.SExpr{Kind: lang.KindList, Items: items}

	case []int64:
		if len(v) == 0 {
			return nil
		}

		items := make([]*lang.SExpr, len(v))
		for i, n := range v {
			items[i] = &lang.SExpr{Kind: lang.KindInteger, Int: n}
		}

		return &lang.SExpr{Kind: lang.KindList, Items: items}

	default:
		return &lang.SExpr{Kind: lang.KindString, Text: fmt.Sprint(v)}
	}
}
