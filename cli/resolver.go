package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/sx/lang"
	"github.com/ardnew/sx/log"
)

// resolve returns a [kong.ConfigurationLoader] that parses config files
// written in sx syntax.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config")
//
// A config file is a sequence of invocations whose identifier names a flag
// and whose single parameter provides its value:
//
//	(log-level 'debug')
//	(log-format 'json')
//	(log-pretty true)
//
// This configuration is applied to Kong flags:
//
//	--log-level=debug
//	--log-format=json
//	--log-pretty=true
//
// Flag names with hyphens may use underscores instead. Invocations that do
// not fit this shape are ignored, as are files that fail to parse.
// Command-line flags override config file values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		// Parse the config file (cached after first parse)
		exprs, err := lang.ParseReader(ctx, r, lang.WithLogger(log.Default()))
		if err != nil {
			// Parse error - return empty config
			return config{}, nil
		}

		return configFrom(exprs), nil
	}
}

// config implements [kong.Resolver] for sx configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// No validation needed - the config was already parsed successfully
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but sx identifiers may use
	// underscores. Try both forms.
	name := flag.Name
	underscoreName := strings.ReplaceAll(name, "-", "_")

	// Look up the value in our config
	if value, ok := r[name]; ok {
		return value, nil
	}

	// Try underscore variant
	if value, ok := r[underscoreName]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// configFrom builds a flat flag map from the top-level expressions of a
// config file.
func configFrom(exprs []*lang.SExpr) config {
	result := make(config)

	for _, node := range exprs {
		if node.Kind != lang.KindInvocation ||
			node.Ident == nil || node.Ident.Kind != lang.KindScoped ||
			len(node.Params) != 1 {
			continue
		}

		result[node.Ident.Name] = kongValue(node.Params[0].ToNative())
	}

	return result
}

// kongValue converts a native value to the representation Kong expects.
// Kong requires numbers as strings for parsing.
func kongValue(val any) any {
	switch v := val.(type) {
	case int64:
		return strconv.FormatInt(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)

	case []any:
		vals := make([]any, len(v))
		for i, item := range v {
			vals[i] = kongValue(item)
		}

		return vals

	default:
		return val
	}
}
