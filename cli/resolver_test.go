package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/sx/lang"
)

func loadConfig(t *testing.T, source string) kong.Resolver {
	t.Helper()

	loader := resolve(context.Background())

	resolver, err := loader(strings.NewReader(source))
	if err != nil {
		t.Fatalf("loader failed: %v", err)
	}

	return resolver
}

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	flag := &kong.Flag{Value: &kong.Value{Name: name}}

	val, err := r.Resolve(nil, nil, flag)
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", name, err)
	}

	return val
}

func TestResolve_FlagValues(t *testing.T) {
	lang.ClearCache()

	source := `
(log-level 'debug')
(log-format 'text')
(log-pretty true)
(pprof-rate 100)
`

	resolver := loadConfig(t, source)

	if val := resolveFlag(t, resolver, "log-level"); val != "debug" {
		t.Errorf("expected log-level=debug, got %v", val)
	}

	if val := resolveFlag(t, resolver, "log-format"); val != "text" {
		t.Errorf("expected log-format=text, got %v", val)
	}

	if val := resolveFlag(t, resolver, "log-pretty"); val != true {
		t.Errorf("expected log-pretty=true, got %v", val)
	}

	// Kong parses numbers from strings.
	if val := resolveFlag(t, resolver, "pprof-rate"); val != "100" {
		t.Errorf("expected pprof-rate=\"100\", got %v", val)
	}
}

func TestResolve_UnderscoreHyphenMapping(t *testing.T) {
	lang.ClearCache()

	resolver := loadConfig(t, `(log_level 'debug')`)

	// Underscore version (as stored in config)
	if val := resolveFlag(t, resolver, "log_level"); val != "debug" {
		t.Errorf("expected log_level=debug, got %v", val)
	}

	// Hyphen version (should also work via underscore mapping)
	if val := resolveFlag(t, resolver, "log-level"); val != "debug" {
		t.Errorf("expected log-level=debug, got %v", val)
	}
}

func TestResolve_MissingFlag(t *testing.T) {
	lang.ClearCache()

	resolver := loadConfig(t, `(log-level 'debug')`)

	// Absent flags resolve to nil so Kong falls back to defaults.
	if val := resolveFlag(t, resolver, "source"); val != nil {
		t.Errorf("expected nil for missing flag, got %v", val)
	}
}

func TestResolve_IgnoresUnusableExpressions(t *testing.T) {
	lang.ClearCache()

	source := `
42
'bare string'
(no-params)
(two-params 1 2)
(.member x)
(log-level 'debug')
`

	resolver := loadConfig(t, source)

	if val := resolveFlag(t, resolver, "log-level"); val != "debug" {
		t.Errorf("expected log-level=debug, got %v", val)
	}

	if val := resolveFlag(t, resolver, "no-params"); val != nil {
		t.Errorf("expected nil for malformed entry, got %v", val)
	}
}

func TestResolve_ParseErrorYieldsEmptyConfig(t *testing.T) {
	lang.ClearCache()

	resolver := loadConfig(t, `(log-level 'debug'`)

	if val := resolveFlag(t, resolver, "log-level"); val != nil {
		t.Errorf("expected empty config on parse error, got %v", val)
	}
}

func TestResolve_ReadError(t *testing.T) {
	lang.ClearCache()

	loader := resolve(context.Background())

	// A read failure surfaces as a parse failure, which yields an empty
	// config rather than an error.
	resolver, err := loader(&errorReader{err: bytes.ErrTooLarge})
	if err != nil {
		t.Fatalf("loader failed: %v", err)
	}

	if val := resolveFlag(t, resolver, "log-level"); val != nil {
		t.Errorf("expected empty config on read error, got %v", val)
	}
}

func TestResolve_Validate(t *testing.T) {
	lang.ClearCache()

	resolver := loadConfig(t, `(log-level 'debug')`)

	if err := resolver.Validate(nil); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestResolve_ListValue(t *testing.T) {
	lang.ClearCache()

	resolver := loadConfig(t, `(source ['a.sx' 'b.sx'])`)

	val := resolveFlag(t, resolver, "source")

	items, ok := val.([]any)
	if !ok {
		t.Fatalf("expected []any, got %T", val)
	}

	if len(items) != 2 || items[0] != "a.sx" || items[1] != "b.sx" {
		t.Errorf("unexpected list value: %v", items)
	}
}

// errorReader is a reader that always returns an error.
type errorReader struct {
	err error
}

func (e *errorReader) Read(p []byte) (n int, err error) {
	return 0, e.err
}
