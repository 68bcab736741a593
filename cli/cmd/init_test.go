package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/sx/lang"
)

func initKongContext(
	t *testing.T,
	grammar any,
	confPath string,
	args []string,
) context.Context {
	t.Helper()

	parser, err := kong.New(grammar, kong.Vars{
		ConfigIdentifier: confPath,
	})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		setup   func(t *testing.T, path string)
		wantErr bool
	}{
		{
			name:    "create_new_config",
			force:   false,
			setup:   nil,
			wantErr: false,
		},
		{
			name:  "overwrite_existing_with_force",
			force: true,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("(stale true)"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: false,
		},
		{
			name:  "fail_without_force",
			force: false,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("(stale true)"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.sx")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			var cli struct{}
			ctx := initKongContext(t, &cli, confPath, nil)

			initCmd := &Init{Force: tt.force}

			err := initCmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init.Run() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				if !errors.Is(err, ErrFileExists) {
					t.Errorf("expected ErrFileExists, got %v", err)
				}

				return
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			// The generated file must parse
			lang.ClearCache()

			if _, err := lang.ParseProgram(ctx, string(content)); err != nil {
				t.Errorf("generated config does not parse: %v", err)
			}
		})
	}
}

// TestInitGeneratedFlags verifies the generated config carries flag values in
// invocation form.
func TestInitGeneratedFlags(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config.sx")

	var cli struct {
		Verbose bool     `default:"true" name:"verbose"`
		Output  string   `default:"out.txt" name:"output"`
		Count   int      `default:"3" name:"count"`
		Tags    []string `name:"tags"`
	}

	ctx := initKongContext(t, &cli, confPath, []string{
		"--tags", "a", "--tags", "b",
	})

	initCmd := &Init{}
	if err := initCmd.Run(ctx); err != nil {
		t.Fatalf("Init.Run() error = %v", err)
	}

	content, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	text := string(content)

	for _, want := range []string{
		"(verbose true)",
		"(output 'out.txt')",
		"(count 3)",
		"(tags ['a' 'b'])",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in generated config:\n%s", want, text)
		}
	}
}

// TestInitSkipsHelpFlags verifies help and profiling flags are omitted.
func TestInitSkipsHelpFlags(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config.sx")

	var cli struct {
		Verbose bool `default:"true" name:"verbose"`
	}

	ctx := initKongContext(t, &cli, confPath, nil)

	initCmd := &Init{}
	if err := initCmd.Run(ctx); err != nil {
		t.Fatalf("Init.Run() error = %v", err)
	}

	content, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(string(content), "help") {
		t.Errorf("generated config contains help flag:\n%s", content)
	}
}

// TestLiteralNode tests scalar conversion to literal nodes.
func TestLiteralNode(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want string
	}{
		{name: "bool", val: true, want: "true"},
		{name: "string", val: "debug", want: "'debug'"},
		{name: "int", val: 42, want: "42"},
		{name: "int64", val: int64(-7), want: "-7"},
		{name: "float64", val: 1.5, want: "1.5d"},
		{name: "strings", val: []string{"x", "y"}, want: "['x' 'y']"},
		{name: "int64s", val: []int64{1, 2}, want: "[1 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := literalNode(tt.val)
			if node == nil {
				t.Fatal("expected non-nil node")
			}

			if got := node.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestLiteralNodeEmpty tests that empty values yield no node.
func TestLiteralNodeEmpty(t *testing.T) {
	if node := literalNode(""); node != nil {
		t.Errorf("empty string should yield nil, got %v", node)
	}

	if node := literalNode([]string{}); node != nil {
		t.Errorf("empty slice should yield nil, got %v", node)
	}
}

// TestInitWithInvalidPath tests error handling for unwritable paths.
func TestInitWithInvalidPath(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "missing", "config.sx")

	var cli struct{}
	ctx := initKongContext(t, &cli, confPath, nil)

	initCmd := &Init{}

	err := initCmd.Run(ctx)
	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("expected ErrWriteConfig, got %v", err)
	}
}
