package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempHistory(t *testing.T) *History {
	t.Helper()

	return NewHistory(filepath.Join(t.TempDir(), baseHistory))
}

func TestHistoryLoadMissingFile(t *testing.T) {
	h := tempHistory(t)

	if err := h.Load(); err != nil {
		t.Errorf("missing history file should not error: %v", err)
	}

	if h.Len() != 0 {
		t.Errorf("expected empty history, got %d entries", h.Len())
	}
}

func TestHistoryWriteAndGet(t *testing.T) {
	h := tempHistory(t)

	for _, line := range []string{"(eq 1 1)", "[1 2 3]", ":help"} {
		if _, err := h.Write(line); err != nil {
			t.Fatalf("Write(%q) failed: %v", line, err)
		}
	}

	if h.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", h.Len())
	}

	line, err := h.GetLine(0)
	if err != nil {
		t.Fatal(err)
	}

	if line != "(eq 1 1)" {
		t.Errorf("got %q, want %q", line, "(eq 1 1)")
	}
}

func TestHistoryGetLineOutOfBounds(t *testing.T) {
	h := tempHistory(t)

	if _, err := h.GetLine(0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}

	if _, err := h.GetLine(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestHistorySkipsEmptyAndRepeated(t *testing.T) {
	h := tempHistory(t)

	_, _ = h.Write("   ")
	_, _ = h.Write("42")
	_, _ = h.Write("42")

	if h.Len() != 1 {
		t.Errorf("expected 1 entry, got %d: %v", h.Len(), h.Entries())
	}
}

func TestHistoryDuplicateMovesToEnd(t *testing.T) {
	h := tempHistory(t)

	_, _ = h.Write("a")
	_, _ = h.Write("b")
	_, _ = h.Write("a")

	want := []string{"b", "a"}

	got := h.Entries()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHistoryPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)

	_, _ = h.Write("(eq 1 1)")
	_, _ = h.Write("null")

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", reloaded.Len())
	}

	line, err := reloaded.GetLine(1)
	if err != nil {
		t.Fatal(err)
	}

	if line != "null" {
		t.Errorf("got %q, want %q", line, "null")
	}
}

func TestHistoryLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	if err := os.WriteFile(path, []byte("a\n\n\nb\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 2 {
		t.Errorf("expected 2 entries, got %d: %v", h.Len(), h.Entries())
	}
}
