package repl

import (
	"strings"
	"testing"

	"github.com/ardnew/sx/lang"
)

func TestModelCycleReplacesWord(t *testing.T) {
	ev := lang.NewEvaluator()

	m := newTestModel(t, ev)
	m.input.SetValue("(ev")
	m.input.SetCursor(3)

	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()
	if len(m.matches) == 0 {
		t.Fatal("expected matches for partial word")
	}

	m = m.cycle(1)

	if !m.tabActive {
		t.Error("cycle should activate tab state")
	}

	want := "(" + m.matches[0].Str
	if got := m.input.Value(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestModelCycleWrapsAround(t *testing.T) {
	ev := lang.NewEvaluator()

	m := newTestModel(t, ev)
	m.input.SetValue("e")
	m.input.SetCursor(1)

	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()
	if len(m.matches) < 2 {
		t.Fatalf("expected at least two matches, got %v", m.matches)
	}

	m = m.cycle(1)
	for range m.matches {
		m = m.cycle(1)
	}

	// Cycling through every candidate returns to the first.
	if got := m.input.Value(); got != m.matches[0].Str {
		t.Errorf("got %q, want %q", got, m.matches[0].Str)
	}
}

func TestModelSubmitQuitCommand(t *testing.T) {
	ev := lang.NewEvaluator()

	m := newTestModel(t, ev)
	m.input.SetValue(":quit")

	next, _ := m.submit()

	got, ok := next.(model)
	if !ok {
		t.Fatalf("expected model, got %T", next)
	}

	if !got.quitting {
		t.Error("quit command should set quitting")
	}
}

func TestModelSubmitRecordsHistory(t *testing.T) {
	ev := lang.NewEvaluator()

	m := newTestModel(t, ev)
	m.input.SetValue("(eq 1 1)")

	next, _ := m.submit()
	m = next.(model)

	if m.history.Len() != 1 {
		t.Fatalf("expected 1 history entry, got %d", m.history.Len())
	}

	line, err := m.history.GetLine(0)
	if err != nil {
		t.Fatal(err)
	}

	if line != "(eq 1 1)" {
		t.Errorf("got %q", line)
	}

	if m.input.Value() != "" {
		t.Errorf("input not cleared after submit: %q", m.input.Value())
	}
}

func TestModelRenderBindings(t *testing.T) {
	ev := lang.NewEvaluator()
	ev.Bind("answer", int64(42))
	ev.Bind("name", "zaphod")

	m := newTestModel(t, ev)

	out := m.renderBindings()

	for _, want := range []string{"answer = 42", "name = 'zaphod'"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestModelRenderBindingsEmpty(t *testing.T) {
	ev := lang.NewEvaluator()

	m := newTestModel(t, ev)

	if out := m.renderBindings(); !strings.Contains(out, "no bindings") {
		t.Errorf("got %q", out)
	}
}

func TestHelpMessageListsCommands(t *testing.T) {
	msg := helpMessage()

	for _, cmd := range ctrlCommands {
		if !strings.Contains(msg, cmd) {
			t.Errorf("help does not mention %q", cmd)
		}
	}
}
