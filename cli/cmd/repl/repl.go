// Package repl implements an interactive read-eval-print loop over a shared
// evaluator, with fuzzy completion of extern and binding names and persistent
// input history.
package repl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/sx/lang"
	"github.com/ardnew/sx/log"
)

const evalPrompt = "➜ "

func helpMessage() string {
	return `
: Commands (prefix with a colon):

  :help      Print this cruft
  :bindings  List global bindings
  :externs   List registered externs
  :clear     Clear screen
  :quit      Exit REPL

Usage:
  Type an expression to evaluate it
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("7"))
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	eval         *lang.Evaluator
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
}

// Run starts the REPL against the given evaluator. History is persisted
// beneath cacheDir.
func Run(
	ctx context.Context,
	ev *lang.Evaluator,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
	)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		fmt.Printf("Warning: could not load history: %v\n", err)
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, ev, history, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	ev *lang.Evaluator,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		eval:       ev,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m = m.resetCompletion()

		return m, nil

	case "ctrl+d":
		m.quitting = true

		return m, tea.Quit

	case "enter":
		return m.submit()

	case "tab":
		return m.cycle(1), nil

	case "shift+tab":
		return m.cycle(-1), nil

	case "esc":
		if m.tabActive {
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m = m.resetCompletion()
		}

		return m, nil

	case " ":
		if m.tabActive {
			// Accept the current candidate; the space still inserts.
			m.tabActive = false
		}

	case "up":
		if m.historyIdx > 0 {
			m.historyIdx--

			line, err := m.history.GetLine(m.historyIdx)
			if err == nil {
				m.input.SetValue(line)
				m.input.CursorEnd()
			}
		}

		m = m.resetCompletion()

		return m, nil

	case "down":
		if m.historyIdx < m.history.Len() {
			m.historyIdx++
		}

		if m.historyIdx == m.history.Len() {
			m.input.SetValue("")
		} else {
			line, err := m.history.GetLine(m.historyIdx)
			if err == nil {
				m.input.SetValue(line)
				m.input.CursorEnd()
			}
		}

		m = m.resetCompletion()

		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	m.tabActive = false
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = 0

	return m, cmd
}

// cycle advances the candidate selection and replaces the current word with
// the selected candidate.
func (m model) cycle(dir int) model {
	if len(m.matches) == 0 {
		return m
	}

	if !m.tabActive {
		m.tabActive = true
		m.suggIdx = 0
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
	} else {
		m.suggIdx = (m.suggIdx + dir + len(m.matches)) % len(m.matches)
	}

	selected := m.matches[m.suggIdx].Str

	replaced := m.preTabText[:m.wordStart] +
		selected +
		m.preTabText[m.wordEnd:]

	m.input.SetValue(replaced)
	m.input.SetCursor(m.wordStart + len(selected))

	return m
}

func (m model) resetCompletion() model {
	m.tabActive = false
	m.matches = nil
	m.candidates = nil
	m.suggIdx = 0

	return m
}

// submit evaluates or dispatches the current input line.
func (m model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())

	m.input.SetValue("")
	m = m.resetCompletion()

	if line == "" {
		return m, nil
	}

	if _, err := m.history.Write(line); err != nil {
		m.logger.DebugContext(
			m.ctxFunc(),
			"history write failed",
			slog.Any("error", err),
		)
	}

	m.historyIdx = m.history.Len()

	if cmd, ok := strings.CutPrefix(line, ":"); ok {
		return m.runCtrl(strings.TrimSpace(cmd))
	}

	return m, m.evaluate(line)
}

// evaluate parses and evaluates an input line, printing each result or the
// first error.
func (m model) evaluate(line string) tea.Cmd {
	ctx := m.ctxFunc()

	exprs, err := lang.ParseProgram(ctx, line, lang.WithLogger(m.logger))
	if err != nil {
		return tea.Println(errorStyle.Render(err.Error()))
	}

	var cmds []tea.Cmd

	prompt := hintStyle.Render(evalPrompt + line)
	cmds = append(cmds, tea.Println(prompt))

	for _, node := range exprs {
		result, err := m.eval.Eval(ctx, node)
		if err != nil {
			cmds = append(cmds, tea.Println(errorStyle.Render(err.Error())))

			break
		}

		cmds = append(cmds, tea.Println(
			resultStyle.Render(lang.FormatResult(result)),
		))
	}

	return tea.Sequence(cmds...)
}

// runCtrl dispatches a colon command.
func (m model) runCtrl(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "help":
		return m, tea.Println(helpMessage())

	case "bindings":
		return m, tea.Println(m.renderBindings())

	case "externs":
		return m, tea.Println(strings.Join(m.eval.Externs(), "  "))

	case "clear":
		return m, tea.ClearScreen

	case "quit":
		m.quitting = true

		return m, tea.Quit

	default:
		return m, tea.Println(
			errorStyle.Render("unknown command: " + cmd),
		)
	}
}

// renderBindings formats the global bindings, one per line, sorted by name.
func (m model) renderBindings() string {
	flat := m.eval.Global().Flatten()
	if len(flat) == 0 {
		return hintStyle.Render("(no bindings)")
	}

	names := make([]string, 0, len(flat))
	for name := range flat {
		names = append(names, name)
	}

	sort.Strings(names)

	var b strings.Builder

	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}

		b.WriteString(name + " = " + lang.FormatResult(flat[name]))
	}

	return b.String()
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteByte('\n')

	if bar := renderCandidateBar(
		m.matches, m.suggIdx, m.tabActive, m.width,
	); bar != "" {
		b.WriteString(bar)
	} else {
		b.WriteString(hintStyle.Render(
			"Type an expression, or :help for commands",
		))
	}

	b.WriteByte('\n')

	return b.String()
}
