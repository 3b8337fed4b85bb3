package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/withblock/lang"
	"github.com/ardnew/withblock/log"
)

// editDoneMsg is sent when the editor produced a rewritable invocation.
type editDoneMsg struct {
	input  string
	result *lang.Expansion
}

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a
// rewrite error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails.
type editErrorMsg struct{ err error }

const prompt = "➜ "

func helpMessage() string {
	return `
Type a call followed by its trailing block to rewrite it:

  ➜ spawn(pool) { |job| job.run(); }
  spawn(pool, |job| { job.run(); })

Commands:

  :help     Print this help
  :trace    Toggle printing the decomposition of each rewrite
  :edit     Edit a multi-line invocation in $EDITOR
  :clear    Clear screen
  :quit     Exit REPL

Keys:
  Tab / Shift-Tab   Cycle through completions of seen callee names
  Up / Down         Navigate history
  Ctrl+C on an empty line or Ctrl+D to exit
`
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	opts         []lang.Option
	input        textinput.Model
	logger       log.Logger
	history      *History
	historyIdx   int
	names        names         // callee names seen in successful rewrites
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	last         string        // last submitted invocation, seeds :edit
	trace        bool          // print the decomposition of each rewrite
	width        int           // terminal width for ellipsization
	quitting     bool
}

// Run starts the REPL. History is persisted in cacheDir. Each submitted
// line is rewritten with opts.
func Run(
	ctx context.Context,
	cacheDir string,
	logger log.Logger,
	opts ...lang.Option,
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
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", history.path),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, history, logger, opts...)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return context.Cause(ctx)
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	history *History,
	logger log.Logger,
	opts ...lang.Option,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		opts:       opts,
		input:      ti,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
	}

	// Seed completion with the names used in earlier sessions.
	for _, line := range history.Entries() {
		if e, err := lang.RewriteString(ctx, line, opts...); err == nil {
			m.names.add(e)
		}
	}

	return m
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
		m.input.Width = msg.Width - lipgloss.Width(prompt) - 2

		return m, nil

	case editDoneMsg:
		m.last = msg.input
		_, _ = m.history.Write(msg.input)
		m.historyIdx = m.history.Len()
		m.names.add(msg.result)

		return m, tea.Println(m.render(msg.result))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("edit discarded"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hint())
	b.WriteString("\n")

	return b.String()
}

// hint returns the line shown below the input.
func (m model) hint() string {
	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))

	case strings.TrimSpace(input) == "":
		return hintStyle.Render("Type a call with a trailing block, or :help")

	case len(m.matches) > 0:
		return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)

	case strings.HasPrefix(input, ":"):
		return ""

	default:
		return m.preview(input)
	}
}

// preview renders the rewrite of an incomplete input line, if it already
// rewrites.
func (m model) preview(input string) string {
	e, err := lang.RewriteString(m.ctxFunc(), input, m.opts...)
	if err != nil {
		return ""
	}

	return hintStyle.Render("= " + e.String())
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		m.refreshMatches()

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1), nil

	case tea.KeyDown:
		return m.historyStep(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches()
		}

		return m, nil
	}

	// Any other key edits the input and leaves history navigation.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches()

	return m, cmd
}

// cycle moves through the completion candidates in direction dir.
func (m model) cycle(dir int) model {
	if len(m.matches) == 0 {
		return m
	}

	// Single candidate: complete and confirm immediately.
	if len(m.matches) == 1 {
		m.replaceCurrentWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + dir + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0

		if dir < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	m.replaceCurrentWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func (m *model) replaceCurrentWord(replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
func (m *model) refreshMatches() {
	if m.tabActive {
		return
	}

	m.matches, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1
}

// historyStep moves dir entries through history. Moving past the newest
// entry clears the input.
func (m model) historyStep(dir int) model {
	idx := m.historyIdx + dir
	if idx < 0 {
		return m
	}

	m.tabActive = false
	m.historyIdx = min(idx, m.history.Len())

	line, err := m.history.GetLine(m.historyIdx)
	if err != nil {
		line = ""
	}

	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	m.matches = nil

	return m
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil

	_, _ = m.history.Write(input)
	m.historyIdx = m.history.Len()

	if strings.HasPrefix(input, ":") {
		return m.executeCommand(input)
	}

	m.last = input
	echo := tea.Println(formatCommand(input))

	out, ok := m.evaluate(input)
	if !ok {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(out)))
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

// evaluate rewrites input and returns the rendered output. It reports
// false when the rewrite failed, in which case out is the error message.
func (m *model) evaluate(input string) (out string, ok bool) {
	ctx := m.ctxFunc()

	e, err := lang.RewriteString(ctx, input, m.opts...)
	if err != nil {
		m.logger.DebugContext(ctx, "repl rewrite failed",
			slog.String("input", input),
			slog.Any("error", err),
		)

		return "error: " + err.Error(), false
	}

	m.names.add(e)

	return m.render(e), true
}

// render formats a rewrite result, with its decomposition when tracing.
func (m model) render(e *lang.Expansion) string {
	out := resultStyle.Render(e.String())
	if !m.trace {
		return out
	}

	var buf bytes.Buffer
	if err := e.Format(m.ctxFunc(), &buf, 2); err != nil {
		return out
	}

	return hintStyle.Render(strings.TrimRight(buf.String(), "\n")) + "\n" + out
}

// executeCommand runs a ':' command. Commands may be abbreviated to any
// unambiguous prefix.
func (m model) executeCommand(input string) (model, tea.Cmd) {
	echo := tea.Println(formatCommand(input))

	name := strings.Fields(input)[0]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl command",
		slog.String("command", name),
	)

	switch resolveCommand(name) {
	case ":quit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case ":help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case ":trace":
		m.trace = !m.trace

		state := "off"
		if m.trace {
			state = "on"
		}

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render("trace "+state)))

	case ":clear":
		return m, tea.ClearScreen

	case ":edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Sequence(echo, tea.Println(
			errorStyle.Render("unknown command: "+name+" (try :help)"),
		))
	}
}

// resolveCommand expands a command prefix to the full command name, or
// returns "" when name matches no command or more than one.
func resolveCommand(name string) string {
	var found string

	for _, c := range commands {
		if strings.HasPrefix(c, name) && len(name) > 1 {
			if found != "" {
				return ""
			}

			found = c
		}
	}

	return found
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		seed:    m.last,
		ctxFunc: m.ctxFunc,
		opts:    m.opts,
		logger:  m.logger,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}

		case err != nil:
			return editErrorMsg{err: err}

		case cmd.result == nil:
			return editCancelledMsg{}

		default:
			return editDoneMsg{input: cmd.input, result: cmd.result}
		}
	})
}
