package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// editedMsg is sent when the editor produced a script to evaluate.
type editedMsg struct{ script string }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "» "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help     Show this help
  vars     List query, context and variable bindings
  reset    Clear variable and temp bindings
  edit     Write a multi-line script in $EDITOR and evaluate it
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type a Molang expression to evaluate it. Assignments to variable.* (v.*)
  persist between lines; temp.* (t.*) is restored to its initial bindings
  before every line.
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to browse command history
    (restores original mode when reaching end of history)
  Press Ctrl+C on empty line or Ctrl+D to exit`

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = suggestionStyle.Bold(true)
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)

	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

func (m inputMode) prompt() string {
	if m == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	return promptStyle.Render(evalPrompt)
}

// stash is the input line saved while the other mode is active.
type stash struct {
	text   string
	cursor int
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx          context.Context
	input        textinput.Model
	env          *lang.Environment
	cache        *lang.Cache
	logger       log.Logger
	history      *History
	temps        map[string]lang.Value // temp bindings restored before each line
	last         string        // most recent script, seeded into the editor
	matches      fuzzy.Matches // current fuzzy match results
	qual         string        // scope qualifier of the current word
	saved        [2]stash      // per-mode input, indexed by inputMode
	altNav       stash         // input before Alt+Up/Down navigation
	historyIdx   int
	wordStart    int // byte offset of current word start
	wordEnd      int // byte offset of current word end
	suggIdx      int // selected candidate index
	preTab       stash
	width        int // terminal width for ellipsization
	mode         inputMode
	altNavMode   inputMode // mode before Alt+Up/Down navigation
	tabActive    bool      // whether user is tab-cycling
	altNavActive bool      // whether user is in Alt+Up/Down navigation
	quitting     bool
}

// Run starts an interactive session evaluating lines against env. The
// environment's variable map persists for the whole session, while its temp
// map is restored before every line. History is
// kept in historyPath, or only in memory when it is empty.
func Run(
	ctx context.Context,
	env *lang.Environment,
	historyPath string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", historyPath),
		slog.Int("history_entries", history.Len()),
		slog.Int("queries", len(env.Query)),
	)

	p := tea.NewProgram(newModel(ctx, env, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	env *lang.Environment,
	history *History,
	logger log.Logger,
) model {
	if env == nil {
		env = lang.NewEnvironment(nil)
	}

	if env.Variable == nil {
		env.Variable = make(map[string]lang.Value)
	}

	temps := maps.Clone(env.Temp)
	env.TempPolicy = lang.TempKeep

	ti := textinput.New()
	ti.Prompt = modeEval.prompt()
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctx:        ctx,
		input:      ti,
		env:        env,
		cache:      lang.NewCache(lang.WithLogger(logger)),
		logger:     logger,
		history:    history,
		temps:      temps,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
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
		m.input.Width = msg.Width - lipgloss.Width(m.input.Prompt) - 2

		return m, nil

	case editedMsg:
		m.last = msg.script

		return m, m.evaluate(msg.script)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

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
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine renders the line below the input: the history position, a usage
// hint, the signature of the enclosing call, or the completion bar.
func (m model) hintLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type an expression or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	}

	if m.mode == modeEval {
		if call := detectFunctionCall(input, m.input.Position()); call.inCall {
			if sig, params := m.signature(call.name); sig != "" {
				return renderSignatureHint(sig, params, call.argIndex)
			}
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width, m.isFunction)
}

// isFunction reports whether a candidate for the current qualifier is a
// function that takes arguments.
func (m model) isFunction(name string) bool {
	if m.mode != modeEval {
		return false
	}

	fn, ok := m.function(m.qual, name)

	return ok && fn.Arity != 0
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx, "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNavActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNavActive = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1), nil
		}

		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(1), nil
		}

		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTab.text)
			m.input.SetCursor(m.preTab.cursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNavActive = false

		return m.switchToMode(1 - m.mode), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks out of tab-cycling, accepting the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNavActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, starting a tab cycle if none is
// active. A single candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTab = stash{m.input.Value(), m.input.Position()}

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with
// replacement and moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it. Deletions and
// cursor movement pass false so that editing never completes unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.qual, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.saved = [2]stash{}
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctx, "history not saved", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.last = input

	return m, tea.Sequence(
		tea.Println(promptStyle.Render(evalPrompt)+inputStyle.Render(input)),
		m.evaluate(input),
	)
}

// evaluate compiles and runs script against the session environment and
// prints the result.
func (m model) evaluate(script string) tea.Cmd {
	m.env.Temp = maps.Clone(m.temps)

	s, err := m.cache.Compile(m.ctx, script)

	var v lang.Value
	if err == nil {
		v, err = s.Evaluate(m.ctx, m.env)
	}

	m.logger.TraceContext(m.ctx, "repl eval",
		slog.String("input", script),
		slog.Bool("ok", err == nil),
	)

	if err != nil {
		return tea.Println(renderError(err))
	}

	return tea.Println(resultStyle.Render(display(v)))
}

// display formats v for the session, quoting strings.
func display(v lang.Value) string {
	if v.Kind() == lang.KindString {
		return strconv.Quote(v.Str())
	}

	return v.String()
}

// renderError formats err with the source excerpt of script errors.
func renderError(err error) string {
	out := errorStyle.Render("error: " + err.Error())

	var le *lang.Error
	if errors.As(err, &le) {
		if snippet := le.Snippet(); snippet != "" {
			out += "\n" + hintStyle.Render(strings.TrimRight(snippet, "\n"))
		}
	}

	return out
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctx, "repl command",
		slog.String("command", parts[0]),
		slog.Any("args", parts[1:]),
	)

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "v", "vars":
		return m, tea.Sequence(echo, tea.Println(m.listBindings()))

	case "r", "reset":
		clear(m.env.Variable)
		clear(m.env.Temp)

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render("bindings cleared")))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + parts[0] + " (try 'help')"),
		)
	}
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{ctx: m.ctx, logger: m.logger, script: m.last}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case !cmd.done:
			return editCancelledMsg{}
		default:
			return editedMsg{script: cmd.script}
		}
	})
}

// listBindings renders the host query functions, context and variables.
func (m model) listBindings() string {
	var b strings.Builder

	for _, name := range m.userQueries() {
		fn := m.env.Query[name]
		if fn.Arity == 0 && fn.Pure {
			if v, err := fn.Call(nil); err == nil {
				fmt.Fprintf(&b, "  query.%s %s\n", name, hintStyle.Render("= "+display(v)))

				continue
			}
		}

		fmt.Fprintf(&b, "  query.%s %s\n", name, hintStyle.Render("(function)"))
	}

	for _, t := range []struct {
		scope lang.Scope
		m     map[string]lang.Value
	}{
		{lang.ScopeContext, m.env.Context},
		{lang.ScopeVariable, m.env.Variable},
	} {
		for _, name := range slices.Sorted(maps.Keys(t.m)) {
			fmt.Fprintf(&b, "  %s.%s %s\n", t.scope, name, hintStyle.Render("= "+display(t.m[name])))
		}
	}

	if b.Len() == 0 {
		return hintStyle.Render("  no bindings")
	}

	return strings.TrimRight(b.String(), "\n")
}

// recall loads history entry i into the input, switching to its mode.
func (m model) recall(i int) model {
	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	if entry.Mode != m.mode {
		m = m.switchToMode(entry.Mode)
	}

	m.historyIdx = i
	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// historyStep moves through history by step. With sameMode, entries of the
// other mode are skipped. Stepping past the newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if !sameMode || entry.Mode == m.mode {
			return m.recall(i)
		}
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// historyCtrl browses command history, switching to command mode and
// restoring the original input when navigation runs off either end.
func (m model) historyCtrl(step int) model {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavMode = m.mode
		m.altNav = stash{m.input.Value(), m.input.Position()}

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		if entry, err := m.history.Entry(i); err == nil && entry.Mode == modeCtrl {
			return m.recall(i)
		}
	}

	m.altNavActive = false
	if m.altNavMode != m.mode {
		m = m.switchToMode(m.altNavMode)
	}

	m.input.SetValue(m.altNav.text)
	m.input.SetCursor(m.altNav.cursor)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m
}

// switchToMode switches to mode, saving the input of the current mode and
// restoring that of the target.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode] = stash{m.input.Value(), m.input.Position()}

	m.mode = mode
	m.input.Prompt = mode.prompt()
	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)

	refreshMatches(&m, false)

	return m
}
