package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/nathoo/arenacore/engine"
	"github.com/nathoo/arenacore/engine/events"
	"github.com/nathoo/arenacore/engine/save"
)

// rawLine is an unstyled feed line, kept so the feed can be re-wrapped
// on resize.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool
	isSystem bool
}

// maxLines bounds the scrollback kept by the viewport.
const maxLines = 500

// keyMap holds the dashboard's key bindings.
type keyMap struct {
	Quit   key.Binding
	Submit key.Binding
	Older  key.Binding
	Newer  key.Binding
	Scroll key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("ctrl+c")),
	Submit: key.NewBinding(key.WithKeys("enter")),
	Older:  key.NewBinding(key.WithKeys("up")),
	Newer:  key.NewBinding(key.WithKeys("down")),
	Scroll: key.NewBinding(key.WithKeys("pgup", "pgdown", "ctrl+u", "ctrl+d")),
}

// Model is the Bubble Tea model for the arena dashboard.
type Model struct {
	engine *engine.Engine

	viewport viewport.Model
	input    textinput.Model
	history  *History
	bars     bars

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	trace    bool
	paused   bool
	quitting bool
	saveDir  string
	interval time.Duration
}

// tickMsg carries the wall-clock time of a scheduled engine tick.
type tickMsg time.Time

// feedMsg carries output into the Update loop.
type feedMsg struct {
	input    string // echoed command, if any
	lines    []string
	isSystem bool
}

// New creates a dashboard wired to the given engine.
func New(eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "/help"
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:   eng,
		input:    ti,
		history:  NewHistory(100),
		bars:     newBars(),
		saveDir:  save.DefaultDir(),
		interval: time.Duration(eng.Defs.Tuning.TickIntervalMillis) * time.Millisecond,
	}
}

// WithSaveDir overrides the save directory.
func (m Model) WithSaveDir(dir string) Model {
	if dir != "" {
		m.saveDir = dir
	}
	return m
}

// Run starts the Bubble Tea program.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init shows the arena banner and starts the clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.banner(), m.tick())
}

func (m Model) banner() tea.Cmd {
	return func() tea.Msg {
		a := m.engine.Defs.Arena
		header := a.Title
		if a.Version != "" {
			header += " v" + a.Version
		}
		if a.Author != "" {
			header += " by " + a.Author
		}
		lines := []string{header, ""}
		if a.Intro != "" {
			lines = append(lines, a.Intro, "")
		}
		return feedMsg{lines: lines}
	}
}

func (m Model) tick() tea.Cmd {
	interval := m.interval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles resizes, clock ticks, keys and feed output.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		if !m.paused {
			m = m.applyTick(time.Time(msg).UnixMilli())
		}
		return m, m.tick()

	case feedMsg:
		m = m.appendOutput(msg)
		// The first rendered output is the player's first view of the arena.
		m.engine.MarkVisited()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Submit):
			return m.handleEnter()
		case key.Matches(msg, keys.Older):
			if prev, ok := m.history.Prev(); ok {
				m.setInput(prev)
			}
			return m, nil
		case key.Matches(msg, keys.Newer):
			next, _ := m.history.Next()
			m.setInput(next)
			return m, nil
		case key.Matches(msg, keys.Scroll):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// resize lays out the feed between the panel and the status/input lines.
func (m Model) resize(width, height int) Model {
	m.width, m.height = width, height
	feed := max(height-panelHeight-2, 1)
	if !m.ready {
		m.viewport = viewport.New(width, feed)
		m.viewport.KeyMap = viewportKeyMap()
		m.ready = true
	} else {
		m.viewport.Width, m.viewport.Height = width, feed
	}
	m.bars.resize(width)
	m.refreshViewport()
	return m
}

func (m *Model) setInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// applyTick drives one engine tick and appends its output.
func (m Model) applyTick(now int64) Model {
	result := m.engine.Tick(now)
	if !result.Ticked {
		return m
	}
	lines := result.Output
	if m.trace {
		for _, ev := range result.Events {
			lines = append(lines, events.Trace(ev))
		}
	}
	if len(lines) == 0 {
		return m
	}
	return m.appendOutput(feedMsg{lines: lines})
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}
	m.history.Push(input)

	if !strings.HasPrefix(input, "/") {
		m = m.appendOutput(feedMsg{
			input: input, lines: []string{"The arena runs on its own. Type /help for commands."}, isSystem: true,
		})
		return m, nil
	}

	output, quit := m.handleMeta(input)
	m = m.appendOutput(feedMsg{input: input, lines: output, isSystem: true})
	if quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// appendOutput adds lines to the feed, trims scrollback and refreshes.
func (m Model) appendOutput(msg feedMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}
	if over := len(m.rawLines) - maxLines; over > 0 {
		m.rawLines = append([]rawLine(nil), m.rawLines[over:]...)
	}
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles the feed at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)

	styled := make([]string, len(m.rawLines))
	for i, rl := range m.rawLines {
		wrapped := wordWrap(rl.text, width)
		switch {
		case rl.text == "":
		case rl.isInput:
			styled[i] = stylePlayerInput.Render(wrapped)
		case rl.isSystem:
			styled[i] = styledSystemMsg(wrapped)
		default:
			styled[i] = renderLineKind(wrapped, rl.kind)
		}
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap breaks text at spaces so no line exceeds width cells.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Wordwrap(text, width, "")
}

// View renders the panel, feed, status bar and input line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	snap := m.engine.Snapshot()
	return strings.Join([]string{
		m.renderPanel(snap), m.viewport.View(), m.renderStatusBar(snap), m.input.View(),
	}, "\n")
}

// metaCommand is one slash command: its help line and handler.
type metaCommand struct {
	name  string
	usage string
	run   func(m *Model, arg string) (lines []string, quit bool)
}

// metaCommands is filled in init because /help lists it.
var metaCommands []metaCommand

func init() {
	metaCommands = []metaCommand{
		{"/save", "/save [name]  Save session (default: quicksave)", (*Model).cmdSave},
		{"/load", "/load [name]  Load session (default: quicksave)", (*Model).cmdLoad},
		{"/pause", "/pause        Pause or resume the arena clock", (*Model).cmdPause},
		{"/trace", "/trace        Toggle event trace output", (*Model).cmdTrace},
		{"/state", "/state        Debug: dump the session", (*Model).cmdState},
		{"/help", "/help         Show this help", (*Model).cmdHelp},
		{"/quit", "/quit         Exit", (*Model).cmdQuit},
		{"/exit", "", (*Model).cmdQuit},
	}
}

// handleMeta dispatches a slash command. Returns output lines and whether
// the dashboard should exit.
func (m *Model) handleMeta(input string) ([]string, bool) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	for _, c := range metaCommands {
		if c.name == name {
			return c.run(m, arg)
		}
	}
	return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", name)}, false
}

func (m *Model) cmdSave(name string) ([]string, bool) {
	if name == "" {
		name = save.DefaultSlot
	}
	if err := m.engine.SaveSlot(m.saveDir, name); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}, false
	}
	return []string{fmt.Sprintf("Session saved to %s.", name)}, false
}

func (m *Model) cmdLoad(name string) ([]string, bool) {
	if name == "" {
		name = save.DefaultSlot
	}
	if err := m.engine.LoadSlot(m.saveDir, name); err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}, false
	}
	return []string{fmt.Sprintf("Session loaded from %s (tick %d).", name, m.engine.Session.TickCount)}, false
}

func (m *Model) cmdPause(string) ([]string, bool) {
	m.paused = !m.paused
	if m.paused {
		return []string{"Paused."}, false
	}
	return []string{"Resumed."}, false
}

func (m *Model) cmdTrace(string) ([]string, bool) {
	m.trace = !m.trace
	if m.trace {
		return []string{"Trace output enabled."}, false
	}
	return []string{"Trace output disabled."}, false
}

func (m *Model) cmdState(string) ([]string, bool) {
	lines, err := m.engine.Dump()
	if err != nil {
		return []string{fmt.Sprintf("State failed: %v", err)}, false
	}
	return lines, false
}

func (m *Model) cmdHelp(string) ([]string, bool) {
	lines := []string{"System:"}
	for _, c := range metaCommands {
		if c.usage != "" {
			lines = append(lines, "  "+c.usage)
		}
	}
	return append(lines, "", "Navigation: PgUp/PgDn to scroll, Up/Down for command history"), false
}

func (m *Model) cmdQuit(string) ([]string, bool) {
	return []string{"Goodbye."}, true
}

// viewportKeyMap leaves Up/Down to the command history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}

// bars holds the dashboard's progress bars.
type bars struct {
	hp, stamina, quest, rest progress.Model
}

func newBars() bars {
	return bars{
		hp:      progress.New(progress.WithGradient("#8B0000", "#FF4040"), progress.WithoutPercentage()),
		stamina: progress.New(progress.WithGradient("#1E6B1E", "#7CFC00"), progress.WithoutPercentage()),
		quest:   progress.New(progress.WithDefaultGradient()),
		rest:    progress.New(progress.WithGradient("#1E3A8A", "#60A5FA")),
	}
}

func (b *bars) resize(width int) {
	w := max(width/2-16, 10)
	b.hp.Width = w
	b.stamina.Width = w
	b.quest.Width = w
	b.rest.Width = w
}
