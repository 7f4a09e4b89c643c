package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/assistant/internal/command"
)

// maxTranscript bounds how many exchanges the model keeps for display.
const maxTranscript = 50

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	replyStyle  = lipgloss.NewStyle().PaddingLeft(2)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
)

// keyMap holds the shell key bindings.
type keyMap struct {
	Submit key.Binding
	Prev   key.Binding
	Next   key.Binding
	Abort  key.Binding
}

// ShortHelp returns the bindings for the help bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Prev, k.Next, k.Abort}
}

// FullHelp returns the bindings grouped for expanded help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Abort}, {k.Prev, k.Next}}
}

func defaultKeys() keyMap {
	return keyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		Prev:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous")),
		Next:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next")),
		Abort:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit without saving")),
	}
}

// exchange is one submitted line and the reply to it.
type exchange struct {
	input string
	reply string
}

// Model is the Bubble Tea model for the interactive shell.
type Model struct {
	ctx        context.Context
	exec       Executor
	input      textinput.Model
	help       help.Model
	keys       keyMap
	transcript []exchange
	history    []string
	histIdx    int // len(history) when not browsing
	done       bool
	aborted    bool
}

// NewModel creates a Model that runs submitted lines through exec.
func NewModel(ctx context.Context, exec Executor) Model {
	ti := textinput.New()
	ti.Prompt = Prompt
	ti.Placeholder = "help"
	ti.CharLimit = 256
	ti.Focus()

	return Model{
		ctx:   ctx,
		exec:  exec,
		input: ti,
		help:  help.New(),
		keys:  defaultKeys(),
	}
}

// Aborted reports whether the user quit without the executor's consent.
func (m Model) Aborted() bool { return m.aborted }

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-len(Prompt)-1, 10)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Abort):
			m.done = true
			m.aborted = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.Prev):
			m.recall(-1)
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.recall(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" {
		return m, nil
	}

	m.history = append(m.history, line)
	m.histIdx = len(m.history)

	reply := m.exec.Execute(m.ctx, line)
	m.transcript = append(m.transcript, exchange{input: line, reply: reply.Text})
	if len(m.transcript) > maxTranscript {
		m.transcript = m.transcript[len(m.transcript)-maxTranscript:]
	}

	if reply.Quit {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// recall moves through previously submitted lines. Moving past the newest
// entry clears the input.
func (m *Model) recall(delta int) {
	if len(m.history) == 0 {
		return
	}
	m.histIdx = min(max(m.histIdx+delta, 0), len(m.history))
	if m.histIdx == len(m.history) {
		m.input.Reset()
		return
	}
	m.input.SetValue(m.history[m.histIdx])
	m.input.CursorEnd()
}

// View renders the transcript, the prompt and the help bar.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(Welcome))
	b.WriteString("\n")
	if len(m.transcript) == 0 {
		b.WriteString(command.RenderHelp(command.BasicGroup))
		b.WriteString("\n")
	}

	for _, ex := range m.transcript {
		b.WriteString(inputStyle.Render("> " + ex.input))
		b.WriteString("\n")
		if ex.reply != "" {
			b.WriteString(replyStyle.Render(ex.reply))
			b.WriteString("\n")
		}
	}

	if m.done {
		if m.aborted {
			b.WriteString(noticeStyle.Render("Exited without saving."))
			b.WriteString("\n")
		}
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
