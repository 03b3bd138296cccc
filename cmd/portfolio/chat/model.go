package chatcmder

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/claire-namusoke/portfolio/pkg/assistant"
	"github.com/claire-namusoke/portfolio/pkg/conversation"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// answerMsg carries a finished turn back into the update loop.
type answerMsg struct {
	turn conversation.Turn
	ok   bool
}

type model struct {
	ctx       context.Context
	assistant *assistant.Assistant
	log       *conversation.Log
	mode      assistant.Mode
	owner     string
	style     string

	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	waiting bool
	notice  string
	width   int
}

// style is a glamour standard style name ("dark" or "light").
func newModel(ctx context.Context, asst *assistant.Assistant, mode assistant.Mode, owner, style string) model {
	input := textinput.New()
	input.Placeholder = "Ask me anything about " + owner + "..."
	input.Prompt = "> "
	input.CharLimit = 1000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		ctx:       ctx,
		assistant: asst,
		log:       conversation.NewLog(),
		mode:      mode,
		owner:     owner,
		style:     style,
		input:     input,
		spinner:   sp,
		renderer:  newRenderer(style, 80),
		width:     80,
	}
}

// newRenderer returns nil when glamour cannot build a renderer; answers are
// then shown as plain text.
func newRenderer(style string, width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		m.renderer = newRenderer(m.style, msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			return m.submit()
		}

	case answerMsg:
		m.waiting = false
		m.notice = ""
		if msg.ok && msg.turn.NoAudioGenerated() {
			m.notice = "No audio was generated for the last response."
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()

	switch text {
	case "":
		return m, nil
	case "/quit", "/exit":
		return m, tea.Quit
	case "/clear":
		m.log.Clear()
		m.notice = "Conversation cleared."
		return m, nil
	}

	m.waiting = true
	m.notice = ""
	return m, tea.Batch(m.ask(text), m.spinner.Tick)
}

// ask runs the turn off the update loop.
func (m model) ask(text string) tea.Cmd {
	ctx, asst, log, mode := m.ctx, m.assistant, m.log, m.mode
	return func() tea.Msg {
		turn, ok := asst.HandleUserInput(ctx, log, text, mode)
		return answerMsg{turn: turn, ok: ok}
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Chat with " + m.owner + "'s assistant"))
	b.WriteString("\n\n")

	for _, turn := range m.log.Turns() {
		switch turn.Role {
		case conversation.RoleUser:
			b.WriteString(userStyle.Render("You: "))
			b.WriteString(turn.Text)
			b.WriteString("\n\n")
		case conversation.RoleAssistant:
			b.WriteString(assistantStyle.Render("Assistant:"))
			b.WriteString("\n")
			b.WriteString(m.renderTurn(turn))
			b.WriteString("\n")
		}
	}

	if m.waiting {
		b.WriteString(m.spinner.View() + " thinking...\n\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(ansi.Truncate("enter: send • /clear: clear conversation • esc: quit", m.width, "…")))
	b.WriteString("\n")

	return b.String()
}

func (m model) renderTurn(turn conversation.Turn) string {
	if turn.Error {
		return errorStyle.Render(turn.Text) + "\n"
	}
	if turn.Text == "" {
		if len(turn.Audio) > 0 {
			return noticeStyle.Render("(spoken answer)") + "\n"
		}
		return noticeStyle.Render("(no answer)") + "\n"
	}

	if m.renderer == nil {
		return turn.Text + "\n"
	}

	out, err := m.renderer.Render(turn.Text)
	if err != nil {
		return turn.Text + "\n"
	}
	return out
}
