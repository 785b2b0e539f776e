package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"runanalyzer/internal/coach"
	"runanalyzer/internal/service"
)

// coachReservedRows is the space above and below the chat history
const coachReservedRows = reservedRows + 10

// CoachModel shows rule-based suggestions and the AI coach chat
type CoachModel struct {
	ctx     context.Context
	coach   coach.Coach
	logger  *zap.Logger
	report  *service.Report
	session *service.CoachSession

	history viewport.Model
	input   textinput.Model
	waiting bool
	err     error
	width   int
	height  int
}

type coachStartedMsg struct {
	session     *service.CoachSession
	suggestions []string
	err         error
}

type coachReplyMsg struct {
	session *service.CoachSession
	reply   string
	err     error
}

// NewCoachModel creates the coach tab
func NewCoachModel(ctx context.Context, c coach.Coach, logger *zap.Logger) CoachModel {
	ti := textinput.New()
	ti.Placeholder = "Ask a follow-up question about your run..."
	ti.CharLimit = 500
	ti.Prompt = "> "

	return CoachModel{
		ctx:     ctx,
		coach:   c,
		logger:  logger,
		input:   ti,
		history: viewport.New(80, 10),
	}
}

// SetReport starts a fresh conversation about r
func (m CoachModel) SetReport(r *service.Report) CoachModel {
	m.report = r
	m.session = service.NewCoachSession(m.coach, r, m.logger)
	m.waiting = false
	m.err = nil
	m.input.Reset()
	m.input.Blur()
	m.refreshHistory()
	return m
}

// Capturing reports whether keystrokes belong to the chat input
func (m CoachModel) Capturing() bool {
	return m.input.Focused()
}

// Waiting reports whether a model call is in flight
func (m CoachModel) Waiting() bool {
	return m.waiting
}

func (m CoachModel) start() tea.Cmd {
	session := m.session
	ctx := m.ctx
	return func() tea.Msg {
		suggestions, err := session.Start(ctx)
		return coachStartedMsg{session: session, suggestions: suggestions, err: err}
	}
}

func (m CoachModel) ask(question string) tea.Cmd {
	session := m.session
	ctx := m.ctx
	return func() tea.Msg {
		reply, err := session.Ask(ctx, question)
		return coachReplyMsg{session: session, reply: reply, err: err}
	}
}

// Update handles messages
func (m CoachModel) Update(msg tea.Msg) (CoachModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.history.Width = msg.Width - 4
		m.history.Height = max(msg.Height-coachReservedRows, 5)
		m.input.Width = msg.Width - 6
		m.refreshHistory()
		return m, nil

	case coachStartedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.waiting = false
		m.err = msg.err
		m.refreshHistory()
		if msg.err != nil {
			return m, nil
		}
		return m, m.input.Focus()

	case coachReplyMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.waiting = false
		m.err = msg.err
		m.refreshHistory()
		return m, nil

	case tea.KeyMsg:
		if m.session == nil || m.waiting {
			return m, nil
		}
		if !m.session.Started() {
			if msg.String() == "enter" {
				m.waiting = true
				m.err = nil
				return m, m.start()
			}
			return m, nil
		}

		if !m.input.Focused() {
			switch msg.String() {
			case "enter", "i":
				return m, m.input.Focus()
			}
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "esc":
			m.input.Blur()
			return m, nil
		case "enter":
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.err = nil
			cmd := m.ask(question)
			m.refreshHistory()
			return m, cmd
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *CoachModel) refreshHistory() {
	if m.session == nil {
		m.history.SetContent("")
		return
	}
	m.history.SetContent(renderConversation(m.session.Messages(), m.history.Width))
	m.history.GotoBottom()
}

func renderConversation(messages []coach.Message, width int) string {
	body := lipgloss.NewStyle().PaddingLeft(2)
	if width > 4 {
		body = body.Width(width - 2)
	}

	var parts []string
	for _, msg := range messages {
		label := assistantStyle.Render("Coach")
		if msg.Role == coach.RoleUser {
			label = userStyle.Render("You")
		}
		parts = append(parts, label, body.Render(msg.Content), "")
	}
	return strings.Join(parts, "\n")
}

// View renders the coach tab
func (m CoachModel) View() string {
	if m.report == nil {
		return "\n  No run analyzed yet. Pick one on the Runs tab."
	}

	var sections []string
	sections = append(sections, cardTitleStyle.Render("Insights & AI Coach"))

	suggestions := m.report.Result.Insights.Suggestions
	if len(suggestions) == 0 {
		sections = append(sections, helpDescStyle.Render("  No rule-based suggestions for this run."))
	}
	for _, s := range suggestions {
		sections = append(sections, warningStyle.Render("  Suggestion: ")+s)
	}
	sections = append(sections, "")

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)), "")
	}

	if !m.session.Started() {
		if m.waiting {
			sections = append(sections, "  Your AI coach is analyzing your run...")
		} else {
			sections = append(sections, statusStyle.Render("  Press enter to get AI suggestions & start chat"))
		}
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, sectionTitle("Chat with AI Coach"))
	sections = append(sections, m.history.View())
	if m.waiting {
		sections = append(sections, helpDescStyle.Render("  Thinking..."))
	} else {
		sections = append(sections, m.input.View())
	}

	help := "  enter: send  esc: stop typing  pgup/pgdn: scroll"
	if !m.input.Focused() {
		help = "  enter or i: type a question  j/k: scroll"
	}
	sections = append(sections, statusStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
