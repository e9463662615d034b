// Package tui is the interactive chat interface.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat/internal/domain"
)

// NotReadyAnswer mirrors the server-side guard for the terminal surface.
const NotReadyAnswer = "No documents are indexed yet. Pass files on the command line to build the knowledge base first."

// ChatRunner is the TUI-facing subset of the answer pipeline.
type ChatRunner interface {
	Run(ctx context.Context, sessionID, userMessage string) (string, error)
	History(sessionID string) []domain.Message
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	pipeline  ChatRunner
	ready     func() bool
	sessionID string
	input     textinput.Model
	viewport  viewport.Model
	messages  []domain.Message
	summary   string
	status    string
	sized     bool
}

// New creates a chat model bound to one session. ready gates the pipeline:
// while it returns false, questions get the fixed instructional reply.
func New(pipeline ChatRunner, ready func() bool, sessionID, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about your documents"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		pipeline:  pipeline,
		ready:     ready,
		sessionID: sessionID,
		input:     ti,
		viewport:  vp,
		summary:   summary,
		status:    "Type a question and press Enter.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.sized = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header + summary, status, input frame, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				break
			}
			m.input.Reset()
			if !m.ready() {
				m.messages = append(m.messages,
					domain.Message{Role: domain.RoleUser, Content: question},
					domain.Message{Role: domain.RoleAssistant, Content: NotReadyAnswer})
				m.status = "Knowledge base is empty."
			} else {
				_, err := m.pipeline.Run(context.Background(), m.sessionID, question)
				if err != nil {
					m.status = "Error: " + err.Error()
				} else {
					m.status = "Answered."
				}
				m.messages = m.pipeline.History(m.sessionID)
			}
			m.viewport.SetContent(m.renderConversation())
			m.viewport.GotoBottom()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.sized {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docchat")
	summary := summaryStyle.Render(m.summary)
	conversation := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + conversation + "\n" + input + "\n" + status
}

func (m Model) renderConversation() string {
	if len(m.messages) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case domain.RoleUser:
			b.WriteString(userStyle.Render("You: "))
		default:
			b.WriteString(assistantStyle.Render("Assistant: "))
		}
		b.WriteString(msg.Content)
	}
	return b.String()
}

var (
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
