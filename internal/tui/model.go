// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuimath/internal/session"
)

// tickInterval is finer than one second so the displayed countdown and the
// authoritative zero-crossing agree within polling granularity.
const tickInterval = 100 * time.Millisecond

var (
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	urgentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	resultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
)

type tickMsg time.Time

type flushedMsg struct {
	result session.FlushResult
	err    error
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	runner *session.Runner
	svc    session.SessionService
	userID *int64

	input textinput.Model

	width  int
	height int

	flushing bool
	flushed  bool
	result   session.FlushResult
	flushErr error
}

// NewModel constructs a drill UI model and starts the session.
func NewModel(runner *session.Runner, svc session.SessionService, userID *int64) *Model {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 12
	input.Width = 12
	input.Validate = validateAnswer
	input.Focus()

	runner.Start()
	return &Model{
		runner: runner,
		svc:    svc,
		userID: userID,
		input:  input,
	}
}

func validateAnswer(value string) error {
	for i, r := range value {
		if r == '-' && i == 0 {
			continue
		}
		if r < '0' || r > '9' {
			return fmt.Errorf("digits only")
		}
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.runner.Tick() {
			m.flushing = true
			return m, m.flushCmd()
		}
		if m.runner.State() == session.Ended {
			return m, nil
		}
		return m, tick()
	case flushedMsg:
		m.flushing = false
		m.flushed = true
		m.result = msg.result
		m.flushErr = msg.err
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		if m.runner.State() == session.Ended {
			if m.flushed {
				return m, tea.Quit
			}
			return m, nil
		}
		// Submit never evaluates; it only clears the field.
		m.runner.ClearInput()
		m.input.SetValue("")
		return m, nil
	}
	if m.runner.State() == session.Ended {
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.runner.SetInput(value)
		if m.runner.Input() != value {
			// The answer matched and the runner reset for the next problem.
			m.input.SetValue(m.runner.Input())
		}
	}
	return m, cmd
}

// flushCmd drains the session buffer off the update loop.
func (m *Model) flushCmd() tea.Cmd {
	runner := m.runner
	svc := m.svc
	userID := m.userID
	return func() tea.Msg {
		result, err := runner.Flush(context.Background(), svc, userID)
		return flushedMsg{result: result, err: err}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.runner.State() == session.Ended {
		content = m.resultView()
	} else {
		content = m.drillView()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	headerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Top, header)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return headerLine + "\n" + body + "\n" + footerLine
}

func (m *Model) drillView() string {
	question := questionStyle.Render(m.runner.Current().Question)
	return question + "\n\n" + m.input.View()
}

func (m *Model) resultView() string {
	lines := []string{resultStyle.Render(fmt.Sprintf("Time! Final score: %d", m.runner.Score()))}
	switch {
	case m.flushing:
		lines = append(lines, headerStyle.Render("Saving session..."))
	case m.flushErr != nil:
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Failed to save session: %v", m.flushErr)))
		lines = append(lines, errorStyle.Render(fmt.Sprintf("%d of %d answers were stored.", m.result.Submitted, m.runner.Score())))
	case m.flushed && m.result.Completed:
		lines = append(lines, headerStyle.Render(fmt.Sprintf("Saved as session %d.", m.result.SessionID)))
	case m.flushed:
		lines = append(lines, headerStyle.Render("Nothing to save."))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHeader() string {
	return renderHeader(m.runner.Score(), int(m.runner.Remaining()/time.Second))
}

func renderHeader(score, secondsRemaining int) string {
	scorePart := scoreStyle.Render(fmt.Sprintf("%d correct", score))
	timeStyle := headerStyle
	if secondsRemaining <= 10 {
		timeStyle = urgentStyle
	}
	timePart := timeStyle.Render(fmt.Sprintf("%ds left", secondsRemaining))
	return scorePart + headerStyle.Render("  ·  ") + timePart
}

func (m *Model) renderFooter() string {
	if m.runner.State() == session.Ended {
		if m.flushed {
			return footerStyle.Render("Press Enter to exit")
		}
		return footerStyle.Render("Saving...")
	}
	return footerStyle.Render("Type the answer · Enter clears · Esc quits")
}
