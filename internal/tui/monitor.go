package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/socialcrawl/crawlctl/internal/display"
)

const maxLogLines = 8

type banner struct {
	level   display.Level
	message string
}

type controlState struct {
	label    string
	disabled bool
}

type Model struct {
	title        string
	progressText string
	progressOn   bool
	surfaces     []display.Surface
	banners      map[display.Surface]banner
	controls     []string
	controlState map[string]controlState
	results      string
	logs         []string
	done         bool
	doneErr      error
	spinner      spinner.Model
	width        int
	height       int
	quit         bool
}

type ProgressUpdate struct {
	Text    string
	Visible bool
}

type StatusUpdate struct {
	Surface display.Surface
	Level   display.Level
	Message string
}

type ResultsUpdate struct {
	Content string
}

type ControlUpdate struct {
	Name     string
	Label    string
	Disabled bool
}

type LogMessage struct {
	Message string
}

// ActionDone is sent once the action driving the dashboard has returned
type ActionDone struct {
	Err error
}

func NewModel(title string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		title:        title,
		banners:      make(map[display.Surface]banner),
		controlState: make(map[string]controlState),
		spinner:      sp,
		width:        80,
		height:       24,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKeyMsg(msg) {
			m.quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ProgressUpdate:
		m.progressOn = msg.Visible
		m.progressText = msg.Text

	case StatusUpdate:
		m = m.handleStatusUpdate(msg)

	case ResultsUpdate:
		m.results = strings.TrimRight(msg.Content, "\n")

	case ControlUpdate:
		m = m.handleControlUpdate(msg)

	case LogMessage:
		m = m.handleLogMessage(msg)

	case ActionDone:
		m.done = true
		m.doneErr = msg.Err
		m.progressOn = false

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return true
	}
	return false
}

// handleStatusUpdate replaces the banner of a surface; surfaces keep first-seen order
func (m Model) handleStatusUpdate(msg StatusUpdate) Model {
	banners := make(map[display.Surface]banner, len(m.banners)+1)
	for k, v := range m.banners {
		banners[k] = v
	}
	if _, seen := banners[msg.Surface]; !seen {
		m.surfaces = append(append([]display.Surface(nil), m.surfaces...), msg.Surface)
	}
	banners[msg.Surface] = banner{level: msg.Level, message: msg.Message}
	m.banners = banners
	return m
}

func (m Model) handleControlUpdate(msg ControlUpdate) Model {
	state := make(map[string]controlState, len(m.controlState)+1)
	for k, v := range m.controlState {
		state[k] = v
	}
	if _, seen := state[msg.Name]; !seen {
		m.controls = append(append([]string(nil), m.controls...), msg.Name)
	}
	state[msg.Name] = controlState{label: msg.Label, disabled: msg.Disabled}
	m.controlState = state
	return m
}

func (m Model) handleLogMessage(msg LogMessage) Model {
	logs := append(append([]string(nil), m.logs...), fmt.Sprintf("[%s] %s",
		time.Now().Format("15:04:05"), msg.Message))
	if len(logs) > maxLogLines {
		logs = logs[len(logs)-maxLogLines:]
	}
	m.logs = logs
	return m
}

func (m Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginBottom(1)

	s.WriteString(headerStyle.Render("🕷 " + m.title))
	s.WriteString("\n\n")

	if len(m.controls) > 0 {
		s.WriteString(m.controlsView())
		s.WriteString("\n\n")
	}

	if m.progressOn {
		progressStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
		s.WriteString(m.spinner.View() + " " + progressStyle.Render(m.progressText))
		s.WriteString("\n\n")
	}

	for _, surface := range m.surfaces {
		b := m.banners[surface]
		s.WriteString(display.Banner(lipgloss.DefaultRenderer(), b.level, b.message))
		s.WriteString("\n")
	}
	if len(m.surfaces) > 0 {
		s.WriteString("\n")
	}

	if m.results != "" {
		s.WriteString(m.results)
		s.WriteString("\n\n")
	}

	if len(m.logs) > 0 {
		logSectionStyle := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

		var logSection strings.Builder
		logSection.WriteString("📝 Recent Activity")
		for _, log := range m.logs {
			logSection.WriteString("\n" + log)
		}
		s.WriteString(logSectionStyle.Render(logSection.String()))
		s.WriteString("\n\n")
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	footer := "Press 'q' to quit | Logs: logs/crawlctl_*.log"
	if m.done {
		if m.doneErr != nil {
			footer = fmt.Sprintf("Finished with error: %v | %s", m.doneErr, footer)
		} else {
			footer = "Finished | " + footer
		}
	}
	s.WriteString(footerStyle.Render(footer))

	return s.String()
}

func (m Model) controlsView() string {
	idle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	disabled := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	parts := make([]string, 0, len(m.controls))
	for _, name := range m.controls {
		st := m.controlState[name]
		if st.disabled {
			parts = append(parts, disabled.Render("["+st.label+"]"))
		} else {
			parts = append(parts, idle.Render("["+st.label+"]"))
		}
	}
	return strings.Join(parts, " ")
}
