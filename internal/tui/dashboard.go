package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/socialcrawl/crawlctl/internal/display"
	"github.com/socialcrawl/crawlctl/internal/logger"
)

// Dashboard forwards display calls to a running bubbletea program.
// It satisfies display.Display and is safe for concurrent use.
type Dashboard struct {
	program *tea.Program
	// grace bounds how long Run waits for the action once the user quits
	grace time.Duration
}

func NewDashboard(title string, opts ...tea.ProgramOption) *Dashboard {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &Dashboard{
		program: tea.NewProgram(NewModel(title), opts...),
		grace:   5 * time.Second,
	}
}

func (d *Dashboard) ShowProgress(text string) {
	d.program.Send(ProgressUpdate{Text: text, Visible: true})
}

func (d *Dashboard) HideProgress() {
	d.program.Send(ProgressUpdate{})
}

func (d *Dashboard) ShowStatus(surface display.Surface, level display.Level, message string) {
	logger.Debug("[%s] %s: %s", surface, level, message)
	d.program.Send(StatusUpdate{Surface: surface, Level: level, Message: message})
}

func (d *Dashboard) ShowResults(content string) {
	d.program.Send(ResultsUpdate{Content: content})
}

func (d *Dashboard) AddLog(message string) {
	d.program.Send(LogMessage{Message: message})
}

// Renderer is the renderer result panels should use inside the dashboard
func (d *Dashboard) Renderer() *lipgloss.Renderer {
	return lipgloss.DefaultRenderer()
}

// Control returns a named button shown in the dashboard header. Like every
// other method it blocks until Run has started the program.
func (d *Dashboard) Control(name, label string) display.Control {
	c := &control{name: name, program: d.program}
	d.program.Send(ControlUpdate{Name: name, Label: label})
	return c
}

func (d *Dashboard) Stop() {
	d.program.Quit()
}

// Run drives action in the background while the dashboard is shown. Quitting the
// dashboard cancels the context given to action, and Run returns the action's
// error once it has stopped.
func (d *Dashboard) Run(ctx context.Context, action func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	actionErr := make(chan error, 1)
	go func() {
		err := action(ctx)
		if err != nil {
			logger.Error("Action failed: %v", err)
			d.AddLog(fmt.Sprintf("❌ %v", err))
		}
		d.program.Send(ActionDone{Err: err})
		actionErr <- err
	}()

	if _, err := d.program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	cancel()
	select {
	case err := <-actionErr:
		return err
	case <-time.After(d.grace):
		logger.Warn("Action still running %v after the dashboard closed", d.grace)
		return fmt.Errorf("action did not stop within %v of quitting", d.grace)
	}
}

type control struct {
	name    string
	program *tea.Program
}

func (c *control) Disable(busyLabel string) {
	c.program.Send(ControlUpdate{Name: c.name, Label: busyLabel, Disabled: true})
}

func (c *control) Enable(label string) {
	c.program.Send(ControlUpdate{Name: c.name, Label: label})
}
