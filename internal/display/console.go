package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/socialcrawl/crawlctl/internal/logger"
)

// Console renders surfaces as sequential lines on a writer
type Console struct {
	out      io.Writer
	renderer *lipgloss.Renderer

	mu           sync.Mutex
	progressText string
	progressOn   bool
}

func NewConsole(out io.Writer) *Console {
	return &Console{
		out:      out,
		renderer: lipgloss.NewRenderer(out),
	}
}

func (c *Console) ShowProgress(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.progressOn && c.progressText == text {
		return
	}
	c.progressOn = true
	c.progressText = text

	style := c.renderer.NewStyle().Foreground(lipgloss.Color("244"))
	c.println(style.Render("⏳ " + text))
}

func (c *Console) HideProgress() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.progressOn = false
	c.progressText = ""
}

// ProgressVisible reports whether the progress indicator is currently shown
func (c *Console) ProgressVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressOn
}

func (c *Console) ShowStatus(surface Surface, level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger.Debug("[%s] %s: %s", surface, level, message)
	c.println(Banner(c.renderer, level, message))
}

func (c *Console) ShowResults(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.println(strings.TrimRight(content, "\n"))
}

// Renderer exposes the writer-bound lipgloss renderer so result panels match the console
func (c *Console) Renderer() *lipgloss.Renderer {
	return c.renderer
}

func (c *Console) println(s string) {
	if _, err := fmt.Fprintln(c.out, s); err != nil {
		logger.Warn("Failed to write to console: %v", err)
	}
}

// Button is a named console control; it only tracks and logs its state
type Button struct {
	Name string

	mu       sync.Mutex
	label    string
	disabled bool
}

func NewButton(name, label string) *Button {
	return &Button{Name: name, label: label}
}

func (b *Button) Disable(busyLabel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabled = true
	b.label = busyLabel
	logger.Debug("Control %s disabled (%s)", b.Name, busyLabel)
}

func (b *Button) Enable(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabled = false
	b.label = label
	logger.Debug("Control %s enabled (%s)", b.Name, label)
}

func (b *Button) State() (label string, disabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label, b.disabled
}
