package display

import (
	"github.com/charmbracelet/lipgloss"
)

func levelColor(level Level) lipgloss.Color {
	switch level {
	case LevelSuccess:
		return lipgloss.Color("82")
	case LevelError:
		return lipgloss.Color("196")
	case LevelWarning:
		return lipgloss.Color("214")
	default:
		return lipgloss.Color("39")
	}
}

func levelIcon(level Level) string {
	switch level {
	case LevelSuccess:
		return "✅"
	case LevelError:
		return "❌"
	case LevelWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// Banner renders a one-line status banner
func Banner(r *lipgloss.Renderer, level Level, message string) string {
	style := r.NewStyle().Foreground(levelColor(level))
	if level == LevelError || level == LevelSuccess {
		style = style.Bold(true)
	}
	return style.Render(levelIcon(level) + " " + message)
}
