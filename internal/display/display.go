package display

import (
	"github.com/socialcrawl/crawlctl/internal/models"
)

// Surface names a region of the output that status or results are rendered into
type Surface string

const (
	SurfaceTopicCrawl  Surface = "topicCrawlStatus"
	SurfaceUsersCrawl  Surface = "usersCrawlStatus"
	SurfaceFilter      Surface = "filterStatus"
	SurfaceUsersFromDB Surface = "startUsersCrawlStatus"
	SurfaceResults     Surface = "resultsArea"
)

// Level selects the banner style
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// LevelFor maps a server status onto a banner level
func LevelFor(status models.Status) Level {
	switch status {
	case models.StatusSuccess:
		return LevelSuccess
	case models.StatusWarning:
		return LevelWarning
	case models.StatusError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Display is the set of surfaces flows and pollers render into.
// Implementations must be safe for concurrent use.
type Display interface {
	// ShowProgress shows the blocking progress indicator, or updates its text
	ShowProgress(text string)
	// HideProgress hides the indicator. Hiding an already hidden indicator is a no-op.
	HideProgress()
	ShowStatus(surface Surface, level Level, message string)
	ShowResults(content string)
}

// Control is the user-facing trigger of a flow, disabled while the flow runs
type Control interface {
	Disable(busyLabel string)
	Enable(label string)
}

// NopControl is used when a flow is not triggered by an interactive control
type NopControl struct{}

func (NopControl) Disable(string) {}
func (NopControl) Enable(string)  {}
