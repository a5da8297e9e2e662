package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/socialcrawl/crawlctl/internal/async"
	"github.com/socialcrawl/crawlctl/internal/client"
	"github.com/socialcrawl/crawlctl/internal/config"
	"github.com/socialcrawl/crawlctl/internal/display"
	"github.com/socialcrawl/crawlctl/internal/logger"
	"github.com/socialcrawl/crawlctl/internal/models"
)

// ValidationError is a local input check that failed before any request was sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// CrawlService runs the dashboard actions against the server
type CrawlService struct {
	config   *config.Config
	client   *client.APIClient
	poller   *async.Poller
	display  display.Display
	renderer *lipgloss.Renderer
}

// NewCrawlService creates a service with its own API client and poller
func NewCrawlService(cfg *config.Config, disp display.Display, renderer *lipgloss.Renderer) *CrawlService {
	apiClient := client.NewAPIClient(cfg)

	s := &CrawlService{
		config:   cfg,
		client:   apiClient,
		display:  disp,
		renderer: renderer,
	}

	s.poller = async.NewPoller(apiClient, disp, async.Options{
		Interval:     cfg.PollInterval,
		RefreshDelay: cfg.RefreshDelay,
		Timeout:      cfg.PollTimeout,
		MaxPolls:     cfg.MaxPolls,
		Refresh: func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
			defer cancel()
			if err := s.RefreshDataInfo(ctx); err != nil {
				logger.Error("Error updating data info: %v", err)
			}
		},
	})

	return s
}

// WaitForAPIReady waits for the server to become ready
func (s *CrawlService) WaitForAPIReady(ctx context.Context) bool {
	return s.client.WaitForAPIReady(ctx)
}

// GetConfig returns the current configuration
func (s *CrawlService) GetConfig() *config.Config {
	return s.config
}

// Poller exposes the task poller so callers can cancel sessions by surface
func (s *CrawlService) Poller() *async.Poller {
	return s.poller
}

// Cleanup stops every running poll session and lets pending summary refreshes finish
func (s *CrawlService) Cleanup() {
	if s.poller == nil {
		return
	}
	s.poller.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.RefreshDelay+s.config.RequestTimeout)
	defer cancel()
	if err := s.poller.Drain(ctx); err != nil {
		logger.Warn("Summary refresh still pending at shutdown: %v", err)
	}
}

// busy disables ctl for the duration of a flow; call the returned func with defer
func busy(ctl display.Control, busyLabel, idleLabel string) func() {
	if ctl == nil {
		ctl = display.NopControl{}
	}
	ctl.Disable(busyLabel)
	return func() {
		ctl.Enable(idleLabel)
	}
}

func (s *CrawlService) invalid(surface display.Surface, field, message string) error {
	s.display.ShowStatus(surface, display.LevelError, message)
	return &ValidationError{Field: field, Message: message}
}

func (s *CrawlService) requestFailed(surface display.Surface, action string, err error) error {
	s.display.HideProgress()
	s.display.ShowStatus(surface, display.LevelError, fmt.Sprintf("Error: %v", err))
	return fmt.Errorf("failed to %s: %w", action, err)
}

func (s *CrawlService) rejected(surface display.Surface, status models.Status, message string) error {
	s.display.HideProgress()
	if status == "" {
		status = models.StatusError
	}
	s.display.ShowStatus(surface, display.LevelFor(status), message)
	return &models.APIError{Status: status, Message: message}
}
