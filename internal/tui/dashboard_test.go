package tui

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headlessDashboard() *Dashboard {
	return NewDashboard("Crawl Dashboard",
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
}

func TestRunReturnsActionErrorAfterQuit(t *testing.T) {
	d := headlessDashboard()
	errCrawl := errors.New("crawl interrupted")

	err := d.Run(context.Background(), func(ctx context.Context) error {
		d.ShowProgress("Crawling page 1")
		d.Stop()
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		return errCrawl
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errCrawl)
}

func TestRunReportsActionThatIgnoresQuit(t *testing.T) {
	d := headlessDashboard()
	d.grace = 20 * time.Millisecond
	release := make(chan struct{})
	defer close(release)

	err := d.Run(context.Background(), func(ctx context.Context) error {
		d.Stop()
		<-release
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not stop")
}

func TestRunSucceedsWhenActionQuits(t *testing.T) {
	d := headlessDashboard()

	err := d.Run(context.Background(), func(ctx context.Context) error {
		d.ShowStatus("topicCrawlStatus", "success", "Topic crawl completed")
		d.Stop()
		return nil
	})

	assert.NoError(t, err)
}
