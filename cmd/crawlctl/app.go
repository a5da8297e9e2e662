package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/socialcrawl/crawlctl/internal/config"
	"github.com/socialcrawl/crawlctl/internal/display"
	"github.com/socialcrawl/crawlctl/internal/logger"
	"github.com/socialcrawl/crawlctl/internal/services"
	"github.com/socialcrawl/crawlctl/internal/tui"
)

// controlFunc creates the control a flow disables while it runs
type controlFunc func(name, label string) display.Control

type action func(ctx context.Context, svc *services.CrawlService, control controlFunc) error

type app struct {
	configFile   string
	baseURL      string
	pollInterval time.Duration
	pollTimeout  time.Duration
	maxPolls     int
	useTUI       bool

	config *config.Config
}

// setup resolves the configuration: defaults, config file, environment (.env included), then flags
func (a *app) setup(cmd *cobra.Command) error {
	config.LoadDotEnv(config.DotEnvPaths()...)

	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if flags.Changed("poll-interval") {
		cfg.PollInterval = a.pollInterval
	}
	if flags.Changed("poll-timeout") {
		cfg.PollTimeout = a.pollTimeout
	}
	if flags.Changed("max-polls") {
		cfg.MaxPolls = a.maxPolls
	}
	if flags.Changed("tui") {
		cfg.TUI = a.useTUI
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.TUI {
		if err := logger.InitFileOnly(); err != nil {
			return fmt.Errorf("failed to initialize file logging: %w", err)
		}
	}

	logger.Debug("Using dashboard at %s (poll every %v, timeout %v, max polls %d)",
		cfg.BaseURL, cfg.PollInterval, cfg.PollTimeout, cfg.MaxPolls)
	a.config = cfg
	return nil
}

// run executes fn against plain console output or inside the dashboard
func (a *app) run(cmd *cobra.Command, title string, fn action) error {
	ctx := cmd.Context()

	if a.config.TUI {
		dash := tui.NewDashboard(title)
		svc := services.NewCrawlService(a.config, dash, dash.Renderer())
		defer svc.Cleanup()

		return dash.Run(ctx, func(ctx context.Context) error {
			return fn(ctx, svc, dash.Control)
		})
	}

	console := display.NewConsole(cmd.OutOrStdout())
	svc := services.NewCrawlService(a.config, console, console.Renderer())
	defer svc.Cleanup()

	return fn(ctx, svc, func(name, label string) display.Control {
		return display.NewButton(name, label)
	})
}
