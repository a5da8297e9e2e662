package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/socialcrawl/crawlctl/internal/logger"
)

func main() {
	logger.Init()
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.Fatal("Failed to execute command: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "crawlctl",
		Short: "A CLI client for the social crawl dashboard",
		Long: `crawlctl drives the social crawl dashboard server from the terminal: it starts
topic and user crawls, filters posts by symptom group and shows the collected data.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Path to a config file (yaml, toml or json)")
	flags.StringVarP(&a.baseURL, "base-url", "u", "", "Dashboard server URL (default http://localhost:5000)")
	flags.DurationVarP(&a.pollInterval, "poll-interval", "i", 0, "Delay between task status checks (default 2s)")
	flags.DurationVarP(&a.pollTimeout, "poll-timeout", "t", 0, "Give up on a task after this long, 0 waits forever")
	flags.IntVarP(&a.maxPolls, "max-polls", "m", 0, "Give up on a task after this many unfinished checks, 0 means no limit")
	flags.BoolVar(&a.useTUI, "tui", false, "Show a full-screen dashboard instead of plain output")

	rootCmd.AddCommand(
		newCrawlTopicCommand(a),
		newCrawlUsersCommand(a),
		newFilterCommand(a),
		newUsersFromFilterCommand(a),
		newViewCommand(a),
		newClearFilterCommand(a),
		newDownloadHistoryCommand(a),
		newPingCommand(a),
	)

	return rootCmd
}
