package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/socialcrawl/crawlctl/internal/async"
	"github.com/socialcrawl/crawlctl/internal/logger"
	"github.com/socialcrawl/crawlctl/internal/services"
)

// waitFor blocks until the poll session started by a crawl ends and its summary refresh has run
func waitFor(ctx context.Context, svc *services.CrawlService, session *async.Session) error {
	outcome := session.Wait(ctx)
	if outcome.Err != nil {
		return outcome.Err
	}
	logger.Info("Task %s finished: %s", session.TaskID, outcome.Result.Message)

	if err := svc.Poller().Drain(ctx); err != nil {
		return fmt.Errorf("summary refresh did not finish: %w", err)
	}
	return nil
}

func newCrawlTopicCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "crawl-topic <topic>",
		Short: "Crawl posts for a topic and wait for the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.Join(args, " ")
			return a.run(cmd, "Topic Crawl", func(ctx context.Context, svc *services.CrawlService, control controlFunc) error {
				session, err := svc.CrawlTopic(ctx, topic, control("topic", "Start Topic Crawl"))
				if err != nil {
					return err
				}
				return waitFor(ctx, svc, session)
			})
		},
	}
}

func newCrawlUsersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "crawl-users [user-parameter]",
		Short: "Crawl the history of known users, optionally narrowed by a parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var param string
			if len(args) > 0 {
				param = args[0]
			}
			return a.run(cmd, "Users Crawl", func(ctx context.Context, svc *services.CrawlService, control controlFunc) error {
				session, err := svc.CrawlUsers(ctx, param, control("users", "Start Users Crawl"))
				if err != nil {
					return err
				}
				return waitFor(ctx, svc, session)
			})
		},
	}
}

func newFilterCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <symptom-group>",
		Short: "Filter crawled posts by symptom group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var group string
			if len(args) > 0 {
				group = args[0]
			}
			return a.run(cmd, "Filter Posts", func(ctx context.Context, svc *services.CrawlService, control controlFunc) error {
				_, err := svc.FilterPosts(ctx, group, control("filter", "Filter Posts"))
				return err
			})
		},
	}
}

func newUsersFromFilterCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users-from-filter",
		Short: "Collect the users behind the currently filtered posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "Users From Filtered Posts", func(ctx context.Context, svc *services.CrawlService, control controlFunc) error {
				_, err := svc.StartUsersCrawl(ctx, control("users-from-filter", "Start Users Crawl"))
				return err
			})
		},
	}
}

func newViewCommand(a *app) *cobra.Command {
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Show collected data",
	}

	viewCmd.AddCommand(
		&cobra.Command{
			Use:   "main",
			Short: "Show the crawled posts, or the filtered subset",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, "Main Post Data", func(ctx context.Context, svc *services.CrawlService, _ controlFunc) error {
					_, err := svc.ViewMainPost(ctx)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "users",
			Short: "Show the crawled users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, "Users Data", func(ctx context.Context, svc *services.CrawlService, _ controlFunc) error {
					_, err := svc.ViewUsersData(ctx)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "history",
			Short: "Show the user post history",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, "User History", func(ctx context.Context, svc *services.CrawlService, _ controlFunc) error {
					_, err := svc.ViewUserHistory(ctx)
					return err
				})
			},
		},
	)

	return viewCmd
}

func newClearFilterCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-filter",
		Short: "Remove the active symptom group filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "Clear Filter", func(ctx context.Context, svc *services.CrawlService, control controlFunc) error {
				return svc.ClearFilter(ctx, control("clear-filter", "Clear Filter"))
			})
		},
	}
}

func newDownloadHistoryCommand(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download-history",
		Short: "Download the user history CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "Download User History", func(ctx context.Context, svc *services.CrawlService, _ controlFunc) error {
				_, err := svc.DownloadUserHistory(ctx, dir)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to save the file in (default from config)")

	return cmd
}

func newPingCommand(a *app) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the dashboard server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "Ping", func(ctx context.Context, svc *services.CrawlService, _ controlFunc) error {
				if wait {
					if !svc.WaitForAPIReady(ctx) {
						return fmt.Errorf("server at %s did not become ready", svc.GetConfig().BaseURL)
					}
					return nil
				}
				return svc.RefreshDataInfo(ctx)
			})
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Retry until the server is ready (api_ready_timeout attempts)")

	return cmd
}
