package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/socialcrawl/crawlctl/internal/display"
	"github.com/socialcrawl/crawlctl/internal/logger"
	"github.com/socialcrawl/crawlctl/internal/models"
	"github.com/socialcrawl/crawlctl/internal/render"
)

var (
	threadColumns = []string{
		"username", "full_name", "followers", "is_verified",
		"thread_text", "published_on", "like_count", "reply_count", "thread_url",
	}
	userSummaryColumns = []string{"username", "total_posts", "latest_post", "oldest_post", "sample_post"}
	userTableColumns   = []string{"username", "full_name", "followers", "posts_count", "verified"}
	historyColumns     = []string{"username", "text", "published_on", "like_count", "reply_count", "url"}
)

// ViewMainPost shows the crawled posts, or the filtered subset when a filter is active
func (s *CrawlService) ViewMainPost(ctx context.Context) (*models.ViewResponse, error) {
	view, err := s.fetchView(ctx, "/view_main_post")
	if err != nil {
		return nil, err
	}
	if view.Status == models.StatusWarning {
		return view, nil
	}

	title := "Main Post Data"
	if view.IsFiltered {
		if view.FilteredSymptom != "" {
			title = fmt.Sprintf("Main Post Data (Filtered by: %s)", view.FilteredSymptom)
		} else {
			title = "Main Post Data (Filtered)"
		}
	}

	s.display.ShowResults(render.RenderTable(s.renderer, title, view.Data, render.PostColumns(view.Data), render.MainPostOptions))
	return view, nil
}

// ViewUsersData shows crawled users, either one row per thread or one row per user
func (s *CrawlService) ViewUsersData(ctx context.Context) (*models.ViewResponse, error) {
	view, err := s.fetchView(ctx, "/view_users_data")
	if err != nil {
		return nil, err
	}
	if view.Status == models.StatusWarning {
		return view, nil
	}

	var out string
	switch view.DataType {
	case models.DataTypeThreads:
		out = render.RenderTable(s.renderer, "Users Data - All Threads/Comments", view.Data, threadColumns, render.UsersDataOptions)
	case models.DataTypeUsersSummary:
		out = render.RenderTable(s.renderer, "Users Data", view.Data, userSummaryColumns, render.UsersDataOptions)
	default:
		out = render.RenderTable(s.renderer, "Users Data", flattenUsers(view.Data), userTableColumns, render.UsersDataOptions)
	}

	s.display.ShowResults(out)
	return view, nil
}

// ViewUserHistory shows the per-user post history
func (s *CrawlService) ViewUserHistory(ctx context.Context) (*models.ViewResponse, error) {
	view, err := s.fetchView(ctx, "/view_user_history")
	if err != nil {
		return nil, err
	}
	if view.Status == models.StatusWarning {
		return view, nil
	}

	s.display.ShowResults(render.RenderTable(s.renderer, "User History", view.Data, pickColumns(view.Data, historyColumns), render.UserHistoryOptions))
	return view, nil
}

// DownloadUserHistory saves the user history export into dir
func (s *CrawlService) DownloadUserHistory(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		dir = s.config.DownloadDir
	}

	path, err := s.client.Download(ctx, "/download_user_history", dir, "user_history.csv")
	if err != nil {
		return "", s.requestFailed(display.SurfaceResults, "download user history", err)
	}

	s.display.ShowStatus(display.SurfaceResults, display.LevelSuccess, fmt.Sprintf("User history saved to: %s", path))
	return path, nil
}

// RefreshDataInfo checks the server is alive before the summary is shown again
func (s *CrawlService) RefreshDataInfo(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return fmt.Errorf("failed to refresh data info: %w", err)
	}
	logger.Info("Data info refreshed")
	return nil
}

// fetchView GETs a view endpoint and reports non-success replies on the results surface.
// Warnings are returned without an error.
func (s *CrawlService) fetchView(ctx context.Context, endpoint string) (*models.ViewResponse, error) {
	const surface = display.SurfaceResults

	var view models.ViewResponse
	if err := s.client.Get(ctx, endpoint, &view); err != nil {
		return nil, s.requestFailed(surface, "load "+endpoint, err)
	}

	switch view.Status {
	case models.StatusSuccess:
		if view.Message != "" {
			s.display.ShowStatus(surface, display.LevelInfo, view.Message)
		}
		return &view, nil
	case models.StatusWarning:
		s.display.ShowStatus(surface, display.LevelWarning, view.Message)
		return &view, nil
	default:
		return nil, s.rejected(surface, view.Status, view.Message)
	}
}

// flattenUsers maps {user, threads} records onto one summary row per user
func flattenUsers(rows []models.Record) []models.Record {
	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		user, _ := row["user"].(map[string]any)
		threads, _ := row["threads"].([]any)

		entry := models.Record{
			"username":    "N/A",
			"full_name":   "N/A",
			"followers":   float64(0),
			"posts_count": float64(len(threads)),
			"verified":    "No",
		}
		if v, ok := user["username"].(string); ok && v != "" {
			entry["username"] = v
		}
		if v, ok := user["full_name"].(string); ok && v != "" {
			entry["full_name"] = v
		}
		if v, ok := user["followers"]; ok && v != nil {
			entry["followers"] = v
		}
		if v, ok := user["is_verified"].(bool); ok && v {
			entry["verified"] = "Yes"
		}
		out = append(out, entry)
	}
	return out
}

// pickColumns keeps the preferred columns present in rows, or falls back to every key of the first row
func pickColumns(rows []models.Record, preferred []string) []string {
	if len(rows) == 0 {
		return preferred
	}

	var cols []string
	for _, col := range preferred {
		if _, ok := rows[0][col]; ok {
			cols = append(cols, col)
		}
	}
	if len(cols) > 0 {
		return cols
	}

	for key := range rows[0] {
		cols = append(cols, key)
	}
	sort.Strings(cols)
	return cols
}
