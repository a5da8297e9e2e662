package services

import (
	"context"
	"strings"

	"github.com/socialcrawl/crawlctl/internal/display"
	"github.com/socialcrawl/crawlctl/internal/logger"
	"github.com/socialcrawl/crawlctl/internal/models"
	"github.com/socialcrawl/crawlctl/internal/render"
)

// FilterPosts filters the crawled posts by symptom group. The server answers synchronously.
// A warning reply returns a nil result and no error.
func (s *CrawlService) FilterPosts(ctx context.Context, symptomGroup string, ctl display.Control) (*models.FilterResult, error) {
	const surface = display.SurfaceFilter

	symptomGroup = strings.TrimSpace(symptomGroup)
	if symptomGroup == "" {
		return nil, s.invalid(surface, "symptom_group", "Please select a symptom group")
	}

	defer busy(ctl, "Filtering...", "Filter Posts")()
	s.display.ShowProgress("Filtering posts...")

	var response models.FilterResponse
	if err := s.client.Post(ctx, "/filter_posts", models.FilterRequest{SymptomGroup: symptomGroup}, &response); err != nil {
		return nil, s.requestFailed(surface, "filter posts", err)
	}
	s.display.HideProgress()

	switch response.Status {
	case models.StatusSuccess:
		s.display.ShowStatus(surface, display.LevelSuccess, response.Message)
		if response.Data != nil {
			s.display.ShowResults(render.FilterResults(s.renderer, *response.Data))
		}
		return response.Data, nil
	case models.StatusWarning:
		s.display.ShowStatus(surface, display.LevelWarning, response.Message)
		return nil, nil
	default:
		return nil, s.rejected(surface, response.Status, response.Message)
	}
}

// StartUsersCrawl collects the users behind the filtered posts. It requires a filter to be active.
func (s *CrawlService) StartUsersCrawl(ctx context.Context, ctl display.Control) (*models.UsersCrawlResult, error) {
	const surface = display.SurfaceUsersFromDB

	defer busy(ctl, "Crawling users...", "Start Users Crawl")()

	var view models.ViewResponse
	if err := s.client.Get(ctx, "/view_main_post", &view); err != nil {
		return nil, s.requestFailed(surface, "check filtered posts", err)
	}
	if !view.IsFiltered {
		return nil, s.invalid(surface, "filter", "No filtered posts found. Please filter posts first.")
	}
	logger.Info("Starting users crawl from %d filtered posts (%s)", len(view.Data), view.FilteredSymptom)

	s.display.ShowProgress("Crawling users from filtered posts...")

	var response models.UsersCrawlResponse
	if err := s.client.Post(ctx, "/start_users_crawl", nil, &response); err != nil {
		return nil, s.requestFailed(surface, "start users crawl", err)
	}
	s.display.HideProgress()

	switch response.Status {
	case models.StatusSuccess:
		s.display.ShowStatus(surface, display.LevelSuccess, response.Message)
		if response.Data != nil {
			s.display.ShowResults(render.UsersCrawlResults(s.renderer, *response.Data))
		}
		return response.Data, nil
	case models.StatusWarning:
		s.display.ShowStatus(surface, display.LevelWarning, response.Message)
		return response.Data, nil
	default:
		return nil, s.rejected(surface, response.Status, response.Message)
	}
}

// ClearFilter removes the active filter. Only the HTTP status of the reply is checked.
func (s *CrawlService) ClearFilter(ctx context.Context, ctl display.Control) error {
	const surface = display.SurfaceFilter

	defer busy(ctl, "Clearing...", "Clear Filter")()

	if err := s.client.Post(ctx, "/clear_filter", nil, nil); err != nil {
		return s.requestFailed(surface, "clear filter", err)
	}

	s.display.ShowStatus(surface, display.LevelSuccess, "Filter cleared successfully")
	return nil
}
