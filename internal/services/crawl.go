package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/socialcrawl/crawlctl/internal/async"
	"github.com/socialcrawl/crawlctl/internal/display"
	"github.com/socialcrawl/crawlctl/internal/logger"
	"github.com/socialcrawl/crawlctl/internal/models"
	"github.com/socialcrawl/crawlctl/internal/render"
)

// CrawlTopic starts a topic crawl and polls it. The returned session ends when the task does.
func (s *CrawlService) CrawlTopic(ctx context.Context, topic string, ctl display.Control) (*async.Session, error) {
	const surface = display.SurfaceTopicCrawl

	topic = strings.TrimSpace(topic)
	logger.Debug("Topic crawl requested with topic: %q", topic)

	if topic == "" {
		return nil, s.invalid(surface, "topic", "Please enter a topic to search for")
	}

	defer busy(ctl, "Crawling...", "Start Topic Crawl")()

	var accepted models.CrawlAccepted
	if err := s.client.Post(ctx, "/crawl_topic", models.TopicCrawlRequest{Topic: topic}, &accepted); err != nil {
		return nil, s.requestFailed(surface, "start topic crawl", err)
	}

	if accepted.Status != models.StatusStarted || accepted.TaskID == "" {
		return nil, s.rejected(surface, accepted.Status, acceptMessage(accepted))
	}

	startedFor := accepted.TopicInput
	if startedFor == "" {
		startedFor = topic
	}
	s.display.ShowStatus(surface, display.LevelInfo, fmt.Sprintf("Topic crawler started for: %s", startedFor))

	session := s.poller.Start(ctx, accepted.TaskID, surface, func(result models.TaskStatusResponse) {
		var data models.TopicCrawlResult
		if !decodeTaskData(result, &data) {
			return
		}
		s.display.ShowResults(render.TopicResults(s.renderer, data))
	})

	return session, nil
}

// CrawlUsers starts a users crawl. An empty parameter crawls every known user.
func (s *CrawlService) CrawlUsers(ctx context.Context, userParameter string, ctl display.Control) (*async.Session, error) {
	const surface = display.SurfaceUsersCrawl

	userParameter = strings.TrimSpace(userParameter)
	logger.Debug("Users crawl requested with parameter: %q", userParameter)

	defer busy(ctl, "Crawling...", "Start Users Crawl")()

	var accepted models.CrawlAccepted
	if err := s.client.Post(ctx, "/crawl_users", models.UsersCrawlRequest{UserParameter: userParameter}, &accepted); err != nil {
		return nil, s.requestFailed(surface, "start users crawl", err)
	}

	if accepted.Status != models.StatusStarted || accepted.TaskID == "" {
		return nil, s.rejected(surface, accepted.Status, acceptMessage(accepted))
	}

	param := accepted.UserParameter
	if param == "" {
		param = "None"
	}
	s.display.ShowStatus(surface, display.LevelInfo, fmt.Sprintf("Users crawler started with parameter: %s", param))

	session := s.poller.Start(ctx, accepted.TaskID, surface, func(result models.TaskStatusResponse) {
		var data models.UsersCrawlSummary
		if !decodeTaskData(result, &data) {
			return
		}
		s.display.ShowResults(render.UsersResults(s.renderer, data))
	})

	return session, nil
}

func acceptMessage(accepted models.CrawlAccepted) string {
	if accepted.Message != "" {
		return accepted.Message
	}
	if accepted.Status == models.StatusStarted {
		return "Server accepted the crawl without a task id"
	}
	return fmt.Sprintf("Unexpected server status %q", accepted.Status)
}

// decodeTaskData unmarshals the data field of a finished task, if there is one
func decodeTaskData(result models.TaskStatusResponse, out any) bool {
	if len(result.Data) == 0 || string(result.Data) == "null" {
		return false
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		logger.Error("Failed to decode result of task %s: %v", result.TaskID, err)
		return false
	}
	return true
}
