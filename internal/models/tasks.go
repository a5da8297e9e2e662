package models

import "encoding/json"

type TaskID string

// TaskStatusResponse is the reply of GET /task_status/{taskId}
type TaskStatusResponse struct {
	Status  Status          `json:"status"`
	Message string          `json:"message,omitempty"`
	TaskID  TaskID          `json:"task_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// CrawlAccepted is the reply of the asynchronous crawl endpoints
type CrawlAccepted struct {
	Status        Status `json:"status"`
	Message       string `json:"message,omitempty"`
	TaskID        TaskID `json:"task_id,omitempty"`
	TopicInput    string `json:"topic_input,omitempty"`
	UserParameter string `json:"user_parameter,omitempty"`
}

type TopicCrawlRequest struct {
	Topic string `json:"topic"`
}

type UsersCrawlRequest struct {
	UserParameter string `json:"user_parameter"`
}

// TopicCrawlResult is the data payload of a finished topic crawl
type TopicCrawlResult struct {
	Topic      string `json:"topic"`
	PostsCount int    `json:"posts_count"`
	OutputFile string `json:"output_file"`
}

// UsersCrawlSummary is the data payload of a finished users crawl
type UsersCrawlSummary struct {
	TotalUsers       int      `json:"total_users"`
	SuccessfulCrawls int      `json:"successful_crawls"`
	FailedCrawls     int      `json:"failed_crawls"`
	KeywordFilter    string   `json:"keyword_filter,omitempty"`
	TotalPosts       int      `json:"total_posts,omitempty"`
	OutputFile       string   `json:"output_file,omitempty"`
	Usernames        []string `json:"usernames,omitempty"`
}
