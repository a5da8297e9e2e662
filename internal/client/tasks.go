package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/socialcrawl/crawlctl/internal/models"
)

// TaskStatus fetches the current status of a server-side task
func (c *APIClient) TaskStatus(ctx context.Context, taskID models.TaskID) (*models.TaskStatusResponse, error) {
	endpoint := fmt.Sprintf("/task_status/%s", url.PathEscape(string(taskID)))

	var response models.TaskStatusResponse
	if err := c.Get(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch status for task %s: %w", taskID, err)
	}

	return &response, nil
}
