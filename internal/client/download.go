package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/socialcrawl/crawlctl/internal/logger"
	"github.com/socialcrawl/crawlctl/internal/models"
)

// Download streams the body of a GET endpoint into dir and returns the written path.
// The file name comes from Content-Disposition when present, otherwise fallbackName.
func (c *APIClient) Download(ctx context.Context, endpoint, dir, fallbackName string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); ct == "application/json" {
		// the server reports a missing file as a JSON error body with 200
		return "", decodeDownloadError(resp.Body)
	}

	name := attachmentName(resp.Header.Get("Content-Disposition"), fallbackName)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	dest := filepath.Join(dir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", dest, err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", dest, err)
	}

	logger.Info("Downloaded %d bytes to %s", written, dest)
	return dest, nil
}

// attachmentName extracts a safe file name from a Content-Disposition header
func attachmentName(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fallback
	}
	return name
}

func decodeDownloadError(body io.Reader) error {
	var reply models.APIResponse[any]
	if err := json.NewDecoder(body).Decode(&reply); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	if reply.Status == "" {
		reply.Status = models.StatusError
	}
	return &models.APIError{Status: reply.Status, Message: reply.Message}
}
