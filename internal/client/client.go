package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/socialcrawl/crawlctl/internal/config"
	"github.com/socialcrawl/crawlctl/internal/logger"
)

// HTTPError is returned when the server answers with a non-2xx status
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error! status: %d: %s", e.StatusCode, e.Body)
}

// IsHTTPStatus reports whether err wraps an HTTPError with the given status code
func IsHTTPStatus(err error, code int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == code
}

// APIClient handles all HTTP communication with the dashboard server
type APIClient struct {
	config     *config.Config
	httpClient *http.Client
}

// NewAPIClient creates a new API client with the given configuration
func NewAPIClient(cfg *config.Config) *APIClient {
	return &APIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// BuildURL constructs a full URL for the given endpoint
func (c *APIClient) BuildURL(endpoint string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + endpoint
}

// Get makes a GET request to the specified endpoint
func (c *APIClient) Get(ctx context.Context, endpoint string, result interface{}) error {
	return c.request(ctx, http.MethodGet, endpoint, nil, result)
}

// Post makes a POST request to the specified endpoint
func (c *APIClient) Post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	return c.request(ctx, http.MethodPost, endpoint, body, result)
}

// request is the core HTTP request method
func (c *APIClient) request(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	resp, err := c.do(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			logger.Error("%s: Error decoding response: %v", resp.Request.URL, err)
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}

// do sends the request and checks the status code. The caller owns the body on success.
func (c *APIClient) do(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	url := c.BuildURL(endpoint)
	start := time.Now()
	logger.Debug("Starting %s request to %s", method, url)

	var requestBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error marshaling request body: %w", err)
		}
		requestBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, requestBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		logger.Error("Request failed after (%s) %v: %v", url, elapsed, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	elapsed := time.Since(start)
	logger.Debug("Request to %s completed in %v with status %d", url, elapsed, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Error("%s: HTTP error %d: %s", url, resp.StatusCode, string(bodyBytes))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	return resp, nil
}

// Ping checks if the server is alive using the data-info endpoint
func (c *APIClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/get_data_info", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// WaitForAPIReady waits for the server to become ready
func (c *APIClient) WaitForAPIReady(ctx context.Context) bool {
	logger.Info("Checking API readiness...")

	for attempt := 1; attempt <= c.config.APIReadyTimeout; attempt++ {
		logger.Info("Checking API readiness (attempt %d/%d)...", attempt, c.config.APIReadyTimeout)

		if err := c.Ping(ctx); err == nil {
			logger.Info("API is ready!")
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Second):
		}
	}

	logger.Error("API failed to become ready after %d attempts", c.config.APIReadyTimeout)
	return false
}
