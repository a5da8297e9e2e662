package models

import "fmt"

// Status is the application-level outcome the dashboard reports in every reply
type Status string

const (
	StatusStarted Status = "started"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusInfo    Status = "info"
	StatusError   Status = "error"
)

// IsTerminal reports whether polling should stop on this status
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

// APIResponse is the envelope shared by all dashboard endpoints
type APIResponse[T any] struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// APIError is an application-level failure reported inside a well-formed reply
type APIError struct {
	Status  Status
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server reported status %q", e.Status)
	}
	return e.Message
}

// Record is one row of tabular data as the server serializes it
type Record map[string]any
