package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents configuration errors (fatal, abort the run)
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeBlocked represents an anti-bot block with retries exhausted
	ErrorTypeBlocked ErrorType = "blocked"
	// ErrorTypeUpstreamStatus represents a non-success, non-ban upstream status
	ErrorTypeUpstreamStatus ErrorType = "upstream_status"
	// ErrorTypeEmptyContent represents a success response without rendered content
	ErrorTypeEmptyContent ErrorType = "empty_content"
	// ErrorTypeSnapshotMissing represents a missing local snapshot file
	ErrorTypeSnapshotMissing ErrorType = "snapshot_missing"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
)

// ScrapeError represents an error local to one URL or to the run setup
type ScrapeError struct {
	Type    ErrorType
	URL     string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.URL, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error should abort the whole run.
// Everything except configuration errors degrades to partial results.
func (e *ScrapeError) IsFatal() bool {
	return e.Type == ErrorTypeConfiguration
}

// New creates a new ScrapeError
func New(errType ErrorType, url, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		URL:     url,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewBlocked creates a new blocked error after retries were exhausted
func NewBlocked(url string, attempts int) *ScrapeError {
	message := fmt.Sprintf("ban detected, retries exhausted after %d attempts", attempts)
	return New(ErrorTypeBlocked, url, message, nil)
}

// NewUpstreamStatus creates an error for an unexpected upstream status code
func NewUpstreamStatus(url string, status int, body string) *ScrapeError {
	message := fmt.Sprintf("upstream returned status %d: %s", status, body)
	return New(ErrorTypeUpstreamStatus, url, message, nil)
}

// NewEmptyContent creates an error for a response without rendered content
func NewEmptyContent(url string) *ScrapeError {
	return New(ErrorTypeEmptyContent, url, "no rendered content in response", nil)
}

// NewSnapshotMissing creates an error for a missing local snapshot file
func NewSnapshotMissing(url, filename string) *ScrapeError {
	message := fmt.Sprintf("local snapshot not found: %s", filename)
	return New(ErrorTypeSnapshotMissing, url, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(url, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, url, message, err)
}

// TypeOf returns the ErrorType of err if it is a ScrapeError, or "" otherwise
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Type
	}
	return ""
}
