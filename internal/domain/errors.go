package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is implemented by errors that know which status code they map to.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors, matched with errors.Is
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrProvider        = errors.New("search provider error")
	ErrContentFetch    = errors.New("content fetch error")
	ErrCompletion      = errors.New("completion api error")
	ErrSessionNotFound = errors.New("session not found")
	ErrValidation      = errors.New("validation failed")
)

// ConfigurationError reports a missing or invalid credential or model.
type ConfigurationError struct {
	Component string
	Message   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}
func (e *ConfigurationError) StatusCode() int      { return http.StatusInternalServerError }
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ProviderError is the failure of a single search provider call.
type ProviderError struct {
	Provider string
	Query    string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s search failed for %q: %v", e.Provider, e.Query, e.Err)
}
func (e *ProviderError) Unwrap() error        { return e.Err }
func (e *ProviderError) StatusCode() int      { return http.StatusBadGateway }
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// ContentFetchError is the failure to extract text from one page.
type ContentFetchError struct {
	URL string
	Err error
}

func (e *ContentFetchError) Error() string {
	return fmt.Sprintf("failed to fetch content from %s: %v", e.URL, e.Err)
}
func (e *ContentFetchError) Unwrap() error        { return e.Err }
func (e *ContentFetchError) StatusCode() int      { return http.StatusBadGateway }
func (e *ContentFetchError) Is(target error) bool { return target == ErrContentFetch }

// CompletionAPIError is the failure of the answer generation call.
type CompletionAPIError struct {
	Status int
	Err    error
}

func (e *CompletionAPIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("completion api call failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("completion api call failed: %v", e.Err)
}
func (e *CompletionAPIError) Unwrap() error        { return e.Err }
func (e *CompletionAPIError) StatusCode() int      { return http.StatusBadGateway }
func (e *CompletionAPIError) Is(target error) bool { return target == ErrCompletion }

// SessionNotFoundError is returned for operations on an absent or expired session.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionID)
}
func (e *SessionNotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *SessionNotFoundError) Is(target error) bool { return target == ErrSessionNotFound }

// ValidationError indicates invalid client input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StatusCode resolves the HTTP status for err, defaulting to 500.
func StatusCode(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode()
	}
	return http.StatusInternalServerError
}
