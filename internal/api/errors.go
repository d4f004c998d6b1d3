package api

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest indicates the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrServerError indicates a server-side error
	ErrServerError = errors.New("server error")

	// ErrTimeout indicates the request timed out or was cancelled
	ErrTimeout = errors.New("request timed out")

	// ErrServiceFailure indicates the fare service answered with a failure envelope
	ErrServiceFailure = errors.New("service reported failure")
)

// APIError represents an error returned by a remote service
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error %d: %s (endpoint: %s)", e.StatusCode, e.Status, e.Endpoint)
}

// Is implements errors.Is for APIError
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrServerError:
		return e.StatusCode >= 500
	case ErrInvalidRequest:
		return e.StatusCode == 400 || e.StatusCode == 422
	}
	return false
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, status, endpoint string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Status:     status,
		Endpoint:   endpoint,
	}
}

// ServiceError is a failure envelope ({"success": false, ...}) from the fare service
type ServiceError struct {
	Endpoint string
	Reason   string
}

func (e *ServiceError) Error() string {
	return e.Reason
}

// Is implements errors.Is for ServiceError
func (e *ServiceError) Is(target error) bool {
	return target == ErrServiceFailure
}
