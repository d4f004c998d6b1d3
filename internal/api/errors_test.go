package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *APIError
		wantStr string
	}{
		{
			name: "with message",
			err: &APIError{
				StatusCode: 404,
				Endpoint:   "/places2",
				Message:    "Resource not found",
			},
			wantStr: "API error 404 (/places2): Resource not found",
		},
		{
			name:    "without message",
			err:     NewAPIError(500, "Internal Server Error", "/api/flights/search"),
			wantStr: "API error 500: Internal Server Error (endpoint: /api/flights/search)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		name      string
		err       *APIError
		target    error
		wantMatch bool
	}{
		{"404 matches ErrNotFound", &APIError{StatusCode: 404}, ErrNotFound, true},
		{"500 matches ErrServerError", &APIError{StatusCode: 500}, ErrServerError, true},
		{"503 matches ErrServerError", &APIError{StatusCode: 503}, ErrServerError, true},
		{"400 matches ErrInvalidRequest", &APIError{StatusCode: 400}, ErrInvalidRequest, true},
		{"422 matches ErrInvalidRequest", &APIError{StatusCode: 422}, ErrInvalidRequest, true},
		{"404 does not match ErrServerError", &APIError{StatusCode: 404}, ErrServerError, false},
		{"500 does not match ErrTimeout", &APIError{StatusCode: 500}, ErrTimeout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestServiceError(t *testing.T) {
	err := fmt.Errorf("lookup fares: %w", &ServiceError{Endpoint: EndpointFares, Reason: "no flights on this route"})

	if !errors.Is(err, ErrServiceFailure) {
		t.Error("wrapped ServiceError should match ErrServiceFailure")
	}
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatal("errors.As() failed for ServiceError")
	}
	if se.Error() != "no flights on this route" {
		t.Errorf("Error() = %q", se.Error())
	}
}
