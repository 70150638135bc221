package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors for gateway operations.
var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("API_KEY environment variable not set")

	// ErrEmptyExpression is returned for blank input.
	ErrEmptyExpression = errors.New("expression is empty")

	// ErrInvalidResponse is returned when the model reply does not have
	// the expected {pythonCode, result} shape.
	ErrInvalidResponse = errors.New("invalid response structure")

	// ErrUnknown replaces failures that carry no message.
	ErrUnknown = errors.New("an unknown error occurred during calculation")
)

// APIError is a non-2xx reply from the model endpoint.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != "" {
		return fmt.Sprintf("model endpoint returned %d %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("model endpoint returned status %d", e.StatusCode)
}

// Error kinds carried in-band by the calculate service.
const (
	KindEmptyExpression = "empty_expression"
	KindInvalidResponse = "invalid_response"
	KindAPI             = "api_error"
	KindUnknown         = "unknown"
	KindTransport       = "transport"
)

// errorKind classifies err for transport across the service boundary.
func errorKind(err error) string {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrEmptyExpression):
		return KindEmptyExpression
	case errors.Is(err, ErrInvalidResponse):
		return KindInvalidResponse
	case errors.As(err, &apiErr):
		return KindAPI
	case errors.Is(err, ErrUnknown):
		return KindUnknown
	default:
		return KindTransport
	}
}

// remoteError restores a gateway error received over the service boundary.
// Error returns the original message; Unwrap yields the matching sentinel.
type remoteError struct {
	message string
	kind    error
}

func (e *remoteError) Error() string { return e.message }

func (e *remoteError) Unwrap() error { return e.kind }

// mapServiceError converts an in-band error back to an error that matches
// the gateway sentinels with errors.Is.
func mapServiceError(message, kind string) error {
	var sentinel error
	switch kind {
	case KindEmptyExpression:
		sentinel = ErrEmptyExpression
	case KindInvalidResponse:
		sentinel = ErrInvalidResponse
	case KindUnknown:
		sentinel = ErrUnknown
	}
	if message == "" {
		message = wrapCalculationError(ErrUnknown).Error()
		sentinel = ErrUnknown
	}
	return &remoteError{message: message, kind: sentinel}
}
