package calculator

import (
	"errors"
	"fmt"
)

// Sentinel errors for calculator operations.
var (
	// ErrSessionNotFound is returned when the session does not exist or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUnknownKey is returned for a symbol that is not on the keypad.
	ErrUnknownKey = errors.New("unknown key")
)

// Error kinds carried in-band by the calculator services.
const (
	KindSessionNotFound = "session_not_found"
	KindUnknownKey      = "unknown_key"
	KindInternal        = "internal"
)

// errorKind classifies err for transport across the service boundary.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return KindSessionNotFound
	case errors.Is(err, ErrUnknownKey):
		return KindUnknownKey
	default:
		return KindInternal
	}
}

// mapServiceError converts an in-band error back to an error that matches
// the calculator sentinels with errors.Is. The message is kept as sent.
func mapServiceError(message, kind string) error {
	switch kind {
	case KindSessionNotFound:
		return ErrSessionNotFound
	case KindUnknownKey:
		if message == "" || message == ErrUnknownKey.Error() {
			return ErrUnknownKey
		}
		return &remoteError{message: message, kind: ErrUnknownKey}
	default:
		if message == "" {
			return fmt.Errorf("calculator service failed")
		}
		return errors.New(message)
	}
}

// remoteError restores an error received over the service boundary.
type remoteError struct {
	message string
	kind    error
}

func (e *remoteError) Error() string { return e.message }

func (e *remoteError) Unwrap() error { return e.kind }
