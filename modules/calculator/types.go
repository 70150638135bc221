package calculator

import (
	"time"

	"github.com/example/gemini-calculator/domain/calculation"
)

// Session is the client-facing form of a calculator session.
type Session struct {
	ID         string           `json:"id"`
	View       calculation.View `json:"view"`
	Generation uint64           `json:"generation"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// SessionRequest addresses one session.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// PressKeyRequest presses one keypad key in a session.
type PressKeyRequest struct {
	SessionID string `json:"session_id"`
	Key       string `json:"key"`
}

// SessionResponse carries a session or an in-band error.
type SessionResponse struct {
	Session   *Session `json:"session,omitempty"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
}

// DeleteResponse is the reply of delete-session.
type DeleteResponse struct {
	Deleted   bool   `json:"deleted"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}
