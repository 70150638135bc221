package broadcast

import (
	"time"

	"github.com/example/gemini-calculator/domain/calculation"
)

// Frame types sent to WebSocket clients.
const (
	FrameState = "state"
	FrameError = "error"
)

// SessionState is the session payload of a state frame.
type SessionState struct {
	ID        string           `json:"id"`
	View      calculation.View `json:"view"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Frame is one server-to-client WebSocket message.
type Frame struct {
	Type    string        `json:"type"`
	Session *SessionState `json:"session,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// StateFrame builds a state frame.
func StateFrame(state SessionState) Frame {
	return Frame{Type: FrameState, Session: &state}
}

// ErrorFrame builds an error frame.
func ErrorFrame(msg string) Frame {
	return Frame{Type: FrameError, Error: msg}
}
