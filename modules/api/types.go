package api

import "github.com/example/gemini-calculator/domain/calculation"

// KeyRequest is the body of POST /api/v1/sessions/:id/keys.
type KeyRequest struct {
	Key string `json:"key"`
}

// KeypadResponse lists the keypad keys in row order.
type KeypadResponse struct {
	Keys []calculation.Key `json:"keys"`
}

// DeleteResponse confirms a session deletion.
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// Client frame types.
const (
	WSTypeKey      = "key"
	WSTypeState    = "state"
	WSTypeClear    = "clear"
	WSTypeEvaluate = "evaluate"
)

// WSCommand is one client-to-server WebSocket message.
type WSCommand struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
}
