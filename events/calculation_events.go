package events

import (
	"time"

	"github.com/example/gemini-calculator/domain/calculation"
	"github.com/go-monolith/mono/pkg/helper"
)

// SessionUpdatedEvent is emitted after every state change of a session.
type SessionUpdatedEvent struct {
	SessionID string           `json:"session_id"`
	View      calculation.View `json:"view"`
	Timestamp time.Time        `json:"timestamp"`
}

// CalculationCompletedEvent is emitted when an evaluation produced a result.
type CalculationCompletedEvent struct {
	SessionID  string    `json:"session_id"`
	Expression string    `json:"expression"`
	Code       string    `json:"python_code"`
	Result     string    `json:"result"`
	Duration   int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// CalculationFailedEvent is emitted when an evaluation ended with an error.
type CalculationFailedEvent struct {
	SessionID  string    `json:"session_id"`
	Expression string    `json:"expression"`
	Error      string    `json:"error"`
	Duration   int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Event definitions for the calculator domain.
var (
	SessionUpdatedV1 = helper.EventDefinition[SessionUpdatedEvent](
		"calculator",
		"SessionUpdated",
		"v1",
	)

	CalculationCompletedV1 = helper.EventDefinition[CalculationCompletedEvent](
		"calculator",
		"CalculationCompleted",
		"v1",
	)

	CalculationFailedV1 = helper.EventDefinition[CalculationFailedEvent](
		"calculator",
		"CalculationFailed",
		"v1",
	)
)
