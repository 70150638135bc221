package calculator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// CalculatorPort defines the interface for interacting with the calculator module.
type CalculatorPort interface {
	CreateSession(ctx context.Context) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	PressKey(ctx context.Context, sessionID, key string) (*Session, error)
	Clear(ctx context.Context, sessionID string) (*Session, error)
	Evaluate(ctx context.Context, sessionID string) (*Session, error)
}

// calculatorAdapter implements CalculatorPort using the service container.
type calculatorAdapter struct {
	container mono.ServiceContainer
}

// NewCalculatorAdapter creates a new adapter for the calculator services.
func NewCalculatorAdapter(container mono.ServiceContainer) CalculatorPort {
	if container == nil {
		panic("calculator adapter requires non-nil ServiceContainer")
	}
	return &calculatorAdapter{container: container}
}

// CreateSession starts a new session.
func (a *calculatorAdapter) CreateSession(ctx context.Context) (*Session, error) {
	return a.callSession(ctx, "create-session", &SessionRequest{})
}

// GetSession returns a session by ID.
func (a *calculatorAdapter) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return a.callSession(ctx, "get-session", &SessionRequest{SessionID: sessionID})
}

// DeleteSession removes a session.
func (a *calculatorAdapter) DeleteSession(ctx context.Context, sessionID string) error {
	req := SessionRequest{SessionID: sessionID}
	var resp DeleteResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-session",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("delete-session service call failed: %w", err)
	}
	if resp.Error != "" {
		return mapServiceError(resp.Error, resp.ErrorKind)
	}
	return nil
}

// PressKey presses one keypad key.
func (a *calculatorAdapter) PressKey(ctx context.Context, sessionID, key string) (*Session, error) {
	return a.callSession(ctx, "press-key", &PressKeyRequest{SessionID: sessionID, Key: key})
}

// Clear resets a session's expression.
func (a *calculatorAdapter) Clear(ctx context.Context, sessionID string) (*Session, error) {
	return a.callSession(ctx, "clear", &SessionRequest{SessionID: sessionID})
}

// Evaluate starts evaluating a session's expression. The returned view is
// loading while the model answers; the outcome arrives as a SessionUpdated event.
func (a *calculatorAdapter) Evaluate(ctx context.Context, sessionID string) (*Session, error) {
	return a.callSession(ctx, "evaluate", &SessionRequest{SessionID: sessionID})
}

func (a *calculatorAdapter) callSession(ctx context.Context, service string, req any) (*Session, error) {
	var resp SessionResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", service, err)
	}
	if resp.Error != "" {
		return nil, mapServiceError(resp.Error, resp.ErrorKind)
	}
	if resp.Session == nil {
		return nil, fmt.Errorf("%s service returned no session", service)
	}
	return resp.Session, nil
}
