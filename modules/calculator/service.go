package calculator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/gemini-calculator/domain/calculation"
	"github.com/example/gemini-calculator/events"
	"github.com/example/gemini-calculator/modules/gateway"
	"github.com/go-monolith/mono/pkg/types"
)

// Publisher emits calculator events. The module implements it on the event bus.
type Publisher interface {
	SessionUpdated(event events.SessionUpdatedEvent)
	CalculationCompleted(event events.CalculationCompletedEvent)
	CalculationFailed(event events.CalculationFailedEvent)
}

// Service owns the calculator sessions and drives their state holders.
//
// Evaluations run in the background: the call that requests one returns
// the loading view, and the outcome is published as a SessionUpdated
// event. Events of one session are published while its lock is held, so
// they leave in the order the state changed.
type Service struct {
	store       *SessionStore
	gateway     gateway.GatewayPort
	publisher   Publisher
	logger      types.Logger
	evalTimeout time.Duration

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// NewService creates a calculator service.
func NewService(store *SessionStore, gw gateway.GatewayPort, publisher Publisher, logger types.Logger, evalTimeout time.Duration) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:       store,
		gateway:     gw,
		publisher:   publisher,
		logger:      logger,
		evalTimeout: evalTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// CreateSession starts a new session with an empty expression.
func (s *Service) CreateSession() Session {
	sess := s.store.create()

	sess.mu.Lock()
	snap := sess.snapshot()
	s.publishUpdate(snap)
	sess.mu.Unlock()

	s.logger.Info("Session created", "sessionID", snap.ID)
	return snap
}

// GetSession returns the current view of a session.
func (s *Service) GetSession(id string) (Session, error) {
	sess, err := s.store.get(id)
	if err != nil {
		return Session{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// DeleteSession removes a session. An in-flight evaluation completes but
// its result is discarded.
func (s *Service) DeleteSession(id string) error {
	if err := s.store.remove(id); err != nil {
		return err
	}
	s.logger.Info("Session deleted", "sessionID", id)
	return nil
}

// PressKey applies one keypad key. "=" starts an evaluation.
func (s *Service) PressKey(id, symbol string) (Session, error) {
	key, ok := calculation.LookupKey(symbol)
	if !ok {
		return Session{}, fmt.Errorf("%w: %q", ErrUnknownKey, symbol)
	}
	return s.apply(id, key.Event())
}

// Clear resets the expression and drops any result or error.
func (s *Service) Clear(id string) (Session, error) {
	return s.apply(id, calculation.Cleared{})
}

// Evaluate starts evaluating the current expression and returns the
// loading view. A blank expression or an evaluation already in flight
// returns the current view without calling the gateway.
func (s *Service) Evaluate(id string) (Session, error) {
	return s.apply(id, calculation.EvaluateRequested{})
}

// apply dispatches e and starts the gateway call when the dispatcher asks
// for one.
func (s *Service) apply(id string, e calculation.Event) (Session, error) {
	sess, err := s.store.get(id)
	if err != nil {
		return Session{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	req := sess.dispatch(e, s.store.now())
	snap := sess.snapshot()
	s.publishUpdate(snap)

	if req != nil {
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			s.evaluate(sess, *req)
		}()
	}
	return snap, nil
}

// evaluate runs one gateway call with no session lock held and dispatches
// its completion.
func (s *Service) evaluate(sess *session, req calculation.Request) {
	expression := req.Expression.String()
	s.logger.Debug("Evaluating expression",
		"sessionID", sess.id,
		"generation", req.Generation,
		"expression", expression)

	ctx, cancel := context.WithTimeout(s.ctx, s.evalTimeout)
	defer cancel()

	start := time.Now()
	result, callErr := s.gateway.Calculate(ctx, expression)
	elapsed := time.Since(start)

	var completion calculation.Event
	if callErr != nil {
		completion = calculation.EvaluationFailed{Generation: req.Generation, Message: callErr.Error()}
	} else {
		completion = calculation.EvaluationSucceeded{Generation: req.Generation, Result: result}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.state.Pending(req.Generation) {
		s.logger.Debug("Dropped stale evaluation",
			"sessionID", sess.id,
			"generation", req.Generation)
		return
	}

	sess.dispatch(completion, s.store.now())
	snap := sess.snapshot()
	s.publishUpdate(snap)

	now := time.Now()
	if callErr != nil {
		s.logger.Warn("Evaluation failed",
			"sessionID", sess.id,
			"expression", expression,
			"error", callErr)
		s.publisher.CalculationFailed(events.CalculationFailedEvent{
			SessionID:  sess.id,
			Expression: expression,
			Error:      snap.View.Error,
			Duration:   elapsed.Milliseconds(),
			Timestamp:  now,
		})
		return
	}

	s.logger.Info("Evaluation completed",
		"sessionID", sess.id,
		"expression", expression,
		"result", result.Result,
		"duration", elapsed)
	s.publisher.CalculationCompleted(events.CalculationCompletedEvent{
		SessionID:  sess.id,
		Expression: expression,
		Code:       result.Code,
		Result:     result.Result,
		Duration:   elapsed.Milliseconds(),
		Timestamp:  now,
	})
}

// publishUpdate must be called with the session lock held.
func (s *Service) publishUpdate(snap Session) {
	s.publisher.SessionUpdated(events.SessionUpdatedEvent{
		SessionID: snap.ID,
		View:      snap.View,
		Timestamp: snap.UpdatedAt,
	})
}

// Close cancels in-flight evaluations and waits for them to finish.
func (s *Service) Close() {
	s.cancel()
	s.inflight.Wait()
}

// SweepExpired drops sessions idle longer than ttl.
func (s *Service) SweepExpired(ttl time.Duration) int {
	expired := s.store.Sweep(ttl)
	if len(expired) > 0 {
		s.logger.Info("Expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	return s.store.Count()
}
