package calculator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/gemini-calculator/domain/calculation"
	"github.com/example/gemini-calculator/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

// mockGateway implements gateway.GatewayPort.
type mockGateway struct {
	calls       atomic.Int32
	expressions chan string
	calculate   func(ctx context.Context, expression string) (calculation.CalculationResult, error)
}

func newMockGateway(fn func(ctx context.Context, expression string) (calculation.CalculationResult, error)) *mockGateway {
	return &mockGateway{expressions: make(chan string, 16), calculate: fn}
}

func (g *mockGateway) Calculate(ctx context.Context, expression string) (calculation.CalculationResult, error) {
	g.calls.Add(1)
	g.expressions <- expression
	return g.calculate(ctx, expression)
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu        sync.Mutex
	updated   []events.SessionUpdatedEvent
	completed []events.CalculationCompletedEvent
	failed    []events.CalculationFailedEvent

	// onUpdate runs before an update is recorded.
	onUpdate func(events.SessionUpdatedEvent)
}

func (p *recordingPublisher) SessionUpdated(e events.SessionUpdatedEvent) {
	if p.onUpdate != nil {
		p.onUpdate(e)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, e)
}

func (p *recordingPublisher) CalculationCompleted(e events.CalculationCompletedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, e)
}

func (p *recordingPublisher) CalculationFailed(e events.CalculationFailedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = append(p.failed, e)
}

func (p *recordingPublisher) lastUpdate() events.SessionUpdatedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updated[len(p.updated)-1]
}

func (p *recordingPublisher) counts() (updated, completed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updated), len(p.completed), len(p.failed)
}

func newTestService(t *testing.T, gw *mockGateway) (*Service, *recordingPublisher) {
	t.Helper()
	store, err := NewSessionStore()
	require.NoError(t, err)
	pub := &recordingPublisher{}
	return NewService(store, gw, pub, &mockLogger{}, time.Second), pub
}

func fixedResult(code, result string) func(context.Context, string) (calculation.CalculationResult, error) {
	return func(context.Context, string) (calculation.CalculationResult, error) {
		return calculation.CalculationResult{Code: code, Result: result}, nil
	}
}

func pressAll(t *testing.T, svc *Service, id string, keys ...string) Session {
	t.Helper()
	var sess Session
	var err error
	for _, k := range keys {
		sess, err = svc.PressKey(id, k)
		require.NoError(t, err)
	}
	return sess
}

// settle waits for background evaluations and returns the session view.
func settle(t *testing.T, svc *Service, id string) Session {
	t.Helper()
	svc.inflight.Wait()
	sess, err := svc.GetSession(id)
	require.NoError(t, err)
	return sess
}

func TestService_CreateSession(t *testing.T) {
	svc, pub := newTestService(t, newMockGateway(fixedResult("", "")))

	sess := svc.CreateSession()
	assert.Len(t, sess.ID, sessionIDLength)
	assert.Equal(t, "0", sess.View.Display)
	assert.Equal(t, calculation.StatusIdle, sess.View.Status)
	assert.Equal(t, 1, svc.SessionCount())

	updated, _, _ := pub.counts()
	assert.Equal(t, 1, updated)

	other := svc.CreateSession()
	assert.NotEqual(t, sess.ID, other.ID)
}

func TestService_PressKey(t *testing.T) {
	svc, pub := newTestService(t, newMockGateway(fixedResult("", "")))
	id := svc.CreateSession().ID

	sess := pressAll(t, svc, id, "1", "2", "+", "3")
	assert.Equal(t, "12+3", sess.View.Expression)
	assert.Equal(t, "12+3", sess.View.Display)

	updated, _, _ := pub.counts()
	assert.Equal(t, 5, updated)
}

func TestService_PressKey_UnknownKey(t *testing.T) {
	svc, _ := newTestService(t, newMockGateway(fixedResult("", "")))
	id := svc.CreateSession().ID

	_, err := svc.PressKey(id, "%")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestService_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t, newMockGateway(fixedResult("", "")))

	_, err := svc.GetSession("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.PressKey("missing", "1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Clear("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Evaluate("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.DeleteSession("missing"), ErrSessionNotFound)
}

func TestService_Clear(t *testing.T) {
	svc, _ := newTestService(t, newMockGateway(fixedResult("2+2", "4")))
	id := svc.CreateSession().ID
	pressAll(t, svc, id, "2", "+", "2", "=")
	settle(t, svc, id)

	sess, err := svc.Clear(id)
	require.NoError(t, err)
	assert.Empty(t, sess.View.Expression)
	assert.Nil(t, sess.View.Result)
	assert.Equal(t, "0", sess.View.Display)
}

func TestService_Evaluate_Success(t *testing.T) {
	gw := newMockGateway(fixedResult("2+2", "4"))
	svc, pub := newTestService(t, gw)
	id := svc.CreateSession().ID
	pressAll(t, svc, id, "2", "+", "2")

	loading, err := svc.Evaluate(id)
	require.NoError(t, err)
	assert.True(t, loading.View.Loading)
	assert.Equal(t, calculation.LoadingText, loading.View.Display)

	sess := settle(t, svc, id)
	assert.Equal(t, int32(1), gw.calls.Load())
	assert.Equal(t, "2+2", <-gw.expressions)
	assert.Equal(t, calculation.StatusResult, sess.View.Status)
	assert.Equal(t, "4", sess.View.Display)
	assert.Equal(t, "2+2", sess.View.Code)
	assert.False(t, sess.View.Loading)
	assert.Equal(t, "2+2", sess.View.Expression)

	_, completed, failed := pub.counts()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, "4", pub.completed[0].Result)
	assert.Equal(t, id, pub.completed[0].SessionID)
	assert.Equal(t, calculation.StatusResult, pub.lastUpdate().View.Status)
}

func TestService_EqualsKeyEvaluates(t *testing.T) {
	gw := newMockGateway(fixedResult("12+3", "15"))
	svc, _ := newTestService(t, gw)
	id := svc.CreateSession().ID

	pressAll(t, svc, id, "1", "2", "+", "3", "=")
	sess := settle(t, svc, id)
	assert.Equal(t, "15", sess.View.Display)
	assert.Equal(t, int32(1), gw.calls.Load())
}

func TestService_Evaluate_Blank(t *testing.T) {
	gw := newMockGateway(fixedResult("", ""))
	svc, pub := newTestService(t, gw)
	id := svc.CreateSession().ID

	sess, err := svc.Evaluate(id)
	require.NoError(t, err)
	assert.Equal(t, "0", sess.View.Display)
	assert.False(t, sess.View.Loading)

	settle(t, svc, id)
	assert.Equal(t, int32(0), gw.calls.Load())
	_, completed, failed := pub.counts()
	assert.Zero(t, completed+failed)
}

func TestService_Evaluate_Failure(t *testing.T) {
	gw := newMockGateway(func(context.Context, string) (calculation.CalculationResult, error) {
		return calculation.CalculationResult{}, errors.New("failed to get calculation: connection refused")
	})
	svc, pub := newTestService(t, gw)
	id := svc.CreateSession().ID
	pressAll(t, svc, id, "1", "/", "0")

	assert.NotPanics(t, func() {
		_, err := svc.Evaluate(id)
		require.NoError(t, err)
	})
	sess := settle(t, svc, id)

	assert.Equal(t, calculation.StatusError, sess.View.Status)
	assert.Equal(t, "failed to get calculation: connection refused", sess.View.Error)
	assert.False(t, sess.View.Loading)
	assert.Nil(t, sess.View.Result)
	assert.Equal(t, "1/0", sess.View.Expression)

	_, completed, failed := pub.counts()
	assert.Equal(t, 0, completed)
	assert.Equal(t, 1, failed)

	// next key press clears the error
	sess = pressAll(t, svc, id, "1")
	assert.Empty(t, sess.View.Error)
	assert.Equal(t, "1/01", sess.View.Display)
}

func TestService_Evaluate_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	gw := newMockGateway(func(context.Context, string) (calculation.CalculationResult, error) {
		<-release
		return calculation.CalculationResult{Code: "6*7", Result: "42"}, nil
	})
	svc, _ := newTestService(t, gw)
	id := svc.CreateSession().ID
	pressAll(t, svc, id, "6", "*", "7")

	first, err := svc.Evaluate(id)
	require.NoError(t, err)
	assert.True(t, first.View.Loading)
	<-gw.expressions

	second, err := svc.Evaluate(id)
	require.NoError(t, err)
	assert.True(t, second.View.Loading)
	assert.Equal(t, first.Generation, second.Generation)

	close(release)
	sess := settle(t, svc, id)
	assert.Equal(t, "42", sess.View.Display)
	assert.Equal(t, int32(1), gw.calls.Load())
}

func TestService_Evaluate_SessionsRunInParallel(t *testing.T) {
	release := make(chan struct{})
	gw := newMockGateway(func(context.Context, string) (calculation.CalculationResult, error) {
		<-release
		return calculation.CalculationResult{Code: "1", Result: "1"}, nil
	})
	svc, _ := newTestService(t, gw)
	a := svc.CreateSession().ID
	b := svc.CreateSession().ID
	pressAll(t, svc, a, "1", "=")
	pressAll(t, svc, b, "1", "=")

	// both calls reach the gateway before either returns
	<-gw.expressions
	<-gw.expressions

	sess := pressAll(t, svc, a, "2")
	assert.True(t, sess.View.Loading, "key press answers while the model is busy")

	close(release)
	assert.Equal(t, "1", settle(t, svc, a).View.Display)
	assert.Equal(t, "1", settle(t, svc, b).View.Display)
}

func TestService_ClearAbandonsEvaluation(t *testing.T) {
	release := make(chan struct{})
	gw := newMockGateway(func(context.Context, string) (calculation.CalculationResult, error) {
		<-release
		return calculation.CalculationResult{Code: "5+5", Result: "10"}, nil
	})
	svc, pub := newTestService(t, gw)
	id := svc.CreateSession().ID
	pressAll(t, svc, id, "5", "+", "5")

	_, err := svc.Evaluate(id)
	require.NoError(t, err)
	<-gw.expressions

	cleared, err := svc.Clear(id)
	require.NoError(t, err)
	assert.False(t, cleared.View.Loading)

	updatesBefore, _, _ := pub.counts()
	close(release)
	sess := settle(t, svc, id)
	assert.Nil(t, sess.View.Result)
	assert.Equal(t, "0", sess.View.Display)

	updated, completed, _ := pub.counts()
	assert.Zero(t, completed, "abandoned evaluation must not be recorded")
	assert.Equal(t, updatesBefore, updated)
}

func TestService_UpdatesPublishedInStateOrder(t *testing.T) {
	release := make(chan struct{})
	gw := newMockGateway(func(context.Context, string) (calculation.CalculationResult, error) {
		<-release
		return calculation.CalculationResult{Code: "3", Result: "3"}, nil
	})
	svc, pub := newTestService(t, gw)
	id := svc.CreateSession().ID
	pressAll(t, svc, id, "3")

	pressed := make(chan Session, 1)
	var once sync.Once
	pub.onUpdate = func(e events.SessionUpdatedEvent) {
		if e.View.Status != calculation.StatusResult {
			return
		}
		once.Do(func() {
			// a key press racing the result must not overtake its update
			go func() {
				sess, _ := svc.PressKey(id, "+")
				pressed <- sess
			}()
			time.Sleep(50 * time.Millisecond)
		})
	}

	_, err := svc.Evaluate(id)
	require.NoError(t, err)
	close(release)
	svc.inflight.Wait()
	sess := <-pressed

	assert.Equal(t, "3+", sess.View.Expression)
	last := pub.lastUpdate()
	assert.Equal(t, "3+", last.View.Expression, "last update must reflect the latest state")
	assert.Equal(t, sess.View, last.View)
}

func TestService_CloseCancelsEvaluations(t *testing.T) {
	gw := newMockGateway(func(ctx context.Context, _ string) (calculation.CalculationResult, error) {
		<-ctx.Done()
		return calculation.CalculationResult{}, ctx.Err()
	})
	svc, pub := newTestService(t, gw)
	id := svc.CreateSession().ID
	pressAll(t, svc, id, "9", "=")
	<-gw.expressions

	svc.Close()

	sess, err := svc.GetSession(id)
	require.NoError(t, err)
	assert.False(t, sess.View.Loading)
	assert.Equal(t, calculation.StatusError, sess.View.Status)
	_, _, failed := pub.counts()
	assert.Equal(t, 1, failed)
}

func TestService_DeleteSession(t *testing.T) {
	svc, _ := newTestService(t, newMockGateway(fixedResult("", "")))
	id := svc.CreateSession().ID

	require.NoError(t, svc.DeleteSession(id))
	_, err := svc.GetSession(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, svc.SessionCount())
}

func TestService_SweepExpired(t *testing.T) {
	svc, _ := newTestService(t, newMockGateway(fixedResult("", "")))

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.store.now = func() time.Time { return now }

	stale := svc.CreateSession().ID
	now = now.Add(20 * time.Minute)
	fresh := svc.CreateSession().ID
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, svc.SweepExpired(30*time.Minute))

	_, err := svc.GetSession(stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.GetSession(fresh)
	assert.NoError(t, err)
}

func TestService_SweepKeepsEvaluatingSessions(t *testing.T) {
	release := make(chan struct{})
	gw := newMockGateway(func(context.Context, string) (calculation.CalculationResult, error) {
		<-release
		return calculation.CalculationResult{Code: "4", Result: "4"}, nil
	})
	svc, pub := newTestService(t, gw)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	svc.store.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	id := svc.CreateSession().ID
	pressAll(t, svc, id, "4", "=")
	<-gw.expressions

	mu.Lock()
	now = now.Add(time.Hour)
	mu.Unlock()
	assert.Zero(t, svc.SweepExpired(time.Minute))

	close(release)
	sess := settle(t, svc, id)
	assert.Equal(t, "4", sess.View.Display)
	_, completed, _ := pub.counts()
	assert.Equal(t, 1, completed)
}

func TestMapServiceError(t *testing.T) {
	assert.ErrorIs(t, mapServiceError("session not found", KindSessionNotFound), ErrSessionNotFound)

	err := mapServiceError(`unknown key: "%"`, KindUnknownKey)
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Equal(t, `unknown key: "%"`, err.Error())

	err = mapServiceError("boom", KindInternal)
	assert.EqualError(t, err, "boom")
	assert.False(t, errors.Is(err, ErrSessionNotFound))
}

func TestErrorKindRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, newMockGateway(fixedResult("", "")))
	id := svc.CreateSession().ID

	// a key named like another error keeps its own kind
	resp, err := sessionResponse(svc.PressKey(id, "session not found"))
	require.NoError(t, err)
	assert.Equal(t, KindUnknownKey, resp.ErrorKind)
	mapped := mapServiceError(resp.Error, resp.ErrorKind)
	assert.ErrorIs(t, mapped, ErrUnknownKey)
	assert.False(t, errors.Is(mapped, ErrSessionNotFound))

	resp, err = sessionResponse(svc.GetSession("missing"))
	require.NoError(t, err)
	assert.Equal(t, KindSessionNotFound, resp.ErrorKind)
	assert.ErrorIs(t, mapServiceError(resp.Error, resp.ErrorKind), ErrSessionNotFound)
}
