package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/gemini-calculator/events"
	"github.com/example/gemini-calculator/modules/gateway"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Default session settings.
const (
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Config holds calculator module settings.
type Config struct {
	// SessionTTL is how long an idle session is kept
	SessionTTL time.Duration

	// SweepInterval is how often idle sessions are collected
	SweepInterval time.Duration

	// EvalTimeout bounds one gateway call
	EvalTimeout time.Duration
}

// DefaultConfig returns the default calculator settings.
func DefaultConfig() Config {
	return Config{
		SessionTTL:    DefaultSessionTTL,
		SweepInterval: DefaultSweepInterval,
		EvalTimeout:   gateway.DefaultTimeout + 5*time.Second,
	}
}

// Module holds the calculator sessions and exposes them as services.
type Module struct {
	cfg         Config
	store       *SessionStore
	service     *Service
	gateway     gateway.GatewayPort
	eventBus    mono.EventBus
	logger      types.Logger
	cancelSweep context.CancelFunc
	sweepDone   chan struct{}
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a calculator module.
func NewModule(cfg Config, logger types.Logger) (*Module, error) {
	defaults := DefaultConfig()
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaults.SessionTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	if cfg.EvalTimeout <= 0 {
		cfg.EvalTimeout = defaults.EvalTimeout
	}

	store, err := NewSessionStore()
	if err != nil {
		return nil, err
	}
	return &Module{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}, nil
}

// Name returns the module name.
func (m *Module) Name() string {
	return "calculator"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"gateway"}
}

// SetGateway wires the gateway in-process (called from main.go). A
// request-reply subscription handles one message at a time, so routing
// model calls over the bus would serialise evaluations of all sessions.
func (m *Module) SetGateway(gw gateway.GatewayPort) {
	m.gateway = gw
}

// SetDependencyServiceContainer receives service containers from dependencies.
// The bus adapter is used only when no gateway was set directly.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "gateway" && m.gateway == nil {
		m.gateway = gateway.NewGatewayAdapter(container)
	}
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.SessionUpdatedV1.ToBase(),
		events.CalculationCompletedV1.ToBase(),
		events.CalculationFailedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-session", json.Unmarshal, json.Marshal, m.handleCreateSession,
	); err != nil {
		return fmt.Errorf("failed to register create-session service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-session", json.Unmarshal, json.Marshal, m.handleGetSession,
	); err != nil {
		return fmt.Errorf("failed to register get-session service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-session", json.Unmarshal, json.Marshal, m.handleDeleteSession,
	); err != nil {
		return fmt.Errorf("failed to register delete-session service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "press-key", json.Unmarshal, json.Marshal, m.handlePressKey,
	); err != nil {
		return fmt.Errorf("failed to register press-key service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "clear", json.Unmarshal, json.Marshal, m.handleClear,
	); err != nil {
		return fmt.Errorf("failed to register clear service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "evaluate", json.Unmarshal, json.Marshal, m.handleEvaluate,
	); err != nil {
		return fmt.Errorf("failed to register evaluate service: %w", err)
	}

	m.logger.Info("Registered calculator services",
		"services", "create-session, get-session, delete-session, press-key, clear, evaluate")
	return nil
}

// Start creates the service and starts the idle-session sweeper.
func (m *Module) Start(_ context.Context) error {
	if m.gateway == nil {
		return fmt.Errorf("gateway dependency not set")
	}

	m.service = NewService(m.store, m.gateway, &busPublisher{bus: m.eventBus, logger: m.logger}, m.logger, m.cfg.EvalTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelSweep = cancel
	m.sweepDone = make(chan struct{})
	go m.sweepLoop(ctx)

	m.logger.Info("Calculator module started",
		"sessionTTL", m.cfg.SessionTTL,
		"sweepInterval", m.cfg.SweepInterval)
	return nil
}

// Stop stops the sweeper and cancels in-flight evaluations.
func (m *Module) Stop(_ context.Context) error {
	if m.cancelSweep != nil {
		m.cancelSweep()
		<-m.sweepDone
	}
	if m.service != nil {
		m.service.Close()
	}
	m.logger.Info("Calculator module stopped", "sessions", m.store.Count())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.service != nil,
		Message: "operational",
		Details: map[string]any{
			"sessions":    m.store.Count(),
			"session_ttl": m.cfg.SessionTTL.String(),
		},
	}
}

func (m *Module) sweepLoop(ctx context.Context) {
	defer close(m.sweepDone)

	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.service.SweepExpired(m.cfg.SessionTTL)
		}
	}
}

// busPublisher publishes calculator events on the mono event bus.
type busPublisher struct {
	bus    mono.EventBus
	logger types.Logger
}

func (p *busPublisher) SessionUpdated(event events.SessionUpdatedEvent) {
	if err := events.SessionUpdatedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish SessionUpdated event", "sessionID", event.SessionID, "error", err)
	}
}

func (p *busPublisher) CalculationCompleted(event events.CalculationCompletedEvent) {
	if err := events.CalculationCompletedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish CalculationCompleted event", "sessionID", event.SessionID, "error", err)
	}
}

func (p *busPublisher) CalculationFailed(event events.CalculationFailedEvent) {
	if err := events.CalculationFailedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish CalculationFailed event", "sessionID", event.SessionID, "error", err)
	}
}
