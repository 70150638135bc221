package broadcast

import (
	"context"
	"fmt"

	"github.com/example/gemini-calculator/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// BroadcastModule pushes session updates to WebSocket clients.
type BroadcastModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
	logger    types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*BroadcastModule)(nil)
	_ mono.EventConsumerModule   = (*BroadcastModule)(nil)
	_ mono.HealthCheckableModule = (*BroadcastModule)(nil)
)

// NewModule creates a new BroadcastModule.
func NewModule(logger types.Logger) *BroadcastModule {
	return &BroadcastModule{
		hub:    NewHub(logger),
		logger: logger,
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// Hub returns the hub so the API module can attach connections.
func (m *BroadcastModule) Hub() *Hub {
	return m.hub
}

// Start starts the hub.
func (m *BroadcastModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	m.logger.Info("Broadcast module started")
	return nil
}

// Stop shuts down the hub and closes every client.
func (m *BroadcastModule) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	m.logger.Info("Broadcast module stopped", "clients", clientCount)
	return nil
}

// Health returns the health status.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// RegisterEventConsumers registers event handlers.
func (m *BroadcastModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.SessionUpdatedV1, m.handleSessionUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register SessionUpdated consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "SessionUpdated")
	return nil
}

func (m *BroadcastModule) handleSessionUpdated(_ context.Context, event events.SessionUpdatedEvent, _ *mono.Msg) error {
	if m.hub.SessionClientCount(event.SessionID) == 0 {
		return nil
	}

	m.hub.Broadcast(event.SessionID, StateFrame(SessionState{
		ID:        event.SessionID,
		View:      event.View,
		UpdatedAt: event.Timestamp,
	}))
	return nil
}
