package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module exposes the Calculation Gateway as a request-reply service.
type Module struct {
	cfg     Config
	service *Service
	logger  types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a gateway module. cfg must already be validated.
func NewModule(cfg Config, logger types.Logger) *Module {
	return &Module{
		cfg:     cfg,
		service: NewService(cfg, logger),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "gateway"
}

// RegisterServices registers request-reply services in the service container.
// "calculate" becomes "services.gateway.calculate" on the bus.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "calculate", json.Unmarshal, json.Marshal, m.calculate,
	); err != nil {
		return fmt.Errorf("failed to register calculate service: %w", err)
	}

	m.logger.Info("Registered gateway services", "services", "services.gateway.calculate")
	return nil
}

// Start validates configuration.
func (m *Module) Start(_ context.Context) error {
	if err := m.cfg.Validate(); err != nil {
		return err
	}
	m.logger.Info("Gateway module started",
		"model", m.cfg.Model,
		"timeout", m.cfg.Timeout)
	return nil
}

// Stop gracefully stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Gateway module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.cfg.APIKey != "",
		Message: "operational",
		Details: map[string]any{
			"model":   m.cfg.Model,
			"timeout": m.cfg.Timeout.String(),
		},
	}
}

// Service returns the gateway service.
func (m *Module) Service() *Service {
	return m.service
}
