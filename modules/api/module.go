package api

import (
	"context"
	"fmt"
	"time"

	"github.com/example/gemini-calculator/modules/broadcast"
	"github.com/example/gemini-calculator/modules/calculator"
	"github.com/example/gemini-calculator/modules/history"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// DefaultRequestTimeout bounds one call into the calculator, evaluation included.
const DefaultRequestTimeout = 90 * time.Second

// APIModule is the driving adapter exposing REST and WebSocket endpoints.
type APIModule struct {
	app            *fiber.App
	calculator     calculator.CalculatorPort
	history        history.HistoryPort
	hub            *broadcast.Hub
	port           string
	requestTimeout time.Duration
	logger         types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates a new APIModule listening on port.
func NewModule(port string, requestTimeout time.Duration, logger types.Logger) *APIModule {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	return &APIModule{
		port:           port,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"calculator", "history"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "calculator":
		m.calculator = calculator.NewCalculatorAdapter(container)
	case "history":
		m.history = history.NewHistoryAdapter(container)
	}
}

// SetHub sets the broadcast hub (called from main.go).
func (m *APIModule) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.calculator == nil {
		return fmt.Errorf("calculator dependency not set")
	}
	if m.history == nil {
		return fmt.Errorf("history dependency not set")
	}
	if m.hub == nil {
		return fmt.Errorf("broadcast hub dependency not set")
	}

	m.app = m.newApp()

	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "port", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.Shutdown()
}

// Health returns the health status.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	details := map[string]any{
		"port": m.port,
	}
	if m.hub != nil {
		details["connected_clients"] = m.hub.ClientCount()
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: details,
	}
}

// newApp builds the Fiber app with middleware and routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          m.requestTimeout + 10*time.Second,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(m.loggerMiddleware())

	m.setupRoutes(app)
	return app
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

// loggerMiddleware returns a Fiber middleware for request logging.
func (m *APIModule) loggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Upgrade") == "websocket" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		m.logger.Info("HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start))
		return err
	}
}
