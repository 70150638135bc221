package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/gemini-calculator/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Module records finished evaluations in SQLite via GORM.
type Module struct {
	db     *gorm.DB
	repo   *Repository
	dbPath string
	debug  bool
	logger types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a history module backed by the database at dbPath.
// debug enables GORM SQL logging.
func NewModule(dbPath string, debug bool, logger types.Logger) *Module {
	return &Module{
		dbPath: dbPath,
		debug:  debug,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "history"
}

// RegisterEventConsumers subscribes to calculation outcomes.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.CalculationCompletedV1, m.handleCompleted, m,
	); err != nil {
		return fmt.Errorf("failed to register CalculationCompleted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.CalculationFailedV1, m.handleFailed, m,
	); err != nil {
		return fmt.Errorf("failed to register CalculationFailed consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "CalculationCompleted, CalculationFailed")
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listRecords,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getRecord,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	m.logger.Info("Registered history services", "services", "services.history.{list,get}")
	return nil
}

// Start opens the database and runs migrations.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Connecting to SQLite database", "path", m.dbPath)

	logLevel := logger.Silent
	if m.debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := m.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.repo = NewRepository(m.db)
	m.logger.Info("History module started")
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	m.logger.Info("History module stopped")
	return nil
}

// Health pings the database.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	details := map[string]any{
		"driver": "sqlite",
		"path":   m.dbPath,
	}
	if n, err := m.repo.Count(); err == nil {
		details["records"] = n
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}
