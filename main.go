package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/gemini-calculator/modules/api"
	"github.com/example/gemini-calculator/modules/broadcast"
	"github.com/example/gemini-calculator/modules/calculator"
	"github.com/example/gemini-calculator/modules/gateway"
	"github.com/example/gemini-calculator/modules/history"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Gemini Calculator - Fiber + Gemini + EventBus ===")

	gatewayConfig, err := gateway.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Invalid gateway configuration: %v", err)
	}

	calculatorConfig := calculator.DefaultConfig()
	calculatorConfig.SessionTTL = getEnvDuration("SESSION_TTL", calculatorConfig.SessionTTL)
	calculatorConfig.EvalTimeout = gatewayConfig.Timeout + 5*time.Second

	port := getEnv("PORT", "3000")
	dbPath := getEnv("DB_PATH", "calculations.db")
	dbDebug := os.Getenv("DB_DEBUG") == "true"
	requestTimeout := getEnvDuration("REQUEST_TIMEOUT", api.DefaultRequestTimeout)

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	// Create modules
	gatewayModule := gateway.NewModule(gatewayConfig, logger)
	calculatorModule, err := calculator.NewModule(calculatorConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create calculator module: %v", err)
	}
	historyModule := history.NewModule(dbPath, dbDebug, logger)
	broadcastModule := broadcast.NewModule(logger)
	apiModule := api.NewModule(port, requestTimeout, logger)

	// The hub is not exposed via ServiceContainer
	apiModule.SetHub(broadcastModule.Hub())

	// Model calls go in-process so evaluations of different sessions run
	// in parallel; services.gateway.calculate stays available on the bus.
	calculatorModule.SetGateway(gatewayModule.Service())

	// Register modules with the framework.
	// - gateway: Gemini client (ServiceProviderModule)
	// - calculator: session state (depends on gateway, emits events)
	// - history: SQLite ledger of outcomes (event consumer)
	// - broadcast: WebSocket hub (event consumer)
	// - api: Driving adapter (depends on calculator and history)
	app.Register(gatewayModule)
	app.Register(calculatorModule)
	app.Register(historyModule)
	app.Register(broadcastModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(port, gatewayConfig.Model, dbPath)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Ignoring invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func printStartupInfo(port, model, dbPath string) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Printf("  - Model: %s", model)
	log.Printf("  - History: SQLite (%s)", dbPath)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                        - Health check")
	log.Println("  GET    /api/v1/keypad                 - Keypad layout")
	log.Println("  POST   /api/v1/sessions               - Create a calculator session")
	log.Println("  GET    /api/v1/sessions/:id           - Get session view")
	log.Println("  DELETE /api/v1/sessions/:id           - Delete session")
	log.Println("  POST   /api/v1/sessions/:id/keys      - Press a key {\"key\":\"7\"}")
	log.Println("  POST   /api/v1/sessions/:id/clear     - Clear the session")
	log.Println("  POST   /api/v1/sessions/:id/evaluate  - Evaluate the expression")
	log.Println("  GET    /api/v1/history                - List calculations (?session_id=&limit=)")
	log.Println("  GET    /api/v1/history/:id            - Get one calculation")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws/sessions/:id):", port)
	log.Println("  Message types: key, clear, evaluate, state")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
