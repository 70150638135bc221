package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/example/gemini-calculator/domain/calculation"
	"github.com/example/gemini-calculator/modules/calculator"
	"github.com/example/gemini-calculator/modules/history"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/sessions/:id", websocket.New(m.handleWebSocket))

	api := app.Group("/api/v1")

	api.Get("/keypad", m.getKeypad)

	api.Post("/sessions", m.createSession)
	api.Get("/sessions/:id", m.getSession)
	api.Delete("/sessions/:id", m.deleteSession)
	api.Post("/sessions/:id/keys", m.pressKey)
	api.Post("/sessions/:id/clear", m.clearSession)
	api.Post("/sessions/:id/evaluate", m.evaluateSession)

	api.Get("/history", m.listHistory)
	api.Get("/history/:id", m.getHistoryRecord)
}

// requestContext bounds a call into another module.
func (m *APIModule) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), m.requestTimeout)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// getKeypad handles GET /api/v1/keypad.
func (m *APIModule) getKeypad(c *fiber.Ctx) error {
	return c.JSON(KeypadResponse{Keys: calculation.Keypad})
}

// createSession handles POST /api/v1/sessions.
func (m *APIModule) createSession(c *fiber.Ctx) error {
	ctx, cancel := m.requestContext(c)
	defer cancel()

	sess, err := m.calculator.CreateSession(ctx)
	if err != nil {
		return m.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// getSession handles GET /api/v1/sessions/:id.
func (m *APIModule) getSession(c *fiber.Ctx) error {
	ctx, cancel := m.requestContext(c)
	defer cancel()

	sess, err := m.calculator.GetSession(ctx, c.Params("id"))
	if err != nil {
		return m.respondError(c, err)
	}
	return c.JSON(sess)
}

// deleteSession handles DELETE /api/v1/sessions/:id.
func (m *APIModule) deleteSession(c *fiber.Ctx) error {
	ctx, cancel := m.requestContext(c)
	defer cancel()

	id := c.Params("id")
	if err := m.calculator.DeleteSession(ctx, id); err != nil {
		return m.respondError(c, err)
	}
	return c.JSON(DeleteResponse{ID: id, Deleted: true})
}

// pressKey handles POST /api/v1/sessions/:id/keys.
func (m *APIModule) pressKey(c *fiber.Ctx) error {
	var req KeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if req.Key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "key is required",
		})
	}

	ctx, cancel := m.requestContext(c)
	defer cancel()

	sess, err := m.calculator.PressKey(ctx, c.Params("id"), req.Key)
	if err != nil {
		return m.respondError(c, err)
	}
	return c.JSON(sess)
}

// clearSession handles POST /api/v1/sessions/:id/clear.
func (m *APIModule) clearSession(c *fiber.Ctx) error {
	ctx, cancel := m.requestContext(c)
	defer cancel()

	sess, err := m.calculator.Clear(ctx, c.Params("id"))
	if err != nil {
		return m.respondError(c, err)
	}
	return c.JSON(sess)
}

// evaluateSession handles POST /api/v1/sessions/:id/evaluate.
func (m *APIModule) evaluateSession(c *fiber.Ctx) error {
	ctx, cancel := m.requestContext(c)
	defer cancel()

	sess, err := m.calculator.Evaluate(ctx, c.Params("id"))
	if err != nil {
		return m.respondError(c, err)
	}
	return c.JSON(sess)
}

// listHistory handles GET /api/v1/history.
func (m *APIModule) listHistory(c *fiber.Ctx) error {
	limit := 0
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "validation_error",
				Message: "limit must be a positive integer",
			})
		}
		limit = parsed
	}

	ctx, cancel := m.requestContext(c)
	defer cancel()

	resp, err := m.history.List(ctx, c.Query("session_id"), limit)
	if err != nil {
		return m.respondError(c, err)
	}
	return c.JSON(resp)
}

// getHistoryRecord handles GET /api/v1/history/:id.
func (m *APIModule) getHistoryRecord(c *fiber.Ctx) error {
	ctx, cancel := m.requestContext(c)
	defer cancel()

	record, err := m.history.Get(ctx, c.Params("id"))
	if err != nil {
		return m.respondError(c, err)
	}
	return c.JSON(record)
}

// respondError maps module errors to HTTP responses.
func (m *APIModule) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, calculator.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Session not found",
		})
	case errors.Is(err, history.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Record not found",
		})
	case errors.Is(err, calculator.ErrUnknownKey), errors.Is(err, history.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	default:
		m.logger.Error("Request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}
