package api

import (
	"context"
	"encoding/json"

	"github.com/example/gemini-calculator/modules/broadcast"
	"github.com/example/gemini-calculator/modules/calculator"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// handleWebSocket attaches a connection to one session at /ws/sessions/:id.
// State changes reach the client through the broadcast hub; only "state"
// requests and errors are answered directly.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	sessionID := c.Params("id")
	client := broadcast.NewClient(uuid.New().String(), sessionID, c)

	sess, err := m.callSession(func(ctx context.Context) (*calculator.Session, error) {
		return m.calculator.GetSession(ctx, sessionID)
	})
	if err != nil {
		_ = client.SendJSON(broadcast.ErrorFrame(err.Error()))
		_ = c.Close()
		return
	}

	m.hub.Register(client)
	defer func() {
		m.hub.Unregister(client)
		m.logger.Info("WebSocket client disconnected", "clientID", client.ID, "sessionID", sessionID)
	}()
	m.logger.Info("WebSocket client connected", "clientID", client.ID, "sessionID", sessionID)

	if err := client.SendJSON(stateFrame(sess)); err != nil {
		m.logger.Warn("Failed to send initial state", "clientID", client.ID, "error", err)
		return
	}

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Debug("WebSocket read error", "clientID", client.ID, "error", err)
			}
			return
		}

		var cmd WSCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			_ = client.SendJSON(broadcast.ErrorFrame("invalid message format"))
			continue
		}
		m.handleCommand(client, cmd)
	}
}

// handleCommand runs one client command. Evaluate answers with the loading
// view at once; the outcome arrives later through the hub.
func (m *APIModule) handleCommand(client *broadcast.Client, cmd WSCommand) {
	sessionID := client.SessionID

	var call func(ctx context.Context) (*calculator.Session, error)

	switch cmd.Type {
	case WSTypeState:
		sess, err := m.callSession(func(ctx context.Context) (*calculator.Session, error) {
			return m.calculator.GetSession(ctx, sessionID)
		})
		if err != nil {
			_ = client.SendJSON(broadcast.ErrorFrame(err.Error()))
			return
		}
		_ = client.SendJSON(stateFrame(sess))
		return
	case WSTypeKey:
		if cmd.Key == "" {
			_ = client.SendJSON(broadcast.ErrorFrame("key is required"))
			return
		}
		key := cmd.Key
		call = func(ctx context.Context) (*calculator.Session, error) {
			return m.calculator.PressKey(ctx, sessionID, key)
		}
	case WSTypeClear:
		call = func(ctx context.Context) (*calculator.Session, error) {
			return m.calculator.Clear(ctx, sessionID)
		}
	case WSTypeEvaluate:
		call = func(ctx context.Context) (*calculator.Session, error) {
			return m.calculator.Evaluate(ctx, sessionID)
		}
	default:
		_ = client.SendJSON(broadcast.ErrorFrame("unknown message type: " + cmd.Type))
		return
	}

	if _, err := m.callSession(call); err != nil {
		_ = client.SendJSON(broadcast.ErrorFrame(err.Error()))
	}
}

func (m *APIModule) callSession(call func(ctx context.Context) (*calculator.Session, error)) (*calculator.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.requestTimeout)
	defer cancel()
	return call(ctx)
}

func stateFrame(sess *calculator.Session) broadcast.Frame {
	return broadcast.StateFrame(broadcast.SessionState{
		ID:        sess.ID,
		View:      sess.View,
		UpdatedAt: sess.UpdatedAt,
	})
}
