package calculator

import (
	"context"

	"github.com/go-monolith/mono"
)

// Service handlers return errors in the response body rather than as Go
// errors: mono sends no reply for a handler error, so the caller would
// only see its own timeout.

func (m *Module) handleCreateSession(_ context.Context, _ SessionRequest, _ *mono.Msg) (SessionResponse, error) {
	sess := m.service.CreateSession()
	return SessionResponse{Session: &sess}, nil
}

func (m *Module) handleGetSession(_ context.Context, req SessionRequest, _ *mono.Msg) (SessionResponse, error) {
	return sessionResponse(m.service.GetSession(req.SessionID))
}

func (m *Module) handleDeleteSession(_ context.Context, req SessionRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.service.DeleteSession(req.SessionID); err != nil {
		return DeleteResponse{Error: err.Error(), ErrorKind: errorKind(err)}, nil
	}
	return DeleteResponse{Deleted: true}, nil
}

func (m *Module) handlePressKey(_ context.Context, req PressKeyRequest, _ *mono.Msg) (SessionResponse, error) {
	return sessionResponse(m.service.PressKey(req.SessionID, req.Key))
}

func (m *Module) handleClear(_ context.Context, req SessionRequest, _ *mono.Msg) (SessionResponse, error) {
	return sessionResponse(m.service.Clear(req.SessionID))
}

func (m *Module) handleEvaluate(_ context.Context, req SessionRequest, _ *mono.Msg) (SessionResponse, error) {
	return sessionResponse(m.service.Evaluate(req.SessionID))
}

func sessionResponse(sess Session, err error) (SessionResponse, error) {
	if err != nil {
		return SessionResponse{Error: err.Error(), ErrorKind: errorKind(err)}, nil
	}
	return SessionResponse{Session: &sess}, nil
}
