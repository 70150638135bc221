package history

import (
	"context"
	"fmt"

	"github.com/example/gemini-calculator/events"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

// handleCompleted stores a successful evaluation.
func (m *Module) handleCompleted(_ context.Context, event events.CalculationCompletedEvent, _ *mono.Msg) error {
	record := &Record{
		ID:         uuid.New().String(),
		SessionID:  event.SessionID,
		Expression: event.Expression,
		Code:       event.Code,
		Result:     event.Result,
		Status:     StatusCompleted,
		DurationMS: event.Duration,
		CreatedAt:  event.Timestamp,
	}
	if err := m.repo.Create(record); err != nil {
		m.logger.Error("Failed to store calculation", "sessionID", event.SessionID, "error", err)
		return err
	}

	m.logger.Debug("Stored calculation", "id", record.ID, "sessionID", event.SessionID)
	return nil
}

// handleFailed stores a failed evaluation.
func (m *Module) handleFailed(_ context.Context, event events.CalculationFailedEvent, _ *mono.Msg) error {
	record := &Record{
		ID:         uuid.New().String(),
		SessionID:  event.SessionID,
		Expression: event.Expression,
		Error:      event.Error,
		Status:     StatusFailed,
		DurationMS: event.Duration,
		CreatedAt:  event.Timestamp,
	}
	if err := m.repo.Create(record); err != nil {
		m.logger.Error("Failed to store failed calculation", "sessionID", event.SessionID, "error", err)
		return err
	}

	m.logger.Debug("Stored failed calculation", "id", record.ID, "sessionID", event.SessionID)
	return nil
}

// listRecords handles the history.list service request. Errors travel
// in-band: mono sends no reply for a handler error.
func (m *Module) listRecords(_ context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	if req.Limit < 0 {
		return listError(fmt.Errorf("%w: limit must be non-negative", ErrInvalidRequest)), nil
	}

	records, err := m.repo.List(req.SessionID, req.Limit)
	if err != nil {
		m.logger.Error("Failed to list records", "error", err)
		return listError(err), nil
	}

	response := ListResponse{
		Records: make([]RecordResponse, 0, len(records)),
		Total:   len(records),
	}
	for _, record := range records {
		response.Records = append(response.Records, toRecordResponse(record))
	}
	return response, nil
}

// getRecord handles the history.get service request.
func (m *Module) getRecord(_ context.Context, req GetRequest, _ *mono.Msg) (GetResponse, error) {
	if req.ID == "" {
		return getError(fmt.Errorf("%w: id is required", ErrInvalidRequest)), nil
	}

	record, err := m.repo.FindByID(req.ID)
	if err != nil {
		return getError(err), nil
	}
	resp := toRecordResponse(record)
	return GetResponse{Record: &resp}, nil
}

func listError(err error) ListResponse {
	return ListResponse{Records: []RecordResponse{}, Error: err.Error(), ErrorKind: errorKind(err)}
}

func getError(err error) GetResponse {
	return GetResponse{Error: err.Error(), ErrorKind: errorKind(err)}
}
