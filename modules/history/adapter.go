package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// HistoryPort defines the interface for reading calculation history.
type HistoryPort interface {
	List(ctx context.Context, sessionID string, limit int) (*ListResponse, error)
	Get(ctx context.Context, id string) (*RecordResponse, error)
}

type historyAdapter struct {
	container mono.ServiceContainer
}

// NewHistoryAdapter creates a new adapter for the history services.
func NewHistoryAdapter(container mono.ServiceContainer) HistoryPort {
	if container == nil {
		panic("history adapter requires non-nil ServiceContainer")
	}
	return &historyAdapter{container: container}
}

// List returns records newest first.
func (a *historyAdapter) List(ctx context.Context, sessionID string, limit int) (*ListResponse, error) {
	req := ListRequest{SessionID: sessionID, Limit: limit}
	var resp ListResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list service call failed: %w", err)
	}
	if resp.Error != "" {
		return nil, mapServiceError(resp.Error, resp.ErrorKind)
	}
	return &resp, nil
}

// Get returns one record.
func (a *historyAdapter) Get(ctx context.Context, id string) (*RecordResponse, error) {
	req := GetRequest{ID: id}
	var resp GetResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get service call failed: %w", err)
	}
	if resp.Error != "" {
		return nil, mapServiceError(resp.Error, resp.ErrorKind)
	}
	if resp.Record == nil {
		return nil, fmt.Errorf("get service returned no record")
	}
	return resp.Record, nil
}
