package history

import "time"

// ListRequest is the request for listing history records.
type ListRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// GetRequest is the request for one history record.
type GetRequest struct {
	ID string `json:"id"`
}

// RecordResponse represents a record in responses.
type RecordResponse struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Expression string    `json:"expression"`
	Code       string    `json:"python_code,omitempty"`
	Result     string    `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	Status     string    `json:"status"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListResponse is the response containing a list of records. A failed
// list carries the error in-band.
type ListResponse struct {
	Records   []RecordResponse `json:"records"`
	Total     int              `json:"total"`
	Error     string           `json:"error,omitempty"`
	ErrorKind string           `json:"error_kind,omitempty"`
}

// GetResponse carries one record or an in-band error.
type GetResponse struct {
	Record    *RecordResponse `json:"record,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
}

func toRecordResponse(r *Record) RecordResponse {
	return RecordResponse{
		ID:         r.ID,
		SessionID:  r.SessionID,
		Expression: r.Expression,
		Code:       r.Code,
		Result:     r.Result,
		Error:      r.Error,
		Status:     r.Status,
		DurationMS: r.DurationMS,
		CreatedAt:  r.CreatedAt,
	}
}
