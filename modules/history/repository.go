package history

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors for history operations.
var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRequest is returned for a malformed list or get request.
	ErrInvalidRequest = errors.New("invalid request")
)

// Error kinds carried in-band by the history services.
const (
	KindNotFound       = "not_found"
	KindInvalidRequest = "invalid_request"
	KindInternal       = "internal"
)

// errorKind classifies err for transport across the service boundary.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	default:
		return KindInternal
	}
}

// mapServiceError converts an in-band error back to an error that matches
// the history sentinels with errors.Is.
func mapServiceError(message, kind string) error {
	switch kind {
	case KindNotFound:
		return ErrNotFound
	case KindInvalidRequest:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.TrimPrefix(message, ErrInvalidRequest.Error()+": "))
	default:
		return errors.New(message)
	}
}

// Limits for List.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Repository provides access to calculation history storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new history repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new record.
func (r *Repository) Create(record *Record) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// FindByID retrieves a record by its ID.
func (r *Repository) FindByID(id string) (*Record, error) {
	var record Record
	if err := r.db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find record: %w", err)
	}
	return &record, nil
}

// List returns records newest first, optionally restricted to one session.
// limit is clamped to [1, MaxLimit]; zero or negative means DefaultLimit.
func (r *Repository) List(sessionID string, limit int) ([]*Record, error) {
	query := r.db.Order("created_at DESC").Order("id DESC").Limit(clampLimit(limit))
	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}

	var records []*Record
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (r *Repository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&Record{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
