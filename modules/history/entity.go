package history

import "time"

// Record statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is one finished evaluation.
type Record struct {
	ID         string    `gorm:"primarykey;size:36" json:"id"`
	SessionID  string    `gorm:"size:32;index;not null" json:"session_id"`
	Expression string    `gorm:"size:1024;not null" json:"expression"`
	Code       string    `gorm:"type:text" json:"python_code,omitempty"`
	Result     string    `gorm:"type:text" json:"result,omitempty"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
	Status     string    `gorm:"size:16;not null" json:"status"`
	DurationMS int64     `gorm:"not null;default:0" json:"duration_ms"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName returns the table name for Record model.
func (Record) TableName() string {
	return "calculations"
}
