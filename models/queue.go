package models

import (
	"time"

	"gorm.io/datatypes"
)

// QueueEntry holds a check-in payload that could not reach the scoring service.
// Rows are removed only once their payload has been accepted. Date mirrors the payload date so a newer
// submission for the same day can discard it.
type QueueEntry struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"size:36;not null;index:idx_queue_user_date" json:"user_id"`
	Date      string         `gorm:"size:10;index:idx_queue_user_date" json:"date"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt time.Time      `json:"timestamp"`
}
