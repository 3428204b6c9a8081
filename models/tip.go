package models

import "time"

// SavedTip is a tip the user pinned from a check-in result.
type SavedTip struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"-"`
	Text      string    `gorm:"size:512;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// LearningCompletion records when a learning module was finished.
type LearningCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	UserID      string    `gorm:"size:36;not null;uniqueIndex:uidx_learning_user_module" json:"-"`
	ModuleID    string    `gorm:"size:64;not null;uniqueIndex:uidx_learning_user_module" json:"id"`
	CompletedAt time.Time `json:"timestamp"`
}
