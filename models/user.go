package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the single profile a person owns: identity, baseline, preferences and streak counters.
type User struct {
	ID                string               `gorm:"primaryKey;size:36" json:"id"`
	Name              string               `gorm:"size:64" json:"name,omitempty"`
	AgeGroup          string               `gorm:"size:16;not null" json:"age_group"`
	WorkMode          string               `gorm:"size:32" json:"work_mode"`
	Consent           bool                 `gorm:"not null;default:false" json:"consent"`
	PassphraseHash    string               `gorm:"size:255" json:"-"`
	Baseline          *Baseline            `gorm:"serializer:json;type:text" json:"baseline,omitempty"`
	Preferences       Preferences          `gorm:"serializer:json;type:text" json:"preferences"`
	CurrentStreak     int                  `gorm:"default:0" json:"current_streak"`
	LongestStreak     int                  `gorm:"default:0" json:"longest_streak"`
	LastCheckInDate   string               `gorm:"column:last_checkin_date;size:10" json:"last_checkin_date,omitempty"`
	LastCheckInData   string               `gorm:"column:last_checkin_data;type:text" json:"-"` // raw responses JSON of the last scored check-in
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	SavedTips         []SavedTip           `gorm:"constraint:OnDelete:CASCADE;" json:"saved_tips,omitempty"`
	LearningCompleted []LearningCompletion `gorm:"constraint:OnDelete:CASCADE;" json:"learning_completed,omitempty"`
}

// Baseline is the snapshot captured once during setup. It is replaced as a whole, never patched.
type Baseline struct {
	Stress          int     `json:"stress" validate:"gte=1,lte=10"`
	SleepHours      float64 `json:"sleep_hours" validate:"gte=0,lte=24"`
	Focus           int     `json:"focus" validate:"gte=1,lte=5"`
	ActivityMinutes int     `json:"activity_minutes" validate:"gte=0,lte=1440"`
	WorkStyle       string  `json:"work_style" validate:"required,max=64"`
}

// Preferences are independent user toggles with no cross invariants.
type Preferences struct {
	Notifications    bool   `json:"notifications"`
	ServerAnalytics  bool   `json:"server_analytics"`
	DemoMode         bool   `json:"demo_mode"`
	FontSize         string `json:"font_size,omitempty"`
	UseLocalInsights bool   `json:"use_local_insights"`
}

// BeforeCreate assigns an opaque id and timestamps when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
