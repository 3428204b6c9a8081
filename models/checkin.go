package models

import "time"

// Risk is the tier returned by the scoring service.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Ordinal maps a risk tier to 1..3; unknown tiers map to 0.
func (r Risk) Ordinal() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// Responses is the fixed-shape record a user reports on every check-in.
// WorkHours is optional: a nil value means "not reported".
type Responses struct {
	WorkHours       *float64 `json:"work_hours,omitempty" validate:"omitempty,gte=0,lte=24"`
	SleepHours      float64  `json:"sleep_hours" validate:"gte=0,lte=24"`
	SleepQuality    int      `json:"sleep_quality" validate:"gte=1,lte=10"`
	StressLevel     int      `json:"stress_level" validate:"gte=1,lte=10"`
	Mood            int      `json:"mood" validate:"gte=1,lte=10"`
	Workload        int      `json:"workload" validate:"gte=1,lte=10"`
	Focus           int      `json:"focus" validate:"gte=1,lte=10"`
	ActivityMinutes int      `json:"activity_minutes" validate:"gte=0,lte=300"`
	Connectedness   int      `json:"connectedness" validate:"gte=1,lte=10"`
}

// Factor is one ranked contributor to a risk score.
type Factor struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// PredictionResponse is the scoring service answer for one check-in.
type PredictionResponse struct {
	Risk       Risk     `json:"risk"`
	Score      float64  `json:"score"`
	TopFactors []Factor `json:"top_factors"`
	Tips       []string `json:"tips"`
}

// CheckIn is one day of a user's history. (UserID, Date) is unique.
type CheckIn struct {
	ID        uint                `gorm:"primaryKey" json:"-"`
	UserID    string              `gorm:"size:36;not null;uniqueIndex:uidx_checkin_user_date" json:"-"`
	Date      string              `gorm:"size:10;not null;uniqueIndex:uidx_checkin_user_date" json:"date"`
	Responses Responses           `gorm:"serializer:json;type:text;not null" json:"responses"`
	Notes     string              `gorm:"type:text" json:"notes,omitempty"`
	Result    *PredictionResponse `gorm:"serializer:json;type:text" json:"result,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// CheckInPayload is the request body sent to the scoring service.
type CheckInPayload struct {
	UserID    string    `json:"user_id" validate:"required"`
	Date      string    `json:"date" validate:"required,datetime=2006-01-02"`
	Responses Responses `json:"responses"`
	Baseline  *Baseline `json:"baseline"`
	Notes     string    `json:"notes,omitempty"`
}
