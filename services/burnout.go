package services

import (
	"math"

	"github.com/cppla/wellcheck/models"
)

const defaultWorkHours = 8

// Burnout bands.
const (
	BandCalm     = "calm"
	BandElevated = "elevated"
	BandHigh     = "high"
)

// BurnoutScore converts one set of responses into a 0..100 score.
// Weights: stress 40, lack of sleep 30, work hours 30 (8h when not reported).
func BurnoutScore(r models.Responses) int {
	work := float64(defaultWorkHours)
	if r.WorkHours != nil {
		work = *r.WorkHours
	}
	raw := (float64(r.StressLevel)/10)*40 + ((10-r.SleepHours)/10)*30 + (work/12)*30
	return clampScore(int(math.Round(raw)))
}

// BurnoutBand labels a burnout score.
func BurnoutBand(score int) string {
	switch {
	case score < 40:
		return BandCalm
	case score < 70:
		return BandElevated
	default:
		return BandHigh
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
