package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cppla/wellcheck/models"
)

func TestBurnoutScore(t *testing.T) {
	tests := []struct {
		name string
		in   models.Responses
		want int
	}{
		{"saturates at max", models.Responses{StressLevel: 10, SleepHours: 0, WorkHours: hours(12)}, 100},
		{"floor at zero", models.Responses{StressLevel: 0, SleepHours: 10, WorkHours: hours(0)}, 0},
		{"missing work hours counts as eight", models.Responses{StressLevel: 5, SleepHours: 7}, 49},
		{"explicit zero work hours is kept", models.Responses{StressLevel: 5, SleepHours: 7, WorkHours: hours(0)}, 29},
		{"clamped above", models.Responses{StressLevel: 10, SleepHours: 0, WorkHours: hours(24)}, 100},
		{"clamped below", models.Responses{StressLevel: 0, SleepHours: 24, WorkHours: hours(0)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BurnoutScore(tt.in))
		})
	}
}

func TestBurnoutScoreStaysInRange(t *testing.T) {
	for stress := 1; stress <= 10; stress++ {
		for sleep := 0.0; sleep <= 24; sleep += 1.5 {
			for work := 0.0; work <= 24; work += 3 {
				r := models.Responses{StressLevel: stress, SleepHours: sleep, WorkHours: hours(work)}
				got := BurnoutScore(r)
				assert.GreaterOrEqual(t, got, 0)
				assert.LessOrEqual(t, got, 100)
				assert.Equal(t, got, BurnoutScore(r))
			}
		}
	}
}

func TestBurnoutBand(t *testing.T) {
	assert.Equal(t, BandCalm, BurnoutBand(0))
	assert.Equal(t, BandCalm, BurnoutBand(39))
	assert.Equal(t, BandElevated, BurnoutBand(40))
	assert.Equal(t, BandElevated, BurnoutBand(69))
	assert.Equal(t, BandHigh, BurnoutBand(70))
	assert.Equal(t, BandHigh, BurnoutBand(100))
}
