package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/wellcheck/models"
)

func TestValidateResponses(t *testing.T) {
	require.NoError(t, ValidateResponses(calmResponses()))

	r := calmResponses()
	r.SleepHours = 25
	r.Mood = 0
	r.ActivityMinutes = 301
	r.WorkHours = hours(-1)

	err := ValidateResponses(r)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be at most 24", verr.Fields["sleep_hours"])
	assert.Equal(t, "must be at least 1", verr.Fields["mood"])
	assert.Equal(t, "must be at most 300", verr.Fields["activity_minutes"])
	assert.Equal(t, "must be at least 0", verr.Fields["work_hours"])
	assert.Len(t, verr.Fields, 4)
}

func TestValidateResponsesBoundaries(t *testing.T) {
	r := calmResponses()
	r.SleepHours = 0
	r.ActivityMinutes = 300
	r.WorkHours = hours(24)
	r.StressLevel = 10
	r.Mood = 1
	assert.NoError(t, ValidateResponses(r))
}

func TestValidateBaseline(t *testing.T) {
	ok := models.Baseline{Stress: 5, SleepHours: 7, Focus: 3, ActivityMinutes: 1440, WorkStyle: "hybrid"}
	require.NoError(t, ValidateBaseline(ok))

	bad := ok
	bad.Focus = 6
	bad.WorkStyle = ""
	var verr *ValidationError
	require.True(t, errors.As(ValidateBaseline(bad), &verr))
	assert.Contains(t, verr.Fields, "focus")
	assert.Equal(t, "is required", verr.Fields["work_style"])
}

func TestValidatePayloadReportsNestedFields(t *testing.T) {
	p := models.CheckInPayload{UserID: "u1", Date: "2024-13-01", Responses: calmResponses()}
	p.Responses.Mood = 11

	var verr *ValidationError
	require.True(t, errors.As(ValidatePayload(p), &verr))
	assert.Equal(t, "must be at most 10", verr.Fields["responses.mood"])
	assert.Equal(t, "must be a date formatted YYYY-MM-DD", verr.Fields["date"])
}
