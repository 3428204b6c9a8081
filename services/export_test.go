package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/wellcheck/models"
)

func TestCSVRoundTrip(t *testing.T) {
	scored := calmResponses()
	scored.StressLevel, scored.SleepHours, scored.Mood = 9, 4.5, 2
	scored.WorkHours = hours(10.5)

	entries := []models.CheckIn{
		{Date: day(0), Responses: scored, Notes: `long day, said "no" twice`, Result: HeuristicPrediction(scored)},
		{Date: day(-2), Responses: calmResponses(), Notes: "line one\nline two"},
		{Date: day(-1), Responses: calmResponses(), Result: HeuristicPrediction(calmResponses())},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, entries))

	lines := strings.SplitN(buf.String(), "\n", 2)
	assert.Equal(t, strings.Join(CSVHeader, ","), lines[0])

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, back, 3)

	want := []models.CheckIn{entries[1], entries[2], entries[0]}
	assert.Equal(t, want, back)
}

func TestReadCSVEmptyInput(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadCSVLegacyColumns(t *testing.T) {
	in := "\ufeffdate,mood,stress_level,sleep_hours,workload,focus,activity_minutes,notes,risk,score\n" +
		day(0) + ",6,4,7,5,6,20,,Low,0.32\n"

	entries, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, 5, e.Responses.SleepQuality)
	assert.Equal(t, 5, e.Responses.Connectedness)
	assert.Nil(t, e.Responses.WorkHours)
	require.NotNil(t, e.Result)
	assert.Equal(t, models.RiskLow, e.Result.Risk)
	assert.Equal(t, 0.32, e.Result.Score)
}

func TestReadCSVRejectsBadInput(t *testing.T) {
	header := "date,mood,stress_level,sleep_hours,workload,focus,activity_minutes,notes,risk,score\n"
	tests := []struct {
		name       string
		in         string
		validation bool
	}{
		{"missing column", "date,mood\n" + day(0) + ",5\n", false},
		{"not a number", header + day(0) + ",abc,4,7,5,6,20,,,\n", false},
		{"bad date", header + "15/06/2024,6,4,7,5,6,20,,,\n", true},
		{"out of range", header + day(0) + ",11,4,7,5,6,20,,,\n", true},
		{"unknown risk", header + day(0) + ",6,4,7,5,6,20,,Severe,0.9\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedCSV)
			var ve *ValidationError
			assert.Equal(t, tt.validation, errors.As(err, &ve))
		})
	}
}
