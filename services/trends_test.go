package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/wellcheck/models"
)

func entryWith(offset int, stress int, sleep float64) models.CheckIn {
	r := calmResponses()
	r.StressLevel, r.SleepHours = stress, sleep
	return models.CheckIn{Date: day(offset), Responses: r}
}

func TestMonthlySummary(t *testing.T) {
	history := []models.CheckIn{
		entryWith(0, 2, 8),    // 34, calm, good sleep
		entryWith(-29, 10, 6), // 72
		entryWith(-35, 5, 6),  // 52, previous window
		entryWith(-61, 10, 0), // outside both windows
	}
	require.Equal(t, 34, BurnoutScore(history[0].Responses))
	require.Equal(t, 72, BurnoutScore(history[1].Responses))
	require.Equal(t, 52, BurnoutScore(history[2].Responses))

	m := ComputeMonthlySummary(history, testNow)
	assert.Equal(t, MonthlySummary{
		CheckInDays:   2,
		CalmDays:      1,
		GoodSleepDays: 1,
		AvgBurnout:    53,
		PrevBurnout:   52,
		BurnoutChange: 1,
		Band:          BandElevated,
	}, m)
}

func TestMonthlySummaryWithoutEarlierData(t *testing.T) {
	m := ComputeMonthlySummary([]models.CheckIn{entryWith(-1, 2, 8)}, testNow)
	assert.Equal(t, 1, m.CheckInDays)
	assert.Zero(t, m.PrevBurnout)
	assert.Zero(t, m.BurnoutChange)
	assert.Equal(t, BandCalm, m.Band)

	assert.Equal(t, MonthlySummary{}, ComputeMonthlySummary(nil, testNow))
}

func TestForecastExtendsTrend(t *testing.T) {
	history := []models.CheckIn{
		entryWith(0, 6, 6),  // 56
		entryWith(-1, 4, 6), // 48
	}

	points := ComputeForecast(history, testNow)
	require.Len(t, points, 9)
	assert.Equal(t, ForecastPoint{Date: day(-1), Burnout: 48}, points[0])
	assert.Equal(t, ForecastPoint{Date: day(0), Burnout: 56}, points[1])

	want := []int{66, 76, 86, 96, 100, 100, 100}
	for i, p := range points[2:] {
		assert.True(t, p.Predicted)
		assert.Equal(t, day(i+1), p.Date)
		assert.Equal(t, want[i], p.Burnout, "day %d", i+1)
	}
}

func TestForecastFallingStressClampsAtZero(t *testing.T) {
	history := []models.CheckIn{
		entryWith(0, 1, 10), // 4 + 0 + 20 = 24
		entryWith(-2, 10, 10),
	}
	points := ComputeForecast(history, testNow)
	require.Len(t, points, 9)
	assert.Equal(t, 0, points[len(points)-1].Burnout)
	assert.Equal(t, 0, points[2].Burnout)
}

func TestForecastWithoutHistory(t *testing.T) {
	points := ComputeForecast(nil, testNow)
	require.Len(t, points, 7)
	for _, p := range points {
		assert.True(t, p.Predicted)
		assert.Equal(t, 50, p.Burnout)
	}
}

func TestForecastSingleEntryIsFlat(t *testing.T) {
	points := ComputeForecast([]models.CheckIn{entryWith(-3, 6, 6)}, testNow)
	require.Len(t, points, 8)
	for _, p := range points[1:] {
		assert.Equal(t, 56, p.Burnout)
	}
}
