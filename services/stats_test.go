package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/wellcheck/models"
)

func TestStats(t *testing.T) {
	core, _ := newTestCore(t, &testClock{t: testNow})
	a := onboard(t, core)
	b := onboard(t, core)
	ctx := context.Background()

	for _, e := range []models.CheckIn{
		{UserID: a.UserID, Date: day(0), Responses: calmResponses()},
		{UserID: a.UserID, Date: day(-1), Responses: calmResponses()},
		{UserID: b.UserID, Date: day(0), Responses: calmResponses()},
	} {
		_, err := core.History.Record(ctx, e)
		require.NoError(t, err)
	}
	require.NoError(t, core.Queue.Enqueue(ctx, models.CheckInPayload{UserID: b.UserID, Date: day(0), Responses: calmResponses()}))

	assert.Equal(t, Stats{Users: 2, CheckIns: 3, CheckInsToday: 2, Queued: 1}, core.History.Stats(ctx))
}

func TestLearningCatalog(t *testing.T) {
	catalog := LearningCatalog()
	require.Len(t, catalog, 6)
	catalog[0].Title = "changed"
	m, ok := FindModule(LearningCatalog()[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, "changed", m.Title)

	_, ok = FindModule("nope")
	assert.False(t, ok)
}

func TestDailyTipRotates(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < len(dailyTips); i++ {
		seen[DailyTip(testNow.AddDate(0, 0, i))] = true
	}
	assert.Len(t, seen, len(dailyTips))
	assert.Equal(t, DailyTip(testNow), DailyTip(testNow.AddDate(0, 0, len(dailyTips))))
}
