package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/wellcheck/models"
)

func TestComputeStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"no history", nil, 0},
		{"only today", []string{day(0)}, 1},
		{"latest is yesterday", []string{day(-1), day(-2)}, 0},
		{"five in a row", []string{day(-4), day(-3), day(-2), day(-1), day(0)}, 5},
		{"gap ends the run", []string{day(0), day(-1), day(-3), day(-4), day(-5)}, 2},
		{"duplicates and future dates ignored", []string{day(1), day(0), day(0), day(-1)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStreak(tt.dates, testNow))
		})
	}
}

func TestRecordReplacesSameDate(t *testing.T) {
	core, db := newTestCore(t, &testClock{t: testNow})
	uc := onboard(t, core)
	ctx := context.Background()

	first := calmResponses()
	_, err := core.History.Record(ctx, models.CheckIn{UserID: uc.UserID, Date: day(0), Responses: first, Notes: "first"})
	require.NoError(t, err)

	second := calmResponses()
	second.Mood = 2
	stored, err := core.History.Record(ctx, models.CheckIn{UserID: uc.UserID, Date: day(0), Responses: second, Notes: "second",
		Result: HeuristicPrediction(second)})
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Responses.Mood)

	var count int64
	require.NoError(t, db.Model(&models.CheckIn{}).Where("user_id = ? AND date = ?", uc.UserID, day(0)).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	entries, err := core.History.List(ctx, uc.UserID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Notes)
	require.NotNil(t, entries[0].Result)
	assert.Equal(t, models.RiskHigh, entries[0].Result.Risk)
}

func TestRecordUnknownProfile(t *testing.T) {
	core, _ := newTestCore(t, &testClock{t: testNow})
	_, err := core.History.Record(context.Background(), models.CheckIn{UserID: "missing", Date: day(0), Responses: calmResponses()})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestStreakAcrossDays(t *testing.T) {
	clock := &testClock{t: testNow}
	core, _ := newTestCore(t, clock)
	uc := onboard(t, core)
	ctx := context.Background()

	record := func() {
		today := clock.Now().Format(DateLayout)
		_, err := core.History.Record(ctx, models.CheckIn{UserID: uc.UserID, Date: today, Responses: calmResponses(),
			Result: HeuristicPrediction(calmResponses())})
		require.NoError(t, err)
	}

	for i := 0; i < 5; i++ {
		record()
		if i < 4 {
			clock.Advance(1)
		}
	}
	u, err := core.Profiles.Get(ctx, uc)
	require.NoError(t, err)
	assert.Equal(t, 5, u.CurrentStreak)
	assert.Equal(t, 5, u.LongestStreak)

	// skip a day
	clock.Advance(2)
	record()
	u, err = core.Profiles.Get(ctx, uc)
	require.NoError(t, err)
	assert.Equal(t, 1, u.CurrentStreak)
	assert.Equal(t, 5, u.LongestStreak)
}

func TestRecordAllIsAllOrNothing(t *testing.T) {
	core, _ := newTestCore(t, &testClock{t: testNow})
	uc := onboard(t, core)
	ctx := context.Background()

	err := core.History.RecordAll(ctx, uc.UserID, []models.CheckIn{
		{Date: day(-1), Responses: calmResponses()},
		{Date: "", Responses: calmResponses()},
	})
	require.Error(t, err)

	entries, err := core.History.List(ctx, uc.UserID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	u, err := core.Profiles.Get(ctx, uc)
	require.NoError(t, err)
	assert.Zero(t, u.LongestStreak)

	require.NoError(t, core.History.RecordAll(ctx, uc.UserID, []models.CheckIn{
		{Date: day(-1), Responses: calmResponses()},
		{Date: day(0), Responses: calmResponses()},
	}))
	entries, err = core.History.List(ctx, uc.UserID, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestListLimitsByDays(t *testing.T) {
	core, _ := newTestCore(t, &testClock{t: testNow})
	uc := onboard(t, core)
	ctx := context.Background()
	for _, d := range []int{0, -1, -6, -7, -20} {
		_, err := core.History.Record(ctx, models.CheckIn{UserID: uc.UserID, Date: day(d), Responses: calmResponses()})
		require.NoError(t, err)
	}

	week, err := core.History.List(ctx, uc.UserID, 7)
	require.NoError(t, err)
	require.Len(t, week, 3)
	assert.Equal(t, day(0), week[0].Date)
	assert.Equal(t, day(-6), week[2].Date)

	all, err := core.History.List(ctx, uc.UserID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestLastCheckInOnlyTracksScoredEntries(t *testing.T) {
	core, db := newTestCore(t, &testClock{t: testNow})
	uc := onboard(t, core)
	ctx := context.Background()

	_, err := core.History.Record(ctx, models.CheckIn{UserID: uc.UserID, Date: day(0), Responses: calmResponses()})
	require.NoError(t, err)
	u, err := core.Profiles.Get(ctx, uc)
	require.NoError(t, err)
	assert.Nil(t, core.History.LastCheckIn(u))

	r := calmResponses()
	r.WorkHours = hours(9)
	_, err = core.History.Record(ctx, models.CheckIn{UserID: uc.UserID, Date: day(0), Responses: r, Result: HeuristicPrediction(r)})
	require.NoError(t, err)
	u, err = core.Profiles.Get(ctx, uc)
	require.NoError(t, err)
	last := core.History.LastCheckIn(u)
	require.NotNil(t, last)
	assert.Equal(t, day(0), last.Date)
	assert.Equal(t, r, last.Responses)

	// an older scored entry does not move it backwards
	_, err = core.History.Record(ctx, models.CheckIn{UserID: uc.UserID, Date: day(-3), Responses: calmResponses(), Result: HeuristicPrediction(calmResponses())})
	require.NoError(t, err)
	u, err = core.Profiles.Get(ctx, uc)
	require.NoError(t, err)
	assert.Equal(t, day(0), core.History.LastCheckIn(u).Date)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", uc.UserID).Update("last_checkin_data", "{not json").Error)
	u, err = core.Profiles.Get(ctx, uc)
	require.NoError(t, err)
	assert.Nil(t, core.History.LastCheckIn(u))
}
