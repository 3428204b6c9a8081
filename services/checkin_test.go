package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/wellcheck/models"
)

func highRisk() models.Responses {
	r := calmResponses()
	r.StressLevel, r.SleepHours, r.Mood = 9, 4, 1
	return r
}

func TestSubmitScored(t *testing.T) {
	fake := &fakeScorer{}
	core, _ := newTestCore(t, &testClock{t: testNow}, WithRemoteScorer(fake))
	uc := onboard(t, core)
	ctx := context.Background()

	out, err := core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: highRisk(), Notes: "<b>rough</b> day"})
	require.NoError(t, err)
	assert.Equal(t, StatusScored, out.Status)
	assert.Equal(t, day(0), out.Date)
	require.NotNil(t, out.Result)
	assert.Equal(t, models.RiskHigh, out.Result.Risk)
	assert.Equal(t, BurnoutScore(highRisk()), out.Burnout)
	assert.Empty(t, out.Notice)

	require.Equal(t, 1, fake.calls())
	assert.Equal(t, "rough day", fake.payloads[0].Notes)
	assert.Equal(t, uc.UserID, fake.payloads[0].UserID)

	history, err := core.History.List(ctx, uc.UserID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Result)
	assert.Equal(t, models.RiskHigh, history[0].Result.Risk)

	status, err := core.CheckIns.Status(ctx, uc)
	require.NoError(t, err)
	assert.False(t, status.CanCheckInToday)
	assert.Equal(t, 1, status.CurrentStreak)
	require.NotNil(t, status.LastCheckIn)
	assert.Equal(t, day(0), status.LastCheckIn.Date)
	assert.Equal(t, highRisk(), status.LastCheckIn.Responses)
}

func TestSubmitInvalidNeverLeavesTheProcess(t *testing.T) {
	fake := &fakeScorer{}
	core, _ := newTestCore(t, &testClock{t: testNow}, WithRemoteScorer(fake))
	uc := onboard(t, core)
	ctx := context.Background()

	r := calmResponses()
	r.Mood = 0
	_, err := core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: r})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be at least 1", ve.Fields["mood"])

	assert.Zero(t, fake.calls())
	n, err := core.Queue.Count(ctx, uc)
	require.NoError(t, err)
	assert.Zero(t, n)
	history, err := core.History.List(ctx, uc.UserID, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSubmitQueuesOnTransientFailure(t *testing.T) {
	fake := &fakeScorer{script: []error{&ServerError{Status: 503}}}
	core, _ := newTestCore(t, &testClock{t: testNow}, WithRemoteScorer(fake))
	uc := onboard(t, core)
	ctx := context.Background()

	out, err := core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: calmResponses()})
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, out.Status)
	assert.Equal(t, offlineNotice, out.Notice)
	assert.Nil(t, out.Result)

	n, err := core.Queue.Count(ctx, uc)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	history, err := core.History.List(ctx, uc.UserID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].Result)

	status, err := core.CheckIns.Status(ctx, uc)
	require.NoError(t, err)
	assert.EqualValues(t, 1, status.Queued)
	assert.Nil(t, status.LastCheckIn, "unscored entries do not count as the last check-in")

	res, err := core.Queue.Drain(ctx, uc)
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Attempted: 1, Succeeded: 1}, res)

	history, err = core.History.List(ctx, uc.UserID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Result)
	assert.Equal(t, models.RiskLow, history[0].Result.Risk)
}

func TestSubmitDoesNotQueueCallerErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{"rate limited", ErrRateLimited, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrRateLimited) }},
		{"rejected payload", &RemoteValidationError{Message: "mood missing"}, func(t *testing.T, err error) {
			var rv *RemoteValidationError
			require.ErrorAs(t, err, &rv)
			assert.Equal(t, "VALIDATION: mood missing", err.Error())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeScorer{script: []error{tt.err}}
			core, _ := newTestCore(t, &testClock{t: testNow}, WithRemoteScorer(fake))
			uc := onboard(t, core)
			ctx := context.Background()

			_, err := core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: calmResponses()})
			tt.check(t, err)

			n, err := core.Queue.Count(ctx, uc)
			require.NoError(t, err)
			assert.Zero(t, n)
			history, err := core.History.List(ctx, uc.UserID, 0)
			require.NoError(t, err)
			assert.Empty(t, history)
		})
	}
}

func TestSubmitRequiresConsent(t *testing.T) {
	core, db := newTestCore(t, &testClock{t: testNow})
	uc := onboard(t, core)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", uc.UserID).Update("consent", false).Error)

	_, err := core.CheckIns.Submit(context.Background(), uc, SubmitInput{Responses: calmResponses()})
	assert.ErrorIs(t, err, ErrConsentRequired)

	_, err = core.CheckIns.Submit(context.Background(), UserContext{UserID: "missing"}, SubmitInput{Responses: calmResponses()})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestSubmitDemoModeUsesHeuristic(t *testing.T) {
	fake := &fakeScorer{offline: true, script: []error{&ServerError{Status: 500}}}
	core, _ := newTestCore(t, &testClock{t: testNow}, WithRemoteScorer(fake))
	uc := onboard(t, core)
	ctx := context.Background()

	on := true
	_, err := core.Profiles.UpdatePreferences(ctx, uc, PreferencesPatch{DemoMode: &on})
	require.NoError(t, err)

	out, err := core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: highRisk()})
	require.NoError(t, err)
	assert.Equal(t, StatusScored, out.Status)
	assert.Equal(t, 0.84, out.Result.Score)
	assert.Zero(t, fake.calls())
}

func TestSubmitWithoutRemoteScorer(t *testing.T) {
	core, _ := newTestCore(t, &testClock{t: testNow})
	uc := onboard(t, core)

	r := calmResponses()
	r.StressLevel = 6
	out, err := core.CheckIns.Submit(context.Background(), uc, SubmitInput{Responses: r})
	require.NoError(t, err)
	assert.Equal(t, models.RiskMedium, out.Result.Risk)
}

func TestSubmitTwiceSameDayReplaces(t *testing.T) {
	core, _ := newTestCore(t, &testClock{t: testNow})
	uc := onboard(t, core)
	ctx := context.Background()

	_, err := core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: calmResponses()})
	require.NoError(t, err)
	_, err = core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: highRisk()})
	require.NoError(t, err)

	history, err := core.History.List(ctx, uc.UserID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, highRisk(), history[0].Responses)
}

func TestStatusBeforeFirstCheckIn(t *testing.T) {
	core, db := newTestCore(t, &testClock{t: testNow})
	uc := onboard(t, core)

	status, err := core.CheckIns.Status(context.Background(), uc)
	require.NoError(t, err)
	assert.Equal(t, day(0), status.Today)
	assert.True(t, status.CanCheckInToday)
	assert.Zero(t, status.CurrentStreak)
	assert.Nil(t, status.LastCheckIn)
	assert.Equal(t, DailyTip(testNow), status.DailyTip)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", uc.UserID).
		Updates(map[string]interface{}{"last_checkin_date": day(-1), "last_checkin_data": "{not json"}).Error)
	status, err = core.CheckIns.Status(context.Background(), uc)
	require.NoError(t, err)
	assert.Nil(t, status.LastCheckIn)
}

func TestExportImport(t *testing.T) {
	clock := &testClock{t: testNow.AddDate(0, 0, -2)}
	core, _ := newTestCore(t, clock)
	from := onboard(t, core)
	ctx := context.Background()

	for i, r := range []models.Responses{calmResponses(), highRisk(), calmResponses()} {
		if i > 0 {
			clock.Advance(1)
		}
		_, err := core.CheckIns.Submit(ctx, from, SubmitInput{Responses: r, Notes: "note, with comma"})
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, core.CheckIns.Export(ctx, from, &buf))

	to := onboard(t, core)
	n, err := core.CheckIns.Import(ctx, to, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	src, err := core.History.List(ctx, from.UserID, 0)
	require.NoError(t, err)
	dst, err := core.History.List(ctx, to.UserID, 0)
	require.NoError(t, err)
	require.Len(t, dst, len(src))
	for i := range src {
		assert.Equal(t, src[i].Date, dst[i].Date)
		assert.Equal(t, src[i].Responses, dst[i].Responses)
		assert.Equal(t, src[i].Notes, dst[i].Notes)
		assert.Equal(t, src[i].Result, dst[i].Result)
	}

	u, err := core.Profiles.Get(ctx, to)
	require.NoError(t, err)
	assert.Equal(t, 3, u.CurrentStreak)
	assert.Equal(t, day(0), u.LastCheckInDate)
}

func TestScoredSubmitSupersedesQueuedOne(t *testing.T) {
	fake := &fakeScorer{script: []error{&ServerError{Status: 503}}}
	core, _ := newTestCore(t, &testClock{t: testNow}, WithRemoteScorer(fake))
	uc := onboard(t, core)
	ctx := context.Background()

	low := calmResponses()
	low.Mood = 2
	out, err := core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: low})
	require.NoError(t, err)
	require.Equal(t, StatusQueued, out.Status)

	high := calmResponses()
	high.Mood = 9
	out, err = core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: high})
	require.NoError(t, err)
	require.Equal(t, StatusScored, out.Status)

	res, err := core.Queue.Drain(ctx, uc)
	require.NoError(t, err)
	assert.Equal(t, DrainResult{}, res)
	assert.Equal(t, 2, fake.calls())

	history, err := core.History.List(ctx, uc.UserID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 9, history[0].Responses.Mood)
	require.NotNil(t, history[0].Result)
}

func TestNotesKeepPunctuation(t *testing.T) {
	core, _ := newTestCore(t, &testClock{t: testNow})
	uc := onboard(t, core)
	ctx := context.Background()

	_, err := core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: calmResponses(), Notes: "didn't sleep & felt <b>tired</b>"})
	require.NoError(t, err)

	history, err := core.History.List(ctx, uc.UserID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "didn't sleep & felt tired", history[0].Notes)

	var buf bytes.Buffer
	require.NoError(t, core.CheckIns.Export(ctx, uc, &buf))
	assert.Contains(t, buf.String(), "didn't sleep & felt tired")
	assert.NotContains(t, buf.String(), "&amp;")
}

func TestStatusStreakResetsAfterMissedDays(t *testing.T) {
	clock := &testClock{t: testNow}
	core, _ := newTestCore(t, clock)
	uc := onboard(t, core)
	ctx := context.Background()

	_, err := core.CheckIns.Submit(ctx, uc, SubmitInput{Responses: calmResponses()})
	require.NoError(t, err)
	status, err := core.CheckIns.Status(ctx, uc)
	require.NoError(t, err)
	assert.Equal(t, 1, status.CurrentStreak)

	clock.Advance(3)
	status, err = core.CheckIns.Status(ctx, uc)
	require.NoError(t, err)
	assert.Zero(t, status.CurrentStreak)
	assert.Equal(t, 1, status.LongestStreak)
	assert.True(t, status.CanCheckInToday)
}
