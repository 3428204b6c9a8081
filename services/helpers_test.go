package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/wellcheck/config"
	"github.com/cppla/wellcheck/models"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(days int) {
	c.mu.Lock()
	c.t = c.t.AddDate(0, 0, days)
	c.mu.Unlock()
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	config.Override(config.AppConfig{
		JWTSecret:  "test-secret",
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "wellcheck.db"),
		LogLevel:   "silent",
	})
	db, err := config.Open(config.Get())
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestCore(t *testing.T, clock *testClock, opts ...Option) (*Core, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	base := []Option{WithClock(clock.Now), WithLocation(time.UTC)}
	return New(db, append(base, opts...)...), db
}

func onboard(t *testing.T, core *Core) UserContext {
	t.Helper()
	u, err := core.Profiles.Onboard(context.Background(), OnboardInput{AgeGroup: "25-34", WorkMode: "remote", Consent: true})
	require.NoError(t, err)
	return UserContext{UserID: u.ID}
}

func calmResponses() models.Responses {
	return models.Responses{
		SleepHours:      7.5,
		SleepQuality:    7,
		StressLevel:     3,
		Mood:            8,
		Workload:        5,
		Focus:           7,
		ActivityMinutes: 30,
		Connectedness:   7,
	}
}

func day(offset int) string {
	return testNow.AddDate(0, 0, offset).Format(DateLayout)
}

func hours(v float64) *float64 { return &v }

// fakeScorer answers from a script of errors; a nil entry (or running past the script) succeeds.
type fakeScorer struct {
	mu       sync.Mutex
	offline  bool
	script   []error
	payloads []models.CheckInPayload
}

func (f *fakeScorer) Online(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.offline
}

func (f *fakeScorer) Score(_ context.Context, p models.CheckInPayload) (*models.PredictionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.payloads)
	f.payloads = append(f.payloads, p)
	if i < len(f.script) && f.script[i] != nil {
		return nil, f.script[i]
	}
	return HeuristicPrediction(p.Responses), nil
}

func (f *fakeScorer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func (f *fakeScorer) setOffline(v bool) {
	f.mu.Lock()
	f.offline = v
	f.mu.Unlock()
}
