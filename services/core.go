package services

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DateLayout is the calendar date format used as the identity of a history entry.
const DateLayout = "2006-01-02"

// UserContext is the session handle passed explicitly into every per-user operation.
type UserContext struct {
	UserID string
}

// Clock returns the current time; tests pin it.
type Clock func() time.Time

type env struct {
	db       *gorm.DB
	log      *zap.Logger
	now      Clock
	loc      *time.Location
	cacheTTL time.Duration
}

func (e *env) today() time.Time {
	t := e.now().In(e.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
}

func (e *env) todayString() string {
	return e.today().Format(DateLayout)
}

// Option customises the core at construction time.
type Option func(*options)

type options struct {
	log      *zap.Logger
	now      Clock
	loc      *time.Location
	remote   Scorer
	local    *LocalScorer
	cacheTTL time.Duration
}

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }

func WithClock(c Clock) Option { return func(o *options) { o.now = c } }

// WithLocation sets the time zone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option { return func(o *options) { o.loc = loc } }

// WithRemoteScorer enables scoring against a real service. Without it every user is scored locally.
func WithRemoteScorer(s Scorer) Option { return func(o *options) { o.remote = s } }

func WithLocalScorer(s *LocalScorer) Option { return func(o *options) { o.local = s } }

// WithInsightCacheTTL sets how long computed insights stay cached in redis.
func WithInsightCacheTTL(d time.Duration) Option { return func(o *options) { o.cacheTTL = d } }

// Core bundles the services that share one database, logger and clock.
type Core struct {
	Profiles *ProfileService
	History  *HistoryService
	Queue    *QueueService
	Insights *InsightService
	CheckIns *CheckInService
	Scorers  *ScorerSet
}

// New builds the core on top of a migrated database.
func New(db *gorm.DB, opts ...Option) *Core {
	o := options{log: zap.NewNop(), now: time.Now, loc: time.Local, cacheTTL: 10 * time.Minute}
	for _, opt := range opts {
		opt(&o)
	}
	if o.local == nil {
		o.local = NewLocalScorer(0)
	}
	e := &env{db: db, log: o.log, now: o.now, loc: o.loc, cacheTTL: o.cacheTTL}

	scorers := &ScorerSet{Remote: o.remote, Local: o.local}
	profiles := &ProfileService{env: e}
	history := &HistoryService{env: e}
	queue := &QueueService{env: e, profiles: profiles, history: history, scorers: scorers}
	insights := &InsightService{env: e, history: history}
	checkins := &CheckInService{env: e, profiles: profiles, history: history, queue: queue, scorers: scorers}

	return &Core{
		Profiles: profiles,
		History:  history,
		Queue:    queue,
		Insights: insights,
		CheckIns: checkins,
		Scorers:  scorers,
	}
}
