package services

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/wellcheck/models"
	"github.com/cppla/wellcheck/utils"
)

// Submission outcomes.
const (
	StatusScored = "scored"
	StatusQueued = "queued"
)

const offlineNotice = "Saved offline. Your check-in will be submitted when the connection is back."

// CheckInService validates, scores and records check-ins, falling back to the queue when scoring is unavailable.
type CheckInService struct {
	*env
	profiles *ProfileService
	history  *HistoryService
	queue    *QueueService
	scorers  *ScorerSet
}

// SubmitInput is one day's answers.
type SubmitInput struct {
	Responses models.Responses `json:"responses"`
	Notes     string           `json:"notes"`
}

// SubmitResult is what the caller shows after a submission.
type SubmitResult struct {
	Status  string                     `json:"status"`
	Date    string                     `json:"date"`
	Result  *models.PredictionResponse `json:"result,omitempty"`
	Burnout int                        `json:"burnout"`
	Band    string                     `json:"band"`
	Notice  string                     `json:"notice,omitempty"`
	Entry   *models.CheckIn            `json:"entry,omitempty"`
}

// CheckInStatus summarises where the user stands today.
type CheckInStatus struct {
	Today           string       `json:"today"`
	CanCheckInToday bool         `json:"can_check_in_today"`
	CurrentStreak   int          `json:"current_streak"`
	LongestStreak   int          `json:"longest_streak"`
	LastCheckIn     *LastCheckIn `json:"last_checkin,omitempty"`
	Queued          int64        `json:"queued"`
	DailyTip        string       `json:"daily_tip"`
}

// Submit runs one check-in for today.
//
// Invalid responses fail with *ValidationError before anything is sent or queued. A rate limit or a
// rejected payload is returned to the caller and never queued. Any transient scoring failure queues
// the payload and records the entry without a result.
func (s *CheckInService) Submit(ctx context.Context, uc UserContext, in SubmitInput) (*SubmitResult, error) {
	user, err := s.profiles.find(ctx, uc.UserID)
	if err != nil {
		return nil, err
	}
	if !user.Consent {
		return nil, ErrConsentRequired
	}
	if err := ValidateResponses(in.Responses); err != nil {
		utils.CheckInsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	payload := models.CheckInPayload{
		UserID:    user.ID,
		Date:      s.todayString(),
		Responses: in.Responses,
		Baseline:  user.Baseline,
		Notes:     utils.Sanitize(in.Notes),
	}
	burnout := BurnoutScore(payload.Responses)
	out := &SubmitResult{Date: payload.Date, Burnout: burnout, Band: BurnoutBand(burnout)}

	resp, err := s.scorers.For(user).Score(ctx, payload)
	switch {
	case err == nil:
		out.Status = StatusScored
		out.Result = resp
		if derr := s.queue.Discard(ctx, user.ID, payload.Date); derr != nil {
			s.log.Warn("discard superseded queue entries failed", zap.String("user_id", user.ID), zap.Error(derr))
		}
		out.Entry = s.record(ctx, payload, resp)
		utils.CheckInsTotal.WithLabelValues(StatusScored).Inc()
		return out, nil

	case errors.Is(err, ErrRateLimited):
		utils.CheckInsTotal.WithLabelValues("rate_limited").Inc()
		return nil, err

	case IsTransient(err):
		s.log.Warn("scoring unavailable, queueing check-in", zap.String("user_id", user.ID), zap.Error(err))
		if qerr := s.queue.Enqueue(ctx, payload); qerr != nil {
			s.log.Error("enqueue failed, check-in kept for this session only", zap.String("user_id", user.ID), zap.Error(qerr))
		}
		out.Status = StatusQueued
		out.Notice = offlineNotice
		out.Entry = s.record(ctx, payload, nil)
		utils.CheckInsTotal.WithLabelValues(StatusQueued).Inc()
		return out, nil

	default:
		utils.CheckInsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
}

// record stores the entry. A storage failure is logged and the unsaved entry is returned instead.
func (s *CheckInService) record(ctx context.Context, payload models.CheckInPayload, resp *models.PredictionResponse) *models.CheckIn {
	entry := models.CheckIn{
		UserID:    payload.UserID,
		Date:      payload.Date,
		Responses: payload.Responses,
		Notes:     payload.Notes,
		Result:    resp,
	}
	stored, err := s.history.Record(ctx, entry)
	if err != nil {
		s.log.Error("store check-in failed", zap.String("user_id", payload.UserID), zap.String("date", payload.Date), zap.Error(err))
		entry.CreatedAt = time.Now()
		return &entry
	}
	return stored
}

// Status reports today's state for the user.
func (s *CheckInService) Status(ctx context.Context, uc UserContext) (*CheckInStatus, error) {
	user, err := s.profiles.find(ctx, uc.UserID)
	if err != nil {
		return nil, err
	}
	today := s.todayString()
	done, err := s.history.HasEntry(ctx, user.ID, today)
	if err != nil {
		return nil, err
	}
	queued, err := s.queue.Count(ctx, uc)
	if err != nil {
		s.log.Warn("count queue failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	current, err := s.history.CurrentStreak(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &CheckInStatus{
		Today:           today,
		CanCheckInToday: !done,
		CurrentStreak:   current,
		LongestStreak:   user.LongestStreak,
		LastCheckIn:     s.history.LastCheckIn(user),
		Queued:          queued,
		DailyTip:        DailyTip(s.today()),
	}, nil
}

// Export writes the user's full history as CSV, oldest first.
func (s *CheckInService) Export(ctx context.Context, uc UserContext, w io.Writer) error {
	entries, err := s.history.List(ctx, uc.UserID, 0)
	if err != nil {
		return err
	}
	return WriteCSV(w, entries)
}

// Import reads an exported CSV and records every row, replacing entries with the same date.
// Rows are stored together: on any failure nothing is imported.
func (s *CheckInService) Import(ctx context.Context, uc UserContext, r io.Reader) (int, error) {
	user, err := s.profiles.find(ctx, uc.UserID)
	if err != nil {
		return 0, err
	}
	if !user.Consent {
		return 0, ErrConsentRequired
	}
	entries, err := ReadCSV(r)
	if err != nil {
		return 0, err
	}
	for i := range entries {
		entries[i].Notes = utils.Sanitize(entries[i].Notes)
	}
	if err := s.history.RecordAll(ctx, user.ID, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
