package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cppla/wellcheck/models"
	"github.com/cppla/wellcheck/utils"
)

const drainLockTTL = 2 * time.Minute

// QueueService is the durable holding area for check-ins that could not reach the scoring service.
type QueueService struct {
	*env
	profiles *ProfileService
	history  *HistoryService
	scorers  *ScorerSet
}

// DrainResult reports one pass over a user's queue.
type DrainResult struct {
	Attempted   int  `json:"attempted"`
	Succeeded   int  `json:"succeeded"`
	Failed      int  `json:"failed"`
	Remaining   int  `json:"remaining"`
	RateLimited bool `json:"rate_limited"`
}

// Enqueue appends a payload, replacing anything already queued for the same date. Callers log the
// error and carry on; a failed enqueue never blocks a submission.
func (s *QueueService) Enqueue(ctx context.Context, payload models.CheckInPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	entry := models.QueueEntry{UserID: payload.UserID, Date: payload.Date, Payload: datatypes.JSON(raw)}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND date = ?", payload.UserID, payload.Date).
			Delete(&models.QueueEntry{}).Error; err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
}

// Discard drops queued payloads for date. A submission that was scored directly supersedes them.
func (s *QueueService) Discard(ctx context.Context, userID, date string) error {
	return s.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).
		Delete(&models.QueueEntry{}).Error
}

// List returns the user's queued entries in enqueue order.
func (s *QueueService) List(ctx context.Context, uc UserContext) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := s.db.WithContext(ctx).Where("user_id = ?", uc.UserID).Order("id ASC").Find(&entries).Error
	return entries, err
}

// Count returns how many entries are waiting for the user.
func (s *QueueService) Count(ctx context.Context, uc UserContext) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.QueueEntry{}).Where("user_id = ?", uc.UserID).Count(&n).Error
	return n, err
}

// Drain retries every queued entry for the user in enqueue order.
//
// A rate limit stops the pass and leaves untried entries queued. Any other failure is counted and the
// pass continues. An accepted entry is removed and recorded in one transaction; if it was discarded
// meanwhile by a newer submission for the same date, its result is dropped.
// An empty queue is a no-op; a non-empty queue while offline returns ErrOffline without scoring anything.
func (s *QueueService) Drain(ctx context.Context, uc UserContext) (DrainResult, error) {
	var result DrainResult

	lock, ok := utils.AcquireLock("drain:"+uc.UserID, drainLockTTL)
	if !ok {
		return result, ErrDrainInProgress
	}
	defer lock.Release()

	entries, err := s.List(ctx, uc)
	if err != nil {
		return result, err
	}
	if len(entries) == 0 {
		return result, nil
	}

	user, err := s.profiles.find(ctx, uc.UserID)
	if err != nil {
		return result, err
	}
	scorer := s.scorers.For(user)
	if !scorer.Online(ctx) {
		result.Remaining = len(entries)
		return result, ErrOffline
	}

	for _, e := range entries {
		if !lock.Refresh(drainLockTTL) {
			s.log.Warn("drain lock lost, stopping pass", zap.String("user_id", uc.UserID))
			break
		}

		var payload models.CheckInPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			s.log.Error("queued payload is corrupt", zap.Uint("entry_id", e.ID), zap.String("user_id", uc.UserID), zap.Error(err))
			result.Failed++
			continue
		}

		result.Attempted++
		resp, err := scorer.Score(ctx, payload)
		if errors.Is(err, ErrRateLimited) {
			result.RateLimited = true
			s.log.Info("drain stopped by rate limit", zap.String("user_id", uc.UserID), zap.Int("succeeded", result.Succeeded))
			break
		}
		if err != nil {
			result.Failed++
			s.log.Warn("queued check-in still failing", zap.Uint("entry_id", e.ID), zap.String("date", payload.Date), zap.Error(err))
			continue
		}

		superseded := false
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Where("id = ?", e.ID).Delete(&models.QueueEntry{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				superseded = true
				return nil
			}
			_, err := s.history.recordTx(tx, models.CheckIn{
				UserID:    uc.UserID,
				Date:      payload.Date,
				Responses: payload.Responses,
				Notes:     payload.Notes,
				Result:    resp,
			})
			return err
		})
		if err != nil {
			result.Failed++
			s.log.Error("store drained result failed", zap.String("user_id", uc.UserID), zap.String("date", payload.Date), zap.Error(err))
			continue
		}
		if superseded {
			s.log.Info("queued check-in superseded", zap.Uint("entry_id", e.ID), zap.String("date", payload.Date))
			continue
		}
		utils.InvalidateByPrefix(insightCachePrefix(uc.UserID))
		result.Succeeded++
	}

	if n, err := s.Count(ctx, uc); err == nil {
		result.Remaining = int(n)
	} else {
		s.log.Error("count remaining entries failed", zap.String("user_id", uc.UserID), zap.Error(err))
	}

	utils.QueueDrainTotal.WithLabelValues("succeeded").Add(float64(result.Succeeded))
	utils.QueueDrainTotal.WithLabelValues("failed").Add(float64(result.Failed))
	return result, nil
}

// DrainAll drains the queue of every user that has pending entries. Per-user failures are logged
// and do not stop the sweep.
func (s *QueueService) DrainAll(ctx context.Context) (map[string]DrainResult, error) {
	var userIDs []string
	if err := s.db.WithContext(ctx).Model(&models.QueueEntry{}).Distinct().Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	results := make(map[string]DrainResult, len(userIDs))
	for _, id := range userIDs {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		res, err := s.Drain(ctx, UserContext{UserID: id})
		if err != nil {
			s.log.Warn("drain skipped", zap.String("user_id", id), zap.Error(err))
		}
		results[id] = res
	}
	return results, nil
}
