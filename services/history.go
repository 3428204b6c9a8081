package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/wellcheck/models"
	"github.com/cppla/wellcheck/utils"
)

// HistoryService persists check-in entries, one per user and calendar day, and keeps streaks current.
type HistoryService struct {
	*env
}

// LastCheckIn is the most recent scored submission.
type LastCheckIn struct {
	Date      string           `json:"date"`
	Responses models.Responses `json:"responses"`
}

// Record upserts the entry for (user, date) and recomputes the user's streaks in the same transaction.
// A later submission for the same date replaces the earlier one. Entries carrying a result also
// advance the last-check-in metadata.
func (s *HistoryService) Record(ctx context.Context, entry models.CheckIn) (*models.CheckIn, error) {
	var stored *models.CheckIn
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stored, err = s.recordTx(tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	utils.InvalidateByPrefix(insightCachePrefix(entry.UserID))
	return stored, nil
}

// RecordAll records every entry of one user in a single transaction. Either all of them are stored
// or none is.
func (s *HistoryService) RecordAll(ctx context.Context, userID string, entries []models.CheckIn) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			entries[i].UserID = userID
			if _, err := s.recordTx(tx, entries[i]); err != nil {
				return fmt.Errorf("entry %d (%s): %w", i+1, entries[i].Date, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.InvalidateByPrefix(insightCachePrefix(userID))
	return nil
}

func (s *HistoryService) recordTx(tx *gorm.DB, entry models.CheckIn) (*models.CheckIn, error) {
	if entry.UserID == "" || entry.Date == "" {
		return nil, errors.New("history entry needs a user and a date")
	}
	entry.ID = 0

	var user models.User
	if err := forUpdate(tx).Select("id", "longest_streak", "last_checkin_date").
		First(&user, "id = ?", entry.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"responses", "notes", "result", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		return nil, err
	}

	dates, err := s.dates(tx, user.ID)
	if err != nil {
		return nil, err
	}
	current := ComputeStreak(dates, s.today())
	updates := map[string]interface{}{
		"current_streak": current,
		"longest_streak": max(user.LongestStreak, current),
		"updated_at":     time.Now(),
	}
	if entry.Result != nil && entry.Date >= user.LastCheckInDate {
		raw, err := json.Marshal(entry.Responses)
		if err != nil {
			return nil, err
		}
		updates["last_checkin_date"] = entry.Date
		updates["last_checkin_data"] = string(raw)
	}
	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	var stored models.CheckIn
	if err := tx.Where("user_id = ? AND date = ?", entry.UserID, entry.Date).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *HistoryService) dates(db *gorm.DB, userID string) ([]string, error) {
	var dates []string
	err := db.Model(&models.CheckIn{}).Where("user_id = ?", userID).Order("date DESC").Pluck("date", &dates).Error
	return dates, err
}

// CurrentStreak recomputes the run ending today, so a run broken since the last check-in reads as 0.
func (s *HistoryService) CurrentStreak(ctx context.Context, userID string) (int, error) {
	dates, err := s.dates(s.db.WithContext(ctx), userID)
	if err != nil {
		return 0, err
	}
	return ComputeStreak(dates, s.today()), nil
}

// List returns entries newest first. days > 0 limits the result to the last N calendar days including today.
func (s *HistoryService) List(ctx context.Context, userID string, days int) ([]models.CheckIn, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if days > 0 {
		since := s.today().AddDate(0, 0, -(days - 1)).Format(DateLayout)
		q = q.Where("date >= ?", since)
	}
	var out []models.CheckIn
	if err := q.Order("date DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// HasEntry reports whether the user already has an entry for date.
func (s *HistoryService) HasEntry(ctx context.Context, userID, date string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.CheckIn{}).
		Where("user_id = ? AND date = ?", userID, date).Count(&n).Error
	return n > 0, err
}

// LastCheckIn decodes the stored last-check-in snapshot. Absent or corrupt data yields nil.
func (s *HistoryService) LastCheckIn(u *models.User) *LastCheckIn {
	if u == nil || u.LastCheckInDate == "" || u.LastCheckInData == "" {
		return nil
	}
	var r models.Responses
	if err := json.Unmarshal([]byte(u.LastCheckInData), &r); err != nil {
		s.log.Warn("ignoring corrupt last check-in", zap.String("user_id", u.ID), zap.Error(err))
		return nil
	}
	return &LastCheckIn{Date: u.LastCheckInDate, Responses: r}
}

// ComputeStreak counts consecutive calendar days with an entry, walking back from today.
// The first missing day ends the run; no entry today means a streak of zero.
func ComputeStreak(dates []string, today time.Time) int {
	seen := make(map[string]struct{}, len(dates))
	uniq := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(uniq)))

	todayStr := today.Format(DateLayout)
	streak := 0
	for _, d := range uniq {
		if d > todayStr {
			continue // future-dated entries never extend a run
		}
		if d != today.AddDate(0, 0, -streak).Format(DateLayout) {
			break
		}
		streak++
	}
	return streak
}

// forUpdate adds a row lock where the dialect supports one.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
