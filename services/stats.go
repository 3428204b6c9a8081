package services

import (
	"context"

	"github.com/cppla/wellcheck/models"
)

// Stats are instance-wide counters.
type Stats struct {
	Users         int64 `json:"user_count"`
	CheckIns      int64 `json:"checkin_count"`
	CheckInsToday int64 `json:"checkins_today"`
	Queued        int64 `json:"queued_count"`
}

// Stats counts profiles, check-ins and queued payloads. A failing count reads as 0.
func (s *HistoryService) Stats(ctx context.Context) Stats {
	var st Stats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.User{}).Count(&st.Users).Error; err != nil {
		st.Users = 0
	}
	if err := db.Model(&models.CheckIn{}).Count(&st.CheckIns).Error; err != nil {
		st.CheckIns = 0
	}
	if err := db.Model(&models.CheckIn{}).Where("date = ?", s.todayString()).Count(&st.CheckInsToday).Error; err != nil {
		st.CheckInsToday = 0
	}
	if err := db.Model(&models.QueueEntry{}).Count(&st.Queued).Error; err != nil {
		st.Queued = 0
	}
	return st
}
