package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

// StatsController provides instance statistics such as profile and check-in counts.
type StatsController struct {
	history *services.HistoryService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(history *services.HistoryService) *StatsController {
	return &StatsController{history: history}
}

// GetStats returns aggregate counters.
func (s *StatsController) GetStats(ctx *gin.Context) {
	utils.Success(ctx, s.history.Stats(ctx.Request.Context()))
}
