package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

// InsightController serves derived analytics. All handlers are read-only.
type InsightController struct {
	insights *services.InsightService
}

// NewInsightController creates a new InsightController.
func NewInsightController(insights *services.InsightService) *InsightController {
	return &InsightController{insights: insights}
}

// Correlations returns the reported correlations over the caller's history.
func (i *InsightController) Correlations(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	items, err := i.insights.Insights(ctx.Request.Context(), uc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

func (i *InsightController) Weekly(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	summary, err := i.insights.Weekly(ctx.Request.Context(), uc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, summary)
}

func (i *InsightController) Monthly(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	summary, err := i.insights.Monthly(ctx.Request.Context(), uc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, summary)
}

func (i *InsightController) Forecast(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	points, err := i.insights.Forecast(ctx.Request.Context(), uc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": points})
}
