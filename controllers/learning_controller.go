package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

// LearningController serves the learning catalog.
type LearningController struct {
	profiles *services.ProfileService
}

// NewLearningController creates a new LearningController.
func NewLearningController(profiles *services.ProfileService) *LearningController {
	return &LearningController{profiles: profiles}
}

// List returns all modules.
func (l *LearningController) List(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"items": services.LearningCatalog()})
}

// Complete marks a module finished for the caller.
func (l *LearningController) Complete(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	rec, err := l.profiles.CompleteLearning(ctx.Request.Context(), uc, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, rec)
}
