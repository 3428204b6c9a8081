package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/wellcheck/models"
	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

// ProfileController exposes the profile store.
type ProfileController struct {
	profiles *services.ProfileService
}

// NewProfileController creates a new ProfileController.
func NewProfileController(profiles *services.ProfileService) *ProfileController {
	return &ProfileController{profiles: profiles}
}

type saveTipRequest struct {
	Text string `json:"text" binding:"required"`
}

// Get returns the caller's profile.
func (p *ProfileController) Get(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	user, err := p.profiles.Get(ctx.Request.Context(), uc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// UpdateDetails patches name, age group and work mode.
func (p *ProfileController) UpdateDetails(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	var req services.DetailsPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}
	user, err := p.profiles.UpdateDetails(ctx.Request.Context(), uc, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// SetBaseline replaces the baseline snapshot.
func (p *ProfileController) SetBaseline(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	var req models.Baseline
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}
	user, err := p.profiles.SetBaseline(ctx.Request.Context(), uc, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// UpdatePreferences patches the preference toggles.
func (p *ProfileController) UpdatePreferences(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	var req services.PreferencesPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}
	user, err := p.profiles.UpdatePreferences(ctx.Request.Context(), uc, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user.Preferences)
}

// SaveTip pins a tip.
func (p *ProfileController) SaveTip(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	var req saveTipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}
	tip, err := p.profiles.SaveTip(ctx.Request.Context(), uc, req.Text)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, tip)
}

// RemoveTip unpins a tip.
func (p *ProfileController) RemoveTip(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid tip id")
		return
	}
	if err := p.profiles.RemoveTip(ctx.Request.Context(), uc, uint(id)); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "tip removed"})
}

// Delete wipes the profile and everything it owns.
func (p *ProfileController) Delete(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	if err := p.profiles.Delete(ctx.Request.Context(), uc); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "profile deleted"})
}
