package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/wellcheck/middleware"
	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

// AuthController creates profiles and hands out session tokens.
type AuthController struct {
	profiles   *services.ProfileService
	sessionTTL time.Duration
}

// NewAuthController creates a new AuthController.
func NewAuthController(profiles *services.ProfileService, sessionTTL time.Duration) *AuthController {
	return &AuthController{profiles: profiles, sessionTTL: sessionTTL}
}

type loginRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Passphrase string `json:"passphrase" binding:"required"`
}

// Onboard creates a profile and returns its first session.
func (a *AuthController) Onboard(ctx *gin.Context) {
	var req services.OnboardInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}

	user, err := a.profiles.Onboard(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	a.issueSession(ctx, user.ID, gin.H{"profile": user})
}

// Login restores a session for a passphrase-protected profile.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}

	user, err := a.profiles.Authenticate(ctx.Request.Context(), req.UserID, req.Passphrase)
	if err != nil {
		respondError(ctx, err)
		return
	}

	a.issueSession(ctx, user.ID, gin.H{"profile": user})
}

// Logout revokes the current session token until it would have expired.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	value, _ := ctx.Get(middleware.ContextClaimsKey)
	claims, ok := value.(*utils.Claims)
	if token == "" || !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid session")
		return
	}

	expiresAt := time.Now().Add(a.sessionTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.RevokeSession(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

func (a *AuthController) issueSession(ctx *gin.Context, userID string, body gin.H) {
	token, err := utils.GenerateToken(userID, a.sessionTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to issue session")
		return
	}
	body["token"] = token
	body["expires_at"] = time.Now().Add(a.sessionTTL)
	utils.Success(ctx, body)
}
