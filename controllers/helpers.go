package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/wellcheck/middleware"
	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

func userContext(ctx *gin.Context) (services.UserContext, bool) {
	id := ctx.GetString(middleware.ContextUserIDKey)
	if id == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return services.UserContext{}, false
	}
	return services.UserContext{UserID: id}, true
}

// respondError maps core errors onto HTTP statuses and application codes.
func respondError(ctx *gin.Context, err error) {
	var verr *services.ValidationError
	var rverr *services.RemoteValidationError
	var serr *services.ServerError

	switch {
	case errors.As(err, &verr):
		utils.Fail(ctx, http.StatusBadRequest, 40001, verr.Error(), gin.H{"fields": verr.Fields})
	case errors.As(err, &rverr):
		utils.Error(ctx, http.StatusBadRequest, 40002, rverr.Message)
	case errors.Is(err, services.ErrInvalidLogin):
		utils.Error(ctx, http.StatusUnauthorized, 40106, err.Error())
	case errors.Is(err, services.ErrConsentRequired):
		utils.Error(ctx, http.StatusForbidden, 40301, err.Error())
	case errors.Is(err, services.ErrProfileNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	case errors.Is(err, services.ErrTipNotFound):
		utils.Error(ctx, http.StatusNotFound, 40402, err.Error())
	case errors.Is(err, services.ErrUnknownModule):
		utils.Error(ctx, http.StatusNotFound, 40403, err.Error())
	case errors.Is(err, services.ErrDrainInProgress):
		utils.Error(ctx, http.StatusConflict, 40901, err.Error())
	case errors.Is(err, services.ErrRateLimited):
		utils.Error(ctx, http.StatusTooManyRequests, 42901, err.Error())
	case errors.As(err, &serr):
		utils.Error(ctx, http.StatusBadGateway, 50201, "scoring service unavailable")
	case errors.Is(err, services.ErrOffline):
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, err.Error())
	default:
		utils.Sugar.Errorf("request %s %s failed: %v", ctx.Request.Method, ctx.FullPath(), err)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}
