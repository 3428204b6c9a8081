package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/wellcheck/models"
	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

// PredictionController answers the scoring contract with the local heuristic, so one instance can act
// as the scoring service of another.
type PredictionController struct{}

// NewPredictionController creates a new PredictionController.
func NewPredictionController() *PredictionController {
	return &PredictionController{}
}

// Predict scores one payload. 200 carries the bare prediction; 400 carries a message.
func (p *PredictionController) Predict(ctx *gin.Context) {
	var payload models.CheckInPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}
	if err := services.ValidatePayload(payload); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, err.Error())
		return
	}
	ctx.JSON(http.StatusOK, services.HeuristicPrediction(payload.Responses))
}
