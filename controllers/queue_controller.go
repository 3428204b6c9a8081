package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

// QueueController exposes the offline submission queue.
type QueueController struct {
	queue *services.QueueService
}

// NewQueueController creates a new QueueController.
func NewQueueController(queue *services.QueueService) *QueueController {
	return &QueueController{queue: queue}
}

// List returns the caller's pending submissions.
func (q *QueueController) List(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	entries, err := q.queue.List(ctx.Request.Context(), uc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": entries, "total": len(entries)})
}

// Drain retries the caller's pending submissions now.
func (q *QueueController) Drain(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	res, err := q.queue.Drain(ctx.Request.Context(), uc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, res)
}
