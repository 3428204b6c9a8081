package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/wellcheck/services"
	"github.com/cppla/wellcheck/utils"
)

const (
	maxHistoryDays = 3650
	maxImportBytes = 5 << 20
	csvContentType = "text/csv; charset=utf-8"
)

// CheckInController handles check-in submission and history.
type CheckInController struct {
	checkins *services.CheckInService
	history  *services.HistoryService
}

// NewCheckInController creates a new CheckInController.
func NewCheckInController(checkins *services.CheckInService, history *services.HistoryService) *CheckInController {
	return &CheckInController{checkins: checkins, history: history}
}

// Submit scores today's check-in, or queues it when the scoring service is unavailable.
func (c *CheckInController) Submit(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	var req services.SubmitInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}

	res, err := c.checkins.Submit(ctx.Request.Context(), uc, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if res.Status == services.StatusQueued {
		utils.Respond(ctx, http.StatusAccepted, 0, res.Notice, res)
		return
	}
	utils.Success(ctx, res)
}

// List returns history newest first, optionally limited with ?days=N.
func (c *CheckInController) List(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	days := 0
	if v := strings.TrimSpace(ctx.Query("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxHistoryDays {
			utils.Error(ctx, http.StatusBadRequest, 40004, "days must be between 0 and 3650")
			return
		}
		days = n
	}

	entries, err := c.history.List(ctx.Request.Context(), uc.UserID, days)
	if err != nil {
		respondError(ctx, err)
		return
	}
	items := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		score := services.BurnoutScore(e.Responses)
		items = append(items, gin.H{
			"date":      e.Date,
			"responses": e.Responses,
			"notes":     e.Notes,
			"result":    e.Result,
			"burnout":   score,
			"band":      services.BurnoutBand(score),
		})
	}
	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

// Status reports whether the caller can still check in today, with streaks.
func (c *CheckInController) Status(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	st, err := c.checkins.Status(ctx.Request.Context(), uc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, st)
}

// Export streams the caller's history as CSV.
func (c *CheckInController) Export(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := c.checkins.Export(ctx.Request.Context(), uc, &buf); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="wellcheck-%s.csv"`, uc.UserID))
	ctx.Data(http.StatusOK, csvContentType, buf.Bytes())
}

// Import accepts an exported CSV, either as the raw body or as the multipart field "file".
func (c *CheckInController) Import(ctx *gin.Context) {
	uc, ok := userContext(ctx)
	if !ok {
		return
	}

	var src io.Reader = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxImportBytes)
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		fh, err := ctx.FormFile("file")
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40005, "missing file")
			return
		}
		if fh.Size > maxImportBytes {
			utils.Error(ctx, http.StatusRequestEntityTooLarge, 41301, "file too large")
			return
		}
		f, err := fh.Open()
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40005, "unreadable file")
			return
		}
		defer f.Close()
		src = f
	}

	n, err := c.checkins.Import(ctx.Request.Context(), uc, src)
	if err != nil {
		respondImportError(ctx, n, err)
		return
	}
	utils.Success(ctx, gin.H{"imported": n})
}

func respondImportError(ctx *gin.Context, imported int, err error) {
	if errors.Is(err, services.ErrMalformedCSV) {
		utils.Fail(ctx, http.StatusBadRequest, 40006, err.Error(), gin.H{"imported": imported})
		return
	}
	respondError(ctx, err)
}
