package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"licitaradar/internal/service"
)

type SyncHandler struct {
	Service *service.SyncService
	Logger  *zap.Logger
}

func (h *SyncHandler) Register(r *gin.Engine) {
	group := r.Group("/api/sync")
	group.POST("/run", h.runSync)
	group.GET("/status", h.status)
	group.GET("/runs", h.listRuns)
}

// @Summary Trigger a sync run
// @Tags sync
// @Param date query string false "target date (yyyy-mm-dd, default today)"
// @Param stream query bool false "stream progress as NDJSON"
// @Success 200 {object} apiResponse
// @Router /api/sync/run [post]
func (h *SyncHandler) runSync(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	opts := service.SyncOptions{}
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid date, want yyyy-mm-dd", nil)
			return
		}
		opts.Date = date
	}

	if strings.EqualFold(c.Query("stream"), "true") {
		h.runStreaming(c, opts)
		return
	}

	result, err := h.Service.Sync(c.Request.Context(), opts)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("manual sync failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), map[string]any{"partial": result})
		return
	}
	Ok(c, result, map[string]any{"timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// runStreaming writes progress events as NDJSON lines; the terminal line
// carries finished=true.
func (h *SyncHandler) runStreaming(c *gin.Context, opts service.SyncOptions) {
	progress := make(chan service.SyncProgress, 64)
	opts.Progress = progress

	done := make(chan struct{})
	go func() {
		defer close(progress)
		defer close(done)
		if _, err := h.Service.Sync(c.Request.Context(), opts); err != nil && h.Logger != nil {
			h.Logger.Warn("streamed sync failed", zap.Error(err))
		}
	}()

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)
	enc := json.NewEncoder(c.Writer)
	for event := range progress {
		if err := enc.Encode(event); err != nil {
			break
		}
		c.Writer.Flush()
	}
	<-done
}

// @Summary Last sync run status
// @Tags sync
// @Success 200 {object} apiResponse
// @Router /api/sync/status [get]
func (h *SyncHandler) status(c *gin.Context) {
	if h.Service == nil || h.Service.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	run, err := h.Service.Repo.LatestSyncRun(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if run == nil {
		Error(c, http.StatusNotFound, "no sync run recorded", nil)
		return
	}
	Ok(c, run, nil)
}

// @Summary Sync run history
// @Tags sync
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/sync/runs [get]
func (h *SyncHandler) listRuns(c *gin.Context) {
	if h.Service == nil || h.Service.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	runs, err := h.Service.Repo.ListSyncRuns(c.Request.Context(), limit, offset)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, runs, map[string]any{"limit": limit, "offset": offset})
}
