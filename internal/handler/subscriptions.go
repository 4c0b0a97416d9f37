package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"licitaradar/internal/repository"
)

// SubscriptionHandler exposes a read-only view of alert subscriptions;
// profile CRUD belongs to the user-facing application.
type SubscriptionHandler struct {
	Repo repository.Repository
}

func (h *SubscriptionHandler) Register(r *gin.Engine) {
	r.GET("/api/alerts/subscriptions", h.listSubscriptions)
}

// @Summary List alert subscriptions
// @Tags alerts
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/alerts/subscriptions [get]
func (h *SubscriptionHandler) listSubscriptions(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)
	subs, err := h.Repo.ListSubscriptions(c.Request.Context(), limit, offset)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, subs, map[string]any{"limit": limit, "offset": offset})
}
