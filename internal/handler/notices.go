package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"licitaradar/internal/repository"
)

// NoticeHandler is a thin read surface over the persisted notices; listing
// and filtering UIs live elsewhere and consume these routes.
type NoticeHandler struct {
	Repo repository.Repository
}

func (h *NoticeHandler) Register(r *gin.Engine) {
	group := r.Group("/api/notices")
	group.GET("", h.listNotices)
	group.GET("/:id/items", h.listItems)
	group.GET("/:id/documents", h.listDocuments)
}

// @Summary List notices
// @Tags notices
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param states query string false "comma-separated UF codes"
// @Param since query string false "published since (yyyy-mm-dd)"
// @Param until query string false "published until (yyyy-mm-dd)"
// @Param min_value query number false "minimum estimated value"
// @Param max_value query number false "maximum estimated value"
// @Param keyword query string false "keyword in object description"
// @Param complete query bool false "enrichment complete"
// @Success 200 {object} apiResponse
// @Router /api/notices [get]
func (h *NoticeHandler) listNotices(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	params := repository.ListNoticesParams{
		Limit:          intQuery(c, "limit", 50),
		Offset:         intQuery(c, "offset", 0),
		States:         statesQuery(c, "states"),
		PublishedSince: timeQueryPtr(c, "since"),
		PublishedUntil: timeQueryPtr(c, "until"),
		MinValue:       decimalQueryPtr(c, "min_value"),
		MaxValue:       decimalQueryPtr(c, "max_value"),
		Keyword:        strQueryPtr(c, "keyword"),
		Complete:       boolQueryPtr(c, "complete"),
	}
	notices, err := h.Repo.ListNotices(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountNotices(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, notices, map[string]any{
		"total":  total,
		"limit":  params.Limit,
		"offset": params.Offset,
	})
}

// @Summary List a notice's items
// @Tags notices
// @Param id path int true "notice id"
// @Success 200 {object} apiResponse
// @Router /api/notices/{id}/items [get]
func (h *NoticeHandler) listItems(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	noticeID, ok := pathID(c)
	if !ok {
		Error(c, http.StatusBadRequest, "invalid notice id", nil)
		return
	}
	items, err := h.Repo.ListNoticeItems(c.Request.Context(), noticeID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary List a notice's documents
// @Tags notices
// @Param id path int true "notice id"
// @Success 200 {object} apiResponse
// @Router /api/notices/{id}/documents [get]
func (h *NoticeHandler) listDocuments(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	noticeID, ok := pathID(c)
	if !ok {
		Error(c, http.StatusBadRequest, "invalid notice id", nil)
		return
	}
	docs, err := h.Repo.ListNoticeDocuments(c.Request.Context(), noticeID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, docs, nil)
}
