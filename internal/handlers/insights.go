package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/apierror"
	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/service"
)

// maxStatusIDs caps ?ids= on the bookmark status lookup
const maxStatusIDs = 100

// InsightsHandler handles insights-related HTTP requests
type InsightsHandler struct {
	insightService service.InsightService
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(insightService service.InsightService) *InsightsHandler {
	return &InsightsHandler{
		insightService: insightService,
	}
}

// ListInsights handles GET /api/v1/insights
// Query: category, age_range, q (search), relevant=true (age bands of the caller's kids)
func (h *InsightsHandler) ListInsights(c *gin.Context) {
	var q models.InsightQuery
	if !bindQuery(c, &q) {
		return
	}

	insights, err := h.insightService.ListInsights(c.Request.Context(), userID(c), q)
	if err != nil {
		writeError(c, err, "Insight", "")
		return
	}

	c.JSON(http.StatusOK, insights)
}

// GetRandomInsight handles GET /api/v1/insights/random.
// Responds with null when no insight is relevant.
func (h *InsightsHandler) GetRandomInsight(c *gin.Context) {
	insight, err := h.insightService.GetRandomInsight(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Insight", "")
		return
	}

	c.JSON(http.StatusOK, insight)
}

// ListBookmarks handles GET /api/v1/insights/bookmarks
func (h *InsightsHandler) ListBookmarks(c *gin.Context) {
	insights, err := h.insightService.ListBookmarks(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Bookmark", "")
		return
	}

	c.JSON(http.StatusOK, insights)
}

// BookmarkStatus handles GET /api/v1/insights/bookmarks/status?ids=a,b
func (h *InsightsHandler) BookmarkStatus(c *gin.Context) {
	var ids []string
	for _, raw := range strings.Split(c.Query("ids"), ",") {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if err := service.ValidateID(id); err != nil {
			apierror.WriteProblem(c, apierror.NewInvalidIDError(apierror.GetRequestID(c), "ids", id))
			return
		}
		ids = append(ids, id)
	}
	if len(ids) > maxStatusIDs {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{{
			Field:   "ids",
			Message: "must contain at most 100 ids",
			Code:    "max",
		}}))
		return
	}

	status, err := h.insightService.BookmarkStatus(c.Request.Context(), userID(c), ids)
	if err != nil {
		writeError(c, err, "Bookmark", "")
		return
	}

	c.JSON(http.StatusOK, status)
}

// AddBookmark handles POST /api/v1/insights/:id/bookmark
func (h *InsightsHandler) AddBookmark(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	bookmark, err := h.insightService.AddBookmark(c.Request.Context(), userID(c), id)
	if err != nil {
		writeError(c, err, "Insight", id)
		return
	}

	c.JSON(http.StatusCreated, bookmark)
}

// RemoveBookmark handles DELETE /api/v1/insights/:id/bookmark
func (h *InsightsHandler) RemoveBookmark(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.insightService.RemoveBookmark(c.Request.Context(), userID(c), id); err != nil {
		writeError(c, err, "Bookmark", id)
		return
	}

	c.Status(http.StatusNoContent)
}
