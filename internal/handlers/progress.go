package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/service"
)

type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

// GetStreak handles GET /api/v1/progress/streak
func (h *ProgressHandler) GetStreak(c *gin.Context) {
	stats, err := h.progressService.GetStreakStats(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Streak", "")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetWeekly handles GET /api/v1/progress/weekly
func (h *ProgressHandler) GetWeekly(c *gin.Context) {
	weekly, err := h.progressService.GetWeeklyCompletion(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Progress", "")
		return
	}

	c.JSON(http.StatusOK, weekly)
}

// GetToday handles GET /api/v1/progress/today
func (h *ProgressHandler) GetToday(c *gin.Context) {
	done, err := h.progressService.HasCompletedToday(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Progress", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"completed_today": done})
}

// GetRecent handles GET /api/v1/progress/recent
func (h *ProgressHandler) GetRecent(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	recent, err := h.progressService.GetRecentActivities(c.Request.Context(), userID(c), limit)
	if err != nil {
		writeError(c, err, "Completion", "")
		return
	}

	c.JSON(http.StatusOK, recent)
}

// GetOverview handles GET /api/v1/progress/overview
func (h *ProgressHandler) GetOverview(c *gin.Context) {
	overview, err := h.progressService.GetOverview(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Progress", "")
		return
	}

	c.JSON(http.StatusOK, overview)
}
