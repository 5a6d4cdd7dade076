package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/service"
)

// StatsHandler serves rating statistics for the family screen
type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetChildren handles GET /api/v1/stats/children
func (h *StatsHandler) GetChildren(c *gin.Context) {
	stats, err := h.statsService.GetChildStats(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Stats", "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetParent handles GET /api/v1/stats/parent
func (h *StatsHandler) GetParent(c *gin.Context) {
	stats, err := h.statsService.GetParentStats(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Stats", "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetFamily handles GET /api/v1/stats/family
func (h *StatsHandler) GetFamily(c *gin.Context) {
	stats, err := h.statsService.GetFamilyStats(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Stats", "")
		return
	}
	c.JSON(http.StatusOK, stats)
}
