package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/service"
)

type PreferencesHandler struct {
	preferenceService service.PreferenceService
}

func NewPreferencesHandler(preferenceService service.PreferenceService) *PreferencesHandler {
	return &PreferencesHandler{preferenceService: preferenceService}
}

// GetPreferences handles GET /api/v1/preferences. The row is created with
// defaults on first read.
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.preferenceService.GetPreferences(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Preferences", "")
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences handles PATCH /api/v1/preferences
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	var req models.UpdatePreferencesRequest
	if !bindJSON(c, &req) {
		return
	}

	prefs, err := h.preferenceService.UpdatePreferences(c.Request.Context(), userID(c), &req)
	if err != nil {
		writeError(c, err, "Preferences", "")
		return
	}

	c.JSON(http.StatusOK, prefs)
}
