package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/service"
)

type HomeHandler struct {
	homeService service.HomeService
}

func NewHomeHandler(homeService service.HomeService) *HomeHandler {
	return &HomeHandler{homeService: homeService}
}

// GetHome handles GET /api/v1/home
func (h *HomeHandler) GetHome(c *gin.Context) {
	home, err := h.homeService.GetHome(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Home", "")
		return
	}

	c.JSON(http.StatusOK, home)
}
