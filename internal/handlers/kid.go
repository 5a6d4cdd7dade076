package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/service"
)

type KidHandler struct {
	kidService service.KidService
}

// NewKidHandler creates a new kid handler
func NewKidHandler(kidService service.KidService) *KidHandler {
	return &KidHandler{
		kidService: kidService,
	}
}

// ListKids handles GET /api/v1/kids
func (h *KidHandler) ListKids(c *gin.Context) {
	kids, err := h.kidService.ListKids(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Kid", "")
		return
	}

	c.JSON(http.StatusOK, kids)
}

// CreateKid handles POST /api/v1/kids
func (h *KidHandler) CreateKid(c *gin.Context) {
	var req models.CreateKidRequest
	if !bindJSON(c, &req) {
		return
	}

	kid, err := h.kidService.CreateKid(c.Request.Context(), userID(c), &req)
	if err != nil {
		writeError(c, err, "Kid", "")
		return
	}

	c.JSON(http.StatusCreated, kid)
}

// UpdateKid handles PATCH /api/v1/kids/:id
func (h *KidHandler) UpdateKid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateKidRequest
	if !bindJSON(c, &req) {
		return
	}

	kid, err := h.kidService.UpdateKid(c.Request.Context(), userID(c), id, &req)
	if err != nil {
		writeError(c, err, "Kid", id)
		return
	}

	c.JSON(http.StatusOK, kid)
}

// DeleteKid handles DELETE /api/v1/kids/:id
func (h *KidHandler) DeleteKid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.kidService.DeleteKid(c.Request.Context(), userID(c), id); err != nil {
		writeError(c, err, "Kid", id)
		return
	}

	c.Status(http.StatusNoContent)
}
