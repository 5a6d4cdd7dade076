package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/apierror"
	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/service"
)

// maxClockSkew is how far in the future a client-supplied completed_at may be
const maxClockSkew = time.Minute

type ActivityHandler struct {
	activityService service.ActivityService
	now             func() time.Time
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		now:             time.Now,
	}
}

// ListActivities handles GET /api/v1/activities
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	var filters models.ActivityFilters
	if !bindQuery(c, &filters) {
		return
	}

	activities, err := h.activityService.ListActivities(c.Request.Context(), &filters)
	if err != nil {
		writeError(c, err, "Activity", "")
		return
	}

	c.JSON(http.StatusOK, activities)
}

// GetActivity handles GET /api/v1/activities/:id
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	activity, err := h.activityService.GetActivity(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Activity", id)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// GetTodaysActivity handles GET /api/v1/activities/today.
// Responds with null when nothing in the catalog fits the household.
func (h *ActivityHandler) GetTodaysActivity(c *gin.Context) {
	daily, err := h.activityService.GetTodaysActivity(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err, "Activity", "")
		return
	}

	c.JSON(http.StatusOK, daily)
}

// GetRecommendations handles GET /api/v1/activities/recommendations
func (h *ActivityHandler) GetRecommendations(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	recs, err := h.activityService.GetRecommendations(c.Request.Context(), userID(c), limit)
	if err != nil {
		writeError(c, err, "Activity", "")
		return
	}

	c.JSON(http.StatusOK, recs)
}

// GetHistory handles GET /api/v1/activities/history
func (h *ActivityHandler) GetHistory(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	history, err := h.activityService.GetHistory(c.Request.Context(), userID(c), limit)
	if err != nil {
		writeError(c, err, "Completion", "")
		return
	}

	c.JSON(http.StatusOK, history)
}

// CompleteActivity handles POST /api/v1/activities/:id/complete
func (h *ActivityHandler) CompleteActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CompleteActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.CompletedAt != nil && req.CompletedAt.After(h.now().Add(maxClockSkew)) {
		apierror.WriteProblem(c, apierror.NewFutureTimestampError(apierror.GetRequestID(c), "completed_at"))
		return
	}

	completion, err := h.activityService.CompleteActivity(c.Request.Context(), userID(c), id, &req)
	if err != nil {
		if req.KidID != nil {
			writeError(c, err, "Kid or activity", "")
		} else {
			writeError(c, err, "Activity", id)
		}
		return
	}

	c.JSON(http.StatusCreated, completion)
}
