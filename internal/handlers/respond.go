package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/apierror"
	"github.com/smallsteps/backend/internal/logger"
	"github.com/smallsteps/backend/internal/middleware"
	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/service"
)

// writeError maps a service error to a problem response. resource and id
// only shape the 404 detail.
func writeError(c *gin.Context, err error, resource, id string) {
	requestID := apierror.GetRequestID(c)

	switch {
	case errors.Is(err, service.ErrNotFound):
		apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, resource, id))
	case errors.Is(err, service.ErrKidLimitReached):
		apierror.WriteProblem(c, apierror.NewKidLimitError(requestID, models.MaxKidsPerUser))
	case errors.Is(err, service.ErrForbidden):
		apierror.WriteProblem(c, apierror.NewForbiddenError(requestID))
	case errors.Is(err, service.ErrInvalidID):
		apierror.WriteProblem(c, apierror.NewInvalidIDError(requestID, "id", id))
	case errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidInput):
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Please check your input and try again"))
	case errors.Is(err, service.ErrUnauthorized):
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
	case errors.Is(err, service.ErrEmailTaken):
		apierror.WriteProblem(c, apierror.NewConflictError(requestID, "An account with this email already exists"))
	default:
		logger.Ctx(c.Request.Context()).Error("request failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
	}
}

// bindJSON decodes and validates the body, writing a problem on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		apierror.WriteProblem(c, apierror.FromBindingError(apierror.GetRequestID(c), err))
		return false
	}
	return true
}

// bindQuery decodes and validates query parameters, writing a problem on failure
func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		apierror.WriteProblem(c, apierror.FromBindingError(apierror.GetRequestID(c), err))
		return false
	}
	return true
}

// pathID reads a UUID path parameter, writing a problem when it is malformed
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if err := service.ValidateID(id); err != nil {
		apierror.WriteProblem(c, apierror.NewInvalidIDError(apierror.GetRequestID(c), name, id))
		return "", false
	}
	return id, true
}

// queryLimit reads ?limit=. Absent means 0 so the service default applies.
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{{
			Field:   "limit",
			Message: "must be a positive integer",
			Code:    "invalid_value",
		}}))
		return 0, false
	}
	return limit, true
}

// userID returns the authenticated caller. Routes using it sit behind Auth.
func userID(c *gin.Context) string {
	return middleware.UserID(c)
}
