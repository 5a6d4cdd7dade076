package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/apierror"
	"github.com/smallsteps/backend/internal/logger"
	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/repository"
)

const (
	// IdempotencyKeyHeader is the HTTP header name for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"

	// IdempotencyReplayedHeader marks a response served from a stored record
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"

	maxIdempotencyKeyLength = 255
)

// idempotencyBodyWriter captures the response body so it can be stored
type idempotencyBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyBodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a POST, PUT or PATCH carries
// an Idempotency-Key the same user already used on the same route. Requests
// without the header pass through untouched. Must run after Auth.
//
// Only 2xx responses are stored, so a failed completion can be retried with
// the same key.
func Idempotency(repo repository.ReplayRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		log := logger.Ctx(c.Request.Context())
		requestID := apierror.GetRequestID(c)

		if len(key) > maxIdempotencyKeyLength {
			apierror.WriteProblem(c, apierror.NewBadRequestError(requestID,
				"Idempotency-Key header exceeds 255 characters",
				"The request could not be processed."))
			return
		}

		userID := UserID(c)
		if userID == "" {
			log.Warn("idempotency check failed: no user_id in context")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
			return
		}

		route := method + " " + c.FullPath()

		existing, err := repo.Find(c.Request.Context(), userID, route, key)
		if err != nil {
			// Serve the request rather than block it on the key store
			log.Error("failed to check idempotency key", logger.Err(err), logger.String("route", route))
			c.Next()
			return
		}

		if existing != nil {
			log.Info("replaying idempotent response",
				logger.String("route", route),
				logger.Int("status_code", existing.StatusCode),
			)
			c.Header(IdempotencyReplayedHeader, "true")
			if existing.StatusCode == http.StatusNoContent {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Data(existing.StatusCode, "application/json; charset=utf-8", existing.Body)
			c.Abort()
			return
		}

		blw := &idempotencyBodyWriter{
			body:           bytes.NewBuffer(nil),
			ResponseWriter: c.Writer,
		}
		c.Writer = blw

		c.Next()

		statusCode := c.Writer.Status()
		if statusCode < 200 || statusCode >= 300 {
			return
		}

		stored := &models.StoredResponse{
			UserID:     userID,
			Route:      route,
			Key:        key,
			StatusCode: statusCode,
			Body:       blw.body.Bytes(),
		}
		if err := repo.Save(c.Request.Context(), stored); err != nil {
			log.Warn("failed to store idempotency key", logger.Err(err), logger.String("route", route))
			return
		}
		log.Debug("stored idempotency key", logger.String("route", route), logger.Int("status_code", statusCode))
	}
}
