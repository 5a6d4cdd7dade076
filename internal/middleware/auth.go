package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/apierror"
	"github.com/smallsteps/backend/internal/logger"
)

// Gin context keys set by Auth
const (
	ContextUserID      = "user_id"
	ContextUserEmail   = "user_email"
	ContextAccessToken = "access_token"
)

// Auth rejects requests without a valid bearer token and stores the caller's
// identity on the gin context and the request context
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			log.Debug("authentication failed: missing or malformed authorization header")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Warn("authentication failed: token verification error", logger.Err(err))
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextUserEmail, identity.Email)
		c.Set(ContextAccessToken, token)

		ctx := logger.WithUserID(c.Request.Context(), identity.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// UserID returns the authenticated user's id, or "" before Auth ran
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// AccessToken returns the caller's bearer token, or "" before Auth ran
func AccessToken(c *gin.Context) string {
	return c.GetString(ContextAccessToken)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
