package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Phicks-debug/daisii/internal/domain/auth"
	"github.com/Phicks-debug/daisii/internal/interfaces/httpserver/responses"
	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

const subjectContextKey = "subject"

// AuthMiddleware validates bearer session tokens. Any failure, from a
// missing header to a tampered signature, yields the same 401.
func AuthMiddleware(sessions *auth.SessionService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			logger.Warn().
				Str("path", c.FullPath()).
				Str("method", c.Request.Method).
				Msg("unauthenticated request")
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "unauthorized")
			return
		}

		subject, err := sessions.Verify(token)
		if err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "unauthorized")
			return
		}

		c.Set(subjectContextKey, subject)
		c.Next()
	}
}

// SubjectFromContext returns the authenticated subject, if any.
func SubjectFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(subjectContextKey)
	if !ok {
		return "", false
	}
	subject, ok := val.(string)
	return subject, ok && subject != ""
}
