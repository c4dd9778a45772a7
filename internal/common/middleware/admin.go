package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"giveaway-bot-backend/internal/common/errors"
)

const AdminTokenHeader = "X-Admin-Token"

// AdminAuth guards operator endpoints with a static shared token.
// An empty configured token disables the endpoints entirely.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			RespondError(c, errors.New(errors.ErrCodeForbidden, "Admin endpoints are disabled"))
			c.Abort()
			return
		}

		provided := strings.TrimSpace(c.GetHeader(AdminTokenHeader))
		if provided == "" {
			provided = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			RespondError(c, errors.NewUnauthorizedError("invalid admin token"))
			c.Abort()
			return
		}

		c.Next()
	}
}
