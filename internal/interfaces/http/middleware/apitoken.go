package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/backend/internal/interfaces/http/dto"
)

// APITokenHeader carries the shared secret for service-to-service calls
const APITokenHeader = "X-API-Token"

// APIToken guards service endpoints with a static shared secret.
// An empty configured token disables the check entirely.
func APIToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		presented := c.GetHeader(APITokenHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid or missing API token"))
			return
		}
		c.Next()
	}
}
