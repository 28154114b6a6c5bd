// internal/middleware/helpers.go
package middleware

import (
	"coldlist-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireIdentityID writes a 401 and returns false when the request carries no identity.
func RequireIdentityID(c *gin.Context) (int64, bool) {
	identityID, exists := GetIdentityID(c)
	if !exists || identityID <= 0 {
		response.Unauthorized(c, "unauthorized")
		return 0, false
	}
	return identityID, true
}
