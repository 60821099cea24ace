package middleware

import (
	"net/http"

	"saubio/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only when JWTAuthMiddleware stored one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if role := c.GetString("role"); !allowed[role] {
			utils.JSONError(c, http.StatusForbidden, "Forbidden", "role "+role+" cannot access this resource")
			return
		}
		c.Next()
	}
}
