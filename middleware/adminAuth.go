package middleware

import (
	"saubio/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthAdminMiddleware authenticates the caller and requires the admin role.
func JWTAuthAdminMiddleware() gin.HandlerFunc {
	auth := JWTAuthMiddleware()
	guard := RequireRole(utils.RoleAdmin)
	return func(c *gin.Context) {
		auth(c)
		if c.IsAborted() {
			return
		}
		guard(c)
	}
}
