package middleware

import (
	"net/http"
	"strings"

	"saubio/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// JWTAuthMiddleware validates the bearer token and stores the caller's id and role.
// SSE clients that cannot set headers may pass the token as ?access_token=.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			tokenString = c.Query("access_token")
		}
		if tokenString == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "missing or invalid Authorization header")
			return
		}

		userID, role, err := utils.ExtractClaims(tokenString)
		if err != nil {
			zap.L().Debug("Rejected token", zap.Error(err))
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "invalid token")
			return
		}

		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}
