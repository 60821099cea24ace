package handlers

import (
	"net/http"

	"saubio/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles GET /health.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	state := "ok"
	code := http.StatusOK
	switch {
	case status.CheckedAt.IsZero():
		state = "starting"
	case !status.Mongo || !status.Redis:
		state = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":   state,
		"services": status,
	})
}
