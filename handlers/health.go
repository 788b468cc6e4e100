package handlers

import (
	"net/http"

	"backoffice/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency check.
func HealthHandler(c *gin.Context) {
	health := utils.GetHealthStatus()
	status := "ok"
	if !health.CheckedAt.IsZero() && !health.Mongo {
		status = "degraded"
	}
	for _, up := range health.Redis {
		if !up {
			status = "degraded"
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "dependencies": health})
}
