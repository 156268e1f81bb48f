package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const statusHealthy = "healthy"

// Health handles GET /api/health.
func Health(service string, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    statusHealthy,
			"service":   service,
			"timestamp": now().Format(time.RFC3339Nano),
		})
	}
}
