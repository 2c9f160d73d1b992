package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the latest dependency snapshot.
func (hb *HandlerBundle) HealthHandler(c *gin.Context) {
	if hb.Health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	status := hb.Health.Status()
	if status.CheckedAt.IsZero() {
		status = hb.Health.Check(c.Request.Context())
	}
	if !status.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": status})
}
