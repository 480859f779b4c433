package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		var userRef *string
		if id := userIDFromContext(c); id != nil {
			s := strconv.FormatInt(*id, 10)
			userRef = &s
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userRef)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
