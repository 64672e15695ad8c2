package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/darkinowls/recipe-app-api/internal/types"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns the health status of the API
func HealthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, types.HealthResponse{Status: "unhealthy", Database: "unavailable"})
			return
		}
		c.JSON(http.StatusOK, types.HealthResponse{Status: "healthy", Database: "ok"})
	}
}
