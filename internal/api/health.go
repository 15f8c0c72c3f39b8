package api

import (
	"context"  // Probe deadline
	"net/http" // HTTP status codes
	"time"     // Probe timeout

	"wallet_balance/internal/repository" // Data access

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

const healthTimeout = 2 * time.Second

// HealthHandler reports whether the database (and the cache, when enabled) answers
func HealthHandler(repo repository.WalletRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := repo.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
