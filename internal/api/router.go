package api

import (
	"net/http" // HTTP status codes

	"wallet_balance/internal/metrics"    // Prometheus collectors
	"wallet_balance/internal/middleware" // Request middleware
	"wallet_balance/internal/repository" // Data access

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RouterConfig carries the dependencies of the HTTP layer
type RouterConfig struct {
	Repository     repository.WalletRepository // Wallet storage
	Responder      Responder                   // Outcome to response mapping
	Metrics        *metrics.Metrics            // nil disables /metrics and instrumentation
	RateLimiter    *middleware.RateLimiter     // nil disables rate limiting
	TrustedProxies []string                    // Proxies trusted for client IPs
}

// NewRouter wires middleware and routes
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method Not Allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	// Recovery sits innermost so a panic is still logged and counted as 500
	r.Use(middleware.RequestID(), middleware.AccessLog())
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(gin.CustomRecovery(recoverPanic))

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	r.GET("/healthz", HealthHandler(cfg.Repository))

	wallets := r.Group("/api/v1/wallets")
	if cfg.RateLimiter != nil {
		wallets.Use(cfg.RateLimiter.Handler())
	}
	wallets.POST("/:wallet_id/operation", BindWalletDeposit(), DepositHandler(cfg.Repository, cfg.Responder))
	wallets.GET("/:wallet_id", BindWalletID(), GetBalanceHandler(cfg.Repository, cfg.Responder))
	wallets.PATCH("/:wallet_id/operation", BindWalletUpdate(), UpdateBalanceHandler(cfg.Repository, cfg.Responder))
	wallets.DELETE("/:wallet_id/operation", BindWalletID(), DeleteHandler(cfg.Repository, cfg.Responder))

	return r, nil
}

func recoverPanic(c *gin.Context, recovered any) {
	logrus.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"panic":      recovered,
	}).Error("Recovered from panic")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": MsgInternal})
}
