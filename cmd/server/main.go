package main

import (
	"context"   // Startup and shutdown deadlines
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Exit codes
	"os/signal" // Shutdown signals
	"syscall"   // SIGTERM

	"wallet_balance/internal/api"        // Router and handlers
	"wallet_balance/internal/config"     // Configuration
	"wallet_balance/internal/db"         // Database bootstrap and revisions
	"wallet_balance/internal/logging"    // Logger setup
	"wallet_balance/internal/metrics"    // Prometheus collectors
	"wallet_balance/internal/middleware" // Rate limiter
	"wallet_balance/internal/repository" // Data access

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logCloser := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()

	if err := run(cfg); err != nil {
		logrus.WithError(err).Error("Server stopped with error")
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	m := metrics.New()

	repo, closeStore, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	repo = repository.Instrument(repo, m.RepositoryOp) // Count operations by outcome

	responder, err := api.NewResponder(cfg.ResponseMode)
	if err != nil {
		return err
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := api.NewRouter(api.RouterConfig{
		Repository:     repo,
		Responder:      responder,
		Metrics:        m,
		RateLimiter:    limiter,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.Address(), Handler: router}
	srvErr := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":          srv.Addr,
			"driver":        cfg.DBDriver,
			"response_mode": cfg.ResponseMode,
		}).Info("Server running")
		srvErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("Shutdown signal received")
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logrus.Info("Server exited cleanly")
	return nil
}

// openRepository builds the storage stack for the configured driver. The
// returned func releases the database pool and the Redis client.
func openRepository(ctx context.Context, cfg *config.Config) (repository.WalletRepository, func(), error) {
	var (
		repo    repository.WalletRepository
		closers []func() error
	)

	if cfg.DBDriver == config.DriverMemory {
		logrus.Warn("Using in-memory storage, data is lost on restart")
		repo = repository.NewMemoryRepository()
	} else {
		gdb, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() error { return db.Close(gdb) })
		repo = repository.NewGormRepository(gdb)
	}

	if cfg.RedisAddr != "" {
		// Setup Redis client
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, rdb.Close)
		repo = repository.NewCachedRepository(repo, rdb, cfg.CacheTTL)
		logrus.WithField("addr", cfg.RedisAddr).Info("Balance cache enabled")
	}

	return repo, func() { closeAll(closers) }, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	if err := db.EnsureDatabase(ctx, cfg); err != nil {
		return nil, err
	}
	gdb, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.AutoMigrate {
		return gdb, nil
	}

	runner, err := db.NewRunner(gdb, db.Revisions)
	if err == nil {
		_, err = runner.Upgrade(ctx, db.TargetHead)
	}
	if err != nil {
		db.Close(gdb)
		return nil, err
	}
	return gdb, nil
}

// closeAll releases resources in reverse order of acquisition
func closeAll(closers []func() error) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logrus.WithError(err).Warn("Failed to release resource")
		}
	}
}
