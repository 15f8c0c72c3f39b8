package config

import (
	"fmt"     // Error formatting
	"net/url" // Escaping credentials in connection URLs
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // String manipulation
	"time"    // Durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported storage drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

// Supported response modes
const (
	ResponseModeLegacy = "legacy"
	ResponseModeREST   = "rest"
)

// Config holds the application configuration
type Config struct {
	AppPort         string        // Application port
	IsProd          bool          // Is production environment
	LogLevel        string        // Logrus level name
	LogFile         string        // Rotating log file path, empty disables file output
	DBDriver        string        // postgres, mysql or memory
	DBUser          string        // Database user
	DBPassword      string        // Database password
	DBHost          string        // Database host
	DBPort          string        // Database port
	DBName          string        // Database name
	DBSSLMode       string        // PostgreSQL sslmode
	DBMaintenance   string        // Database used to issue CREATE DATABASE
	TestDBName      string        // Database used by integration tests
	DBMaxOpenConns  int           // Pool size
	DBMaxIdleConns  int           // Idle pool size
	DBConnLifetime  time.Duration // Max connection lifetime
	AutoMigrate     bool          // Upgrade schema to head on startup
	RedisAddr       string        // Redis server address, empty disables the cache
	RedisPass       string        // Redis password
	RedisDB         int           // Redis database number
	CacheTTL        time.Duration // Balance cache TTL
	ResponseMode    string        // legacy or rest
	RateLimitRPS    float64       // Requests per second, 0 disables the limiter
	RateLimitBurst  int           // Token bucket burst
	ShutdownTimeout time.Duration // Graceful shutdown budget
	TrustedProxies  []string      // Proxies gin trusts for client IPs
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present

	cfg := &Config{
		AppPort:        getEnv("APP_PORT", "8000"),
		IsProd:         os.Getenv("IS_PROD") == "true",
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:        os.Getenv("LOG_FILE"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         os.Getenv("DB_PORT"),
		DBName:         os.Getenv("DB_NAME"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaintenance:  os.Getenv("DB_MAINTENANCE_NAME"),
		TestDBName:     os.Getenv("TEST_DB_NAME"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		ResponseMode:   strings.ToLower(getEnv("RESPONSE_MODE", ResponseModeLegacy)),
		TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "127.0.0.1")),
	}

	var err error
	if cfg.DBMaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.DBConnLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.AutoMigrate, err = getBool("AUTO_MIGRATE", true); err != nil {
		return nil, err
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if cfg.RateLimitRPS, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
		}
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBPort == "" {
			cfg.DBPort = "5432"
		}
		if cfg.DBMaintenance == "" {
			cfg.DBMaintenance = "postgres"
		}
	case DriverMySQL:
		if cfg.DBPort == "" {
			cfg.DBPort = "3306"
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	switch cfg.ResponseMode {
	case ResponseModeLegacy, ResponseModeREST:
	default:
		return nil, fmt.Errorf("unsupported RESPONSE_MODE %q", cfg.ResponseMode)
	}

	if cfg.DBDriver != DriverMemory && cfg.DBName == "" {
		return nil, fmt.Errorf("DB_NAME must be set for driver %s", cfg.DBDriver)
	}

	return cfg, nil
}

// DatabaseURL builds the connection string for the configured database
func (c *Config) DatabaseURL() string {
	return c.urlFor(c.DBName)
}

// MaintenanceURL builds the connection string used to create the target database
func (c *Config) MaintenanceURL() string {
	return c.urlFor(c.DBMaintenance)
}

// ForDatabase returns a copy of the config pointing at another database name
func (c *Config) ForDatabase(name string) *Config {
	clone := *c
	clone.DBName = name
	return &clone
}

// Address returns the listen address
func (c *Config) Address() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}
	return ":" + c.AppPort
}

func (c *Config) urlFor(dbName string) string {
	switch c.DBDriver {
	case DriverMySQL:
		// Data Source Name (DSN) for MySQL connection
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + dbName + "?parseTime=true"
	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.DBUser, c.DBPassword),
			Host:     c.DBHost + ":" + c.DBPort,
			Path:     "/" + dbName,
			RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
		}
		return u.String()
	default:
		return ""
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
