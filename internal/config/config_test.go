package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_USER", "wallet")
	t.Setenv("DB_PASSWORD", "p@ss word")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "wallets")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("DB_MAINTENANCE_NAME", "")
	t.Setenv("RESPONSE_MODE", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("AUTO_MIGRATE", "")
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("APP_PORT", "")
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, ":8000", cfg.Address())
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "postgres", cfg.DBMaintenance)
	assert.Equal(t, ResponseModeLegacy, cfg.ResponseMode)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.AutoMigrate)
	assert.Zero(t, cfg.RateLimitRPS)
}

func TestDatabaseURLPostgres(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://wallet:p%40ss%20word@db:5432/wallets?sslmode=disable", cfg.DatabaseURL())
	assert.Equal(t, "postgres://wallet:p%40ss%20word@db:5432/postgres?sslmode=disable", cfg.MaintenanceURL())
	assert.Equal(t, "postgres://wallet:p%40ss%20word@db:5432/wallets_test?sslmode=disable", cfg.ForDatabase("wallets_test").DatabaseURL())
	assert.Equal(t, "wallets", cfg.DBName, "ForDatabase must not mutate the receiver")
}

func TestDatabaseURLMySQL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "wallet:secret@tcp(db:3306)/wallets?parseTime=true", cfg.DatabaseURL())
	assert.Equal(t, "wallet:secret@tcp(db:3306)/?parseTime=true", cfg.MaintenanceURL())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"unknown driver":  {"DB_DRIVER", "oracle"},
		"bad ttl":         {"CACHE_TTL", "soon"},
		"bad bool":        {"AUTO_MIGRATE", "maybe"},
		"bad mode":        {"RESPONSE_MODE", "strict"},
		"bad rate":        {"RATE_LIMIT_RPS", "fast"},
		"missing db name": {"DB_NAME", ""},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestMemoryDriverNeedsNoDatabaseName(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("DB_NAME", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURL())
}
