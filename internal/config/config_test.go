package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// clearEnv blanks every key Load reads; getEnv treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "STORAGE_DRIVER",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD",
		"JWT_SECRET", "JWT_EXPIRY", "ALLOWED_ORIGINS", "TRUSTED_PROXIES", "RATE_LIMIT",
		"LOG_LEVEL", "LOG_FORMAT", "SWAGGER_HOST", "SEED_DEMO_USERS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "20-M", cfg.RateLimit)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.SeedDemoUsers)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.TrustedProxies)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "todo")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "todos")
	t.Setenv("JWT_EXPIRY", "15m")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com ,")
	t.Setenv("SEED_DEMO_USERS", "false")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.AllowedOrigins)
	assert.False(t, cfg.SeedDemoUsers)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.TrustedProxies)
	assert.Equal(t,
		"host=db port=5432 user=todo password=secret dbname=todos sslmode=disable TimeZone=UTC",
		cfg.DSN())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing jwt secret",
			env:  map[string]string{},
		},
		{
			name: "short jwt secret",
			env:  map[string]string{"JWT_SECRET": "too-short"},
		},
		{
			name: "unknown storage driver",
			env:  map[string]string{"JWT_SECRET": testSecret, "STORAGE_DRIVER": "mongo"},
		},
		{
			name: "postgres without host",
			env:  map[string]string{"JWT_SECRET": testSecret, "STORAGE_DRIVER": "postgres", "DB_USER": "u", "DB_NAME": "n"},
		},
		{
			name: "redis without host",
			env:  map[string]string{"JWT_SECRET": testSecret, "STORAGE_DRIVER": "redis"},
		},
		{
			name: "bad trusted proxy",
			env:  map[string]string{"JWT_SECRET": testSecret, "TRUSTED_PROXIES": "proxy.internal"},
		},
		{
			name: "bad log level",
			env:  map[string]string{"JWT_SECRET": testSecret, "LOG_LEVEL": "verbose"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, parseDuration("30s", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("1", false))
	assert.False(t, parseBool("no", false))
	assert.True(t, parseBool("", true))
}
