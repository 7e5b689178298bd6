// Package config handles configuration loading for the todo service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds all configuration for the todo service.
type Config struct {
	Port        string `validate:"required,numeric"`
	Environment string `validate:"required"`

	StorageDriver string `validate:"oneof=memory postgres redis"`

	DBHost     string `validate:"required_if=StorageDriver postgres"`
	DBPort     string `validate:"required_if=StorageDriver postgres"`
	DBUser     string `validate:"required_if=StorageDriver postgres"`
	DBPassword string
	DBName     string `validate:"required_if=StorageDriver postgres"`
	DBSSLMode  string `validate:"oneof=disable require verify-ca verify-full"`

	RedisHost     string `validate:"required_if=StorageDriver redis"`
	RedisPort     string `validate:"required_if=StorageDriver redis"`
	RedisPassword string

	JWTSecret string        `validate:"required,min=32"`
	JWTExpiry time.Duration `validate:"gt=0"`

	AllowedOrigins []string
	TrustedProxies []string `validate:"dive,cidr|ip"`
	RateLimit      string   `validate:"required"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"`

	SwaggerHost   string
	SeedDemoUsers bool
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", DriverMemory)),
		DBHost:         getEnv("DB_HOST", ""),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", ""),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", ""),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		RedisHost:      getEnv("REDIS_HOST", ""),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpiry:      parseDuration(getEnv("JWT_EXPIRY", "168h"), 168*time.Hour),
		AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "")),
		TrustedProxies: parseList(getEnv("TRUSTED_PROXIES", "")),
		RateLimit:      getEnv("RATE_LIMIT", "20-M"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "json")),
		SwaggerHost:    getEnv("SWAGGER_HOST", ""),
		SeedDemoUsers:  parseBool(getEnv("SEED_DEMO_USERS", "true"), true),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func parseBool(value string, defaultValue bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func parseList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
