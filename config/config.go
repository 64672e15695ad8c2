package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultJWTSecret is only accepted outside production.
	DefaultJWTSecret = "recipe-api-dev-secret"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	MediaLocal = "local"
	MediaS3    = "s3"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerHost string
	ServerPort string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis is optional; without it rate limiting falls back to process memory.
	RedisURL string

	// Token configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Media storage
	MediaBackend string
	MediaRoot    string
	MediaURL     string
	S3Bucket     string
	AWSRegion    string

	CORSAllowedOrigins     []string
	TrustedProxies         []string
	SentryDSN              string
	LogLevel               string
	AuthRateLimitPerMinute int
}

// LoadConfig builds a Config from environment variables, falling back to
// Docker secrets for sensitive values and to development defaults otherwise.
func LoadConfig() (*Config, error) {
	cfg := &Config{Env: GetEnvironment()}

	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.ServerPort = getEnv("SERVER_PORT", "8000")

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", DriverPostgres))
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = getSecret("DB_USER", "db_user", "postgres")
	cfg.DBPassword = getSecret("DB_PASSWORD", "db_password", "")
	cfg.DBName = getEnv("DB_NAME", "recipes")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "recipes.db")

	cfg.RedisURL = getSecret("REDIS_URL", "redis_url", "")

	cfg.JWTSecret = getSecret("JWT_SECRET", "jwt_secret", DefaultJWTSecret)
	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.JWTTTL = ttl

	cfg.MediaBackend = strings.ToLower(getEnv("MEDIA_BACKEND", MediaLocal))
	cfg.MediaRoot = getEnv("MEDIA_ROOT", filepath.Join("vol", "web", "media"))
	cfg.MediaURL = strings.TrimSuffix(getEnv("MEDIA_URL", "/media"), "/")
	cfg.S3Bucket = getEnv("S3_BUCKET_NAME", "")
	cfg.AWSRegion = getEnv("AWS_REGION", "us-east-1")

	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))
	cfg.TrustedProxies = splitList(getEnv("TRUSTED_PROXIES", ""))
	cfg.SentryDSN = getSecret("SENTRY_DSN", "sentry_dsn", "")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	limit, err := strconv.Atoi(getEnv("RATE_LIMIT_AUTH_PER_MINUTE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_AUTH_PER_MINUTE: %w", err)
	}
	cfg.AuthRateLimitPerMinute = limit

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

// PostgresDSN returns the key/value connection string used by both pgx and lib/pq.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// getSecret prefers the environment variable, then the Docker secret file.
func getSecret(envKey, secretName, fallback string) string {
	if v := getEnv(envKey, ""); v != "" {
		return v
	}
	if v := readSecret(secretName); v != "" {
		return v
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
