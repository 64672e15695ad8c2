package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks that the configuration is usable in its environment.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		add("SERVER_PORT", "must be a valid TCP port")
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for postgres")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "is required for postgres")
		}
		if cfg.Env.IsProduction() && cfg.DBPassword == "" {
			add("DB_PASSWORD", "db_password secret is required in production")
		}
	case DriverSQLite:
		if cfg.Env.IsProduction() {
			add("DB_DRIVER", "sqlite is not supported in production")
		}
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	} else if cfg.Env.IsProduction() && (cfg.JWTSecret == DefaultJWTSecret || len(cfg.JWTSecret) < 32) {
		add("JWT_SECRET", "must be a non-default secret of at least 32 characters in production")
	}
	if cfg.JWTTTL <= 0 {
		add("JWT_TTL", "must be positive")
	}

	switch cfg.MediaBackend {
	case MediaLocal:
		if cfg.MediaRoot == "" {
			add("MEDIA_ROOT", "is required for local media")
		}
	case MediaS3:
		if cfg.S3Bucket == "" {
			add("S3_BUCKET_NAME", "is required for s3 media")
		}
	default:
		add("MEDIA_BACKEND", fmt.Sprintf("unknown backend %q", cfg.MediaBackend))
	}

	if cfg.AuthRateLimitPerMinute < 0 {
		add("RATE_LIMIT_AUTH_PER_MINUTE", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
