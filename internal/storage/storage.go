// Package storage persists uploaded recipe images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/darkinowls/recipe-app-api/config"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Backend stores binary objects under slash-separated keys.
type Backend interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns where a client can fetch the object.
	URL(key string) string
}

// New builds the backend selected by MEDIA_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.MediaBackend {
	case config.MediaLocal:
		return NewLocal(cfg.MediaRoot, cfg.MediaURL)
	case config.MediaS3:
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3(s3cfg.Client, s3cfg), nil
	default:
		return nil, fmt.Errorf("unsupported media backend %q", cfg.MediaBackend)
	}
}

// RecipeImageKey returns a fresh key of the form uploads/recipe/<uuid>.<ext>.
func RecipeImageKey(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return path.Join("uploads", "recipe", uuid.New().String()+"."+ext)
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
