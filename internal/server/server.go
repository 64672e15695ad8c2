// Package server assembles the gin engine and owns the HTTP listener.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/darkinowls/recipe-app-api/config"
	"github.com/darkinowls/recipe-app-api/internal/api"
	"github.com/darkinowls/recipe-app-api/internal/middleware"
	"github.com/darkinowls/recipe-app-api/internal/models"
	"github.com/darkinowls/recipe-app-api/internal/ratelimit"
	"github.com/darkinowls/recipe-app-api/internal/repository"
	"github.com/darkinowls/recipe-app-api/internal/service"
	"github.com/darkinowls/recipe-app-api/internal/storage"
	"github.com/darkinowls/recipe-app-api/internal/types"
)

// Dependencies are the collaborators built by the caller.
type Dependencies struct {
	Repo   repository.Repository
	Media  storage.Backend
	Redis  *redis.Client // optional
	Logger *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	cfg    *config.Config
	keyed  *ratelimit.KeyedRateLimiter
}

// New wires services, middleware and routes.
func New(cfg *config.Config, deps Dependencies) *Server {
	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{cfg: cfg}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Error("invalid trusted proxies, trusting none", "proxies", cfg.TrustedProxies, "error", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, types.ErrorResponse{Error: "method not allowed"})
	})

	router.Use(
		middleware.Recovery(),
		middleware.ErrorReporter(),
		middleware.RequestLogger(logger),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	auth := service.NewAuthService(deps.Repo, cfg.JWTSecret, cfg.JWTTTL)

	router.GET("/health", api.HealthHandler(deps.Repo))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if local, ok := deps.Media.(*storage.Local); ok && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(cfg.MediaURL, local.Root())
	}

	api.RegisterRoutes(router.Group("/api/v1"), api.Services{
		Auth:         auth,
		Recipes:      service.NewRecipeService(deps.Repo, deps.Media),
		Tags:         service.NewAttributeService(deps.Repo, models.TagKind),
		Ingredients:  service.NewAttributeService(deps.Repo, models.IngredientKind),
		DB:           deps.Repo,
		AuthThrottle: s.authThrottle(deps.Redis),
	})

	s.router = router
	return s
}

// authThrottle limits signup and token requests per client. Redis is used
// when configured so the limit holds across instances.
func (s *Server) authThrottle(rdb *redis.Client) gin.HandlerFunc {
	n := s.cfg.AuthRateLimitPerMinute
	if n <= 0 {
		return nil
	}
	if rdb != nil {
		return middleware.RateLimit(ratelimit.NewRedis(rdb, n, time.Minute, "ratelimit:auth:"))
	}
	s.keyed = ratelimit.PerMinute(n)
	return middleware.RateLimit(s.keyed)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.keyed != nil {
		s.keyed.Stop()
	}
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
