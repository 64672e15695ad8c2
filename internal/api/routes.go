// Package api holds the HTTP handlers of the recipe API.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/darkinowls/recipe-app-api/internal/middleware"
	"github.com/darkinowls/recipe-app-api/internal/service"
)

// Services bundles what the handlers need.
type Services struct {
	Auth        service.IAuthService
	Recipes     service.IRecipeService
	Tags        service.IAttributeService
	Ingredients service.IAttributeService
	DB          Pinger
	// AuthThrottle limits signup and token requests when set.
	AuthThrottle gin.HandlerFunc
}

// RegisterRoutes mounts every endpoint under v1.
func RegisterRoutes(v1 *gin.RouterGroup, s Services) {
	ConfigureValidator()

	v1.GET("/health", HealthHandler(s.DB))

	NewUserHandler(s.Auth).RegisterRoutes(v1, s.AuthThrottle)

	authed := v1.Group("", middleware.AuthMiddleware(s.Auth))
	NewRecipeHandler(s.Recipes).RegisterRoutes(authed)
	NewAttributeHandler(s.Tags).RegisterRoutes(authed)
	NewAttributeHandler(s.Ingredients).RegisterRoutes(authed)

	admin := authed.Group("/admin", middleware.RequireStaff())
	admin.GET("/users", NewAdminHandler(s.Auth).ListUsers)
}
