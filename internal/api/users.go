package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darkinowls/recipe-app-api/internal/middleware"
	"github.com/darkinowls/recipe-app-api/internal/service"
	"github.com/darkinowls/recipe-app-api/internal/types"
)

// UserHandler serves signup, token issuance and the current user's profile.
type UserHandler struct {
	auth service.IAuthService
}

func NewUserHandler(auth service.IAuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// RegisterRoutes mounts the user endpoints. throttle guards the
// unauthenticated endpoints and may be nil.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, throttle gin.HandlerFunc) {
	users := router.Group("/users")

	public := []gin.HandlerFunc{}
	if throttle != nil {
		public = append(public, throttle)
	}
	users.POST("", append(public, h.CreateUser)...)
	users.POST("/token", append(public, h.CreateToken)...)

	me := users.Group("/me", middleware.AuthMiddleware(h.auth))
	{
		me.GET("", h.GetMe)
		me.PUT("", h.UpdateMe)
		me.PATCH("", h.PatchMe)
	}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.NewUserResponse(user))
}

func (h *UserHandler) CreateToken(c *gin.Context) {
	var req types.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.TokenResponse{Token: token})
}

func (h *UserHandler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, types.NewUserResponse(middleware.CurrentUser(c)))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	h.updateMe(c, false)
}

func (h *UserHandler) PatchMe(c *gin.Context) {
	h.updateMe(c, true)
}

func (h *UserHandler) updateMe(c *gin.Context, partial bool) {
	var req types.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.auth.UpdateUser(c.Request.Context(), currentUserID(c), &req, partial)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.NewUserResponse(user))
}
