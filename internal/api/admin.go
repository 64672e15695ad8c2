package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darkinowls/recipe-app-api/internal/service"
	"github.com/darkinowls/recipe-app-api/internal/types"
)

// AdminHandler exposes read-only account listings to staff users.
type AdminHandler struct {
	auth service.IAuthService
}

func NewAdminHandler(auth service.IAuthService) *AdminHandler {
	return &AdminHandler{auth: auth}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]types.AdminUserResponse, 0, len(users))
	for i := range users {
		out = append(out, types.NewAdminUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}
