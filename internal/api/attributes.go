package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darkinowls/recipe-app-api/internal/service"
	"github.com/darkinowls/recipe-app-api/internal/types"
)

// AttributeHandler serves one attribute resource, tags or ingredients,
// mounted under the kind's table name.
type AttributeHandler struct {
	attrs service.IAttributeService
}

func NewAttributeHandler(attrs service.IAttributeService) *AttributeHandler {
	return &AttributeHandler{attrs: attrs}
}

func (h *AttributeHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/" + h.attrs.Kind().Table)
	{
		group.GET("", h.List)
		group.PUT("/:id", h.Update)
		group.PATCH("/:id", h.Patch)
		group.DELETE("/:id", h.Delete)
	}
}

func (h *AttributeHandler) List(c *gin.Context) {
	assignedOnly := service.BuildAttrFilter(c.Query("assigned_only"))

	attrs, err := h.attrs.List(c.Request.Context(), currentUserID(c), assignedOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]types.AttrResponse, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, types.NewAttrResponse(a.ID, a.Name))
	}
	c.JSON(http.StatusOK, out)
}

func (h *AttributeHandler) Update(c *gin.Context) {
	h.update(c, false)
}

func (h *AttributeHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

func (h *AttributeHandler) update(c *gin.Context, partial bool) {
	id, ok := pathID(c)
	if !ok {
		notFound(c)
		return
	}

	var req types.AttrRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	attr, err := h.attrs.Update(c.Request.Context(), currentUserID(c), id, &req, partial)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.NewAttrResponse(attr.ID, attr.Name))
}

func (h *AttributeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		notFound(c)
		return
	}

	if err := h.attrs.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
