package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darkinowls/recipe-app-api/internal/models"
	"github.com/darkinowls/recipe-app-api/internal/service"
	"github.com/darkinowls/recipe-app-api/internal/types"
)

// multipart framing allowance on top of the image itself
const uploadOverhead = 1 << 20

// RecipeHandler serves the owner's recipes. Every route requires auth.
type RecipeHandler struct {
	recipes service.IRecipeService
}

func NewRecipeHandler(recipes service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.CreateRecipe)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.PATCH("/:id", h.PatchRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/upload-image", h.UploadImage)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.BuildRecipeFilter(c.Query("tags"), c.Query("ingredients"))

	recipes, err := h.recipes.List(c.Request.Context(), currentUserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]types.RecipeSummary, 0, len(recipes))
	for i := range recipes {
		out = append(out, types.NewRecipeSummary(&recipes[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		notFound(c)
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.detail(c, recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.detail(c, recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	h.update(c, false)
}

func (h *RecipeHandler) PatchRecipe(c *gin.Context) {
	h.update(c, true)
}

func (h *RecipeHandler) update(c *gin.Context, partial bool) {
	id, ok := pathID(c)
	if !ok {
		notFound(c)
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), currentUserID(c), id, &req, partial)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.detail(c, recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		notFound(c)
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage accepts a multipart form with the file in the "image" field.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		notFound(c)
		return
	}
	userID := currentUserID(c)

	// ownership is checked before the body is read
	if _, err := h.recipes.Get(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxImageSize+uploadOverhead)
	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{Error: "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:  msgValidationFailed,
			Fields: map[string][]string{"image": {"no file was submitted"}},
		})
		return
	}

	f, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(f, service.MaxImageSize+1)); err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipes.UploadImage(c.Request.Context(), userID, id, buf.Bytes())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := types.RecipeImageResponse{ID: recipe.ID}
	if u := absoluteURL(c, h.recipes.ImageURL(recipe)); u != "" {
		resp.Image = &u
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) detail(c *gin.Context, recipe *models.Recipe) types.RecipeDetail {
	return types.NewRecipeDetail(recipe, absoluteURL(c, h.recipes.ImageURL(recipe)))
}
