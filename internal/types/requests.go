package types

import (
	"github.com/darkinowls/recipe-app-api/internal/models"
)

// CreateUserRequest represents the request body for signing up
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=5,max=128"`
	Name     string `json:"name" binding:"required,max=255"`
}

// TokenRequest represents the request body for obtaining a token
type TokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest is used by PUT and PATCH on the current user. PUT
// additionally requires every field to be present.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Password *string `json:"password" binding:"omitempty,min=5,max=128"`
}

// NameRef references a tag or ingredient by name inside a recipe payload.
type NameRef struct {
	Name string `json:"name"`
}

// RecipeRequest is the body for create, full update and partial update.
// A nil nested list means the field was absent (or null).
type RecipeRequest struct {
	Title       *string       `json:"title" binding:"omitempty,max=255"`
	TimeMinutes *int          `json:"time_minutes"`
	Price       *models.Price `json:"price"`
	Description *string       `json:"description" binding:"omitempty,max=255"`
	Link        *string       `json:"link" binding:"omitempty,max=255"`
	Tags        *[]NameRef    `json:"tags"`
	Ingredients *[]NameRef    `json:"ingredients"`
}

// AttrRequest renames a tag or ingredient.
type AttrRequest struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
}

// Names flattens a nested list, keeping nil for an absent field.
func Names(refs *[]NameRef) []string {
	if refs == nil {
		return nil
	}
	names := make([]string, 0, len(*refs))
	for _, r := range *refs {
		names = append(names, r.Name)
	}
	return names
}
