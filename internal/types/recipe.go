package types

import (
	"time"

	"github.com/darkinowls/recipe-app-api/internal/models"
)

// AttrResponse is the wire shape of a tag or ingredient.
type AttrResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RecipeSummary is returned by the recipe list endpoint.
type RecipeSummary struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	TimeMinutes int            `json:"time_minutes"`
	Price       models.Price   `json:"price"`
	Link        string         `json:"link"`
	Tags        []AttrResponse `json:"tags"`
	Ingredients []AttrResponse `json:"ingredients"`
}

// RecipeDetail adds the description and image URL to the summary.
type RecipeDetail struct {
	RecipeSummary
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

// RecipeImageResponse is returned after an image upload.
type RecipeImageResponse struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}

type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// AdminUserResponse is one row of the staff-only user listing.
type AdminUserResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func NewAttrResponse(id uint, name string) AttrResponse {
	return AttrResponse{ID: id, Name: name}
}

func NewRecipeSummary(r *models.Recipe) RecipeSummary {
	s := RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        make([]AttrResponse, 0, len(r.Tags)),
		Ingredients: make([]AttrResponse, 0, len(r.Ingredients)),
	}
	for _, t := range r.Tags {
		s.Tags = append(s.Tags, NewAttrResponse(t.ID, t.Name))
	}
	for _, i := range r.Ingredients {
		s.Ingredients = append(s.Ingredients, NewAttrResponse(i.ID, i.Name))
	}
	return s
}

// NewRecipeDetail builds the detail DTO. imageURL is empty when the recipe
// has no image.
func NewRecipeDetail(r *models.Recipe, imageURL string) RecipeDetail {
	d := RecipeDetail{
		RecipeSummary: NewRecipeSummary(r),
		Description:   r.Description,
	}
	if imageURL != "" {
		d.Image = &imageURL
	}
	return d
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}

func NewAdminUserResponse(u *models.User) AdminUserResponse {
	return AdminUserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
	}
}
