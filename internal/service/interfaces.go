package service

import (
	"context"

	"github.com/darkinowls/recipe-app-api/internal/models"
	"github.com/darkinowls/recipe-app-api/internal/repository"
	"github.com/darkinowls/recipe-app-api/internal/types"
)

// IAuthService defines the interface for account and token operations
type IAuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	UpdateUser(ctx context.Context, userID uint, req *types.UpdateUserRequest, partial bool) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, userID uint, filter repository.RecipeFilter) ([]models.Recipe, error)
	Get(ctx context.Context, userID, id uint) (*models.Recipe, error)
	Create(ctx context.Context, userID uint, req *types.RecipeRequest) (*models.Recipe, error)
	Update(ctx context.Context, userID, id uint, req *types.RecipeRequest, partial bool) (*models.Recipe, error)
	Delete(ctx context.Context, userID, id uint) error
	UploadImage(ctx context.Context, userID, id uint, data []byte) (*models.Recipe, error)
	ImageURL(recipe *models.Recipe) string
}

// IAttributeService defines the interface for tag and ingredient operations
type IAttributeService interface {
	Kind() models.AttrKind
	List(ctx context.Context, userID uint, assignedOnly bool) ([]models.Attribute, error)
	Update(ctx context.Context, userID, id uint, req *types.AttrRequest, partial bool) (*models.Attribute, error)
	Delete(ctx context.Context, userID, id uint) error
}

var (
	_ IAuthService      = (*AuthService)(nil)
	_ IRecipeService    = (*RecipeService)(nil)
	_ IAttributeService = (*AttributeService)(nil)
)
