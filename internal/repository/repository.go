// Package repository holds the gorm persistence for users, recipes and the
// per-user tag and ingredient tables.
package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/darkinowls/recipe-app-api/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// RecipeFilter restricts a recipe listing. A nil id list means no
// restriction on that field.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// Repository is the persistence surface the services depend on.
type Repository interface {
	InTx(ctx context.Context, fn func(tx Repository) error) error
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	RecordLogin(ctx context.Context, id uint) error
	ListUsers(ctx context.Context) ([]models.User, error)

	ListAttrs(ctx context.Context, kind models.AttrKind, userID uint, assignedOnly bool) ([]models.Attribute, error)
	GetAttr(ctx context.Context, kind models.AttrKind, userID, id uint) (*models.Attribute, error)
	RenameAttr(ctx context.Context, kind models.AttrKind, userID, id uint, name string) (*models.Attribute, error)
	DeleteAttr(ctx context.Context, kind models.AttrKind, userID, id uint) error
	GetOrCreateAttrs(ctx context.Context, kind models.AttrKind, userID uint, names []string) ([]models.Attribute, int, error)

	ListRecipes(ctx context.Context, userID uint, filter RecipeFilter) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	UpdateRecipe(ctx context.Context, recipe *models.Recipe) error
	ReplaceRecipeAttrs(ctx context.Context, kind models.AttrKind, recipeID uint, attrIDs []uint) error
	SetRecipeImage(ctx context.Context, userID, id uint, key string) error
	DeleteRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error)
}

// Store implements Repository on top of gorm.
type Store struct {
	db *gorm.DB
}

var _ Repository = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn against a Store bound to a single transaction. Returning an
// error from fn rolls everything back.
func (s *Store) InTx(ctx context.Context, fn func(tx Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicate(err):
		return ErrDuplicate
	default:
		return err
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
