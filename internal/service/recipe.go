package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/darkinowls/recipe-app-api/internal/metrics"
	"github.com/darkinowls/recipe-app-api/internal/models"
	"github.com/darkinowls/recipe-app-api/internal/repository"
	"github.com/darkinowls/recipe-app-api/internal/storage"
	"github.com/darkinowls/recipe-app-api/internal/types"
)

const maxNameLength = 255

// RecipeService handles recipe operations. Nested tags and ingredients are
// matched by name against the owner's rows and created when missing.
type RecipeService struct {
	repo  repository.Repository
	media storage.Backend
}

func NewRecipeService(repo repository.Repository, media storage.Backend) *RecipeService {
	return &RecipeService{repo: repo, media: media}
}

func (s *RecipeService) List(ctx context.Context, userID uint, filter repository.RecipeFilter) ([]models.Recipe, error) {
	return s.repo.ListRecipes(ctx, userID, filter)
}

func (s *RecipeService) Get(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	return s.repo.GetRecipe(ctx, userID, id)
}

// Create stores a new recipe. Absent nested lists attach nothing.
func (s *RecipeService) Create(ctx context.Context, userID uint, req *types.RecipeRequest) (*models.Recipe, error) {
	tags, ingredients, err := validateRecipe(req, false)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{UserID: userID}
	applyRecipeFields(recipe, req)

	var created reconcileResult
	err = s.repo.InTx(ctx, func(tx repository.Repository) error {
		if err := tx.CreateRecipe(ctx, recipe); err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		created, err = reconcile(ctx, tx, recipe, tags, ingredients)
		return err
	})
	if err != nil {
		return nil, err
	}
	created.record()

	slog.Info("recipe created", "recipe_id", recipe.ID, "user_id", userID)
	return s.repo.GetRecipe(ctx, userID, recipe.ID)
}

// Update changes an owned recipe. A full update treats absent nested lists
// as empty; a partial update leaves them untouched. A provided list always
// replaces the association set.
func (s *RecipeService) Update(ctx context.Context, userID, id uint, req *types.RecipeRequest, partial bool) (*models.Recipe, error) {
	tags, ingredients, err := validateRecipe(req, partial)
	if err != nil {
		return nil, err
	}
	if !partial {
		if tags == nil {
			tags = []string{}
		}
		if ingredients == nil {
			ingredients = []string{}
		}
	}

	var created reconcileResult
	err = s.repo.InTx(ctx, func(tx repository.Repository) error {
		recipe, err := tx.GetRecipe(ctx, userID, id)
		if err != nil {
			return err
		}
		applyRecipeFields(recipe, req)
		if err := tx.UpdateRecipe(ctx, recipe); err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		created, err = reconcile(ctx, tx, recipe, tags, ingredients)
		return err
	})
	if err != nil {
		return nil, err
	}
	created.record()

	return s.repo.GetRecipe(ctx, userID, id)
}

// Delete removes an owned recipe and releases its image. Tags and
// ingredients are kept.
func (s *RecipeService) Delete(ctx context.Context, userID, id uint) error {
	recipe, err := s.repo.DeleteRecipe(ctx, userID, id)
	if err != nil {
		return err
	}
	s.releaseImage(ctx, recipe.Image)
	slog.Info("recipe deleted", "recipe_id", id, "user_id", userID)
	return nil
}

// UploadImage validates data as an image, stores it under a fresh key and
// replaces the recipe's previous image.
func (s *RecipeService) UploadImage(ctx context.Context, userID, id uint, data []byte) (*models.Recipe, error) {
	recipe, err := s.repo.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	ext, contentType, err := DetectImage(data)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("rejected").Inc()
		slog.Debug("rejected image upload", "recipe_id", id, "error", err)
		return nil, NewValidationError("image", ErrInvalidImage.Error())
	}

	key := storage.RecipeImageKey(ext)
	if err := s.media.Save(ctx, key, data, contentType); err != nil {
		metrics.ImageUploads.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("store image: %w", err)
	}
	if err := s.repo.SetRecipeImage(ctx, userID, id, key); err != nil {
		s.releaseImage(ctx, key)
		metrics.ImageUploads.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.ImageUploads.WithLabelValues("stored").Inc()

	s.releaseImage(ctx, recipe.Image)
	recipe.Image = key
	return recipe, nil
}

// ImageURL returns the public URL of the recipe image, or "" without one.
func (s *RecipeService) ImageURL(recipe *models.Recipe) string {
	if recipe.Image == "" {
		return ""
	}
	return s.media.URL(recipe.Image)
}

func (s *RecipeService) releaseImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete image", "key", key, "error", err)
	}
}

// applyRecipeFields copies the fields present in req. Absent optional fields
// keep their stored value on both full and partial updates.
func applyRecipeFields(r *models.Recipe, req *types.RecipeRequest) {
	if req.Title != nil {
		r.Title = strings.TrimSpace(*req.Title)
	}
	if req.TimeMinutes != nil {
		r.TimeMinutes = *req.TimeMinutes
	}
	if req.Price != nil {
		r.Price = *req.Price
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.Link != nil {
		r.Link = strings.TrimSpace(*req.Link)
	}
}

// validateRecipe checks the scalar fields and normalises the nested name
// lists. A nil list in the result means the field was absent.
func validateRecipe(req *types.RecipeRequest, partial bool) (tags, ingredients []string, err error) {
	verr := &ValidationError{}

	if req.Title == nil {
		if !partial {
			verr.Add("title", "this field is required")
		}
	} else if strings.TrimSpace(*req.Title) == "" {
		verr.Add("title", "this field may not be blank")
	}

	if req.TimeMinutes == nil {
		if !partial {
			verr.Add("time_minutes", "this field is required")
		}
	} else if *req.TimeMinutes < 0 {
		verr.Add("time_minutes", "ensure this value is greater than or equal to 0")
	}

	if req.Price == nil {
		if !partial {
			verr.Add("price", "this field is required")
		}
	} else if *req.Price < 0 || *req.Price > models.MaxPrice {
		verr.Add("price", "ensure this value is between 0 and "+models.MaxPrice.String())
	}

	tags = normalizeNames("tags", types.Names(req.Tags), verr)
	ingredients = normalizeNames("ingredients", types.Names(req.Ingredients), verr)

	if err := verr.OrNil(); err != nil {
		return nil, nil, err
	}
	return tags, ingredients, nil
}

// normalizeNames trims names and collapses duplicates, preserving the
// nil-ness of names.
func normalizeNames(field string, names []string, verr *ValidationError) []string {
	if names == nil {
		return nil
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		switch {
		case name == "":
			verr.Add(field, "name may not be blank")
			continue
		case len(name) > maxNameLength:
			verr.Add(field, fmt.Sprintf("name must be at most %d characters", maxNameLength))
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

type reconcileResult struct {
	tagsCreated        int
	ingredientsCreated int
	tagsRewritten      bool
	ingredsRewritten   bool
}

func (r reconcileResult) record() {
	if r.tagsRewritten {
		metrics.Reconciliations.WithLabelValues(models.TagKind.Name).Inc()
		metrics.AttributesCreated.WithLabelValues(models.TagKind.Name).Add(float64(r.tagsCreated))
	}
	if r.ingredsRewritten {
		metrics.Reconciliations.WithLabelValues(models.IngredientKind.Name).Inc()
		metrics.AttributesCreated.WithLabelValues(models.IngredientKind.Name).Add(float64(r.ingredientsCreated))
	}
}

// reconcile rewrites the association sets whose name list is non-nil. It
// must run inside the caller's transaction.
func reconcile(ctx context.Context, tx repository.Repository, recipe *models.Recipe, tags, ingredients []string) (reconcileResult, error) {
	var res reconcileResult
	var err error
	if tags != nil {
		res.tagsCreated, err = reconcileKind(ctx, tx, models.TagKind, recipe, tags)
		if err != nil {
			return res, err
		}
		res.tagsRewritten = true
	}
	if ingredients != nil {
		res.ingredientsCreated, err = reconcileKind(ctx, tx, models.IngredientKind, recipe, ingredients)
		if err != nil {
			return res, err
		}
		res.ingredsRewritten = true
	}
	return res, nil
}

func reconcileKind(ctx context.Context, tx repository.Repository, kind models.AttrKind, recipe *models.Recipe, names []string) (int, error) {
	attrs, created, err := tx.GetOrCreateAttrs(ctx, kind, recipe.UserID, names)
	if err != nil {
		return 0, err
	}
	ids := make([]uint, len(attrs))
	for i, a := range attrs {
		if a.UserID != recipe.UserID {
			return 0, errors.New("resolved " + kind.Name + " belongs to another user")
		}
		ids[i] = a.ID
	}
	if err := tx.ReplaceRecipeAttrs(ctx, kind, recipe.ID, ids); err != nil {
		return 0, err
	}
	return created, nil
}
