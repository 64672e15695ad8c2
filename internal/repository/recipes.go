package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/darkinowls/recipe-app-api/internal/models"
)

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func withAttrs(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", orderByID).Preload("Ingredients", orderByID)
}

// ListRecipes returns the user's recipes, newest first. Each id list in
// filter matches recipes carrying any of the ids; both lists must match
// when both are set. A non-nil empty list matches nothing.
func (s *Store) ListRecipes(ctx context.Context, userID uint, filter RecipeFilter) ([]models.Recipe, error) {
	if (filter.TagIDs != nil && len(filter.TagIDs) == 0) || (filter.IngredientIDs != nil && len(filter.IngredientIDs) == 0) {
		return []models.Recipe{}, nil
	}

	q := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("recipes.user_id = ?", userID)
	if filter.TagIDs != nil {
		q = q.Where("recipes.id IN (SELECT recipe_id FROM recipe_tags WHERE tag_id IN ?)", filter.TagIDs)
	}
	if filter.IngredientIDs != nil {
		q = q.Where("recipes.id IN (SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id IN ?)", filter.IngredientIDs)
	}

	recipes := []models.Recipe{}
	if err := withAttrs(q).Order("recipes.id DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (s *Store) GetRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := withAttrs(s.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&recipe).Error
	if err != nil {
		return nil, translate(err)
	}
	return &recipe, nil
}

// CreateRecipe inserts the scalar columns only. Associations are written
// with ReplaceRecipeAttrs.
func (s *Store) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(recipe).Error
}

func (s *Store) UpdateRecipe(ctx context.Context, recipe *models.Recipe) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(recipe).Error
}

// ReplaceRecipeAttrs makes the recipe's associations of kind exactly attrIDs.
func (s *Store) ReplaceRecipeAttrs(ctx context.Context, kind models.AttrKind, recipeID uint, attrIDs []uint) error {
	db := s.db.WithContext(ctx)
	if err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE recipe_id = ?", kind.JoinTable), recipeID).Error; err != nil {
		return fmt.Errorf("clear %s: %w", kind.JoinTable, err)
	}
	if len(attrIDs) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(attrIDs))
	for _, id := range attrIDs {
		rows = append(rows, map[string]any{"recipe_id": recipeID, kind.JoinColumn: id})
	}
	err := db.Table(kind.JoinTable).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rows).Error
	if err != nil {
		return fmt.Errorf("insert %s: %w", kind.JoinTable, err)
	}
	return nil
}

func (s *Store) SetRecipeImage(ctx context.Context, userID, id uint, key string) error {
	res := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("image", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecipe removes the recipe and its join rows and returns the deleted
// record so the caller can release its image.
func (s *Store) DeleteRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).Take(&recipe).Error; err != nil {
			return translate(err)
		}
		for _, kind := range []models.AttrKind{models.TagKind, models.IngredientKind} {
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE recipe_id = ?", kind.JoinTable), id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
