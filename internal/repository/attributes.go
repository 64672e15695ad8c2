package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/darkinowls/recipe-app-api/internal/models"
)

// ListAttrs returns the user's tags or ingredients ordered by name
// descending. With assignedOnly set, only rows attached to at least one of
// the user's recipes are returned, each once.
func (s *Store) ListAttrs(ctx context.Context, kind models.AttrKind, userID uint, assignedOnly bool) ([]models.Attribute, error) {
	q := s.db.WithContext(ctx).Table(kind.Table).Where("user_id = ?", userID)
	if assignedOnly {
		q = q.Where(fmt.Sprintf(
			"id IN (SELECT j.%s FROM %s j JOIN recipes r ON r.id = j.recipe_id WHERE r.user_id = ?)",
			kind.JoinColumn, kind.JoinTable,
		), userID)
	}

	attrs := []models.Attribute{}
	if err := q.Order("name DESC").Find(&attrs).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Table, err)
	}
	return attrs, nil
}

func (s *Store) GetAttr(ctx context.Context, kind models.AttrKind, userID, id uint) (*models.Attribute, error) {
	var attr models.Attribute
	err := s.db.WithContext(ctx).Table(kind.Table).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&attr).Error
	if err != nil {
		return nil, translate(err)
	}
	return &attr, nil
}

// RenameAttr changes the name of an owned row. Renaming onto a name the
// user already has yields ErrDuplicate.
func (s *Store) RenameAttr(ctx context.Context, kind models.AttrKind, userID, id uint, name string) (*models.Attribute, error) {
	attr, err := s.GetAttr(ctx, kind, userID, id)
	if err != nil {
		return nil, err
	}
	if attr.Name == name {
		return attr, nil
	}

	err = s.db.WithContext(ctx).Table(kind.Table).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name).Error
	if err != nil {
		return nil, translate(err)
	}
	attr.Name = name
	return attr, nil
}

// DeleteAttr removes an owned row and its recipe associations. Recipes are
// left in place.
func (s *Store) DeleteAttr(ctx context.Context, kind models.AttrKind, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table(kind.Table).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", kind.JoinTable, kind.JoinColumn), id).Error; err != nil {
			return err
		}
		return tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", kind.Table), id).Error
	})
}

// GetOrCreateAttrs resolves names to the user's rows, inserting the missing
// ones. Concurrent inserts of the same name are absorbed by the
// (user_id, name) unique index. It reports how many rows were inserted.
func (s *Store) GetOrCreateAttrs(ctx context.Context, kind models.AttrKind, userID uint, names []string) ([]models.Attribute, int, error) {
	names = uniqueNames(names)
	if len(names) == 0 {
		return []models.Attribute{}, 0, nil
	}
	db := s.db.WithContext(ctx)

	existing, err := findAttrsByName(db, kind, userID, names)
	if err != nil {
		return nil, 0, err
	}
	if len(existing) == len(names) {
		return existing, 0, nil
	}

	have := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		have[a.Name] = struct{}{}
	}
	var missing []models.Attribute
	for _, name := range names {
		if _, ok := have[name]; !ok {
			missing = append(missing, models.Attribute{UserID: userID, Name: name})
		}
	}

	res := db.Table(kind.Table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(&missing)
	if res.Error != nil {
		return nil, 0, fmt.Errorf("insert %s: %w", kind.Table, res.Error)
	}

	resolved, err := findAttrsByName(db, kind, userID, names)
	if err != nil {
		return nil, 0, err
	}
	if len(resolved) != len(names) {
		return nil, 0, fmt.Errorf("resolve %s: expected %d rows, found %d", kind.Table, len(names), len(resolved))
	}
	return resolved, int(res.RowsAffected), nil
}

func findAttrsByName(db *gorm.DB, kind models.AttrKind, userID uint, names []string) ([]models.Attribute, error) {
	attrs := []models.Attribute{}
	err := db.Table(kind.Table).
		Where("user_id = ? AND name IN ?", userID, names).
		Order("id").
		Find(&attrs).Error
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind.Table, err)
	}
	return attrs, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
