package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/darkinowls/recipe-app-api/internal/models"
	"github.com/darkinowls/recipe-app-api/internal/repository"
	"github.com/darkinowls/recipe-app-api/internal/types"
)

// AttributeService manages one kind of per-user attribute (tags or
// ingredients).
type AttributeService struct {
	repo repository.Repository
	kind models.AttrKind
}

func NewAttributeService(repo repository.Repository, kind models.AttrKind) *AttributeService {
	return &AttributeService{repo: repo, kind: kind}
}

func (s *AttributeService) Kind() models.AttrKind {
	return s.kind
}

func (s *AttributeService) List(ctx context.Context, userID uint, assignedOnly bool) ([]models.Attribute, error) {
	return s.repo.ListAttrs(ctx, s.kind, userID, assignedOnly)
}

func (s *AttributeService) Get(ctx context.Context, userID, id uint) (*models.Attribute, error) {
	return s.repo.GetAttr(ctx, s.kind, userID, id)
}

// Update renames an owned attribute. A full update requires the name.
func (s *AttributeService) Update(ctx context.Context, userID, id uint, req *types.AttrRequest, partial bool) (*models.Attribute, error) {
	if req.Name == nil {
		if !partial {
			return nil, NewValidationError("name", "this field is required")
		}
		return s.repo.GetAttr(ctx, s.kind, userID, id)
	}

	name := strings.TrimSpace(*req.Name)
	if name == "" {
		return nil, NewValidationError("name", "this field may not be blank")
	}
	if len(name) > maxNameLength {
		return nil, NewValidationError("name", fmt.Sprintf("ensure this field has no more than %d characters", maxNameLength))
	}

	attr, err := s.repo.RenameAttr(ctx, s.kind, userID, id, name)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, NewValidationError("name", fmt.Sprintf("%s with this name already exists", s.kind.Name))
	}
	return attr, err
}

// Delete removes an owned attribute from every recipe and then deletes it.
func (s *AttributeService) Delete(ctx context.Context, userID, id uint) error {
	return s.repo.DeleteAttr(ctx, s.kind, userID, id)
}
