package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/cvorganizer/internal/domain"
)

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = errors.New("not found")

// TemplateRepo stores template headers. The tree and groups of a template
// live in LayoutRepo.
type TemplateRepo interface {
	Create(ctx context.Context, t *domain.Template) error
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	GetByName(ctx context.Context, name string) (*domain.Template, error)
	List(ctx context.Context) ([]*domain.Template, error)
	Update(ctx context.Context, t *domain.Template) error
	Delete(ctx context.Context, id string) error
}

// LayoutRepo replaces and loads the organizer state of one template.
// Save methods overwrite the previous layout completely.
type LayoutRepo interface {
	SaveTree(ctx context.Context, templateID string, tree []domain.Item) error
	LoadTree(ctx context.Context, templateID string) ([]domain.Item, error)
	SaveGroups(ctx context.Context, templateID string, groups []domain.Group) error
	LoadGroups(ctx context.Context, templateID string) ([]domain.Group, error)
}
