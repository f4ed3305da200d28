package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/cvorganizer/internal/db"
	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/alexanderramin/cvorganizer/internal/importer"
	"github.com/alexanderramin/cvorganizer/internal/organizer"
	"github.com/alexanderramin/cvorganizer/internal/repository"
	"github.com/google/uuid"
)

type templateService struct {
	uow      db.UnitOfWork
	settings Settings
	observer UseCaseObserver
}

func NewTemplateService(uow db.UnitOfWork, settings Settings, observers ...UseCaseObserver) TemplateService {
	return &templateService{
		uow:      uow,
		settings: settings,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Create stores an empty template whose only group is the hidden group.
func (s *templateService) Create(ctx context.Context, name, description string) (t *domain.Template, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observe(ctx, s.observer, "template.create", startedAt, map[string]any{"name": name}, err)
	}()

	now := time.Now().UTC()
	t = &domain.Template{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Tree:        []domain.Item{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.ValidateName(); err != nil {
		return nil, err
	}

	store, err := organizer.NewGroupStore(nil)
	if err != nil {
		return nil, err
	}
	if s.settings.HiddenGroupName != "" {
		res, err := store.RenameGroup(domain.HiddenGroupID, s.settings.HiddenGroupName)
		if err != nil {
			return nil, err
		}
		store = res.Store
	}
	t.Groups = store.Groups()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		templates := repository.NewSQLiteTemplateRepo(tx)
		if _, err := templates.GetByName(ctx, t.Name); err == nil {
			return fmt.Errorf("%q: %w", t.Name, ErrNameTaken)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := templates.Create(ctx, t); err != nil {
			return err
		}
		return saveLayout(ctx, repository.NewSQLiteLayoutRepo(tx), t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Get resolves ref and loads the template's tree and groups.
func (s *templateService) Get(ctx context.Context, ref string) (t *domain.Template, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observe(ctx, s.observer, "template.get", startedAt, map[string]any{"ref": ref}, err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		found, err := resolveTemplate(ctx, repository.NewSQLiteTemplateRepo(tx), ref)
		if err != nil {
			return err
		}
		if err := loadLayout(ctx, repository.NewSQLiteLayoutRepo(tx), found); err != nil {
			return err
		}
		t = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns template headers without their layouts.
func (s *templateService) List(ctx context.Context) (out []*domain.Template, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observe(ctx, s.observer, "template.list", startedAt, map[string]any{"count": len(out)}, err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		list, err := repository.NewSQLiteTemplateRepo(tx).List(ctx)
		out = list
		return err
	})
	return out, err
}

func (s *templateService) Delete(ctx context.Context, ref string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observe(ctx, s.observer, "template.delete", startedAt, map[string]any{"ref": ref}, err)
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		templates := repository.NewSQLiteTemplateRepo(tx)
		t, err := resolveTemplate(ctx, templates, ref)
		if err != nil {
			return err
		}
		return templates.Delete(ctx, t.ID)
	})
}

// Export returns the template in import-schema form, so that importing the
// result reproduces the layout under a new ID.
func (s *templateService) Export(ctx context.Context, ref string) (*importer.TemplateSchema, error) {
	t, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return importer.FromTemplate(t), nil
}
