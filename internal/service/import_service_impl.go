package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/cvorganizer/internal/db"
	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/alexanderramin/cvorganizer/internal/importer"
	"github.com/alexanderramin/cvorganizer/internal/repository"
	"go.uber.org/zap"
)

type importService struct {
	uow      db.UnitOfWork
	settings Settings
	log      *zap.Logger
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, settings Settings, log *zap.Logger, observers ...UseCaseObserver) ImportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &importService{
		uow:      uow,
		settings: settings,
		log:      log,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	schema, err := importer.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return s.ImportSchema(ctx, schema)
}

// ImportSchema validates the schema, normalises the layout through the
// organizer and writes the template in one transaction.
func (s *importService) ImportSchema(ctx context.Context, schema *importer.TemplateSchema) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		if result != nil {
			fields["template_id"] = result.Template.ID
			fields["items"] = result.ItemCount
			fields["sections"] = result.SectionCount
		}
		observe(ctx, s.observer, "template.import", startedAt, fields, err)
	}()

	if schema == nil {
		return nil, fmt.Errorf("import schema is required")
	}
	fields["name"] = schema.Template.Name
	if errs := importer.ValidateTemplateSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	t := importer.Convert(schema)
	o, err := newOrganizer(t, s.settings, s.log)
	if err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	t.Tree = o.Tree()
	t.Groups = o.Store().Groups()

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

	return &ImportResult{
		Template:     t,
		ItemCount:    domain.CountItems(t.Tree),
		GroupCount:   len(t.Groups),
		SectionCount: o.Store().SectionCount(),
	}, nil
}
