package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/cvorganizer/internal/db"
	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/alexanderramin/cvorganizer/internal/organizer"
	"github.com/alexanderramin/cvorganizer/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type organizerService struct {
	uow      db.UnitOfWork
	settings Settings
	log      *zap.Logger
	observer UseCaseObserver
}

func NewOrganizerService(uow db.UnitOfWork, settings Settings, log *zap.Logger, observers ...UseCaseObserver) OrganizerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &organizerService{
		uow:      uow,
		settings: settings,
		log:      log,
		observer: useCaseObserverOrNoop(observers),
	}
}

// mutation applies one organizer operation and reports whether it changed
// anything, plus a payload describing the change.
type mutation func(o *organizer.Organizer) (bool, map[string]any, error)

func (s *organizerService) Snapshot(ctx context.Context, ref string) (snap *Snapshot, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observe(ctx, s.observer, "organizer.snapshot", startedAt, map[string]any{"ref": ref}, err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		t, err := resolveTemplate(ctx, repository.NewSQLiteTemplateRepo(tx), ref)
		if err != nil {
			return err
		}
		if err := loadLayout(ctx, repository.NewSQLiteLayoutRepo(tx), t); err != nil {
			return err
		}
		o, err := newOrganizer(t, s.settings, s.log)
		if err != nil {
			return err
		}
		t.Tree = o.Tree()
		t.Groups = o.Store().Groups()
		snap = &Snapshot{Template: t, View: o.FlattenedView(), Groups: t.Groups}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *organizerService) MoveSection(ctx context.Context, ref, sectionID, groupID string) (*MutationResult, error) {
	fields := map[string]any{"section_id": sectionID, "group_id": groupID}
	return s.mutate(ctx, "organizer.move_section", ref, fields, storeMutation(func(o *organizer.Organizer) (organizer.StoreResult, error) {
		return o.MoveSection(sectionID, groupID)
	}))
}

func (s *organizerService) RemoveSection(ctx context.Context, ref, sectionID string) (*MutationResult, error) {
	fields := map[string]any{"section_id": sectionID}
	return s.mutate(ctx, "organizer.remove_section", ref, fields, storeMutation(func(o *organizer.Organizer) (organizer.StoreResult, error) {
		return o.RemoveSection(sectionID)
	}))
}

func (s *organizerService) ToggleRowCount(ctx context.Context, ref, sectionID string, value bool) (*MutationResult, error) {
	fields := map[string]any{"section_id": sectionID, "value": value}
	return s.mutate(ctx, "organizer.toggle_row_count", ref, fields, storeMutation(func(o *organizer.Organizer) (organizer.StoreResult, error) {
		return o.ToggleRowCount(sectionID, value)
	}))
}

// AddSection appends a new section to a group. An empty title defaults to
// the section ID.
func (s *organizerService) AddSection(ctx context.Context, ref, groupID string, section domain.PreparedSection) (*MutationResult, error) {
	if strings.TrimSpace(section.Title) == "" {
		section.Title = section.DataSectionID
	}
	fields := map[string]any{"group_id": groupID, "section_id": section.DataSectionID}
	return s.mutate(ctx, "organizer.add_section", ref, fields, storeMutation(func(o *organizer.Organizer) (organizer.StoreResult, error) {
		return o.AddSection(groupID, section)
	}))
}

func (s *organizerService) ReorderSection(ctx context.Context, ref, sectionID string, index int) (*MutationResult, error) {
	fields := map[string]any{"section_id": sectionID, "index": index}
	return s.mutate(ctx, "organizer.reorder_section", ref, fields, storeMutation(func(o *organizer.Organizer) (organizer.StoreResult, error) {
		return o.ReorderSection(sectionID, index)
	}))
}

// CreateGroup adds a group before the hidden group. An empty groupID gets a
// generated one.
func (s *organizerService) CreateGroup(ctx context.Context, ref, groupID, name string) (*MutationResult, error) {
	if strings.TrimSpace(groupID) == "" {
		groupID = uuid.New().String()
	}
	fields := map[string]any{"group_id": groupID, "name": name}
	return s.mutate(ctx, "organizer.create_group", ref, fields, storeMutation(func(o *organizer.Organizer) (organizer.StoreResult, error) {
		return o.CreateGroup(groupID, name)
	}))
}

func (s *organizerService) RenameGroup(ctx context.Context, ref, groupID, name string) (*MutationResult, error) {
	fields := map[string]any{"group_id": groupID, "name": name}
	return s.mutate(ctx, "organizer.rename_group", ref, fields, storeMutation(func(o *organizer.Organizer) (organizer.StoreResult, error) {
		return o.RenameGroup(groupID, name)
	}))
}

func (s *organizerService) DeleteGroup(ctx context.Context, ref, groupID string) (*MutationResult, error) {
	fields := map[string]any{"group_id": groupID}
	return s.mutate(ctx, "organizer.delete_group", ref, fields, storeMutation(func(o *organizer.Organizer) (organizer.StoreResult, error) {
		return o.DeleteGroup(groupID)
	}))
}

func (s *organizerService) MoveItem(ctx context.Context, ref string, req MoveItemRequest) (*MutationResult, error) {
	fields := map[string]any{"active_id": req.ActiveID, "over_index": req.OverIndex, "offset": req.Offset}
	return s.mutate(ctx, "organizer.move_item", ref, fields, func(o *organizer.Organizer) (bool, map[string]any, error) {
		res, err := o.MoveItem(req.ActiveID, req.OverIndex, req.Offset)
		if err != nil {
			return false, nil, err
		}
		if !res.Changed || res.Projection == nil {
			return false, nil, nil
		}
		return true, map[string]any{
			"item":      req.ActiveID,
			"depth":     res.Projection.Depth,
			"parent_id": res.Projection.ParentOrEmpty(),
		}, nil
	})
}

func (s *organizerService) ToggleCollapsed(ctx context.Context, ref, itemID string) (*MutationResult, error) {
	fields := map[string]any{"item_id": itemID}
	return s.mutate(ctx, "organizer.toggle_collapsed", ref, fields, func(o *organizer.Organizer) (bool, map[string]any, error) {
		collapsed, err := o.ToggleCollapsed(itemID)
		if err != nil {
			return false, nil, err
		}
		return true, map[string]any{"item": itemID, "collapsed": collapsed}, nil
	})
}

// SaveLayout replaces the stored layout with tree and groups after checking
// them the same way a loaded layout is checked.
func (s *organizerService) SaveLayout(ctx context.Context, ref string, tree []domain.Item, groups []domain.Group) (*MutationResult, error) {
	fields := map[string]any{"items": domain.CountItems(tree), "groups": len(groups)}
	return s.mutate(ctx, "organizer.save_layout", ref, fields, func(o *organizer.Organizer) (bool, map[string]any, error) {
		next, err := organizer.New(tree, groups, organizer.WithIndentWidth(o.IndentWidth()))
		if err != nil {
			return false, nil, err
		}
		*o = *next
		return true, map[string]any{"items": domain.CountItems(tree)}, nil
	})
}

func storeMutation(fn func(o *organizer.Organizer) (organizer.StoreResult, error)) mutation {
	return func(o *organizer.Organizer) (bool, map[string]any, error) {
		res, err := fn(o)
		if err != nil {
			return false, nil, err
		}
		return res.Changed, res.Payload, nil
	}
}

// mutate loads the template layout, applies fn and saves the result in one
// transaction. Nothing is written when fn reports no change.
func (s *organizerService) mutate(ctx context.Context, name, ref string, fields map[string]any, fn mutation) (result *MutationResult, err error) {
	startedAt := time.Now().UTC()
	fields["ref"] = ref
	defer func() {
		if result != nil {
			fields["changed"] = result.Changed
		}
		observe(ctx, s.observer, name, startedAt, fields, err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		templates := repository.NewSQLiteTemplateRepo(tx)
		layout := repository.NewSQLiteLayoutRepo(tx)

		t, err := resolveTemplate(ctx, templates, ref)
		if err != nil {
			return err
		}
		if err := loadLayout(ctx, layout, t); err != nil {
			return err
		}
		o, err := newOrganizer(t, s.settings, s.log.With(zap.String("template_id", t.ID)))
		if err != nil {
			return fmt.Errorf("loading organizer: %w", err)
		}

		changed, payload, err := fn(o)
		if err != nil {
			return err
		}
		t.Tree = o.Tree()
		t.Groups = o.Store().Groups()
		result = &MutationResult{Template: t, Changed: changed, Payload: payload}
		if !changed {
			return nil
		}

		t.UpdatedAt = time.Now().UTC()
		if err := templates.Update(ctx, t); err != nil {
			return err
		}
		return saveLayout(ctx, layout, t)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
