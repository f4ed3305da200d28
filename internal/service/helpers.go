package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/alexanderramin/cvorganizer/internal/organizer"
	"github.com/alexanderramin/cvorganizer/internal/repository"
	"go.uber.org/zap"
)

// ErrAmbiguousRef is returned when an ID prefix matches several templates.
var ErrAmbiguousRef = errors.New("ambiguous template reference")

// ErrNameTaken is returned when a template name is already used.
var ErrNameTaken = errors.New("template name already in use")

const minPrefixLen = 4

// resolveTemplate finds a template by full ID, then by name, then by a
// unique ID prefix of at least four characters.
func resolveTemplate(ctx context.Context, templates repository.TemplateRepo, ref string) (*domain.Template, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("template reference is required: %w", repository.ErrNotFound)
	}

	t, err := templates.GetByID(ctx, ref)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	t, err = templates.GetByName(ctx, ref)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if len(ref) >= minPrefixLen {
		all, err := templates.List(ctx)
		if err != nil {
			return nil, err
		}
		var match *domain.Template
		for _, cand := range all {
			if strings.HasPrefix(cand.ID, ref) {
				if match != nil {
					return nil, fmt.Errorf("template %q: %w", ref, ErrAmbiguousRef)
				}
				match = cand
			}
		}
		if match != nil {
			return match, nil
		}
	}
	return nil, fmt.Errorf("template %q: %w", ref, repository.ErrNotFound)
}

func loadLayout(ctx context.Context, layout repository.LayoutRepo, t *domain.Template) error {
	tree, err := layout.LoadTree(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("loading tree: %w", err)
	}
	groups, err := layout.LoadGroups(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("loading groups: %w", err)
	}
	t.Tree = tree
	t.Groups = groups
	return nil
}

func saveLayout(ctx context.Context, layout repository.LayoutRepo, t *domain.Template) error {
	if err := layout.SaveTree(ctx, t.ID, t.Tree); err != nil {
		return fmt.Errorf("saving tree: %w", err)
	}
	if err := layout.SaveGroups(ctx, t.ID, t.Groups); err != nil {
		return fmt.Errorf("saving groups: %w", err)
	}
	return nil
}

// newOrganizer builds the façade for a template. A hidden group seeded by
// the store takes the configured display name.
func newOrganizer(t *domain.Template, settings Settings, log *zap.Logger) (*organizer.Organizer, error) {
	o, err := organizer.New(t.Tree, t.Groups,
		organizer.WithIndentWidth(settings.IndentWidth),
		organizer.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if !hasHiddenGroup(t.Groups) && settings.HiddenGroupName != "" && settings.HiddenGroupName != domain.HiddenGroupName {
		if _, err := o.RenameGroup(domain.HiddenGroupID, settings.HiddenGroupName); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func hasHiddenGroup(groups []domain.Group) bool {
	for _, g := range groups {
		if g.IsHidden() {
			return true
		}
	}
	return false
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
