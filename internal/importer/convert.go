package importer

import (
	"maps"
	"time"

	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/google/uuid"
)

// Convert turns a validated schema into a new template with a fresh ID.
// Call ValidateTemplateSchema first; Convert assumes the schema is valid.
// The hidden group is not seeded here.
func Convert(schema *TemplateSchema) *domain.Template {
	now := time.Now().UTC()
	t := &domain.Template{
		ID:          uuid.New().String(),
		Name:        schema.Template.Name,
		Description: schema.Template.Description,
		Tree:        convertItems(schema.Tree),
		Groups:      make([]domain.Group, 0, len(schema.Groups)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, g := range schema.Groups {
		name := g.Name
		if name == "" && g.ID == domain.HiddenGroupID {
			name = domain.HiddenGroupName
		}
		group := domain.Group{ID: g.ID, Name: name, Sections: make([]domain.PreparedSection, 0, len(g.Sections))}
		for _, s := range g.Sections {
			group.Sections = append(group.Sections, domain.PreparedSection{
				DataSectionID: s.ID,
				Title:         s.Title,
				ShowRowCount:  s.ShowRowCount,
				Metadata:      maps.Clone(s.Metadata),
			})
		}
		t.Groups = append(t.Groups, group)
	}
	return t
}

func convertItems(items []ItemImport) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		kind := domain.ItemKind(it.Kind)
		if kind == "" {
			kind = domain.ItemLeaf
			if len(it.Children) > 0 {
				kind = domain.ItemGroup
			}
		}
		out = append(out, domain.Item{
			ID:        it.ID,
			Name:      it.Name,
			Kind:      kind,
			Collapsed: it.Collapsed,
			Children:  convertItems(it.Children),
		})
	}
	return out
}

// FromTemplate is the inverse of Convert, used for export.
func FromTemplate(t *domain.Template) *TemplateSchema {
	schema := &TemplateSchema{
		Template: TemplateHeader{Name: t.Name, Description: t.Description},
		Tree:     exportItems(t.Tree),
		Groups:   make([]GroupImport, 0, len(t.Groups)),
	}
	for _, g := range t.Groups {
		gi := GroupImport{ID: g.ID, Name: g.Name}
		for _, s := range g.Sections {
			gi.Sections = append(gi.Sections, SectionImport{
				ID:           s.DataSectionID,
				Title:        s.Title,
				ShowRowCount: s.ShowRowCount,
				Metadata:     maps.Clone(s.Metadata),
			})
		}
		schema.Groups = append(schema.Groups, gi)
	}
	return schema
}

func exportItems(items []domain.Item) []ItemImport {
	if len(items) == 0 {
		return nil
	}
	out := make([]ItemImport, 0, len(items))
	for _, it := range items {
		out = append(out, ItemImport{
			ID:        it.ID,
			Name:      it.Name,
			Kind:      string(it.Kind),
			Collapsed: it.Collapsed,
			Children:  exportItems(it.Children),
		})
	}
	return out
}
