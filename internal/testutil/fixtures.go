package testutil

import (
	"time"

	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/google/uuid"
)

type TemplateOption func(*domain.Template)

func WithDescription(d string) TemplateOption {
	return func(t *domain.Template) {
		t.Description = d
	}
}

func WithTree(items ...domain.Item) TemplateOption {
	return func(t *domain.Template) {
		t.Tree = items
	}
}

func WithGroups(groups ...domain.Group) TemplateOption {
	return func(t *domain.Template) {
		t.Groups = groups
	}
}

// NewTestTemplate returns a template with a fresh UUID and no layout.
func NewTestTemplate(name string, opts ...TemplateOption) *domain.Template {
	now := time.Now().UTC().Truncate(time.Second)
	t := &domain.Template{
		ID:        uuid.New().String(),
		Name:      name,
		Tree:      []domain.Item{},
		Groups:    []domain.Group{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GroupItem builds a tree container.
func GroupItem(id, name string, children ...domain.Item) domain.Item {
	if children == nil {
		children = []domain.Item{}
	}
	return domain.Item{ID: id, Name: name, Kind: domain.ItemGroup, Children: children}
}

// Leaf builds a table/section node of the tree.
func Leaf(id, name string) domain.Item {
	return domain.Item{ID: id, Name: name, Kind: domain.ItemLeaf, Children: []domain.Item{}}
}

func Group(id, name string, sections ...domain.PreparedSection) domain.Group {
	if sections == nil {
		sections = []domain.PreparedSection{}
	}
	return domain.Group{ID: id, Name: name, Sections: sections}
}

type SectionOption func(*domain.PreparedSection)

func WithRowCount() SectionOption {
	return func(s *domain.PreparedSection) {
		s.ShowRowCount = true
	}
}

func WithMetadata(m map[string]any) SectionOption {
	return func(s *domain.PreparedSection) {
		s.Metadata = m
	}
}

func Section(id, title string, opts ...SectionOption) domain.PreparedSection {
	s := domain.PreparedSection{DataSectionID: id, Title: title}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// SampleCV is a small faculty CV template used across package tests:
// two tree groups and three sections spread over a visible and the hidden group.
func SampleCV(name string) *domain.Template {
	return NewTestTemplate(name,
		WithDescription("Annual faculty report"),
		WithTree(
			GroupItem("teaching", "Teaching", Leaf("courses", "Courses"), Leaf("advising", "Advising")),
			GroupItem("research", "Research", Leaf("grants", "Grants")),
		),
		WithGroups(
			Group("main", "Main",
				Section("s-courses", "Courses taught", WithRowCount()),
				Section("s-grants", "Grants", WithMetadata(map[string]any{"source": "osp"})),
			),
			Group(domain.HiddenGroupID, domain.HiddenGroupName, Section("s-awards", "Awards")),
		),
	)
}
