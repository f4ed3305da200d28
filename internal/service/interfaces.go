package service

import (
	"context"

	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/alexanderramin/cvorganizer/internal/importer"
)

// TemplateService manages template records. A template reference may be
// its full ID, a unique ID prefix, or its name.
type TemplateService interface {
	Create(ctx context.Context, name, description string) (*domain.Template, error)
	Get(ctx context.Context, ref string) (*domain.Template, error)
	List(ctx context.Context) ([]*domain.Template, error)
	Delete(ctx context.Context, ref string) error
	Export(ctx context.Context, ref string) (*importer.TemplateSchema, error)
}

// OrganizerService applies organizer operations to stored templates. Each
// mutation loads the layout, applies one operation and saves the result in
// a single transaction.
type OrganizerService interface {
	Snapshot(ctx context.Context, ref string) (*Snapshot, error)
	MoveSection(ctx context.Context, ref, sectionID, groupID string) (*MutationResult, error)
	RemoveSection(ctx context.Context, ref, sectionID string) (*MutationResult, error)
	ToggleRowCount(ctx context.Context, ref, sectionID string, value bool) (*MutationResult, error)
	AddSection(ctx context.Context, ref, groupID string, section domain.PreparedSection) (*MutationResult, error)
	ReorderSection(ctx context.Context, ref, sectionID string, index int) (*MutationResult, error)
	CreateGroup(ctx context.Context, ref, groupID, name string) (*MutationResult, error)
	RenameGroup(ctx context.Context, ref, groupID, name string) (*MutationResult, error)
	DeleteGroup(ctx context.Context, ref, groupID string) (*MutationResult, error)
	MoveItem(ctx context.Context, ref string, req MoveItemRequest) (*MutationResult, error)
	ToggleCollapsed(ctx context.Context, ref, itemID string) (*MutationResult, error)
	SaveLayout(ctx context.Context, ref string, tree []domain.Item, groups []domain.Group) (*MutationResult, error)
}

type ImportService interface {
	ImportFile(ctx context.Context, path string) (*ImportResult, error)
	ImportSchema(ctx context.Context, schema *importer.TemplateSchema) (*ImportResult, error)
}

// Settings carries the organizer options shared by the services.
type Settings struct {
	IndentWidth     float64
	HiddenGroupName string
}

func DefaultSettings() Settings {
	return Settings{IndentWidth: 50, HiddenGroupName: domain.HiddenGroupName}
}

// Snapshot is the organizer state of one template as a host view renders it.
type Snapshot struct {
	Template *domain.Template
	View     []domain.FlattenedItem
	Groups   []domain.Group
}

// MoveItemRequest describes a complete drag. OverIndex counts rows of the
// rendered list with the dragged row removed; Offset is the horizontal
// pointer shift in pixels.
type MoveItemRequest struct {
	ActiveID  string
	OverIndex int
	Offset    float64
}

type MutationResult struct {
	Template *domain.Template
	Changed  bool
	Payload  map[string]any
}

type ImportResult struct {
	Template     *domain.Template
	ItemCount    int
	GroupCount   int
	SectionCount int
}
