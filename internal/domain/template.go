package domain

import (
	"fmt"
	"strings"
	"time"
)

// Template is the persisted envelope for one organizer layout: the item
// tree plus the section groups.
type Template struct {
	ID          string
	Name        string
	Description string
	Tree        []Item
	Groups      []Group
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateName checks that the template has a usable display name.
func (t *Template) ValidateName() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fmt.Errorf("template name is required")
	}
	if len(name) > 120 {
		return fmt.Errorf("template name %q is too long (max 120 characters)", name)
	}
	return nil
}

// DisplayID returns the first 8 characters of the ID for display.
func (t *Template) DisplayID() string {
	if len(t.ID) >= 8 {
		return t.ID[:8]
	}
	return t.ID
}
