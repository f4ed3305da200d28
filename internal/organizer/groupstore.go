package organizer

import (
	"slices"
	"strings"

	"github.com/alexanderramin/cvorganizer/internal/domain"
)

// GroupStore is an immutable snapshot of the section groups. Every section
// belongs to exactly one group and the hidden group is always present.
// Mutating methods return a new store and leave the receiver untouched.
type GroupStore struct {
	groups []domain.Group
}

// StoreResult is the outcome of a GroupStore mutation. Payload describes the
// change for logging and is nil when nothing changed.
type StoreResult struct {
	Store   GroupStore
	Changed bool
	Payload map[string]any
}

// NewGroupStore validates groups and seeds the hidden group when it is
// missing. The input is copied.
func NewGroupStore(groups []domain.Group) (GroupStore, error) {
	cloned := domain.CloneGroups(groups)
	seenGroups := make(map[string]bool, len(cloned))
	seenSections := make(map[string]bool)
	for i := range cloned {
		g := &cloned[i]
		if strings.TrimSpace(g.ID) == "" {
			return GroupStore{}, ErrEmptyID
		}
		if seenGroups[g.ID] {
			return GroupStore{}, &DuplicateError{Kind: "group", ID: g.ID}
		}
		seenGroups[g.ID] = true
		if g.Sections == nil {
			g.Sections = []domain.PreparedSection{}
		}
		for _, s := range g.Sections {
			if s.DataSectionID == "" {
				return GroupStore{}, ErrEmptyID
			}
			if seenSections[s.DataSectionID] {
				return GroupStore{}, &DuplicateError{Kind: "section", ID: s.DataSectionID}
			}
			seenSections[s.DataSectionID] = true
		}
	}
	if !seenGroups[domain.HiddenGroupID] {
		cloned = append(cloned, domain.Group{
			ID:       domain.HiddenGroupID,
			Name:     domain.HiddenGroupName,
			Sections: []domain.PreparedSection{},
		})
	}
	return GroupStore{groups: cloned}, nil
}

// Groups returns a copy of all groups in order.
func (s GroupStore) Groups() []domain.Group {
	return domain.CloneGroups(s.groups)
}

func (s GroupStore) Group(id string) (domain.Group, bool) {
	i := s.groupIndex(id)
	if i < 0 {
		return domain.Group{}, false
	}
	return domain.CloneGroups(s.groups[i : i+1])[0], true
}

// Hidden returns the reserved hidden group.
func (s GroupStore) Hidden() domain.Group {
	g, ok := s.Group(domain.HiddenGroupID)
	if !ok {
		// Zero-value store: behave as if freshly seeded.
		return domain.Group{ID: domain.HiddenGroupID, Name: domain.HiddenGroupName, Sections: []domain.PreparedSection{}}
	}
	return g
}

// SectionCount returns the number of sections across all groups.
func (s GroupStore) SectionCount() int {
	n := 0
	for _, g := range s.groups {
		n += len(g.Sections)
	}
	return n
}

// GroupContaining returns the ID of the group holding sectionID.
func (s GroupStore) GroupContaining(sectionID string) (string, bool) {
	gi, _, ok := s.locate(sectionID)
	if !ok {
		return "", false
	}
	return s.groups[gi].ID, true
}

// CanRemove reports whether the remove affordance applies to sectionID:
// only members of visible groups can be removed.
func (s GroupStore) CanRemove(sectionID string) bool {
	gid, ok := s.GroupContaining(sectionID)
	return ok && gid != domain.HiddenGroupID
}

// MoveSection reassigns a section to the front of the target group.
// Moving a section into the group that already holds it is a successful no-op.
func (s GroupStore) MoveSection(sectionID, targetGroupID string) (StoreResult, error) {
	gi, si, ok := s.locate(sectionID)
	if !ok {
		return StoreResult{}, &NotFoundError{Kind: "section", ID: sectionID}
	}
	ti := s.groupIndex(targetGroupID)
	if ti < 0 {
		return StoreResult{}, &UnknownGroupError{GroupID: targetGroupID}
	}
	if gi == ti {
		return StoreResult{Store: s, Changed: false}, nil
	}

	next := s.clone()
	sec := next.groups[gi].Sections[si]
	next.groups[gi].Sections = slices.Delete(next.groups[gi].Sections, si, si+1)
	next.groups[ti].Sections = slices.Insert(next.groups[ti].Sections, 0, sec)
	return StoreResult{
		Store:   next,
		Changed: true,
		Payload: map[string]any{"section": sectionID, "from": s.groups[gi].ID, "to": targetGroupID},
	}, nil
}

// RemoveSection moves a section into the hidden group.
func (s GroupStore) RemoveSection(sectionID string) (StoreResult, error) {
	return s.MoveSection(sectionID, domain.HiddenGroupID)
}

// ToggleRowCount sets the show_row_count flag of a section without moving it.
func (s GroupStore) ToggleRowCount(sectionID string, value bool) (StoreResult, error) {
	gi, si, ok := s.locate(sectionID)
	if !ok {
		return StoreResult{}, &NotFoundError{Kind: "section", ID: sectionID}
	}
	if s.groups[gi].Sections[si].ShowRowCount == value {
		return StoreResult{Store: s, Changed: false}, nil
	}
	next := s.clone()
	next.groups[gi].Sections[si].ShowRowCount = value
	return StoreResult{
		Store:   next,
		Changed: true,
		Payload: map[string]any{"section": sectionID, "show_row_count": value},
	}, nil
}

// DeleteGroup removes a visible group. Its members move to the front of the
// hidden group, keeping their relative order.
func (s GroupStore) DeleteGroup(groupID string) (StoreResult, error) {
	if groupID == domain.HiddenGroupID {
		return StoreResult{}, &ProtectedGroupError{GroupID: groupID}
	}
	gi := s.groupIndex(groupID)
	if gi < 0 {
		return StoreResult{}, &UnknownGroupError{GroupID: groupID}
	}

	next := s.clone()
	moved := next.groups[gi].Sections
	next.groups = slices.Delete(next.groups, gi, gi+1)
	hi := next.groupIndex(domain.HiddenGroupID)
	next.groups[hi].Sections = append(slices.Clone(moved), next.groups[hi].Sections...)
	return StoreResult{
		Store:   next,
		Changed: true,
		Payload: map[string]any{"group": groupID, "relocated": len(moved)},
	}, nil
}

// CreateGroup adds an empty group just before the hidden group.
func (s GroupStore) CreateGroup(id, name string) (StoreResult, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return StoreResult{}, ErrEmptyID
	}
	if name == "" {
		return StoreResult{}, ErrEmptyName
	}
	if s.groupIndex(id) >= 0 {
		return StoreResult{}, &DuplicateError{Kind: "group", ID: id}
	}

	next := s.clone()
	at := next.groupIndex(domain.HiddenGroupID)
	if at < 0 {
		at = len(next.groups)
	}
	next.groups = slices.Insert(next.groups, at, domain.Group{ID: id, Name: name, Sections: []domain.PreparedSection{}})
	return StoreResult{
		Store:   next,
		Changed: true,
		Payload: map[string]any{"group": id, "name": name},
	}, nil
}

// RenameGroup changes a group's display name. The hidden group may be
// renamed; its ID never changes.
func (s GroupStore) RenameGroup(id, name string) (StoreResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return StoreResult{}, ErrEmptyName
	}
	gi := s.groupIndex(id)
	if gi < 0 {
		return StoreResult{}, &UnknownGroupError{GroupID: id}
	}
	if s.groups[gi].Name == name {
		return StoreResult{Store: s, Changed: false}, nil
	}
	next := s.clone()
	next.groups[gi].Name = name
	return StoreResult{
		Store:   next,
		Changed: true,
		Payload: map[string]any{"group": id, "name": name},
	}, nil
}

// AddSection appends a new section to a group. It is the entry point for
// sections created by the host.
func (s GroupStore) AddSection(groupID string, section domain.PreparedSection) (StoreResult, error) {
	if strings.TrimSpace(section.DataSectionID) == "" {
		return StoreResult{}, ErrEmptyID
	}
	gi := s.groupIndex(groupID)
	if gi < 0 {
		return StoreResult{}, &UnknownGroupError{GroupID: groupID}
	}
	if _, _, ok := s.locate(section.DataSectionID); ok {
		return StoreResult{}, &DuplicateError{Kind: "section", ID: section.DataSectionID}
	}
	next := s.clone()
	next.groups[gi].Sections = append(next.groups[gi].Sections, domain.CloneSection(section))
	return StoreResult{
		Store:   next,
		Changed: true,
		Payload: map[string]any{"section": section.DataSectionID, "to": groupID},
	}, nil
}

// ReorderSection moves a section to index within its current group. The
// index is counted after removing the section and clamped to the group size.
func (s GroupStore) ReorderSection(sectionID string, index int) (StoreResult, error) {
	gi, si, ok := s.locate(sectionID)
	if !ok {
		return StoreResult{}, &NotFoundError{Kind: "section", ID: sectionID}
	}
	index = min(max(index, 0), len(s.groups[gi].Sections)-1)
	if index == si {
		return StoreResult{Store: s, Changed: false}, nil
	}
	next := s.clone()
	secs := next.groups[gi].Sections
	sec := secs[si]
	secs = slices.Delete(secs, si, si+1)
	next.groups[gi].Sections = slices.Insert(secs, index, sec)
	return StoreResult{
		Store:   next,
		Changed: true,
		Payload: map[string]any{"section": sectionID, "group": s.groups[gi].ID, "index": index},
	}, nil
}

func (s GroupStore) clone() GroupStore {
	return GroupStore{groups: domain.CloneGroups(s.groups)}
}

func (s GroupStore) groupIndex(id string) int {
	for i, g := range s.groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (s GroupStore) locate(sectionID string) (groupIdx, sectionIdx int, ok bool) {
	for gi, g := range s.groups {
		for si, sec := range g.Sections {
			if sec.DataSectionID == sectionID {
				return gi, si, true
			}
		}
	}
	return -1, -1, false
}
