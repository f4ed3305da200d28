package domain

import "maps"

// PreparedSection is a report section instance placed in a group for
// template composition. Metadata is carried through untouched.
type PreparedSection struct {
	DataSectionID string         `json:"data_section_id" yaml:"data_section_id"`
	Title         string         `json:"title,omitempty" yaml:"title,omitempty"`
	ShowRowCount  bool           `json:"show_row_count" yaml:"show_row_count"`
	Metadata      map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type Group struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Sections []PreparedSection `json:"sections" yaml:"sections"`
}

// IsHidden reports whether g is the reserved hidden group.
func (g Group) IsHidden() bool {
	return g.ID == HiddenGroupID
}

// CloneSection returns a copy of s with its own metadata map.
func CloneSection(s PreparedSection) PreparedSection {
	if s.Metadata != nil {
		s.Metadata = maps.Clone(s.Metadata)
	}
	return s
}

// CloneGroups returns a deep copy of groups, including member sections.
func CloneGroups(groups []Group) []Group {
	if groups == nil {
		return nil
	}
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = g
		if g.Sections != nil {
			out[i].Sections = make([]PreparedSection, len(g.Sections))
			for j, s := range g.Sections {
				out[i].Sections[j] = CloneSection(s)
			}
		}
	}
	return out
}
