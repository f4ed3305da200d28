package importer

import (
	"fmt"

	"github.com/alexanderramin/cvorganizer/internal/domain"
)

// ValidateTemplateSchema checks the schema before conversion and returns
// every problem found. A group using the hidden group ID is accepted and
// becomes the hidden group. Kind is a label only: any item may have
// children, as any item may be dropped under another in the organizer.
func ValidateTemplateSchema(schema *TemplateSchema) []error {
	var errs []error

	if err := (&domain.Template{Name: schema.Template.Name}).ValidateName(); err != nil {
		errs = append(errs, fmt.Errorf("template.name: %w", err))
	}

	itemIDs := make(map[string]bool)
	errs = append(errs, validateItems("tree", schema.Tree, itemIDs)...)
	errs = append(errs, validateGroups(schema.Groups)...)

	return errs
}

func validateItems(path string, items []ItemImport, seen map[string]bool) []error {
	var errs []error
	for i, it := range items {
		at := fmt.Sprintf("%s[%d]", path, i)
		if it.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", at))
		} else if seen[it.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate item id %q", at, it.ID))
		} else {
			seen[it.ID] = true
		}
		if it.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", at))
		}
		if it.Kind != "" && !domain.ValidItemKinds[it.Kind] {
			errs = append(errs, fmt.Errorf("%s.kind: invalid value %q", at, it.Kind))
		}
		errs = append(errs, validateItems(at+".children", it.Children, seen)...)
	}
	return errs
}

func validateGroups(groups []GroupImport) []error {
	var errs []error
	groupIDs := make(map[string]bool)
	sectionIDs := make(map[string]bool)
	for i, g := range groups {
		at := fmt.Sprintf("groups[%d]", i)
		if g.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", at))
		} else if groupIDs[g.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate group id %q", at, g.ID))
		} else {
			groupIDs[g.ID] = true
		}
		if g.Name == "" && g.ID != domain.HiddenGroupID {
			errs = append(errs, fmt.Errorf("%s.name is required", at))
		}
		for j, s := range g.Sections {
			sat := fmt.Sprintf("%s.sections[%d]", at, j)
			if s.ID == "" {
				errs = append(errs, fmt.Errorf("%s.data_section_id is required", sat))
				continue
			}
			if sectionIDs[s.ID] {
				errs = append(errs, fmt.Errorf("%s: section %q already belongs to another group", sat, s.ID))
				continue
			}
			sectionIDs[s.ID] = true
		}
	}
	return errs
}
