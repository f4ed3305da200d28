package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSchema() *TemplateSchema {
	return &TemplateSchema{
		Template: TemplateHeader{Name: "CV"},
		Tree: []ItemImport{
			{ID: "g1", Name: "Teaching", Children: []ItemImport{{ID: "t1", Name: "Courses"}}},
		},
		Groups: []GroupImport{
			{ID: "main", Name: "Main", Sections: []SectionImport{{ID: "s1"}}},
		},
	}
}

func joinErrs(errs []error) string {
	var parts []string
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

func TestValidateTemplateSchema_Valid(t *testing.T) {
	assert.Empty(t, ValidateTemplateSchema(validSchema()))
}

func TestValidateTemplateSchema_MissingName(t *testing.T) {
	s := validSchema()
	s.Template.Name = "  "

	errs := ValidateTemplateSchema(s)

	assert.Len(t, errs, 1)
	assert.Contains(t, joinErrs(errs), "template.name")
}

func TestValidateTemplateSchema_CollectsItemErrors(t *testing.T) {
	s := validSchema()
	s.Tree = append(s.Tree,
		ItemImport{ID: "t1", Name: "Dup"},
		ItemImport{Name: "No id"},
		ItemImport{ID: "x", Kind: "folder"},
	)

	msg := joinErrs(ValidateTemplateSchema(s))

	assert.Contains(t, msg, `duplicate item id "t1"`)
	assert.Contains(t, msg, "tree[2].id is required")
	assert.Contains(t, msg, "tree[3].name is required")
	assert.Contains(t, msg, `tree[3].kind: invalid value "folder"`)
}

func TestValidateTemplateSchema_LeafMayHaveChildren(t *testing.T) {
	s := validSchema()
	s.Tree = append(s.Tree,
		ItemImport{ID: "y", Name: "Leaf", Kind: "leaf", Children: []ItemImport{{ID: "z", Name: "Z", Kind: "leaf"}}},
	)

	assert.Empty(t, ValidateTemplateSchema(s))
}

func TestValidateTemplateSchema_NestedPaths(t *testing.T) {
	s := validSchema()
	s.Tree[0].Children[0].Name = ""

	msg := joinErrs(ValidateTemplateSchema(s))

	assert.Contains(t, msg, "tree[0].children[0].name is required")
}

func TestValidateTemplateSchema_GroupErrors(t *testing.T) {
	s := validSchema()
	s.Groups = append(s.Groups,
		GroupImport{ID: "main", Name: "Again"},
		GroupImport{ID: "other", Sections: []SectionImport{{ID: "s1"}, {}}},
	)

	msg := joinErrs(ValidateTemplateSchema(s))

	assert.Contains(t, msg, `duplicate group id "main"`)
	assert.Contains(t, msg, "groups[2].name is required")
	assert.Contains(t, msg, `section "s1" already belongs to another group`)
	assert.Contains(t, msg, "groups[2].sections[1].data_section_id is required")
}

func TestValidateTemplateSchema_HiddenGroupNeedsNoName(t *testing.T) {
	s := validSchema()
	s.Groups = append(s.Groups, GroupImport{ID: "hidden", Sections: []SectionImport{{ID: "s2"}}})

	assert.Empty(t, ValidateTemplateSchema(s))
}
