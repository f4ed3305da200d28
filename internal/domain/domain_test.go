package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName_Valid(t *testing.T) {
	tpl := &Template{Name: "Annual Report"}
	assert.NoError(t, tpl.ValidateName())
}

func TestValidateName_Empty(t *testing.T) {
	tpl := &Template{Name: "   "}
	err := tpl.ValidateName()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestValidateName_TooLong(t *testing.T) {
	tpl := &Template{Name: strings.Repeat("a", 121)}
	err := tpl.ValidateName()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")
}

func TestDisplayID(t *testing.T) {
	assert.Equal(t, "550e8400", (&Template{ID: "550e8400-e29b-41d4-a716-446655440000"}).DisplayID())
	assert.Equal(t, "abc", (&Template{ID: "abc"}).DisplayID())
}

func TestCloneItems_IsDeep(t *testing.T) {
	orig := []Item{{ID: "g1", Kind: ItemGroup, Children: []Item{{ID: "t1", Kind: ItemLeaf}}}}
	cp := CloneItems(orig)
	cp[0].Children[0].Name = "changed"
	cp[0].Children = append(cp[0].Children, Item{ID: "t2"})

	assert.Empty(t, orig[0].Children[0].Name)
	assert.Len(t, orig[0].Children, 1)
	assert.Equal(t, 2, CountItems(orig))
	assert.Equal(t, 3, CountItems(cp))
}

func TestCloneGroups_CopiesSectionsAndMetadata(t *testing.T) {
	orig := []Group{{ID: "a", Sections: []PreparedSection{{DataSectionID: "s1", Metadata: map[string]any{"k": 1}}}}}
	cp := CloneGroups(orig)
	cp[0].Sections[0].ShowRowCount = true
	cp[0].Sections[0].Metadata["k"] = 2

	assert.False(t, orig[0].Sections[0].ShowRowCount)
	assert.Equal(t, 1, orig[0].Sections[0].Metadata["k"])
}

func TestGroupIsHidden(t *testing.T) {
	assert.True(t, Group{ID: HiddenGroupID}.IsHidden())
	assert.False(t, Group{ID: "a"}.IsHidden())
}
