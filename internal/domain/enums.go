package domain

type ItemKind string

const (
	ItemGroup ItemKind = "group"
	ItemLeaf  ItemKind = "leaf"
)

// ValidItemKinds is the canonical set of accepted item kind strings.
var ValidItemKinds = map[string]bool{
	"group": true, "leaf": true,
}

const (
	// HiddenGroupID identifies the reserved group that receives sections
	// removed from visible groups. It always exists and cannot be deleted.
	HiddenGroupID = "hidden"

	// HiddenGroupName is the default display name of the hidden group.
	HiddenGroupName = "Hidden"
)
