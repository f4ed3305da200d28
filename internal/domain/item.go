package domain

// Item is a node of the template tree. Children are owned by value; a node
// never points back at its parent.
type Item struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Kind      ItemKind `json:"kind" yaml:"kind"`
	Collapsed bool     `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Children  []Item   `json:"children" yaml:"children"`
}

// IsGroup reports whether the item is a container rather than a table/section leaf.
func (it Item) IsGroup() bool {
	return it.Kind == ItemGroup
}

// FlattenedItem is an Item projected into a linear, depth-annotated list.
// ParentID is a computed back-reference and is nil only for top-level items.
type FlattenedItem struct {
	ID        string
	Name      string
	Kind      ItemKind
	Collapsed bool
	Children  []Item
	ParentID  *string
	Depth     int
	Index     int
}

// ParentOrEmpty returns the parent ID, or "" for top-level items.
func (f FlattenedItem) ParentOrEmpty() string {
	if f.ParentID == nil {
		return ""
	}
	return *f.ParentID
}

// CloneItems returns a deep copy of a forest.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it
		out[i].Children = CloneItems(it.Children)
	}
	return out
}

// CountItems returns the total number of nodes in a forest.
func CountItems(items []Item) int {
	n := 0
	for _, it := range items {
		n += 1 + CountItems(it.Children)
	}
	return n
}
