package organizer

import (
	"fmt"

	"github.com/alexanderramin/cvorganizer/internal/domain"
)

// Flatten walks the forest depth-first in pre-order and returns one entry per
// node. Index is the node's position among its direct siblings. The input is
// not modified; Children slices are shared with the input and must be
// treated as read-only.
func Flatten(tree []domain.Item) []domain.FlattenedItem {
	out := make([]domain.FlattenedItem, 0, domain.CountItems(tree))
	var walk func(items []domain.Item, parentID string, depth int)
	walk = func(items []domain.Item, parentID string, depth int) {
		for i, it := range items {
			f := domain.FlattenedItem{
				ID:        it.ID,
				Name:      it.Name,
				Kind:      it.Kind,
				Collapsed: it.Collapsed,
				Children:  it.Children,
				Depth:     depth,
				Index:     i,
			}
			if depth > 0 {
				pid := parentID
				f.ParentID = &pid
			}
			out = append(out, f)
			walk(it.Children, it.ID, depth+1)
		}
	}
	walk(tree, "", 0)
	return out
}

// Build is the inverse of Flatten. Nesting is reconstructed from list order
// and Depth alone: an entry becomes a child of the nearest preceding entry
// one level shallower. ParentID, Index and Children on the input are ignored.
func Build(flat []domain.FlattenedItem) ([]domain.Item, error) {
	type node struct {
		item     domain.Item
		children []int
	}

	nodes := make([]node, 0, len(flat))
	roots := []int{}
	stack := []int{} // stack[d] is the open node at depth d
	seen := make(map[string]bool, len(flat))
	prevDepth := -1

	for i, f := range flat {
		if f.ID == "" {
			return nil, &StructureError{Index: i, Reason: "missing id"}
		}
		if seen[f.ID] {
			return nil, &StructureError{Index: i, ID: f.ID, Reason: "duplicate id"}
		}
		if f.Depth < 0 {
			return nil, &StructureError{Index: i, ID: f.ID, Reason: fmt.Sprintf("negative depth %d", f.Depth)}
		}
		if f.Depth > prevDepth+1 {
			return nil, &StructureError{Index: i, ID: f.ID,
				Reason: fmt.Sprintf("depth jumps from %d to %d", max(prevDepth, 0), f.Depth)}
		}
		seen[f.ID] = true

		stack = stack[:f.Depth]
		idx := len(nodes)
		nodes = append(nodes, node{item: domain.Item{
			ID:        f.ID,
			Name:      f.Name,
			Kind:      f.Kind,
			Collapsed: f.Collapsed,
		}})
		if f.Depth == 0 {
			roots = append(roots, idx)
		} else {
			parent := stack[f.Depth-1]
			nodes[parent].children = append(nodes[parent].children, idx)
		}
		stack = append(stack, idx)
		prevDepth = f.Depth
	}

	var assemble func(idxs []int) []domain.Item
	assemble = func(idxs []int) []domain.Item {
		out := make([]domain.Item, len(idxs))
		for i, idx := range idxs {
			it := nodes[idx].item
			it.Children = assemble(nodes[idx].children)
			out[i] = it
		}
		return out
	}
	return assemble(roots), nil
}

// RemoveChildrenOf drops every descendant of the given items from a
// flattened list. The items themselves are kept.
func RemoveChildrenOf(flat []domain.FlattenedItem, ids ...string) []domain.FlattenedItem {
	if len(ids) == 0 {
		return append([]domain.FlattenedItem(nil), flat...)
	}
	exclude := make(map[string]bool, len(ids))
	for _, id := range ids {
		exclude[id] = true
	}

	out := make([]domain.FlattenedItem, 0, len(flat))
	skipBelow := -1 // entries deeper than this are skipped; -1 = not skipping
	for _, f := range flat {
		if skipBelow >= 0 {
			if f.Depth > skipBelow {
				continue
			}
			skipBelow = -1
		}
		out = append(out, f)
		if exclude[f.ID] {
			skipBelow = f.Depth
		}
	}
	return out
}

// DescendantIDs returns the IDs of every entry below id in a flattened list.
func DescendantIDs(flat []domain.FlattenedItem, id string) []string {
	idx := indexOf(flat, id)
	if idx < 0 {
		return nil
	}
	var out []string
	for _, f := range flat[idx+1:] {
		if f.Depth <= flat[idx].Depth {
			break
		}
		out = append(out, f.ID)
	}
	return out
}

// FindItem looks up an item anywhere in the forest.
func FindItem(tree []domain.Item, id string) (domain.Item, bool) {
	for _, it := range tree {
		if it.ID == id {
			return it, true
		}
		if found, ok := FindItem(it.Children, id); ok {
			return found, true
		}
	}
	return domain.Item{}, false
}

// ChildCount returns the number of descendants of id, at any depth.
func ChildCount(tree []domain.Item, id string) (int, bool) {
	it, ok := FindItem(tree, id)
	if !ok {
		return 0, false
	}
	return domain.CountItems(it.Children), true
}

// SetCollapsed returns a copy of tree with the collapsed flag of id set.
func SetCollapsed(tree []domain.Item, id string, collapsed bool) ([]domain.Item, bool) {
	out := domain.CloneItems(tree)
	var visit func(items []domain.Item) bool
	visit = func(items []domain.Item) bool {
		for i := range items {
			if items[i].ID == id {
				items[i].Collapsed = collapsed
				return true
			}
			if visit(items[i].Children) {
				return true
			}
		}
		return false
	}
	if !visit(out) {
		return tree, false
	}
	return out, true
}

func indexOf(flat []domain.FlattenedItem, id string) int {
	for i, f := range flat {
		if f.ID == id {
			return i
		}
	}
	return -1
}
