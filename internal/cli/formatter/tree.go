package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one rendered row of a tree. Rows must be given in pre-order.
type TreeItem struct {
	Title     string
	Level     int
	IsLast    bool
	Kind      domain.ItemKind
	Collapsed bool
	// Hidden is the number of descendants folded away under a collapsed item.
	Hidden int
	Detail string
	// Highlight marks the row being dragged or under the cursor.
	Highlight bool
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// TreeItemsFromView converts a flattened view into tree rows. childCount
// reports the full number of descendants for collapsed items; it may be nil.
func TreeItemsFromView(view []domain.FlattenedItem, childCount func(id string) int) []TreeItem {
	items := make([]TreeItem, len(view))
	for i, f := range view {
		items[i] = TreeItem{
			Title:     f.Name,
			Level:     f.Depth,
			IsLast:    isLastSibling(view, i),
			Kind:      f.Kind,
			Collapsed: f.Collapsed,
		}
		if items[i].Title == "" {
			items[i].Title = f.ID
		}
		if f.Collapsed && childCount != nil {
			items[i].Hidden = childCount(f.ID)
		}
	}
	return items
}

func isLastSibling(view []domain.FlattenedItem, i int) bool {
	d := view[i].Depth
	for j := i + 1; j < len(view); j++ {
		if view[j].Depth < d {
			return true
		}
		if view[j].Depth == d {
			return false
		}
	}
	return true
}

// RenderTree draws rows with box-drawing connectors. Top-level rows have no
// connector; detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	badges := make([]string, len(items))
	maxWidth := 0
	// lastAt[l] records whether the most recent row at level l was the last
	// of its siblings; it decides between a pipe and a blank guide.
	lastAt := make([]bool, 0, 8)

	for idx, item := range items {
		for len(lastAt) <= item.Level {
			lastAt = append(lastAt, false)
		}
		lastAt[item.Level] = item.IsLast

		var prefix strings.Builder
		if item.Level > 0 {
			for l := 1; l < item.Level; l++ {
				if lastAt[l] {
					prefix.WriteString(treeBlank)
				} else {
					prefix.WriteString(treePipe)
				}
			}
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}

		title := item.Title
		if item.Highlight {
			title = StyleYellowBold.Render(title)
		}
		icon := ""
		if item.Kind != "" {
			icon = KindIcon(item.Kind) + " "
		}
		if item.Collapsed {
			icon = StyleYellow.Render("▸") + " " + icon
		}
		contents[idx] = StyleDim.Render(prefix.String()) + icon + title

		detail := item.Detail
		if item.Collapsed && item.Hidden > 0 {
			hidden := fmt.Sprintf("+%d", item.Hidden)
			if detail == "" {
				detail = hidden
			} else {
				detail = hidden + " " + detail
			}
		}
		if detail != "" {
			badges[idx] = StyleBlue.Render(fmt.Sprintf("[ %s ]", detail))
		}
		maxWidth = max(maxWidth, lipgloss.Width(contents[idx]))
	}

	var b strings.Builder
	for i, content := range contents {
		b.WriteString(content)
		if badges[i] != "" {
			b.WriteString(strings.Repeat(" ", maxWidth-lipgloss.Width(content)+2))
			b.WriteString(badges[i])
		}
		b.WriteString("\n")
	}
	return b.String()
}
