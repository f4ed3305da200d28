package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/alexanderramin/cvorganizer/internal/organizer"
)

// FormatTemplateList renders template headers inside a bordered box.
func FormatTemplateList(templates []*domain.Template) string {
	headers := []string{"ID", "NAME", "UPDATED"}
	rows := make([][]string, 0, len(templates))
	for _, t := range templates {
		rows = append(rows, []string{
			TruncID(t.ID),
			Bold(t.Name),
			Dim(HumanTimestamp(t.UpdatedAt)),
		})
	}
	return RenderBox("Templates", RenderTable(headers, rows))
}

// FormatTemplateShow renders a template card: header fields, the full item
// tree and the section groups.
func FormatTemplateShow(t *domain.Template) string {
	var b strings.Builder

	b.WriteString(StyleBold.Render(t.Name) + "\n\n")
	fmt.Fprintf(&b, "  %s  %s\n", StyleDim.Render("ID     "), Dim(t.ID))
	if t.Description != "" {
		fmt.Fprintf(&b, "  %s  %s\n", StyleDim.Render("ABOUT  "), t.Description)
	}
	fmt.Fprintf(&b, "  %s  %s\n", StyleDim.Render("UPDATED"), HumanTimestamp(t.UpdatedAt))

	b.WriteString("\n" + Header("Tree") + "\n")
	if len(t.Tree) == 0 {
		b.WriteString(Dim("  (empty)") + "\n")
	} else {
		// Show everything, collapsed or not; the marker still tells which is which.
		b.WriteString(RenderTree(TreeItemsFromView(organizer.Flatten(t.Tree), nil)))
	}

	b.WriteString("\n" + Header("Groups") + "\n")
	b.WriteString(FormatGroups(t.Groups))

	return RenderBox("", b.String())
}

// FormatView renders the rows a host would draw, hiding collapsed children.
func FormatView(view []domain.FlattenedItem, childCount func(id string) int) string {
	if len(view) == 0 {
		return Dim("(empty)") + "\n"
	}
	return RenderTree(TreeItemsFromView(view, childCount))
}
