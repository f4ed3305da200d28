package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/cvorganizer/internal/domain"
)

// FormatGroups lists every group with its sections as a two-level tree.
// The hidden group is drawn last-styled and labelled.
func FormatGroups(groups []domain.Group) string {
	var items []TreeItem
	for _, g := range groups {
		title := fmt.Sprintf("%s %s", Bold(g.Name), Dim("("+g.ID+")"))
		if g.IsHidden() {
			title = fmt.Sprintf("%s %s", StyleDim.Render(g.Name), StylePurple.Render("hidden"))
		}
		items = append(items, TreeItem{Title: title, Detail: Plural(len(g.Sections), "section")})
		for i, s := range g.Sections {
			items = append(items, TreeItem{
				Title:  sectionTitle(s),
				Level:  1,
				IsLast: i == len(g.Sections)-1,
				Detail: rowCountDetail(s),
			})
		}
	}
	if len(items) == 0 {
		return Dim("(no groups)") + "\n"
	}
	return RenderTree(items)
}

// FormatGroupSummary is a one-line-per-group table used under the
// organizer view.
func FormatGroupSummary(groups []domain.Group) string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		ids := make([]string, 0, len(g.Sections))
		for _, s := range g.Sections {
			ids = append(ids, s.DataSectionID)
		}
		name := g.Name
		if g.IsHidden() {
			name = Dim(name)
		}
		rows = append(rows, []string{name, fmt.Sprint(len(g.Sections)), Dim(strings.Join(ids, ", "))})
	}
	return RenderTable([]string{"GROUP", "N", "SECTIONS"}, rows)
}

func sectionTitle(s domain.PreparedSection) string {
	title := s.Title
	if title == "" {
		title = s.DataSectionID
	}
	return title + " " + Dim(s.DataSectionID)
}

func rowCountDetail(s domain.PreparedSection) string {
	if s.ShowRowCount {
		return "row count"
	}
	return ""
}
