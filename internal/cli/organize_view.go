package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/cvorganizer/internal/cli/formatter"
	"github.com/alexanderramin/cvorganizer/internal/domain"
	"github.com/alexanderramin/cvorganizer/internal/organizer"
	"github.com/alexanderramin/cvorganizer/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type organizeKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Grab     key.Binding
	Drop     key.Binding
	Cancel   key.Binding
	Collapse key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultOrganizeKeys() organizeKeyMap {
	return organizeKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "outdent")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "indent")),
		Grab:     key.NewBinding(key.WithKeys("m", " "), key.WithHelp("m", "grab")),
		Drop:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Collapse: key.NewBinding(key.WithKeys("enter", "c"), key.WithHelp("enter/c", "collapse")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k organizeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Grab, k.Collapse, k.Help, k.Quit}
}

func (k organizeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Grab, k.Drop, k.Cancel},
		{k.Collapse, k.Refresh, k.Help, k.Quit},
	}
}

// snapshotLoadedMsg carries a fresh snapshot, or the error of the
// operation that preceded the reload.
type snapshotLoadedMsg struct {
	snap   *service.Snapshot
	status string
	err    error
}

// dragPreview is the pending drop while an item is grabbed. The local
// organizer computes the projection; nothing is saved until the drop.
type dragPreview struct {
	activeID string
	over     int
	offset   float64
	state    organizer.DragState
}

type organizeModel struct {
	app  *App
	ref  string
	keys organizeKeyMap
	help help.Model

	snap    *service.Snapshot
	org     *organizer.Organizer
	cursor  int
	drag    *dragPreview
	status  string
	err     error
	loading bool
	width   int
}

func newOrganizeModel(app *App, ref string) *organizeModel {
	return &organizeModel{
		app:     app,
		ref:     ref,
		keys:    defaultOrganizeKeys(),
		help:    help.New(),
		loading: true,
	}
}

func (m *organizeModel) Init() tea.Cmd {
	return m.reload("")
}

func (m *organizeModel) reload(status string) tea.Cmd {
	app, ref := m.app, m.ref
	return func() tea.Msg {
		snap, err := app.Organizer.Snapshot(context.Background(), ref)
		return snapshotLoadedMsg{snap: snap, status: status, err: err}
	}
}

// persist runs one saved operation and reloads the snapshot afterwards.
func (m *organizeModel) persist(status string, op func(ctx context.Context) (*service.MutationResult, error)) tea.Cmd {
	app, ref := m.app, m.ref
	return func() tea.Msg {
		ctx := context.Background()
		res, err := op(ctx)
		if err != nil {
			return snapshotLoadedMsg{err: err}
		}
		if !res.Changed {
			status = "nothing changed"
		}
		snap, err := app.Organizer.Snapshot(ctx, ref)
		return snapshotLoadedMsg{snap: snap, status: status, err: err}
	}
}

func (m *organizeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case snapshotLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.snap != nil {
			m.applySnapshot(msg.snap)
		}
		m.status = msg.status
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.loading || m.snap == nil {
			return m, nil
		}
		if m.drag != nil {
			return m, m.updateDragging(msg)
		}
		return m, m.updateBrowsing(msg)
	}
	return m, nil
}

func (m *organizeModel) applySnapshot(snap *service.Snapshot) {
	o, err := organizer.New(snap.Template.Tree, snap.Groups, organizer.WithIndentWidth(m.app.indentWidth()))
	if err != nil {
		m.err = err
		return
	}
	m.snap = snap
	m.org = o
	m.drag = nil
	m.cursor = min(m.cursor, max(len(snap.View)-1, 0))
}

func (m *organizeModel) updateBrowsing(msg tea.KeyMsg) tea.Cmd {
	view := m.snap.View
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(view)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Grab):
		if len(view) == 0 {
			return nil
		}
		m.beginDrag(view[m.cursor].ID)
	case key.Matches(msg, m.keys.Collapse):
		if len(view) == 0 {
			return nil
		}
		id := view[m.cursor].ID
		return m.persist("toggled "+id, func(ctx context.Context) (*service.MutationResult, error) {
			return m.app.Organizer.ToggleCollapsed(ctx, m.ref, id)
		})
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m.reload("reloaded")
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *organizeModel) beginDrag(id string) {
	if err := m.org.BeginDrag(id); err != nil {
		m.err = err
		return
	}
	// With the active item removed, its own row index is the slot it came from.
	m.drag = &dragPreview{activeID: id, over: m.cursor}
	m.err = nil
	m.refreshDrag()
}

func (m *organizeModel) refreshDrag() {
	state, err := m.org.UpdateDrag(m.drag.over, m.drag.offset)
	if err != nil {
		m.err = err
		return
	}
	m.drag.state = state
}

func (m *organizeModel) updateDragging(msg tea.KeyMsg) tea.Cmd {
	maxOver := len(m.org.FlattenedView()) - 1
	switch {
	case key.Matches(msg, m.keys.Up):
		m.drag.over = max(m.drag.over-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.drag.over = min(m.drag.over+1, maxOver)
	case key.Matches(msg, m.keys.Left):
		m.drag.offset -= m.app.indentWidth()
	case key.Matches(msg, m.keys.Right):
		m.drag.offset += m.app.indentWidth()
	case key.Matches(msg, m.keys.Cancel):
		m.org.CancelDrag()
		m.drag = nil
		m.status = "move cancelled"
		return nil
	case key.Matches(msg, m.keys.Drop):
		req := service.MoveItemRequest{ActiveID: m.drag.activeID, OverIndex: m.drag.over, Offset: m.drag.offset}
		m.org.CancelDrag()
		m.drag = nil
		m.cursor = req.OverIndex
		return m.persist("moved "+req.ActiveID, func(ctx context.Context) (*service.MutationResult, error) {
			return m.app.Organizer.MoveItem(ctx, m.ref, req)
		})
	default:
		return nil
	}
	m.refreshDrag()
	return nil
}

// previewRows returns the rows to draw: during a drag, the dragged item is
// shown at its projected slot and depth.
func (m *organizeModel) previewRows() ([]domain.FlattenedItem, int) {
	if m.drag == nil {
		return m.snap.View, m.cursor
	}
	view := m.org.FlattenedView()
	var active domain.FlattenedItem
	rest := make([]domain.FlattenedItem, 0, len(view))
	for _, f := range view {
		if f.ID == m.drag.activeID {
			active = f
			continue
		}
		rest = append(rest, f)
	}
	if p := m.drag.state.Projection; p != nil {
		active.Depth = p.Depth
		active.ParentID = p.ParentID
	}
	over := min(m.drag.over, len(rest))
	rows := make([]domain.FlattenedItem, 0, len(view))
	rows = append(rows, rest[:over]...)
	rows = append(rows, active)
	rows = append(rows, rest[over:]...)
	return rows, over
}

func (m *organizeModel) View() string {
	if m.loading && m.snap == nil {
		return "\n  " + formatter.Dim("Loading template...")
	}
	if m.snap == nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+errString(m.err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", formatter.StyleHeader.Render(m.snap.Template.Name), formatter.TruncID(m.snap.Template.ID))

	rows, highlight := m.previewRows()
	items := formatter.TreeItemsFromView(rows, func(id string) int {
		n, _ := m.org.ChildCount(id)
		return n
	})
	if len(items) == 0 {
		b.WriteString("  " + formatter.Dim("(empty tree)") + "\n")
	}
	if highlight < len(items) {
		items[highlight].Highlight = true
	}
	for i, line := range strings.Split(strings.TrimRight(formatter.RenderTree(items), "\n"), "\n") {
		if len(items) == 0 {
			break
		}
		gutter := "  "
		if i == highlight {
			gutter = formatter.StyleHeader.Render("› ")
		}
		b.WriteString(gutter + line + "\n")
	}

	b.WriteString("\n" + m.statusLine() + "\n\n")
	b.WriteString(formatter.FormatGroupSummary(m.snap.Groups))
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m *organizeModel) statusLine() string {
	if m.err != nil {
		return formatter.StyleRed.Render("Error: " + m.err.Error())
	}
	if m.drag != nil {
		p := m.drag.state.Projection
		if !m.drag.state.Valid || p == nil {
			return formatter.StyleYellow.Render("no legal position here")
		}
		parent := p.ParentOrEmpty()
		if parent == "" {
			parent = "top level"
		}
		return formatter.StyleYellow.Render(fmt.Sprintf("moving %s: depth %d under %s", m.drag.activeID, p.Depth, parent))
	}
	return formatter.Dim(m.status)
}

func errString(err error) string {
	if err == nil {
		return "template not loaded"
	}
	return err.Error()
}
