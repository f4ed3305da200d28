package organizer

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/cvorganizer/internal/domain"
	"go.uber.org/zap"
)

// DefaultIndentWidth is the horizontal distance, in pixels, of one nesting level.
const DefaultIndentWidth = 50

// Organizer combines the item tree, the group store and a drag session for
// one host view. It works on copies of the host snapshot and is not safe for
// concurrent use.
type Organizer struct {
	tree        []domain.Item
	store       GroupStore
	indentWidth float64
	log         *zap.Logger
	drag        *dragSession
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithIndentWidth sets the pixels per nesting level used by drag projection.
func WithIndentWidth(px float64) Option {
	return func(o *Organizer) {
		o.indentWidth = px
	}
}

// WithLogger sets the logger for drag events. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *Organizer) {
		if l != nil {
			o.log = l
		}
	}
}

type dragSession struct {
	activeID  string
	overIndex int
	offset    float64
	seq       int
	valid     bool
	last      *Projection // last legal projection; kept when a later update is rejected
}

// DragState describes the drag session after an update.
type DragState struct {
	ActiveID  string
	OverIndex int
	Offset    float64
	Seq       int
	// Valid is false when the latest update had no legal position.
	Valid bool
	// Projection is the last legal projection, or nil if there has been none.
	Projection *Projection
}

// CommitResult is the outcome of dropping the dragged item.
type CommitResult struct {
	Tree       []domain.Item
	Changed    bool
	Projection *Projection
}

// New builds an Organizer from a host snapshot. The tree must have unique
// IDs; groups are validated by NewGroupStore.
func New(tree []domain.Item, groups []domain.Group, opts ...Option) (*Organizer, error) {
	if _, err := Build(Flatten(tree)); err != nil {
		return nil, err
	}
	store, err := NewGroupStore(groups)
	if err != nil {
		return nil, err
	}
	o := &Organizer{
		tree:        domain.CloneItems(tree),
		store:       store,
		indentWidth: DefaultIndentWidth,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if !(o.indentWidth > 0) {
		return nil, ErrInvalidIndentWidth
	}
	return o, nil
}

// Tree returns a copy of the current tree.
func (o *Organizer) Tree() []domain.Item {
	return domain.CloneItems(o.tree)
}

// Store returns the current group store.
func (o *Organizer) Store() GroupStore {
	return o.store
}

// IndentWidth returns the pixels per nesting level.
func (o *Organizer) IndentWidth() float64 {
	return o.indentWidth
}

// FlattenedView returns the rows to render: the flattened tree without the
// children of collapsed items and, while dragging, without the subtree of
// the dragged item.
func (o *Organizer) FlattenedView() []domain.FlattenedItem {
	flat := Flatten(o.tree)
	var hide []string
	for _, f := range flat {
		if f.Collapsed && len(f.Children) > 0 {
			hide = append(hide, f.ID)
		}
	}
	if o.drag != nil {
		hide = append(hide, o.drag.activeID)
	}
	return RemoveChildrenOf(flat, hide...)
}

// DepthFor returns the nesting depth of an item, including items hidden by
// a collapsed ancestor.
func (o *Organizer) DepthFor(itemID string) (int, error) {
	for _, f := range Flatten(o.tree) {
		if f.ID == itemID {
			return f.Depth, nil
		}
	}
	return 0, &NotFoundError{Kind: "item", ID: itemID}
}

// ChildCount returns the number of descendants of an item.
func (o *Organizer) ChildCount(itemID string) (int, error) {
	n, ok := ChildCount(o.tree, itemID)
	if !ok {
		return 0, &NotFoundError{Kind: "item", ID: itemID}
	}
	return n, nil
}

// ToggleCollapsed flips the collapsed flag of an item and returns the new
// value. It fails with DragInProgressError while a drag is active.
func (o *Organizer) ToggleCollapsed(itemID string) (bool, error) {
	if o.drag != nil {
		return false, &DragInProgressError{ActiveID: o.drag.activeID}
	}
	it, ok := FindItem(o.tree, itemID)
	if !ok {
		return false, &NotFoundError{Kind: "item", ID: itemID}
	}
	o.tree, _ = SetCollapsed(o.tree, itemID, !it.Collapsed)
	return !it.Collapsed, nil
}

// GroupContaining returns the ID of the group holding a section.
func (o *Organizer) GroupContaining(sectionID string) (string, bool) {
	return o.store.GroupContaining(sectionID)
}

// CanRemove reports whether a section sits outside the hidden group.
func (o *Organizer) CanRemove(sectionID string) bool {
	return o.store.CanRemove(sectionID)
}

// Dragging reports the active item ID, if a drag is in progress.
func (o *Organizer) Dragging() (string, bool) {
	if o.drag == nil {
		return "", false
	}
	return o.drag.activeID, true
}

// BeginDrag starts a drag of a visible item. Only one drag may be active.
func (o *Organizer) BeginDrag(activeID string) error {
	if o.drag != nil {
		return &DragInProgressError{ActiveID: o.drag.activeID}
	}
	view := o.FlattenedView()
	idx := indexOf(view, activeID)
	if idx < 0 {
		return &NotFoundError{Kind: "item", ID: activeID}
	}
	o.drag = &dragSession{activeID: activeID, overIndex: idx}
	o.log.Debug("begin_drag", zap.String("active_id", activeID), zap.Int("index", idx))
	return nil
}

// UpdateDrag projects the drop position for the latest pointer state. Each
// call replaces the previous one. A position that would create a cycle or an
// orphan is not an error: the state is marked invalid and the last legal
// projection is kept.
func (o *Organizer) UpdateDrag(overIndex int, offset float64) (DragState, error) {
	if o.drag == nil {
		return DragState{}, ErrNoActiveDrag
	}
	return o.updateDrag(o.FlattenedView(), overIndex, offset)
}

// updateDrag projects against view. The visible view never holds the
// active item's descendants, so a CycleError only arises from a view that
// still carries them.
func (o *Organizer) updateDrag(view []domain.FlattenedItem, overIndex int, offset float64) (DragState, error) {
	s := o.drag
	s.seq++
	s.overIndex = overIndex
	s.offset = offset

	p, err := Project(view, s.activeID, overIndex, offset, o.indentWidth)
	switch {
	case err == nil:
		s.valid = true
		s.last = &p
	case isRejectedProjection(err):
		s.valid = false
		o.log.Debug("projection_rejected",
			zap.String("active_id", s.activeID),
			zap.Int("over_index", overIndex),
			zap.Float64("offset", offset),
			zap.Error(err))
	default:
		return DragState{}, err
	}
	return o.dragState(), nil
}

// CommitDrag drops the active item at its last legal projection and
// replaces the tree. Without a legal projection the drop is a no-op. The
// session ends either way.
func (o *Organizer) CommitDrag() (CommitResult, error) {
	if o.drag == nil {
		return CommitResult{}, ErrNoActiveDrag
	}
	s := o.drag
	view := o.FlattenedView()
	o.drag = nil

	if s.last == nil {
		o.log.Debug("commit_drag", zap.String("active_id", s.activeID), zap.Bool("changed", false))
		return CommitResult{Tree: o.Tree()}, nil
	}

	next, changed, err := applyMove(o.tree, view, s.activeID, *s.last)
	if err != nil {
		return CommitResult{Tree: o.Tree()}, err
	}
	if changed {
		o.tree = next
	}
	proj := *s.last
	o.log.Debug("commit_drag",
		zap.String("active_id", s.activeID),
		zap.Int("depth", proj.Depth),
		zap.String("parent_id", proj.ParentOrEmpty()),
		zap.Bool("changed", changed))
	return CommitResult{Tree: o.Tree(), Changed: changed, Projection: &proj}, nil
}

// CancelDrag discards the session. The tree is left untouched.
func (o *Organizer) CancelDrag() {
	if o.drag != nil {
		o.log.Debug("cancel_drag", zap.String("active_id", o.drag.activeID))
	}
	o.drag = nil
}

// MoveItem runs a complete drag in one call. Unlike UpdateDrag, an illegal
// position is reported to the caller and the tree is left unchanged.
func (o *Organizer) MoveItem(activeID string, overIndex int, offset float64) (CommitResult, error) {
	if err := o.BeginDrag(activeID); err != nil {
		return CommitResult{}, err
	}
	if _, err := Project(o.FlattenedView(), activeID, overIndex, offset, o.indentWidth); err != nil {
		o.CancelDrag()
		return CommitResult{}, err
	}
	if _, err := o.UpdateDrag(overIndex, offset); err != nil {
		o.CancelDrag()
		return CommitResult{}, err
	}
	return o.CommitDrag()
}

// MoveSection, RemoveSection, ToggleRowCount, DeleteGroup, CreateGroup,
// RenameGroup, AddSection and ReorderSection apply the GroupStore operation
// of the same name and keep the resulting store.
func (o *Organizer) MoveSection(sectionID, targetGroupID string) (StoreResult, error) {
	return o.applyStore(o.store.MoveSection(sectionID, targetGroupID))
}

func (o *Organizer) RemoveSection(sectionID string) (StoreResult, error) {
	return o.applyStore(o.store.RemoveSection(sectionID))
}

func (o *Organizer) ToggleRowCount(sectionID string, value bool) (StoreResult, error) {
	return o.applyStore(o.store.ToggleRowCount(sectionID, value))
}

func (o *Organizer) DeleteGroup(groupID string) (StoreResult, error) {
	return o.applyStore(o.store.DeleteGroup(groupID))
}

func (o *Organizer) CreateGroup(id, name string) (StoreResult, error) {
	return o.applyStore(o.store.CreateGroup(id, name))
}

func (o *Organizer) RenameGroup(id, name string) (StoreResult, error) {
	return o.applyStore(o.store.RenameGroup(id, name))
}

func (o *Organizer) AddSection(groupID string, section domain.PreparedSection) (StoreResult, error) {
	return o.applyStore(o.store.AddSection(groupID, section))
}

func (o *Organizer) ReorderSection(sectionID string, index int) (StoreResult, error) {
	return o.applyStore(o.store.ReorderSection(sectionID, index))
}

func (o *Organizer) applyStore(res StoreResult, err error) (StoreResult, error) {
	if err != nil {
		return StoreResult{}, err
	}
	o.store = res.Store
	return res, nil
}

func (o *Organizer) dragState() DragState {
	s := o.drag
	st := DragState{
		ActiveID:  s.activeID,
		OverIndex: s.overIndex,
		Offset:    s.offset,
		Seq:       s.seq,
		Valid:     s.valid,
	}
	if s.last != nil {
		p := *s.last
		st.Projection = &p
	}
	return st
}

func isRejectedProjection(err error) bool {
	var cycle *CycleError
	var structure *StructureError
	return errors.As(err, &cycle) || errors.As(err, &structure)
}

// applyMove relocates the subtree rooted at activeID to the projected
// position. view is the rendered list the projection was computed against
// (active subtree and collapsed children removed); tree is the full tree.
func applyMove(tree []domain.Item, view []domain.FlattenedItem, activeID string, p Projection) ([]domain.Item, bool, error) {
	full := Flatten(tree)
	activeIdx := indexOf(full, activeID)
	if activeIdx < 0 {
		return nil, false, &NotFoundError{Kind: "item", ID: activeID}
	}
	blockLen := 1 + len(DescendantIDs(full, activeID))

	block := append([]domain.FlattenedItem(nil), full[activeIdx:activeIdx+blockLen]...)
	rest := make([]domain.FlattenedItem, 0, len(full)-blockLen)
	rest = append(rest, full[:activeIdx]...)
	rest = append(rest, full[activeIdx+blockLen:]...)

	viewRest := make([]domain.FlattenedItem, 0, len(view))
	for _, f := range view {
		if f.ID != activeID {
			viewRest = append(viewRest, f)
		}
	}

	// Insert before the item that follows the drop position in the view.
	// This lands after any collapsed children of the preceding item.
	insertAt := len(rest)
	if p.OverIndex < len(viewRest) {
		insertAt = indexOf(rest, viewRest[p.OverIndex].ID)
		if insertAt < 0 {
			return nil, false, &NotFoundError{Kind: "item", ID: viewRest[p.OverIndex].ID}
		}
	}

	delta := p.Depth - block[0].Depth
	for i := range block {
		block[i].Depth += delta
	}
	block[0].ParentID = p.ParentID

	merged := make([]domain.FlattenedItem, 0, len(full))
	merged = append(merged, rest[:insertAt]...)
	merged = append(merged, block...)
	merged = append(merged, rest[insertAt:]...)

	changed := false
	for i := range merged {
		if merged[i].ID != full[i].ID || merged[i].Depth != full[i].Depth {
			changed = true
			break
		}
	}
	if !changed {
		return tree, false, nil
	}

	if got := parentAt(merged, insertAt); got != p.ParentOrEmpty() {
		return nil, false, &StructureError{
			Index:  p.OverIndex,
			ID:     activeID,
			Reason: fmt.Sprintf("projected parent %q but drop lands under %q", p.ParentOrEmpty(), got),
		}
	}

	next, err := Build(merged)
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}

// parentAt returns the ID of the nearest item before i that is one level
// shallower, or "" for a top-level item.
func parentAt(flat []domain.FlattenedItem, i int) string {
	for j := i - 1; j >= 0; j-- {
		if flat[j].Depth == flat[i].Depth-1 {
			return flat[j].ID
		}
	}
	return ""
}
