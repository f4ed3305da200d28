package organizer

import (
	"math"

	"github.com/alexanderramin/cvorganizer/internal/domain"
)

// Projection is the legal drop position computed for an item mid-drag.
type Projection struct {
	Depth    int
	MinDepth int
	MaxDepth int
	ParentID *string
	// OverIndex is the insertion index after clamping, counted in the list
	// with the active item removed.
	OverIndex int
}

// ParentOrEmpty returns the projected parent ID, or "" at the top level.
func (p Projection) ParentOrEmpty() string {
	if p.ParentID == nil {
		return ""
	}
	return *p.ParentID
}

// Project computes where the active item would land if dropped at overIndex
// with the pointer shifted horizontally by offset pixels.
//
// The target depth follows the item that would precede it, shifted by whole
// indent steps, and is clamped so that the item nests at most one level
// below its predecessor and never above the item that follows it. The
// parent is the nearest preceding item one level shallower; choosing the
// active item or one of its descendants yields a CycleError.
func Project(flat []domain.FlattenedItem, activeID string, overIndex int, offset, indentWidth float64) (Projection, error) {
	if !(indentWidth > 0) || math.IsInf(indentWidth, 0) {
		return Projection{}, ErrInvalidIndentWidth
	}
	activeIdx := indexOf(flat, activeID)
	if activeIdx < 0 {
		return Projection{}, &NotFoundError{Kind: "item", ID: activeID}
	}

	descendants := make(map[string]bool)
	for _, id := range DescendantIDs(flat, activeID) {
		descendants[id] = true
	}

	rest := make([]domain.FlattenedItem, 0, len(flat)-1)
	rest = append(rest, flat[:activeIdx]...)
	rest = append(rest, flat[activeIdx+1:]...)

	overIndex = min(max(overIndex, 0), len(rest))

	p := Projection{OverIndex: overIndex}
	rawDepth := 0
	if overIndex > 0 {
		previous := rest[overIndex-1]
		steps := 0.0
		if !math.IsNaN(offset) {
			// Anything beyond the list length is clamped away below anyway.
			limit := float64(len(flat) + 1)
			steps = math.Max(-limit, math.Min(limit, math.Round(offset/indentWidth)))
		}
		rawDepth = previous.Depth + int(steps)
		p.MaxDepth = previous.Depth + 1
	}
	if overIndex < len(rest) {
		p.MinDepth = rest[overIndex].Depth
	}
	p.Depth = max(p.MinDepth, min(rawDepth, p.MaxDepth))

	if p.Depth == 0 {
		return p, nil
	}
	for i := overIndex - 1; i >= 0; i-- {
		cand := rest[i]
		if cand.Depth < p.Depth-1 {
			break
		}
		if cand.Depth != p.Depth-1 {
			continue
		}
		if cand.ID == activeID || descendants[cand.ID] {
			return Projection{}, &CycleError{ActiveID: activeID, ParentID: cand.ID}
		}
		pid := cand.ID
		p.ParentID = &pid
		return p, nil
	}
	return Projection{}, &StructureError{Index: overIndex, ID: activeID, Reason: "no parent available at projected depth"}
}
