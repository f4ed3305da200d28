package organizer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveDrag is returned by drag operations that need a session when none is active.
	ErrNoActiveDrag = errors.New("no drag in progress")

	// ErrInvalidIndentWidth is returned when the indentation width is not positive.
	ErrInvalidIndentWidth = errors.New("indent width must be positive")

	// ErrEmptyID is returned when a group or section ID is blank.
	ErrEmptyID = errors.New("identifier is required")
	// ErrEmptyName is returned when a group name is blank.
	ErrEmptyName = errors.New("name is required")
)

// StructureError reports malformed flattened input, such as a depth jump of more than one level.
type StructureError struct {
	Index  int
	ID     string
	Reason string
}

func (e *StructureError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid tree structure at position %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid tree structure at %q (position %d): %s", e.ID, e.Index, e.Reason)
}

// CycleError reports a move that would make an item its own ancestor.
type CycleError struct {
	ActiveID string
	ParentID string
}

func (e *CycleError) Error() string {
	if e.ActiveID == e.ParentID {
		return fmt.Sprintf("item %q cannot be its own parent", e.ActiveID)
	}
	return fmt.Sprintf("item %q cannot move under its descendant %q", e.ActiveID, e.ParentID)
}

// NotFoundError reports a referenced item or section that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// UnknownGroupError reports a target group that does not exist.
type UnknownGroupError struct {
	GroupID string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("unknown group: %s", e.GroupID)
}

// ProtectedGroupError reports an attempt to delete the hidden group.
type ProtectedGroupError struct {
	GroupID string
}

func (e *ProtectedGroupError) Error() string {
	return fmt.Sprintf("group %q is protected and cannot be deleted", e.GroupID)
}

// DragInProgressError reports an operation refused while a drag is active.
type DragInProgressError struct {
	ActiveID string
}

func (e *DragInProgressError) Error() string {
	return fmt.Sprintf("a drag of %q is already in progress", e.ActiveID)
}

// DuplicateError reports an identifier that would appear twice.
type DuplicateError struct {
	Kind string
	ID   string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %s", e.Kind, e.ID)
}
