package core

import (
	"github.com/bethropolis/ebb/internal/logger"
	"github.com/bethropolis/ebb/internal/types"
)

// HasSelection returns true if there is an active, non-empty selection.
func (e *Editor) HasSelection() bool {
	return e.selecting && e.selectionStart != e.selectionEnd
}

// GetSelection returns the normalized selection range (start <= end).
// Returns two invalid positions and false if no selection is active.
func (e *Editor) GetSelection() (start types.Position, end types.Position, ok bool) {
	if !e.HasSelection() {
		return types.Position{Line: -1, Col: -1}, types.Position{Line: -1, Col: -1}, false
	}
	start, end = types.Ordered(e.selectionStart, e.selectionEnd)
	return start, end, true
}

// SetSelection selects from anchor to head and moves the cursor to head.
func (e *Editor) SetSelection(anchor, head types.Position) {
	anchor = e.clamp(anchor)
	e.SetCursor(head)
	e.selectionStart = anchor
	e.selectionEnd = e.Cursor
	e.selecting = true
	logger.Debugf("Editor: Selection %v-%v", e.selectionStart, e.selectionEnd)
}

// ClearSelection resets the selection state.
func (e *Editor) ClearSelection() {
	if !e.selecting {
		return
	}
	e.selecting = false
	e.selectionStart = types.Position{Line: -1, Col: -1}
	e.selectionEnd = types.Position{Line: -1, Col: -1}
	logger.Debugf("Editor: Selection cleared")
}

// StartOrUpdateSelection anchors a selection at the cursor if none is active,
// then moves its head to the cursor. Call it after a Shift+movement.
func (e *Editor) StartOrUpdateSelection(anchor types.Position) {
	if !e.selecting {
		e.selectionStart = anchor
		e.selecting = true
	}
	e.selectionEnd = e.Cursor
}
