// internal/core/editor.go
package core

import (
	"github.com/bethropolis/ebb/internal/buffer"
	"github.com/bethropolis/ebb/internal/core/clipboard"
	"github.com/bethropolis/ebb/internal/core/find"
	"github.com/bethropolis/ebb/internal/core/history"
	"github.com/bethropolis/ebb/internal/core/text"
	"github.com/bethropolis/ebb/internal/event"
	"github.com/bethropolis/ebb/internal/logger"
	"github.com/bethropolis/ebb/internal/types"
	"github.com/bethropolis/ebb/internal/utils"
)

// Editor ties a buffer to a cursor, a selection and an undo history.
// Like the history it owns, an Editor belongs to the input goroutine.
type Editor struct {
	buffer buffer.Buffer
	Cursor types.Position

	// --- Selection State ---
	selecting      bool
	selectionStart types.Position // Anchor
	selectionEnd   types.Position // Follows the cursor

	eventManager *event.Manager
	history      *history.Coordinator

	textOps          *text.Operations
	clipboardManager *clipboard.Manager
	findManager      *find.Manager
}

// Option configures an Editor.
type Option func(*Editor)

// WithEventManager dispatches buffer and cursor events to mgr.
func WithEventManager(mgr *event.Manager) Option {
	return func(e *Editor) { e.eventManager = mgr }
}

// WithHistory uses c instead of a fresh coordinator.
func WithHistory(c *history.Coordinator) Option {
	return func(e *Editor) { e.history = c }
}

// WithSystemClipboard makes yank and paste go through the OS clipboard.
func WithSystemClipboard(enabled bool) Option {
	return func(e *Editor) {
		if e.clipboardManager != nil {
			e.clipboardManager.SetSystemClipboard(enabled)
		}
	}
}

// NewEditor creates a new Editor instance with a given buffer.
func NewEditor(buf buffer.Buffer, opts ...Option) *Editor {
	e := &Editor{
		buffer:         buf,
		selectionStart: types.Position{Line: -1, Col: -1},
		selectionEnd:   types.Position{Line: -1, Col: -1},
	}
	e.textOps = text.NewOperations(e)
	e.clipboardManager = clipboard.NewManager(e)
	e.findManager = find.NewManager(e)
	for _, opt := range opts {
		opt(e)
	}
	if e.history == nil {
		e.history = history.New(history.WithEventManager(e.eventManager))
	}
	return e
}

// GetBuffer returns the editor's buffer.
func (e *Editor) GetBuffer() buffer.Buffer {
	return e.buffer
}

// TextRange returns a copy of the text between start and end.
func (e *Editor) TextRange(start, end types.Position) []byte {
	return e.buffer.TextRange(start, end)
}

// GetEventManager returns the event manager, which may be nil.
func (e *Editor) GetEventManager() *event.Manager {
	return e.eventManager
}

// GetHistory returns the coordinator recording this editor's edits.
func (e *Editor) GetHistory() *history.Coordinator {
	return e.history
}

// GetCursor returns the current cursor position.
func (e *Editor) GetCursor() types.Position {
	return e.Cursor
}

// SetCursor moves the cursor to pos, clamped into the buffer.
func (e *Editor) SetCursor(pos types.Position) {
	clamped := e.clamp(pos)
	if clamped == e.Cursor {
		return
	}
	e.Cursor = clamped
	if e.eventManager != nil {
		e.eventManager.Dispatch(event.TypeCursorMoved, event.CursorMovedData{NewPosition: clamped})
	}
}

func (e *Editor) clamp(pos types.Position) types.Position {
	lineCount := e.buffer.LineCount()
	if pos.Line >= lineCount {
		pos.Line = lineCount - 1
	}
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	if line, err := e.buffer.Line(pos.Line); err == nil {
		if n := utils.RuneCount(line); pos.Col > n {
			pos.Col = n
		}
	}
	return pos
}

// Undo reverts the last committed edit. It reports whether anything changed.
func (e *Editor) Undo() bool {
	e.ClearSelection()
	return e.history.Undo()
}

// Redo reapplies the last undone edit. It reports whether anything changed.
func (e *Editor) Redo() bool {
	e.ClearSelection()
	return e.history.Redo()
}

// LoadFile replaces the buffer content from disk and forgets the history of
// the previous document.
func (e *Editor) LoadFile(path string) error {
	if err := e.buffer.Load(path); err != nil {
		return err
	}
	e.resetAfterLoad()
	return nil
}

// LoadBytes replaces the buffer content with content and clears history.
func (e *Editor) LoadBytes(content []byte) {
	e.buffer.LoadBytes(content)
	e.resetAfterLoad()
}

// resetAfterLoad forgets cursor, selection and history, then announces the
// new content so listeners holding derived state can rebuild it.
func (e *Editor) resetAfterLoad() {
	e.ClearSelection()
	e.Cursor = types.Position{}
	e.history.Clear()
	logger.Debugf("Editor: Buffer replaced, %d line(s)", e.buffer.LineCount())
	if e.eventManager != nil {
		e.eventManager.Dispatch(event.TypeBufferLoaded, event.BufferLoadedData{FilePath: e.buffer.FilePath()})
	}
}

// SaveBuffer writes the buffer to path, or to its own path when path is empty.
func (e *Editor) SaveBuffer(path string) error {
	if err := e.buffer.Save(path); err != nil {
		return err
	}
	if e.eventManager != nil {
		e.eventManager.Dispatch(event.TypeBufferSaved, event.BufferSavedData{FilePath: e.buffer.FilePath()})
	}
	return nil
}
