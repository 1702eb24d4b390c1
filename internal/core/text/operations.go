package text

import (
	"fmt"
	"unicode/utf8"

	"github.com/bethropolis/ebb/internal/buffer"
	"github.com/bethropolis/ebb/internal/core/history"
	"github.com/bethropolis/ebb/internal/event"
	"github.com/bethropolis/ebb/internal/logger"
	"github.com/bethropolis/ebb/internal/types"
	"github.com/bethropolis/ebb/internal/utils"
)

const logTag = "text"

// Operations handles text insertion/deletion. Every public method runs in
// its own batch named after it, so callers that open an outer batch get all
// the nested primitives as one undo step.
type Operations struct {
	editor EditorInterface
}

// EditorInterface defines editor methods needed
type EditorInterface interface {
	GetBuffer() buffer.Buffer
	GetCursor() types.Position
	SetCursor(pos types.Position)
	GetEventManager() *event.Manager
	ClearSelection()
	HasSelection() bool
	GetSelection() (start types.Position, end types.Position, ok bool)
	GetHistory() *history.Coordinator
}

// NewOperations creates a text operations manager
func NewOperations(editor EditorInterface) *Operations {
	return &Operations{
		editor: editor,
	}
}

func (o *Operations) do(name string, fn func() error) error {
	if h := o.editor.GetHistory(); h != nil {
		return h.Do(name, fn)
	}
	return fn()
}

func (o *Operations) record(undo, redo func()) {
	if h := o.editor.GetHistory(); h != nil {
		h.Record(undo, redo)
	}
}

func (o *Operations) dispatch(edit types.EditInfo) {
	if edit.IsZero() {
		return
	}
	if em := o.editor.GetEventManager(); em != nil {
		em.Dispatch(event.TypeBufferModified, event.BufferModifiedData{Edit: edit})
	}
}

// applyInsert mutates the buffer without recording and returns the end of
// the inserted text.
func (o *Operations) applyInsert(pos types.Position, text []byte) (types.Position, error) {
	edit, err := o.editor.GetBuffer().Insert(pos, text)
	if err != nil {
		return pos, fmt.Errorf("buffer insert failed: %w", err)
	}
	o.dispatch(edit)
	return utils.EndPosition(pos, text), nil
}

func (o *Operations) applyDelete(start, end types.Position) error {
	edit, err := o.editor.GetBuffer().Delete(start, end)
	if err != nil {
		return fmt.Errorf("buffer delete failed: %w", err)
	}
	o.dispatch(edit)
	return nil
}

// insertAt inserts text at pos, moves the cursor past it and records the
// inverse. Replay errors are logged since Action has no error return.
func (o *Operations) insertAt(pos types.Position, text []byte) error {
	if len(text) == 0 {
		return nil
	}
	cursorBefore := o.editor.GetCursor()
	end, err := o.applyInsert(pos, text)
	if err != nil {
		return err
	}
	o.editor.SetCursor(end)

	o.record(
		func() {
			if err := o.applyDelete(pos, end); err != nil {
				logger.ErrorTagf(logTag, "Undo insert at %v: %v", pos, err)
			}
			o.editor.SetCursor(cursorBefore)
		},
		func() {
			if _, err := o.applyInsert(pos, text); err != nil {
				logger.ErrorTagf(logTag, "Redo insert at %v: %v", pos, err)
			}
			o.editor.SetCursor(end)
		},
	)
	logger.DebugTagf(logTag, "Inserted %d byte(s) at %v", len(text), pos)
	return nil
}

// deleteBetween removes [start, end), leaves the cursor at start and records
// the inverse.
func (o *Operations) deleteBetween(start, end types.Position) error {
	start, end = types.Ordered(start, end)
	if start == end {
		return nil
	}
	cursorBefore := o.editor.GetCursor()
	deleted := o.editor.GetBuffer().TextRange(start, end)
	if err := o.applyDelete(start, end); err != nil {
		return err
	}
	o.editor.SetCursor(start)
	if len(deleted) == 0 {
		return nil
	}

	o.record(
		func() {
			if _, err := o.applyInsert(start, deleted); err != nil {
				logger.ErrorTagf(logTag, "Undo delete at %v: %v", start, err)
			}
			o.editor.SetCursor(cursorBefore)
		},
		func() {
			if err := o.applyDelete(start, end); err != nil {
				logger.ErrorTagf(logTag, "Redo delete at %v: %v", start, err)
			}
			o.editor.SetCursor(start)
		},
	)
	logger.DebugTagf(logTag, "Deleted %d byte(s) at %v-%v", len(deleted), start, end)
	return nil
}

// deleteSelection removes the selected text, if any, and reports whether it did.
func (o *Operations) deleteSelection() (bool, error) {
	start, end, ok := o.editor.GetSelection()
	if !ok {
		return false, nil
	}
	o.editor.ClearSelection()
	return true, o.DeleteRange(start, end)
}

// InsertText replaces the selection, if any, with text, or inserts text at
// the cursor.
func (o *Operations) InsertText(text []byte) error {
	return o.do("Operations.InsertText", func() error {
		if _, err := o.deleteSelection(); err != nil {
			return err
		}
		return o.insertAt(o.editor.GetCursor(), text)
	})
}

// InsertRune inserts a single rune at cursor
func (o *Operations) InsertRune(r rune) error {
	return o.do("Operations.InsertRune", func() error {
		return o.InsertText(utf8.AppendRune(nil, r))
	})
}

// InsertNewLine splits the line at the cursor.
func (o *Operations) InsertNewLine() error {
	return o.do("Operations.InsertNewLine", func() error {
		return o.InsertRune('\n')
	})
}

// DeleteRange removes the text between start and end, in either order.
func (o *Operations) DeleteRange(start, end types.Position) error {
	return o.do("Operations.DeleteRange", func() error {
		return o.deleteBetween(start, end)
	})
}

// ReplaceRange deletes [start, end) and inserts text in its place, as one step.
func (o *Operations) ReplaceRange(start, end types.Position, text []byte) error {
	return o.do("Operations.ReplaceRange", func() error {
		start, _ = types.Ordered(start, end)
		if err := o.DeleteRange(start, end); err != nil {
			return err
		}
		return o.insertAt(start, text)
	})
}

// DeleteBackward deletes the selection, or the grapheme cluster before the
// cursor, or the line break before it at column 0.
func (o *Operations) DeleteBackward() error {
	return o.do("Operations.DeleteBackward", func() error {
		if deleted, err := o.deleteSelection(); deleted || err != nil {
			return err
		}

		buf := o.editor.GetBuffer()
		end := o.editor.GetCursor()
		start := end
		switch {
		case end.Col > 0:
			line, err := buf.Line(end.Line)
			if err != nil {
				return fmt.Errorf("cannot get current line %d: %w", end.Line, err)
			}
			start.Col = utils.PrevGraphemeCol(line, end.Col)
		case end.Line > 0:
			prev, err := buf.Line(end.Line - 1)
			if err != nil {
				return fmt.Errorf("cannot get previous line %d: %w", end.Line-1, err)
			}
			start = types.Position{Line: end.Line - 1, Col: utils.RuneCount(prev)}
		default:
			return nil // At beginning of buffer
		}
		return o.DeleteRange(start, end)
	})
}

// DeleteForward deletes the selection, or the grapheme cluster after the
// cursor, or the line break at the end of the line.
func (o *Operations) DeleteForward() error {
	return o.do("Operations.DeleteForward", func() error {
		if deleted, err := o.deleteSelection(); deleted || err != nil {
			return err
		}

		buf := o.editor.GetBuffer()
		start := o.editor.GetCursor()
		line, err := buf.Line(start.Line)
		if err != nil {
			return fmt.Errorf("cannot get current line %d: %w", start.Line, err)
		}
		end := start
		switch {
		case start.Col < utils.RuneCount(line):
			end.Col = utils.NextGraphemeCol(line, start.Col)
		case start.Line < buf.LineCount()-1:
			end = types.Position{Line: start.Line + 1, Col: 0}
		default:
			return nil // At end of buffer
		}
		return o.DeleteRange(start, end)
	})
}
