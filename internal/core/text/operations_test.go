package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/ebb/internal/buffer"
	"github.com/bethropolis/ebb/internal/core/history"
	"github.com/bethropolis/ebb/internal/event"
	"github.com/bethropolis/ebb/internal/types"
)

type fakeEditor struct {
	buf      *buffer.SliceBuffer
	cursor   types.Position
	selStart types.Position
	selEnd   types.Position
	selected bool
	events   *event.Manager
	hist     *history.Coordinator
}

func newFakeEditor(content string) *fakeEditor {
	buf := buffer.NewSliceBuffer()
	buf.LoadBytes([]byte(content))
	return &fakeEditor{buf: buf, events: event.NewManager(), hist: history.New()}
}

func (f *fakeEditor) GetBuffer() buffer.Buffer { return f.buf }
func (f *fakeEditor) GetCursor() types.Position { return f.cursor }
func (f *fakeEditor) SetCursor(p types.Position) { f.cursor = p }
func (f *fakeEditor) GetEventManager() *event.Manager { return f.events }
func (f *fakeEditor) ClearSelection() { f.selected = false }
func (f *fakeEditor) HasSelection() bool { return f.selected && f.selStart != f.selEnd }
func (f *fakeEditor) GetHistory() *history.Coordinator { return f.hist }
func (f *fakeEditor) selectRange(a, b types.Position) { f.selStart, f.selEnd, f.selected = a, b, true }
func (f *fakeEditor) text() string { return string(f.buf.Bytes()) }

func (f *fakeEditor) GetSelection() (types.Position, types.Position, bool) {
	if !f.HasSelection() {
		return types.Position{}, types.Position{}, false
	}
	s, e := types.Ordered(f.selStart, f.selEnd)
	return s, e, true
}

func pos(line, col int) types.Position { return types.Position{Line: line, Col: col} }

func TestInsertTextUndoRedo(t *testing.T) {
	ed := newFakeEditor("hello")
	ops := NewOperations(ed)
	ed.cursor = pos(0, 5)

	require.NoError(t, ops.InsertText([]byte(" world")))
	assert.Equal(t, "hello world", ed.text())
	assert.Equal(t, pos(0, 11), ed.cursor)
	assert.Equal(t, "Operations.InsertText", ed.hist.UndoLabel())

	require.True(t, ed.hist.Undo())
	assert.Equal(t, "hello", ed.text())
	assert.Equal(t, pos(0, 5), ed.cursor)

	require.True(t, ed.hist.Redo())
	assert.Equal(t, "hello world", ed.text())
	assert.Equal(t, pos(0, 11), ed.cursor)
}

func TestInsertRuneAndNewLineAreSingleSteps(t *testing.T) {
	ed := newFakeEditor("ab")
	ops := NewOperations(ed)
	ed.cursor = pos(0, 1)

	require.NoError(t, ops.InsertNewLine())
	assert.Equal(t, "a\nb", ed.text())
	assert.Equal(t, pos(1, 0), ed.cursor)
	assert.Equal(t, "Operations.InsertNewLine", ed.hist.UndoLabel(), "the outermost batch names the unit")

	require.NoError(t, ops.InsertRune('x'))
	undo, _ := ed.hist.Len()
	assert.Equal(t, 2, undo)

	require.True(t, ed.hist.Undo())
	require.True(t, ed.hist.Undo())
	assert.Equal(t, "ab", ed.text())
}

func TestInsertReplacesSelection(t *testing.T) {
	ed := newFakeEditor("hello world")
	ops := NewOperations(ed)
	ed.selectRange(pos(0, 0), pos(0, 5))
	ed.cursor = pos(0, 5)

	require.NoError(t, ops.InsertText([]byte("bye")))
	assert.Equal(t, "bye world", ed.text())
	assert.False(t, ed.HasSelection())

	undo, _ := ed.hist.Len()
	assert.Equal(t, 1, undo, "delete and insert form one step")
	require.True(t, ed.hist.Undo())
	assert.Equal(t, "hello world", ed.text())
	assert.Equal(t, pos(0, 5), ed.cursor)
}

func TestReplaceRangeIsOneStep(t *testing.T) {
	ed := newFakeEditor("one two three")
	ops := NewOperations(ed)

	require.NoError(t, ops.ReplaceRange(pos(0, 7), pos(0, 4), []byte("2")))
	assert.Equal(t, "one 2 three", ed.text())
	assert.Equal(t, pos(0, 5), ed.cursor)
	assert.Equal(t, "Operations.ReplaceRange", ed.hist.UndoLabel())

	require.True(t, ed.hist.Undo())
	assert.Equal(t, "one two three", ed.text())
	assert.False(t, ed.hist.CanUndo())

	require.True(t, ed.hist.Redo())
	assert.Equal(t, "one 2 three", ed.text())
}

func TestDeleteBackward(t *testing.T) {
	t.Run("within line", func(t *testing.T) {
		ed := newFakeEditor("abc")
		ops := NewOperations(ed)
		ed.cursor = pos(0, 2)
		require.NoError(t, ops.DeleteBackward())
		assert.Equal(t, "ac", ed.text())
		assert.Equal(t, pos(0, 1), ed.cursor)
	})

	t.Run("joins lines", func(t *testing.T) {
		ed := newFakeEditor("ab\ncd")
		ops := NewOperations(ed)
		ed.cursor = pos(1, 0)
		require.NoError(t, ops.DeleteBackward())
		assert.Equal(t, "abcd", ed.text())
		assert.Equal(t, pos(0, 2), ed.cursor)

		require.True(t, ed.hist.Undo())
		assert.Equal(t, "ab\ncd", ed.text())
		assert.Equal(t, pos(1, 0), ed.cursor)
	})

	t.Run("start of buffer", func(t *testing.T) {
		ed := newFakeEditor("ab")
		ops := NewOperations(ed)
		require.NoError(t, ops.DeleteBackward())
		assert.Equal(t, "ab", ed.text())
		assert.False(t, ed.hist.CanUndo(), "nothing recorded, nothing committed")
	})

	t.Run("grapheme cluster", func(t *testing.T) {
		ed := newFakeEditor("xe\u0301")
		ops := NewOperations(ed)
		ed.cursor = pos(0, 3)
		require.NoError(t, ops.DeleteBackward())
		assert.Equal(t, "x", ed.text(), "base and combining mark go together")
	})

	t.Run("selection", func(t *testing.T) {
		ed := newFakeEditor("one\ntwo")
		ops := NewOperations(ed)
		ed.selectRange(pos(1, 1), pos(0, 1))
		require.NoError(t, ops.DeleteBackward())
		assert.Equal(t, "owo", ed.text())
		assert.Equal(t, pos(0, 1), ed.cursor)
	})
}

func TestDeleteForward(t *testing.T) {
	ed := newFakeEditor("ab\ncd")
	ops := NewOperations(ed)
	ed.cursor = pos(0, 1)

	require.NoError(t, ops.DeleteForward())
	assert.Equal(t, "a\ncd", ed.text())
	require.NoError(t, ops.DeleteForward())
	assert.Equal(t, "acd", ed.text())
	assert.Equal(t, pos(0, 1), ed.cursor)

	ed.cursor = pos(0, 3)
	require.NoError(t, ops.DeleteForward())
	assert.Equal(t, "acd", ed.text())

	require.True(t, ed.hist.Undo())
	require.True(t, ed.hist.Undo())
	assert.Equal(t, "ab\ncd", ed.text())
}

func TestOuterBatchGroupsPrimitives(t *testing.T) {
	ed := newFakeEditor("")
	ops := NewOperations(ed)

	err := ed.hist.Do("Typing", func() error {
		for _, r := range "hi!" {
			if err := ops.InsertRune(r); err != nil {
				return err
			}
		}
		return ops.DeleteBackward()
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", ed.text())
	assert.Equal(t, "Typing", ed.hist.UndoLabel())

	require.True(t, ed.hist.Undo())
	assert.Equal(t, "", ed.text())
	assert.Equal(t, pos(0, 0), ed.cursor)
	assert.False(t, ed.hist.CanUndo())
}

func TestBufferModifiedEvents(t *testing.T) {
	ed := newFakeEditor("abc")
	ops := NewOperations(ed)
	var edits []types.EditInfo
	ed.events.Subscribe(event.TypeBufferModified, func(e event.Event) bool {
		edits = append(edits, e.Data.(event.BufferModifiedData).Edit)
		return false
	})

	require.NoError(t, ops.InsertText([]byte("xy")))
	require.True(t, ed.hist.Undo())

	require.Len(t, edits, 2, "replay also reports buffer edits")
	assert.Equal(t, uint32(2), edits[0].NewEndIndex)
	assert.Equal(t, uint32(2), edits[1].OldEndIndex)
	assert.Equal(t, uint32(0), edits[1].NewEndIndex)
}

func TestWithoutHistory(t *testing.T) {
	ed := newFakeEditor("a")
	ed.hist = nil
	ops := NewOperations(ed)

	require.NoError(t, ops.InsertText([]byte("b")))
	assert.Equal(t, "ba", ed.text())
}
