package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/ebb/internal/buffer"
	"github.com/bethropolis/ebb/internal/event"
	"github.com/bethropolis/ebb/internal/types"
)

func newEditor(t *testing.T, content string, opts ...Option) *Editor {
	t.Helper()
	e := NewEditor(buffer.NewSliceBuffer(), opts...)
	e.LoadBytes([]byte(content))
	return e
}

func bufText(e *Editor) string { return string(e.GetBuffer().Bytes()) }

func TestSetCursorClamps(t *testing.T) {
	e := newEditor(t, "ab\ncdef")

	e.SetCursor(types.Position{Line: 9, Col: 9})
	assert.Equal(t, types.Position{Line: 1, Col: 4}, e.GetCursor())

	e.SetCursor(types.Position{Line: -1, Col: -3})
	assert.Equal(t, types.Position{}, e.GetCursor())
}

func TestMoveCursorWraps(t *testing.T) {
	e := newEditor(t, "ab\ncd")
	e.SetCursor(types.Position{Line: 0, Col: 2})

	e.MoveCursor(0, 1)
	assert.Equal(t, types.Position{Line: 1, Col: 0}, e.GetCursor())
	e.MoveCursor(0, -1)
	assert.Equal(t, types.Position{Line: 0, Col: 2}, e.GetCursor())
	e.MoveCursor(1, 0)
	assert.Equal(t, types.Position{Line: 1, Col: 2}, e.GetCursor())

	e.MoveToLineStart()
	assert.Equal(t, 0, e.GetCursor().Col)
	e.MoveToLineEnd()
	assert.Equal(t, 2, e.GetCursor().Col)
}

func TestSelection(t *testing.T) {
	e := newEditor(t, "hello world")

	e.SetSelection(types.Position{Col: 11}, types.Position{Col: 6})
	start, end, ok := e.GetSelection()
	require.True(t, ok)
	assert.Equal(t, types.Position{Col: 6}, start)
	assert.Equal(t, types.Position{Col: 11}, end)
	assert.Equal(t, types.Position{Col: 6}, e.GetCursor())

	e.ClearSelection()
	assert.False(t, e.HasSelection())

	e.StartOrUpdateSelection(e.GetCursor())
	assert.False(t, e.HasSelection(), "an empty selection is not active")
	e.MoveCursor(0, 2)
	e.StartOrUpdateSelection(e.GetCursor())
	start, end, ok = e.GetSelection()
	require.True(t, ok)
	assert.Equal(t, types.Position{Col: 6}, start)
	assert.Equal(t, types.Position{Col: 8}, end)
}

func TestEditUndoRedo(t *testing.T) {
	e := newEditor(t, "hello")
	e.MoveToLineEnd()

	require.NoError(t, e.InsertText([]byte(" world")))
	require.NoError(t, e.InsertNewLine())
	assert.Equal(t, "hello world\n", bufText(e))

	assert.True(t, e.Undo())
	assert.Equal(t, "hello world", bufText(e))
	assert.True(t, e.Undo())
	assert.Equal(t, "hello", bufText(e))
	assert.False(t, e.Undo())

	assert.True(t, e.Redo())
	assert.Equal(t, "hello world", bufText(e))
	assert.Equal(t, types.Position{Col: 11}, e.GetCursor())
}

func TestYankPasteIsOneStep(t *testing.T) {
	e := newEditor(t, "copy me|")
	e.SetSelection(types.Position{Col: 0}, types.Position{Col: 4})

	ok, err := e.YankSelection()
	require.NoError(t, err)
	require.True(t, ok)

	e.SetSelection(types.Position{Col: 7}, types.Position{Col: 8})
	ok, err = e.Paste()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "copy mecopy", bufText(e))
	assert.Equal(t, "Clipboard.Paste", e.GetHistory().UndoLabel())

	undo, _ := e.GetHistory().Len()
	assert.Equal(t, 1, undo, "selection delete and insert share the paste unit")
	require.True(t, e.Undo())
	assert.Equal(t, "copy me|", bufText(e))
}

func TestReplaceAndPreview(t *testing.T) {
	e := newEditor(t, "x = 1\ny = 1")

	n, err := e.PreviewReplace("1", "2", false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, e.HasPreview())
	assert.True(t, e.CancelPreview())
	assert.Equal(t, "x = 1\ny = 1", bufText(e))

	n, err = e.Replace("1", "3", false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "x = 3\ny = 1", bufText(e))
	assert.False(t, e.CommitPreview())
}

func TestLoadClearsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("from disk"), 0644))

	events := event.NewManager()
	var loaded, saved string
	events.Subscribe(event.TypeBufferLoaded, func(ev event.Event) bool {
		loaded = ev.Data.(event.BufferLoadedData).FilePath
		return false
	})
	events.Subscribe(event.TypeBufferSaved, func(ev event.Event) bool {
		saved = ev.Data.(event.BufferSavedData).FilePath
		return false
	})

	e := newEditor(t, "scratch", WithEventManager(events))
	require.NoError(t, e.InsertText([]byte("!")))
	require.True(t, e.GetHistory().CanUndo())

	require.NoError(t, e.LoadFile(path))
	assert.Equal(t, path, loaded)
	assert.Equal(t, "from disk", bufText(e))
	assert.False(t, e.GetHistory().CanUndo())
	assert.Equal(t, types.Position{}, e.GetCursor())

	require.NoError(t, e.InsertText([]byte(">> ")))
	require.NoError(t, e.SaveBuffer(""))
	assert.Equal(t, path, saved)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ">> from disk", string(data))
}

func TestHistoryEventsReachSubscribers(t *testing.T) {
	events := event.NewManager()
	var ops []event.HistoryOp
	events.Subscribe(event.TypeHistoryChanged, func(ev event.Event) bool {
		ops = append(ops, ev.Data.(event.HistoryChangedData).Op)
		return false
	})

	e := newEditor(t, "", WithEventManager(events))
	require.NoError(t, e.InsertRune('a'))
	e.Undo()
	e.Redo()

	assert.Equal(t, []event.HistoryOp{event.HistoryClear, event.HistoryCommit, event.HistoryUndo, event.HistoryRedo}, ops[len(ops)-4:])
}
