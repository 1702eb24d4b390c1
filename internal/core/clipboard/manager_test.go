package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/ebb/internal/core/history"
	"github.com/bethropolis/ebb/internal/types"
)

type fakeEditor struct {
	text      string
	selection [2]types.Position
	selected  bool
	inserted  [][]byte
	depthSeen []int
	hist      *history.Coordinator
	insertErr error
}

func (f *fakeEditor) GetSelection() (types.Position, types.Position, bool) {
	return f.selection[0], f.selection[1], f.selected
}
func (f *fakeEditor) ClearSelection() { f.selected = false }
func (f *fakeEditor) TextRange(start, end types.Position) []byte {
	return []byte(f.text[start.Col:end.Col])
}
func (f *fakeEditor) GetHistory() *history.Coordinator { return f.hist }
func (f *fakeEditor) InsertText(text []byte) error {
	f.inserted = append(f.inserted, text)
	f.depthSeen = append(f.depthSeen, f.hist.Depth())
	if f.insertErr != nil {
		return f.insertErr
	}
	f.hist.Record(nil, nil)
	return nil
}

type memBackend struct {
	data     []byte
	readErr  error
	writeErr error
}

func (b *memBackend) Read() ([]byte, error) { return b.data, b.readErr }
func (b *memBackend) Write(data []byte) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	b.data = append([]byte(nil), data...)
	return nil
}

func newFake(text string) *fakeEditor {
	return &fakeEditor{text: text, hist: history.New()}
}

func TestYankWithoutSelection(t *testing.T) {
	m := NewManager(newFake("abc"))
	ok, err := m.YankSelection()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m.Register())
}

func TestYankThenPaste(t *testing.T) {
	ed := newFake("hello world")
	ed.selection = [2]types.Position{{Col: 0}, {Col: 5}}
	ed.selected = true
	m := NewManager(ed)

	ok, err := m.YankSelection()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), m.Register())
	assert.False(t, ed.selected, "yank clears the selection")

	ok, err = m.Paste()
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, ed.inserted, 1)
	assert.Equal(t, []byte("hello"), ed.inserted[0])
	assert.Equal(t, []int{1}, ed.depthSeen, "insert runs inside the paste batch")
	assert.Equal(t, "Clipboard.Paste", ed.hist.UndoLabel())
}

func TestPasteEmptyRegister(t *testing.T) {
	ed := newFake("x")
	m := NewManager(ed)
	ok, err := m.Paste()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, ed.inserted)
}

func TestPasteFailureCancelsBatch(t *testing.T) {
	ed := newFake("x")
	ed.insertErr = errors.New("disk full")
	m := NewManager(ed)
	m.clipboard = []byte("data")

	ok, err := m.Paste()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ed.insertErr)
	assert.False(t, ed.hist.CanUndo())
	assert.Equal(t, 0, ed.hist.Depth())
}

func TestBackendMirrorsAndWins(t *testing.T) {
	ed := newFake("abcdef")
	ed.selection = [2]types.Position{{Col: 1}, {Col: 3}}
	ed.selected = true
	backend := &memBackend{}
	m := NewManager(ed)
	m.SetBackend(backend)

	_, err := m.YankSelection()
	require.NoError(t, err)
	assert.Equal(t, []byte("bc"), backend.data)

	backend.data = []byte("from elsewhere")
	_, err = m.Paste()
	require.NoError(t, err)
	assert.Equal(t, []byte("from elsewhere"), ed.inserted[0])
}

func TestBackendFailureFallsBackToRegister(t *testing.T) {
	ed := newFake("abcdef")
	ed.selection = [2]types.Position{{Col: 0}, {Col: 2}}
	ed.selected = true
	backend := &memBackend{writeErr: errors.New("no display"), readErr: errors.New("no display")}
	m := NewManager(ed)
	m.SetBackend(backend)

	ok, err := m.YankSelection()
	require.NoError(t, err, "a backend failure only warns")
	assert.True(t, ok)

	_, err = m.Paste()
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), ed.inserted[0])
}

func TestSetSystemClipboard(t *testing.T) {
	m := NewManager(newFake(""))
	m.SetSystemClipboard(true)
	assert.IsType(t, System{}, m.backend)
	m.SetSystemClipboard(false)
	assert.Nil(t, m.backend)
}
