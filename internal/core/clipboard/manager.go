package clipboard

import (
	"fmt"

	sysclip "github.com/atotto/clipboard"

	"github.com/bethropolis/ebb/internal/core/history"
	"github.com/bethropolis/ebb/internal/logger"
	"github.com/bethropolis/ebb/internal/types"
)

const logTag = "clipboard"

// Backend is an external clipboard the manager mirrors yanks into and
// prefers when pasting.
type Backend interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// System is the OS clipboard.
type System struct{}

// Read returns the OS clipboard content.
func (System) Read() ([]byte, error) {
	if sysclip.Unsupported {
		return nil, fmt.Errorf("system clipboard unsupported on this platform")
	}
	s, err := sysclip.ReadAll()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Write replaces the OS clipboard content.
func (System) Write(data []byte) error {
	if sysclip.Unsupported {
		return fmt.Errorf("system clipboard unsupported on this platform")
	}
	return sysclip.WriteAll(string(data))
}

// Manager handles clipboard operations
type Manager struct {
	editor    EditorInterface
	clipboard []byte // internal register, always written
	backend   Backend
}

// EditorInterface defines methods needed from editor
type EditorInterface interface {
	GetSelection() (start types.Position, end types.Position, ok bool)
	ClearSelection()
	TextRange(start, end types.Position) []byte
	InsertText(text []byte) error
	GetHistory() *history.Coordinator
}

// NewManager creates a clipboard manager using only the internal register.
func NewManager(editor EditorInterface) *Manager {
	return &Manager{editor: editor}
}

// SetBackend mirrors yanks into b and pastes from it when it has content.
// A nil backend disables mirroring.
func (m *Manager) SetBackend(b Backend) {
	m.backend = b
}

// SetSystemClipboard toggles the OS clipboard backend.
func (m *Manager) SetSystemClipboard(enabled bool) {
	if enabled {
		m.backend = System{}
		return
	}
	m.backend = nil
}

// Register returns the internal register content.
func (m *Manager) Register() []byte {
	return m.clipboard
}

// YankSelection copies selected text to clipboard
func (m *Manager) YankSelection() (bool, error) {
	start, end, ok := m.editor.GetSelection()
	if !ok {
		return false, nil // Not an error, just nothing to yank
	}

	m.clipboard = m.editor.TextRange(start, end)
	if m.backend != nil {
		if err := m.backend.Write(m.clipboard); err != nil {
			logger.WarnTagf(logTag, "ClipboardManager: System clipboard write failed: %v", err)
		}
	}
	logger.DebugTagf(logTag, "ClipboardManager: Yanked %d bytes", len(m.clipboard))

	m.editor.ClearSelection()
	return true, nil
}

func (m *Manager) content() []byte {
	if m.backend != nil {
		data, err := m.backend.Read()
		if err == nil && len(data) > 0 {
			return data
		}
		if err != nil {
			logger.WarnTagf(logTag, "ClipboardManager: System clipboard read failed, using register: %v", err)
		}
	}
	return m.clipboard
}

// Paste replaces the selection, or inserts at the cursor, with the clipboard
// content. The whole paste is one undo step named Clipboard.Paste.
func (m *Manager) Paste() (bool, error) {
	content := m.content()
	if len(content) == 0 {
		return false, nil
	}

	paste := func() error { return m.editor.InsertText(content) }
	var err error
	if h := m.editor.GetHistory(); h != nil {
		err = h.Do("Clipboard.Paste", paste)
	} else {
		err = paste()
	}
	if err != nil {
		return false, fmt.Errorf("paste failed: %w", err)
	}

	logger.DebugTagf(logTag, "ClipboardManager: Pasted %d bytes", len(content))
	return true, nil
}
