// internal/event/event.go
package event

import (
	"fmt"

	"github.com/bethropolis/ebb/internal/types"
)

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	// Document events
	TypeBufferModified // Buffer content changed (insert/delete), including during undo/redo
	TypeBufferLoaded   // A buffer was loaded from disk
	TypeBufferSaved    // A buffer was written to disk
	TypeCursorMoved    // The cursor position changed

	// History events
	TypeHistoryChanged // The undo or redo stack changed

	// Application lifecycle
	TypeAppReady
	TypeAppQuit
)

var typeNames = map[Type]string{
	TypeUnknown:        "unknown",
	TypeBufferModified: "buffer-modified",
	TypeBufferLoaded:   "buffer-loaded",
	TypeBufferSaved:    "buffer-saved",
	TypeCursorMoved:    "cursor-moved",
	TypeHistoryChanged: "history-changed",
	TypeAppReady:       "app-ready",
	TypeAppQuit:        "app-quit",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Event is the structure passed through the event bus.
type Event struct {
	Type Type
	Data interface{}
}

// BufferModifiedData carries the edit for incremental reparsing.
type BufferModifiedData struct {
	Edit types.EditInfo
}

// BufferLoadedData contains info about the loaded buffer.
type BufferLoadedData struct {
	FilePath string
}

// BufferSavedData contains info about the saved buffer.
type BufferSavedData struct {
	FilePath string
}

// CursorMovedData contains the new cursor position.
type CursorMovedData struct {
	NewPosition types.Position
}

// HistoryOp names the history transition that produced a HistoryChanged event.
type HistoryOp string

const (
	HistoryCommit HistoryOp = "commit"
	HistoryUndo   HistoryOp = "undo"
	HistoryRedo   HistoryOp = "redo"
	HistoryClear  HistoryOp = "clear"
)

// HistoryChangedData is a snapshot of the undo state after a transition,
// enough for a toolbar to enable/disable and label its buttons.
type HistoryChangedData struct {
	Op        HistoryOp
	CanUndo   bool
	CanRedo   bool
	UndoLabel string
	RedoLabel string
}

// AppQuitData could contain exit code or reason later.
type AppQuitData struct{}

// AppReadyData could contain initial config or state later.
type AppReadyData struct{}
