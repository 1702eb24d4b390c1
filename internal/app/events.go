package app

import (
	"github.com/bethropolis/ebb/internal/event"
	"github.com/bethropolis/ebb/internal/logger"
)

// handleHistoryChanged keeps the last history snapshot for the status line.
func (a *App) handleHistoryChanged(e event.Event) bool {
	if data, ok := e.Data.(event.HistoryChangedData); ok {
		a.lastHistoryOp = data
		logger.DebugTagf("app", "App: History %s (undo=%v redo=%v)", data.Op, data.CanUndo, data.CanRedo)
	}
	return false // Not consumed
}

func (a *App) handleBufferSaved(e event.Event) bool {
	if data, ok := e.Data.(event.BufferSavedData); ok {
		a.SetStatusMessage("Buffer saved to %s", data.FilePath)
	}
	return false
}

func (a *App) handleBufferLoaded(e event.Event) bool {
	if data, ok := e.Data.(event.BufferLoadedData); ok {
		name := data.FilePath
		if name == "" {
			name = "[No Name]"
		}
		a.SetStatusMessage("Loaded %s (%d lines)", name, a.editor.GetBuffer().LineCount())
	}
	return false
}
