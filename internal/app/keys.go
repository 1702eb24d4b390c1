package app

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/ebb/internal/input"
	"github.com/bethropolis/ebb/internal/logger"
)

// HandleKey maps a key event to an action and runs it. It returns false when
// the key is unbound or the action had nothing to do.
func (a *App) HandleKey(ev *tcell.EventKey) bool {
	actionEvent := a.inputProcessor.ProcessEvent(ev)
	if actionEvent.Action == input.ActionUnknown {
		logger.Debugf("App: No action bound to %s", ev.Name())
		return false
	}
	return a.executeAction(actionEvent)
}

// executeAction runs one editor action. Select actions extend the selection
// from the cursor; plain movement clears it.
func (a *App) executeAction(actionEvent input.ActionEvent) bool {
	ed := a.editor
	originalCursor := ed.GetCursor()
	actionProcessed := true

	switch actionEvent.Action {
	case input.ActionMoveUp, input.ActionMoveDown, input.ActionMoveLeft, input.ActionMoveRight,
		input.ActionMoveHome, input.ActionMoveEnd:
		ed.ClearSelection()
	}

	switch actionEvent.Action {
	case input.ActionQuit:
		if ed.GetBuffer().IsModified() {
			logger.Warnf("App: Quitting with unsaved changes")
		}
		a.quit = true

	case input.ActionSave:
		ed.ClearSelection()
		if err := ed.SaveBuffer(""); err != nil {
			a.SetStatusMessage("Save FAILED: %v", err)
			actionProcessed = false
		}

	// Movement actions
	case input.ActionMoveUp:
		ed.MoveCursor(-1, 0)
	case input.ActionMoveDown:
		ed.MoveCursor(1, 0)
	case input.ActionMoveLeft:
		ed.MoveCursor(0, -1)
	case input.ActionMoveRight:
		ed.MoveCursor(0, 1)
	case input.ActionMoveHome:
		ed.MoveToLineStart()
	case input.ActionMoveEnd:
		ed.MoveToLineEnd()

	// Selection actions
	case input.ActionSelectUp:
		ed.MoveCursor(-1, 0)
		ed.StartOrUpdateSelection(originalCursor)
	case input.ActionSelectDown:
		ed.MoveCursor(1, 0)
		ed.StartOrUpdateSelection(originalCursor)
	case input.ActionSelectLeft:
		ed.MoveCursor(0, -1)
		ed.StartOrUpdateSelection(originalCursor)
	case input.ActionSelectRight:
		ed.MoveCursor(0, 1)
		ed.StartOrUpdateSelection(originalCursor)

	// Text manipulation
	case input.ActionInsertRune:
		actionProcessed = a.reportEdit("Insert", ed.InsertRune(actionEvent.Rune))
	case input.ActionInsertNewLine:
		actionProcessed = a.reportEdit("Newline", ed.InsertNewLine())
	case input.ActionInsertTab:
		actionProcessed = a.reportEdit("Tab", ed.InsertText([]byte(strings.Repeat(" ", a.tabWidth))))
	case input.ActionDeleteCharBackward:
		actionProcessed = a.reportEdit("Backspace", ed.DeleteBackward())
	case input.ActionDeleteCharForward:
		actionProcessed = a.reportEdit("Delete", ed.DeleteForward())

	// History
	case input.ActionUndo:
		actionProcessed = a.undo()
	case input.ActionRedo:
		actionProcessed = a.redo()

	// Yank/Paste actions
	case input.ActionYank:
		copied, err := ed.YankSelection()
		if err != nil {
			a.SetStatusMessage("Yank failed: %v", err)
			actionProcessed = false
		} else if copied {
			a.SetStatusMessage("Text copied to clipboard")
		} else {
			a.SetStatusMessage("Nothing selected to copy")
			actionProcessed = false
		}

	case input.ActionPaste:
		pasted, err := ed.Paste()
		if err != nil {
			a.SetStatusMessage("Paste failed: %v", err)
			actionProcessed = false
		} else if !pasted {
			a.SetStatusMessage("Clipboard empty")
			actionProcessed = false
		}

	default:
		logger.Debugf("App: Unhandled action %s", actionEvent.Action)
		actionProcessed = false
	}

	return actionProcessed
}

func (a *App) reportEdit(what string, err error) bool {
	if err != nil {
		a.SetStatusMessage("%s failed: %v", what, err)
		logger.Debugf("App: %s error: %v", what, err)
		return false
	}
	return true
}

func (a *App) undo() bool {
	if err := a.checkNoUserBatch(); err != nil {
		a.SetStatusMessage("Cannot undo: %v", err)
		return false
	}
	label := a.editor.GetHistory().UndoLabel()
	if !a.editor.Undo() {
		a.SetStatusMessage("Nothing to undo")
		return false
	}
	a.SetStatusMessage("Undid %s", label)
	return true
}

func (a *App) redo() bool {
	if err := a.checkNoUserBatch(); err != nil {
		a.SetStatusMessage("Cannot redo: %v", err)
		return false
	}
	label := a.editor.GetHistory().RedoLabel()
	if !a.editor.Redo() {
		a.SetStatusMessage("Nothing to redo")
		return false
	}
	a.SetStatusMessage("Redid %s", label)
	return true
}
