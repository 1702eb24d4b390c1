// internal/input/action.go
package input

// Action represents a command or operation to be performed by the editor.
type Action int

// Define the set of possible editor actions.
const (
	// --- Meta Actions ---
	ActionUnknown Action = iota // Default/invalid action
	ActionQuit
	ActionSave

	// --- Cursor Movement ---
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionMoveHome // Beginning of line
	ActionMoveEnd  // End of line

	// --- Selection ---
	ActionSelectUp
	ActionSelectDown
	ActionSelectLeft
	ActionSelectRight

	// --- Text Manipulation ---
	ActionInsertRune         // Requires Rune argument
	ActionInsertNewLine      // Enter
	ActionInsertTab          // Tab, expanded to spaces
	ActionDeleteCharForward  // Delete key
	ActionDeleteCharBackward // Backspace key

	// --- History / Clipboard ---
	ActionUndo
	ActionRedo
	ActionYank
	ActionPaste
)

var actionNames = map[Action]string{
	ActionUnknown:            "unknown",
	ActionQuit:               "quit",
	ActionSave:               "save",
	ActionMoveUp:             "move-up",
	ActionMoveDown:           "move-down",
	ActionMoveLeft:           "move-left",
	ActionMoveRight:          "move-right",
	ActionMoveHome:           "move-home",
	ActionMoveEnd:            "move-end",
	ActionSelectUp:           "select-up",
	ActionSelectDown:         "select-down",
	ActionSelectLeft:         "select-left",
	ActionSelectRight:        "select-right",
	ActionInsertRune:         "insert-rune",
	ActionInsertNewLine:      "insert-newline",
	ActionInsertTab:          "insert-tab",
	ActionDeleteCharForward:  "delete-forward",
	ActionDeleteCharBackward: "delete-backward",
	ActionUndo:               "undo",
	ActionRedo:               "redo",
	ActionYank:               "yank",
	ActionPaste:              "paste",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ActionEvent represents a decoded input event resulting in an action.
type ActionEvent struct {
	Action Action
	Rune   rune // Used for ActionInsertRune
}
