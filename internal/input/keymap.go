// internal/input/keymap.go
package input

import (
	"github.com/gdamore/tcell/v2"
)

// Keymap maps special keys to editor actions.
type Keymap map[tcell.Key]Action

// InputProcessor translates tcell events into ActionEvents.
type InputProcessor struct {
	keymap      Keymap // plain and Ctrl+letter keys
	shiftKeymap Keymap // keys pressed with Shift
}

// NewInputProcessor creates a processor with default keybindings.
func NewInputProcessor() *InputProcessor {
	p := &InputProcessor{
		keymap:      make(Keymap),
		shiftKeymap: make(Keymap),
	}
	p.loadDefaultBindings()
	return p
}

func (p *InputProcessor) loadDefaultBindings() {
	// --- Simple Keys ---
	p.keymap[tcell.KeyUp] = ActionMoveUp
	p.keymap[tcell.KeyDown] = ActionMoveDown
	p.keymap[tcell.KeyLeft] = ActionMoveLeft
	p.keymap[tcell.KeyRight] = ActionMoveRight
	p.keymap[tcell.KeyHome] = ActionMoveHome
	p.keymap[tcell.KeyEnd] = ActionMoveEnd
	p.keymap[tcell.KeyEnter] = ActionInsertNewLine
	p.keymap[tcell.KeyTab] = ActionInsertTab
	p.keymap[tcell.KeyBackspace] = ActionDeleteCharBackward
	p.keymap[tcell.KeyBackspace2] = ActionDeleteCharBackward // Often used for Backspace
	p.keymap[tcell.KeyDelete] = ActionDeleteCharForward

	// --- Ctrl Keys ---
	p.keymap[tcell.KeyCtrlZ] = ActionUndo
	p.keymap[tcell.KeyCtrlY] = ActionRedo
	p.keymap[tcell.KeyCtrlC] = ActionYank
	p.keymap[tcell.KeyCtrlV] = ActionPaste
	p.keymap[tcell.KeyCtrlS] = ActionSave
	p.keymap[tcell.KeyCtrlQ] = ActionQuit

	// --- Shift + movement extends the selection ---
	p.shiftKeymap[tcell.KeyUp] = ActionSelectUp
	p.shiftKeymap[tcell.KeyDown] = ActionSelectDown
	p.shiftKeymap[tcell.KeyLeft] = ActionSelectLeft
	p.shiftKeymap[tcell.KeyRight] = ActionSelectRight
}

// Bind maps key to action, replacing any default binding.
func (p *InputProcessor) Bind(key tcell.Key, action Action) {
	p.keymap[key] = action
}

// ProcessEvent takes a tcell key event and returns the corresponding ActionEvent.
func (p *InputProcessor) ProcessEvent(ev *tcell.EventKey) ActionEvent {
	key := ev.Key()
	mod := ev.Modifiers()

	// Ctrl+letter keys carry Ctrl in the key code itself.
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		mod &^= tcell.ModCtrl
	}

	if mod&tcell.ModShift != 0 {
		if action, ok := p.shiftKeymap[key]; ok {
			return ActionEvent{Action: action}
		}
	}

	if key == tcell.KeyRune {
		if mod&(tcell.ModCtrl|tcell.ModAlt) != 0 {
			return ActionEvent{Action: ActionUnknown}
		}
		return ActionEvent{Action: ActionInsertRune, Rune: ev.Rune()}
	}

	if mod&^tcell.ModShift == tcell.ModNone {
		if action, ok := p.keymap[key]; ok {
			return ActionEvent{Action: action}
		}
	}

	return ActionEvent{Action: ActionUnknown}
}
