package input

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// ErrUnknownKey is returned by ParseKey for an unrecognised key name.
var ErrUnknownKey = errors.New("unknown key")

var namedKeys = map[string]tcell.Key{
	"up":        tcell.KeyUp,
	"down":      tcell.KeyDown,
	"left":      tcell.KeyLeft,
	"right":     tcell.KeyRight,
	"home":      tcell.KeyHome,
	"end":       tcell.KeyEnd,
	"enter":     tcell.KeyEnter,
	"backspace": tcell.KeyBackspace2,
	"delete":    tcell.KeyDelete,
	"del":       tcell.KeyDelete,
	"tab":       tcell.KeyTab,
	"esc":       tcell.KeyEscape,
}

// ParseKey builds a key event from a spec such as "ctrl+z", "shift+left",
// "enter" or a single character like "a".
func ParseKey(spec string) (*tcell.EventKey, error) {
	parts := strings.Split(strings.TrimSpace(spec), "+")
	name := parts[len(parts)-1]
	mod := tcell.ModNone
	for _, m := range parts[:len(parts)-1] {
		switch strings.ToLower(m) {
		case "ctrl":
			mod |= tcell.ModCtrl
		case "shift":
			mod |= tcell.ModShift
		case "alt":
			mod |= tcell.ModAlt
		default:
			return nil, fmt.Errorf("%w: modifier %q", ErrUnknownKey, m)
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, spec)
	}

	if key, ok := namedKeys[strings.ToLower(name)]; ok {
		return tcell.NewEventKey(key, 0, mod), nil
	}

	if utf8.RuneCountInString(name) != 1 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	r, _ := utf8.DecodeRuneInString(name)
	if mod&tcell.ModCtrl != 0 {
		lower := r | 0x20
		if lower < 'a' || lower > 'z' {
			return nil, fmt.Errorf("%w: ctrl+%q", ErrUnknownKey, r)
		}
		return tcell.NewEventKey(tcell.KeyCtrlA+tcell.Key(lower-'a'), 0, mod), nil
	}
	return tcell.NewEventKey(tcell.KeyRune, r, mod), nil
}
