package core

import (
	"github.com/bethropolis/ebb/internal/types"
	"github.com/bethropolis/ebb/internal/utils"
)

// Text operations delegated to textOps. Each one is a single undo step.

func (e *Editor) InsertText(text []byte) error { return e.textOps.InsertText(text) }

func (e *Editor) InsertRune(r rune) error { return e.textOps.InsertRune(r) }

func (e *Editor) InsertNewLine() error { return e.textOps.InsertNewLine() }

func (e *Editor) DeleteBackward() error { return e.textOps.DeleteBackward() }

func (e *Editor) DeleteForward() error { return e.textOps.DeleteForward() }

func (e *Editor) DeleteRange(start, end types.Position) error {
	return e.textOps.DeleteRange(start, end)
}

func (e *Editor) ReplaceRange(start, end types.Position, text []byte) error {
	return e.textOps.ReplaceRange(start, end, text)
}

// Clipboard operations delegated to clipboardManager.

func (e *Editor) YankSelection() (bool, error) { return e.clipboardManager.YankSelection() }

func (e *Editor) Paste() (bool, error) { return e.clipboardManager.Paste() }

// Find/replace delegated to findManager.

func (e *Editor) Replace(pattern, replacement string, global bool) (int, error) {
	return e.findManager.Replace(pattern, replacement, global)
}

func (e *Editor) PreviewReplace(pattern, replacement string, global bool) (int, error) {
	return e.findManager.PreviewReplace(pattern, replacement, global)
}

func (e *Editor) CommitPreview() bool { return e.findManager.CommitPreview() }

func (e *Editor) CancelPreview() bool { return e.findManager.CancelPreview() }

func (e *Editor) HasPreview() bool { return e.findManager.HasPreview() }

// MoveCursor moves the cursor by deltaLine lines and deltaCol grapheme
// clusters, wrapping onto adjacent lines at line ends.
func (e *Editor) MoveCursor(deltaLine, deltaCol int) {
	pos := e.Cursor
	pos.Line += deltaLine
	pos = e.clamp(pos)

	for ; deltaCol < 0; deltaCol++ {
		if pos.Col > 0 {
			line, _ := e.buffer.Line(pos.Line)
			pos.Col = utils.PrevGraphemeCol(line, pos.Col)
		} else if pos.Line > 0 {
			pos.Line--
			line, _ := e.buffer.Line(pos.Line)
			pos.Col = utils.RuneCount(line)
		}
	}
	for ; deltaCol > 0; deltaCol-- {
		line, _ := e.buffer.Line(pos.Line)
		if pos.Col < utils.RuneCount(line) {
			pos.Col = utils.NextGraphemeCol(line, pos.Col)
		} else if pos.Line < e.buffer.LineCount()-1 {
			pos.Line++
			pos.Col = 0
		}
	}
	e.SetCursor(pos)
}

// MoveToLineStart moves the cursor to column 0.
func (e *Editor) MoveToLineStart() {
	e.SetCursor(types.Position{Line: e.Cursor.Line})
}

// MoveToLineEnd moves the cursor past the last rune of its line.
func (e *Editor) MoveToLineEnd() {
	line, _ := e.buffer.Line(e.Cursor.Line)
	e.SetCursor(types.Position{Line: e.Cursor.Line, Col: utils.RuneCount(line)})
}
