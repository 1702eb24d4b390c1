package find

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bethropolis/ebb/internal/buffer"
	"github.com/bethropolis/ebb/internal/core/history"
	"github.com/bethropolis/ebb/internal/logger"
	"github.com/bethropolis/ebb/internal/types"
	"github.com/bethropolis/ebb/internal/utils"
)

const logTag = "find"

var (
	// ErrEmptyPattern is returned when a search pattern is empty.
	ErrEmptyPattern = errors.New("search pattern cannot be empty")
	// ErrInvalidSubstitute is returned for a malformed /pattern/replacement/[g] string.
	ErrInvalidSubstitute = errors.New("invalid format: use /pattern/replacement/[g]")
	// ErrNoHistory is returned by PreviewReplace on an editor without undo history.
	ErrNoHistory = errors.New("preview requires an undo history")
)

// EditorInterface defines methods the find manager needs from the editor.
type EditorInterface interface {
	GetBuffer() buffer.Buffer
	GetCursor() types.Position
	SetCursor(types.Position)
	ReplaceRange(start, end types.Position, text []byte) error
	GetHistory() *history.Coordinator
}

// Manager handles substitution and its live preview.
type Manager struct {
	editor  EditorInterface
	preview *history.Batch // open while a preview awaits CommitPreview or CancelPreview
}

// NewManager creates a find manager.
func NewManager(editor EditorInterface) *Manager {
	return &Manager{editor: editor}
}

// ParseSubstituteCommand parses the /pattern/replacement/[g] command string.
func ParseSubstituteCommand(cmdStr string) (pattern, replacement string, global bool, err error) {
	// Simple parsing, doesn't handle escaped delimiters
	parts := strings.SplitN(cmdStr, "/", 4)
	if len(parts) < 3 || parts[0] != "" {
		err = ErrInvalidSubstitute
		return
	}

	pattern = parts[1]
	replacement = parts[2]

	if pattern == "" {
		err = ErrEmptyPattern
		return
	}

	if len(parts) > 3 && strings.Contains(parts[3], "g") {
		global = true
	}
	return
}

func compile(patternStr string) (*regexp.Regexp, error) {
	if patternStr == "" {
		return nil, ErrEmptyPattern
	}
	re, err := regexp.Compile(patternStr)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern: %w", err)
	}
	return re, nil
}

// replaceLine substitutes the first (or every, when global) match on lineIdx.
// Matches are replaced right to left so earlier offsets stay valid.
// It returns the number of replacements and the start of the first match.
func (m *Manager) replaceLine(re *regexp.Regexp, lineIdx int, replacement string, global bool) (int, types.Position, error) {
	first := types.Position{Line: lineIdx}
	lineBytes, err := m.editor.GetBuffer().Line(lineIdx)
	if err != nil {
		return 0, first, fmt.Errorf("cannot get line %d: %w", lineIdx, err)
	}
	lineBytes = append([]byte(nil), lineBytes...)

	n := 1
	if global {
		n = -1
	}
	matches := re.FindAllSubmatchIndex(lineBytes, n)
	if len(matches) > 0 {
		first.Col = utils.ByteOffsetToRuneIndex(lineBytes, matches[0][0])
	}
	for i := len(matches) - 1; i >= 0; i-- {
		loc := matches[i]
		text := re.Expand(nil, []byte(replacement), lineBytes, loc)
		start := types.Position{Line: lineIdx, Col: utils.ByteOffsetToRuneIndex(lineBytes, loc[0])}
		end := types.Position{Line: lineIdx, Col: utils.ByteOffsetToRuneIndex(lineBytes, loc[1])}
		if err := m.editor.ReplaceRange(start, end, text); err != nil {
			return len(matches) - 1 - i, first, err
		}
	}
	return len(matches), first, nil
}

// Replace substitutes matches on the cursor line: the first one, or all of
// them when global is set. The replacement may use $1-style group
// references. All substitutions form one undo step named Find.Replace and
// the cursor ends at the start of the first match.
func (m *Manager) Replace(patternStr, replacement string, global bool) (int, error) {
	re, err := compile(patternStr)
	if err != nil {
		return 0, err
	}

	cursor := m.editor.GetCursor()
	count := 0
	var first types.Position
	run := func() error {
		var err error
		count, first, err = m.replaceLine(re, cursor.Line, replacement, global)
		return err
	}
	if h := m.editor.GetHistory(); h != nil {
		err = h.Do("Find.Replace", run)
	} else {
		err = run()
	}
	if err != nil {
		return 0, fmt.Errorf("replace failed: %w", err)
	}

	if count > 0 {
		m.editor.SetCursor(first)
	}
	logger.DebugTagf(logTag, "Replace: Replaced %d occurrence(s) of '%s' on line %d", count, patternStr, cursor.Line)
	return count, nil
}

// HasPreview reports whether a preview is waiting to be committed or cancelled.
func (m *Manager) HasPreview() bool {
	return m.preview != nil
}

// PreviewReplace applies the substitution to every line of the buffer
// tentatively. The edits stay in the document until CommitPreview keeps them
// as one undo step or CancelPreview rewinds them without touching history.
// Calling it again while a preview is pending rewinds the previous preview
// first, so it can follow a pattern as it is typed.
func (m *Manager) PreviewReplace(patternStr, replacement string, global bool) (int, error) {
	h := m.editor.GetHistory()
	if h == nil {
		return 0, ErrNoHistory
	}
	re, err := compile(patternStr)
	if err != nil {
		return 0, err
	}
	m.CancelPreview()

	m.preview = h.StartBatch("Find.Replace")
	count := 0
	h.RunInTemp(func() {
		for lineIdx := 0; lineIdx < m.editor.GetBuffer().LineCount(); lineIdx++ {
			var n int
			n, _, err = m.replaceLine(re, lineIdx, replacement, global)
			count += n
			if err != nil {
				return
			}
		}
	})
	if err != nil {
		m.CancelPreview()
		return 0, fmt.Errorf("preview failed: %w", err)
	}

	logger.DebugTagf(logTag, "PreviewReplace: %d tentative replacement(s) of '%s'", count, patternStr)
	return count, nil
}

// CommitPreview keeps the previewed edits as one undo step. It returns false
// when no preview is pending.
func (m *Manager) CommitPreview() bool {
	if m.preview == nil {
		return false
	}
	h := m.editor.GetHistory()
	h.ClearTempBatch()
	m.preview.End()
	m.preview = nil
	logger.DebugTagf(logTag, "Preview committed")
	return true
}

// CancelPreview rewinds the previewed edits and leaves history untouched. It
// returns false when no preview is pending.
func (m *Manager) CancelPreview() bool {
	if m.preview == nil {
		return false
	}
	h := m.editor.GetHistory()
	b := m.preview
	m.preview = nil
	defer b.Cancel()
	h.UndoTempBatch()
	logger.DebugTagf(logTag, "Preview cancelled")
	return true
}
