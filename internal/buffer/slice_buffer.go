// internal/buffer/slice_buffer.go
package buffer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/bethropolis/ebb/internal/logger"
	"github.com/bethropolis/ebb/internal/types"
	"github.com/bethropolis/ebb/internal/utils"
)

// SliceBuffer stores the document as one byte slice per line, without the
// trailing newlines.
type SliceBuffer struct {
	lines    [][]byte
	filePath string
	modified bool
}

// NewSliceBuffer creates an empty SliceBuffer holding a single empty line.
func NewSliceBuffer() *SliceBuffer {
	return &SliceBuffer{
		lines: [][]byte{{}},
	}
}

// Load reads a file into the buffer, replacing existing content. A missing
// file yields an empty buffer bound to that path.
func (sb *SliceBuffer) Load(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sb.lines = [][]byte{{}}
			sb.filePath = filePath
			sb.modified = false
			logger.Debugf("Buffer: '%s' does not exist, starting empty", filePath)
			return nil
		}
		return fmt.Errorf("failed to open file '%s': %w", filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	newLines := [][]byte{}
	for scanner.Scan() {
		newLines = append(newLines, bytes.Clone(scanner.Bytes()))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file '%s': %w", filePath, err)
	}
	if len(newLines) == 0 {
		newLines = append(newLines, []byte{})
	}
	sb.lines = newLines
	sb.filePath = filePath
	sb.modified = false
	logger.Debugf("Buffer: Loaded %d line(s) from '%s'", len(sb.lines), filePath)
	return nil
}

// LoadBytes replaces the content with content split on '\n'. The file path is kept.
func (sb *SliceBuffer) LoadBytes(content []byte) {
	parts := bytes.Split(content, []byte("\n"))
	sb.lines = make([][]byte, len(parts))
	for i, p := range parts {
		sb.lines[i] = bytes.Clone(p)
		if sb.lines[i] == nil {
			sb.lines[i] = []byte{}
		}
	}
	sb.modified = false
}

// Lines returns the underlying line slices. Callers must not modify them.
func (sb *SliceBuffer) Lines() [][]byte {
	return sb.lines
}

// LineCount returns the number of lines, always at least one.
func (sb *SliceBuffer) LineCount() int {
	return len(sb.lines)
}

// Line returns the content of line index without its newline.
func (sb *SliceBuffer) Line(index int) ([]byte, error) {
	if index < 0 || index >= len(sb.lines) {
		return nil, fmt.Errorf("%w: %d (0-%d)", ErrLineOutOfRange, index, len(sb.lines)-1)
	}
	return sb.lines[index], nil
}

// Bytes joins the lines with '\n'.
func (sb *SliceBuffer) Bytes() []byte {
	return bytes.Join(sb.lines, []byte("\n"))
}

// Save writes the buffer to filePath, or to the path it was loaded from
// when filePath is empty.
func (sb *SliceBuffer) Save(filePath string) error {
	path := sb.filePath
	if filePath != "" {
		path = filePath
	}
	if path == "" {
		return ErrNoFilePath
	}

	if err := os.WriteFile(path, sb.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}

	sb.filePath = path
	sb.modified = false
	return nil
}

// IsModified returns true if the buffer has unsaved changes.
func (sb *SliceBuffer) IsModified() bool {
	return sb.modified
}

// FilePath returns the path the buffer was loaded from or last saved to.
func (sb *SliceBuffer) FilePath() string {
	return sb.filePath
}

// --- Buffer Modification Methods ---

// clamp moves pos onto an existing line and column and returns its byte
// offset within the line.
func (sb *SliceBuffer) clamp(pos types.Position) (types.Position, int) {
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= len(sb.lines) {
		pos.Line = len(sb.lines) - 1
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	line := sb.lines[pos.Line]
	if n := utils.RuneCount(line); pos.Col > n {
		pos.Col = n
	}
	return pos, utils.RuneIndexToByteOffset(line, pos.Col)
}

// byteIndex returns the offset of (line, byteCol) in Bytes().
func (sb *SliceBuffer) byteIndex(line, byteCol int) uint32 {
	idx := 0
	for i := 0; i < line; i++ {
		idx += len(sb.lines[i]) + 1
	}
	return uint32(idx + byteCol)
}

func point(line, byteCol int) sitter.Point {
	return sitter.Point{Row: uint32(line), Column: uint32(byteCol)}
}

// Insert inserts text at pos, which is clamped into the buffer. Text may
// span several lines.
func (sb *SliceBuffer) Insert(pos types.Position, text []byte) (types.EditInfo, error) {
	validPos, byteOffset := sb.clamp(pos)
	start := sb.byteIndex(validPos.Line, byteOffset)
	startPoint := point(validPos.Line, byteOffset)
	if len(text) == 0 {
		return types.EditInfo{
			StartIndex: start, OldEndIndex: start, NewEndIndex: start,
			StartPosition: startPoint, OldEndPosition: startPoint, NewEndPosition: startPoint,
		}, nil
	}

	sb.modified = true

	current := sb.lines[validPos.Line]
	head := bytes.Clone(current[:byteOffset])
	tail := bytes.Clone(current[byteOffset:])
	parts := bytes.Split(text, []byte("\n"))

	newLines := make([][]byte, len(parts))
	for i, p := range parts {
		newLines[i] = bytes.Clone(p)
	}
	newLines[0] = append(head, newLines[0]...)
	last := len(newLines) - 1
	endLine := validPos.Line + last
	endByteCol := len(newLines[last])
	newLines[last] = append(newLines[last], tail...)

	merged := make([][]byte, 0, len(sb.lines)+last)
	merged = append(merged, sb.lines[:validPos.Line]...)
	merged = append(merged, newLines...)
	merged = append(merged, sb.lines[validPos.Line+1:]...)
	sb.lines = merged

	return types.EditInfo{
		StartIndex:     start,
		OldEndIndex:    start,
		NewEndIndex:    start + uint32(len(text)),
		StartPosition:  startPoint,
		OldEndPosition: startPoint,
		NewEndPosition: point(endLine, endByteCol),
	}, nil
}

// Delete removes the text in [start, end). The positions may be given in
// either order and are clamped into the buffer.
func (sb *SliceBuffer) Delete(start, end types.Position) (types.EditInfo, error) {
	start, end = types.Ordered(start, end)
	vStart, startOffset := sb.clamp(start)
	vEnd, endOffset := sb.clamp(end)

	startIdx := sb.byteIndex(vStart.Line, startOffset)
	endIdx := sb.byteIndex(vEnd.Line, endOffset)
	startPoint := point(vStart.Line, startOffset)
	edit := types.EditInfo{
		StartIndex:     startIdx,
		OldEndIndex:    endIdx,
		NewEndIndex:    startIdx,
		StartPosition:  startPoint,
		OldEndPosition: point(vEnd.Line, endOffset),
		NewEndPosition: startPoint,
	}
	if vStart == vEnd {
		return edit, nil
	}

	sb.modified = true

	joined := append(bytes.Clone(sb.lines[vStart.Line][:startOffset]), sb.lines[vEnd.Line][endOffset:]...)
	merged := make([][]byte, 0, len(sb.lines)-(vEnd.Line-vStart.Line))
	merged = append(merged, sb.lines[:vStart.Line]...)
	merged = append(merged, joined)
	merged = append(merged, sb.lines[vEnd.Line+1:]...)
	sb.lines = merged

	return edit, nil
}

// TextRange returns a copy of the text in [start, end), with '\n' between lines.
func (sb *SliceBuffer) TextRange(start, end types.Position) []byte {
	start, end = types.Ordered(start, end)
	vStart, startOffset := sb.clamp(start)
	vEnd, endOffset := sb.clamp(end)

	if vStart.Line == vEnd.Line {
		return bytes.Clone(sb.lines[vStart.Line][startOffset:endOffset])
	}

	var out bytes.Buffer
	out.Write(sb.lines[vStart.Line][startOffset:])
	for i := vStart.Line + 1; i < vEnd.Line; i++ {
		out.WriteByte('\n')
		out.Write(sb.lines[i])
	}
	out.WriteByte('\n')
	out.Write(sb.lines[vEnd.Line][:endOffset])
	return out.Bytes()
}

// Ensure SliceBuffer satisfies the Buffer interface
var _ Buffer = (*SliceBuffer)(nil)
