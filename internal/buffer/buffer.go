// internal/buffer/buffer.go
package buffer

import (
	"errors"

	"github.com/bethropolis/ebb/internal/types"
)

var (
	// ErrNoFilePath is returned by Save when neither the buffer nor the caller names a file.
	ErrNoFilePath = errors.New("no file path specified for saving")
	// ErrLineOutOfRange is returned by Line for an index outside the buffer.
	ErrLineOutOfRange = errors.New("line index out of range")
)

// Buffer defines the interface for text buffer operations.
// Mutations report the edit in byte terms so a syntax tree can be updated
// incrementally.
type Buffer interface {
	Load(filePath string) error
	LoadBytes(content []byte)
	Lines() [][]byte
	Line(index int) ([]byte, error)
	LineCount() int
	Insert(pos types.Position, text []byte) (types.EditInfo, error)
	Delete(start, end types.Position) (types.EditInfo, error)
	TextRange(start, end types.Position) []byte
	Save(filePath string) error
	Bytes() []byte
	FilePath() string
	IsModified() bool
}
