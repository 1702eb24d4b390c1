// internal/types/position.go
package types

import "fmt"

// Position is a location in a buffer.
// Line is the 0-based line index.
// Col is the 0-based rune index within the line.
type Position struct {
	Line int
	Col  int // Rune index
}

// Before reports whether p sorts strictly before other.
func (p Position) Before(other Position) bool {
	return p.Line < other.Line || (p.Line == other.Line && p.Col < other.Col)
}

// Ordered returns a and b sorted so that start <= end.
func Ordered(a, b Position) (start, end Position) {
	if b.Before(a) {
		return b, a
	}
	return a, b
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}
