package utils

import (
	"bytes"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/bethropolis/ebb/internal/types"
)

// RuneIndexToByteOffset converts a rune index to a byte offset in a byte slice.
// Returns -1 if runeIndex is out of bounds.
func RuneIndexToByteOffset(line []byte, runeIndex int) int {
	if runeIndex <= 0 {
		return 0
	}
	byteOffset := 0
	currentRune := 0
	for byteOffset < len(line) {
		if currentRune == runeIndex {
			return byteOffset
		}
		_, size := utf8.DecodeRune(line[byteOffset:])
		byteOffset += size
		currentRune++
	}
	if currentRune == runeIndex {
		return len(line)
	} // Allow index at the very end
	return -1 // Index out of bounds
}

// ByteOffsetToRuneIndex converts a byte offset to a rune index in a byte slice.
func ByteOffsetToRuneIndex(line []byte, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset > len(line) {
		byteOffset = len(line)
	} // Clamp offset
	runeIndex := 0
	currentOffset := 0
	for currentOffset < byteOffset {
		_, size := utf8.DecodeRune(line[currentOffset:])
		if currentOffset+size > byteOffset {
			break
		} // Don't count rune if offset is within it
		currentOffset += size
		runeIndex++
	}
	return runeIndex
}

// RuneCount returns the number of runes in line.
func RuneCount(line []byte) int {
	return utf8.RuneCount(line)
}

// EndPosition returns where the cursor lands after inserting text at start.
func EndPosition(start types.Position, text []byte) types.Position {
	nl := bytes.Count(text, []byte("\n"))
	if nl == 0 {
		return types.Position{Line: start.Line, Col: start.Col + utf8.RuneCount(text)}
	}
	last := text[bytes.LastIndexByte(text, '\n')+1:]
	return types.Position{Line: start.Line + nl, Col: utf8.RuneCount(last)}
}

// graphemeBounds returns the rune column where each grapheme cluster of line
// starts, followed by the line's rune count.
func graphemeBounds(line []byte) []int {
	bounds := []int{0}
	col := 0
	gr := uniseg.NewGraphemes(string(line))
	for gr.Next() {
		col += len(gr.Runes())
		bounds = append(bounds, col)
	}
	return bounds
}

// PrevGraphemeCol returns the start column of the grapheme cluster that ends
// at or spans col. It returns 0 at the start of the line.
func PrevGraphemeCol(line []byte, col int) int {
	if col <= 0 {
		return 0
	}
	prev := 0
	for _, b := range graphemeBounds(line) {
		if b >= col {
			return prev
		}
		prev = b
	}
	return prev
}

// NextGraphemeCol returns the end column of the grapheme cluster starting at
// or spanning col. At the end of the line it returns the rune count.
func NextGraphemeCol(line []byte, col int) int {
	bounds := graphemeBounds(line)
	for _, b := range bounds {
		if b > col {
			return b
		}
	}
	return bounds[len(bounds)-1]
}
