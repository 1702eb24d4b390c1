package types

import sitter "github.com/smacker/go-tree-sitter"

// EditInfo describes one buffer mutation in the shape tree-sitter expects
// for incremental reparsing.
type EditInfo struct {
	StartIndex     uint32       // Start byte of the edit
	OldEndIndex    uint32       // End byte of the old text
	NewEndIndex    uint32       // End byte of the new text
	StartPosition  sitter.Point // Start position (row, byte column)
	OldEndPosition sitter.Point // Old end position
	NewEndPosition sitter.Point // New end position
}

// IsZero reports whether the edit changed nothing.
func (e EditInfo) IsZero() bool {
	return e.StartIndex == e.OldEndIndex && e.StartIndex == e.NewEndIndex
}

// TreeEdit converts the edit into the input accepted by (*sitter.Tree).Edit.
func (e EditInfo) TreeEdit() sitter.EditInput {
	return sitter.EditInput{
		StartIndex:  e.StartIndex,
		OldEndIndex: e.OldEndIndex,
		NewEndIndex: e.NewEndIndex,
		StartPoint:  e.StartPosition,
		OldEndPoint: e.OldEndPosition,
		NewEndPoint: e.NewEndPosition,
	}
}
