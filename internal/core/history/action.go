// Package history groups reversible edits into batches and replays them for
// undo and redo.
//
// Call sites open a Batch around a gesture, record one Action per applied
// mutation, and dispose the batch. Nested batches share the outermost batch's
// unit, so a gesture built from several instrumented primitives becomes a
// single undo step.
package history

// Action is one already-applied mutation together with its inverse.
// Undo followed by Redo (or the reverse) must leave the document observably
// unchanged; the coordinator never checks this.
type Action interface {
	Undo()
	Redo()
}

// Func adapts a pair of closures to Action. A nil closure is a no-op.
type Func struct {
	UndoFn func()
	RedoFn func()
}

// Undo runs UndoFn.
func (f Func) Undo() {
	if f.UndoFn != nil {
		f.UndoFn()
	}
}

// Redo runs RedoFn.
func (f Func) Redo() {
	if f.RedoFn != nil {
		f.RedoFn()
	}
}

// unit is the ordered set of actions committed together as one step.
type unit struct {
	name    string // name of the outermost batch
	actions []Action
}
