package history

// Batch is a handle on one open logical transaction. It does not own any
// actions: nested batches all feed the coordinator's single accumulating unit,
// and only the outermost batch decides whether that unit is committed.
type Batch struct {
	c        *Coordinator
	id       string
	name     string
	disposed bool
}

// ID returns the batch's unique identifier, used in diagnostics.
func (b *Batch) ID() string { return b.id }

// Name returns the diagnostic label given to StartBatch.
func (b *Batch) Name() string { return b.name }

// Disposed reports whether End or Cancel has been called.
func (b *Batch) Disposed() bool { return b.disposed }

// End closes the batch. If it is the outermost open batch, the accumulated
// unit is committed to the undo stack. Calling End or Cancel twice panics.
func (b *Batch) End() { b.c.dispose(b, false) }

// Cancel closes the batch. If it is the outermost open batch, the accumulated
// unit is discarded without being replayed. An inner Cancel only closes the
// handle; the outermost batch still decides the fate of the unit.
func (b *Batch) Cancel() { b.c.dispose(b, true) }

func (b *Batch) String() string {
	if len(b.id) > 8 {
		return b.name + "#" + b.id[:8]
	}
	return b.name + "#" + b.id
}
