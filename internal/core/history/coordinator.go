package history

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bethropolis/ebb/internal/event"
	"github.com/bethropolis/ebb/internal/logger"
)

const (
	// DefaultMaxHistory bounds the undo stack when no limit is configured.
	DefaultMaxHistory = 100

	logTag = "history"

	opUndo     = "undo"
	opRedo     = "redo"
	opUndoTemp = "undo_temp"
)

// Coordinator records reversible actions into batches and replays committed
// units for undo and redo.
//
// A Coordinator is not safe for concurrent use. It must be owned by the
// goroutine that handles input; nesting is tracked by a depth counter that
// assumes every nested StartBatch is a synchronous descendant of the
// outermost one. A batch held open across a blocking call will absorb the
// actions of unrelated batches opened meanwhile.
type Coordinator struct {
	depth     int
	current   *unit // accumulating unit while depth > 0
	undoStack []*unit
	redoStack []*unit
	replaying bool

	tempOpen bool
	temp     []tempEntry

	open []*Batch // undisposed batches, oldest first

	maxHistory int
	events     *event.Manager
	metrics    *Metrics
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMaxHistory bounds the number of committed units. n <= 0 selects DefaultMaxHistory.
func WithMaxHistory(n int) Option {
	return func(c *Coordinator) {
		if n <= 0 {
			n = DefaultMaxHistory
		}
		c.maxHistory = n
	}
}

// WithEventManager publishes TypeHistoryChanged after every stack change.
func WithEventManager(m *event.Manager) Option {
	return func(c *Coordinator) { c.events = m }
}

// WithMetrics records coordinator activity into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// New creates an empty Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{maxHistory: DefaultMaxHistory}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartBatch opens a batch. The first batch opened while idle allocates the
// accumulating unit; batches opened while another is open join it.
func (c *Coordinator) StartBatch(name string) *Batch {
	c.depth++
	if c.depth == 1 {
		c.current = &unit{name: name}
	}
	b := &Batch{c: c, id: uuid.NewString(), name: name}
	c.open = append(c.open, b)
	c.metrics.batchOpened()
	logger.DebugTagf(logTag, "History: Started batch %s (depth %d)", b, c.depth)
	return b
}

func (c *Coordinator) dispose(b *Batch, cancelled bool) {
	if b.disposed {
		err := fmt.Errorf("%w: %s", ErrBatchDisposed, b)
		logger.ErrorTagf(logTag, "History: %v", err)
		panic(err)
	}
	b.disposed = true
	c.unregister(b)
	c.depth--
	c.metrics.batchClosed()

	if c.depth > 0 {
		logger.DebugTagf(logTag, "History: Closed inner batch %s (cancelled=%v, depth %d)", b, cancelled, c.depth)
		return
	}

	u := c.current
	c.current = nil
	switch {
	case u == nil || len(u.actions) == 0:
		c.metrics.emptyBatch()
		logger.DebugTagf(logTag, "History: Batch %s recorded nothing", b)
	case cancelled:
		c.metrics.cancelled()
		logger.DebugTagf(logTag, "History: Batch %s cancelled, discarded %d action(s)", b, len(u.actions))
	default:
		c.commit(u)
	}
}

func (c *Coordinator) unregister(b *Batch) {
	for i, open := range c.open {
		if open == b {
			c.open = append(c.open[:i], c.open[i+1:]...)
			return
		}
	}
}

func (c *Coordinator) commit(u *unit) {
	c.undoStack = append(c.undoStack, u)
	c.redoStack = nil

	if over := len(c.undoStack) - c.maxHistory; over > 0 {
		// Copy so the evicted units are not pinned by the backing array.
		c.undoStack = append([]*unit(nil), c.undoStack[over:]...)
		c.metrics.evicted(over)
	}

	c.metrics.committed(len(u.actions))
	logger.DebugTagf(logTag, "History: Committed %q with %d action(s). Undo: %d", u.name, len(u.actions), len(c.undoStack))
	c.notify(event.HistoryCommit)
}

// AddEvent records an applied action into the open batch and, if one is
// open, into the temporary recording. Outside any batch, or while undo/redo
// is replaying, the action is dropped.
func (c *Coordinator) AddEvent(a Action) {
	if a == nil || c.replaying {
		return
	}

	var owner *unit
	idx := -1
	if c.depth > 0 {
		owner = c.current
		idx = len(owner.actions)
		owner.actions = append(owner.actions, a)
	}
	if c.tempOpen {
		c.temp = append(c.temp, tempEntry{action: a, owner: owner, idx: idx})
	}
}

// Record is AddEvent for a closure pair.
func (c *Coordinator) Record(undo, redo func()) {
	c.AddEvent(Func{UndoFn: undo, RedoFn: redo})
}

// Undo reverts the most recently committed unit, replaying its actions in
// reverse recording order. It returns false when there is nothing to undo.
func (c *Coordinator) Undo() bool {
	if c.replaying {
		logger.WarnTagf(logTag, "History: Undo requested during replay, ignored")
		return false
	}
	if len(c.undoStack) == 0 {
		logger.DebugTagf(logTag, "History: Nothing to undo.")
		return false
	}
	if c.depth > 0 {
		logger.WarnTagf(logTag, "History: Undo while %d batch(es) open: %v", c.depth, c.OpenBatches())
	}

	u := c.undoStack[len(c.undoStack)-1]
	c.undoStack = c.undoStack[:len(c.undoStack)-1]

	c.replay(opUndo, func() {
		for i := len(u.actions) - 1; i >= 0; i-- {
			u.actions[i].Undo()
		}
	})

	c.redoStack = append(c.redoStack, u)
	logger.DebugTagf(logTag, "History: Undid %q. Undo: %d, Redo: %d", u.name, len(c.undoStack), len(c.redoStack))
	c.notify(event.HistoryUndo)
	return true
}

// Redo reapplies the most recently undone unit in recording order. It
// returns false when there is nothing to redo.
func (c *Coordinator) Redo() bool {
	if c.replaying {
		logger.WarnTagf(logTag, "History: Redo requested during replay, ignored")
		return false
	}
	if len(c.redoStack) == 0 {
		logger.DebugTagf(logTag, "History: Nothing to redo.")
		return false
	}

	u := c.redoStack[len(c.redoStack)-1]
	c.redoStack = c.redoStack[:len(c.redoStack)-1]

	c.replay(opRedo, func() {
		for _, a := range u.actions {
			a.Redo()
		}
	})

	c.undoStack = append(c.undoStack, u)
	logger.DebugTagf(logTag, "History: Redid %q. Undo: %d, Redo: %d", u.name, len(c.undoStack), len(c.redoStack))
	c.notify(event.HistoryRedo)
	return true
}

// replay runs fn with recording suppressed. If fn panics the flag is still
// cleared and the panic continues to the caller; the unit being replayed has
// already been popped and is not pushed anywhere, since its state is unknown.
func (c *Coordinator) replay(op string, fn func()) {
	c.replaying = true
	done := false
	defer func() {
		c.replaying = false
		if !done {
			c.metrics.replayFailed(op)
			logger.ErrorTagf(logTag, "History: %s aborted by a panicking action; unit dropped", op)
			if op != opUndoTemp {
				c.notify(event.HistoryOp(op))
			}
		}
	}()
	fn()
	done = true
	c.metrics.replayed(op)
}

// CanUndo reports whether Undo would do anything.
func (c *Coordinator) CanUndo() bool { return len(c.undoStack) > 0 }

// CanRedo reports whether Redo would do anything.
func (c *Coordinator) CanRedo() bool { return len(c.redoStack) > 0 }

// UndoLabel returns the batch name of the unit Undo would revert, or "".
func (c *Coordinator) UndoLabel() string {
	if len(c.undoStack) == 0 {
		return ""
	}
	return c.undoStack[len(c.undoStack)-1].name
}

// RedoLabel returns the batch name of the unit Redo would reapply, or "".
func (c *Coordinator) RedoLabel() string {
	if len(c.redoStack) == 0 {
		return ""
	}
	return c.redoStack[len(c.redoStack)-1].name
}

// Len returns the sizes of the undo and redo stacks.
func (c *Coordinator) Len() (undo, redo int) {
	return len(c.undoStack), len(c.redoStack)
}

// Depth returns the number of open batches.
func (c *Coordinator) Depth() int { return c.depth }

// IsReplaying reports whether undo or redo closures are currently running.
func (c *Coordinator) IsReplaying() bool { return c.replaying }

// OpenBatches lists the names of undisposed batches, oldest first. A
// non-empty result while idle points at a batch that was never ended.
func (c *Coordinator) OpenBatches() []string {
	names := make([]string, len(c.open))
	for i, b := range c.open {
		names[i] = b.name
	}
	return names
}

// Clear drops the undo and redo stacks, e.g. after loading a new document.
// Open batches and the temporary recording are left alone.
func (c *Coordinator) Clear() {
	c.undoStack = nil
	c.redoStack = nil
	logger.DebugTagf(logTag, "History: Cleared.")
	c.notify(event.HistoryClear)
}

func (c *Coordinator) notify(op event.HistoryOp) {
	if c.events == nil {
		return
	}
	c.events.Dispatch(event.TypeHistoryChanged, event.HistoryChangedData{
		Op:        op,
		CanUndo:   c.CanUndo(),
		CanRedo:   c.CanRedo(),
		UndoLabel: c.UndoLabel(),
		RedoLabel: c.RedoLabel(),
	})
}
