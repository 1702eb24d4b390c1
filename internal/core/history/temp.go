package history

import "github.com/bethropolis/ebb/internal/logger"

// tempEntry remembers where a temporarily recorded action also landed in
// the accumulating unit, so a rewind can take it back out.
type tempEntry struct {
	action Action
	owner  *unit
	idx    int
}

// RunInTempBatch opens a fresh temporary recording and runs fn. The recording
// stays open after fn returns, capturing every recorded action until the
// caller resolves it with UndoTempBatch or ClearTempBatch. Opening a new
// recording drops a pending one without replaying it.
func RunInTempBatch[T any](c *Coordinator, fn func() T) T {
	if c.tempOpen && len(c.temp) > 0 {
		logger.WarnTagf(logTag, "History: Dropping %d pending temp action(s) without rewind", len(c.temp))
	}
	c.temp = nil
	c.tempOpen = true
	return fn()
}

// RunInTemp is RunInTempBatch for functions without a result.
func (c *Coordinator) RunInTemp(fn func()) {
	RunInTempBatch(c, func() struct{} {
		fn()
		return struct{}{}
	})
}

// InTempBatch reports whether a temporary recording is open.
func (c *Coordinator) InTempBatch() bool { return c.tempOpen }

// UndoTempBatch rewinds the temporary recording in reverse order and closes
// it. Rewound actions are also removed from the unit they were recorded
// into, open or committed, so no later commit or Undo reverses them a second
// time.
func (c *Coordinator) UndoTempBatch() {
	if !c.tempOpen {
		return
	}
	entries := c.temp
	c.temp = nil
	c.tempOpen = false

	entries = c.detach(entries)
	c.replay(opUndoTemp, func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].action.Undo()
		}
	})
	logger.DebugTagf(logTag, "History: Rewound %d temp action(s)", len(entries))
}

// ClearTempBatch closes the temporary recording without replaying it. Its
// actions stay in whatever batch they were also recorded into.
func (c *Coordinator) ClearTempBatch() {
	if c.tempOpen {
		logger.DebugTagf(logTag, "History: Kept %d temp action(s)", len(c.temp))
	}
	c.temp = nil
	c.tempOpen = false
}

// detach removes rewound entries from the units they were recorded into and
// returns the entries whose effect is still in place. Entries owned by a unit
// already undone through the stack are reverted, so they are not replayed
// again. A committed unit left empty is removed from its stack.
func (c *Coordinator) detach(entries []tempEntry) []tempEntry {
	drops := make(map[*unit]map[int]struct{})
	live := make([]tempEntry, 0, len(entries))
	for _, e := range entries {
		if e.owner == nil {
			live = append(live, e)
			continue
		}
		if drops[e.owner] == nil {
			drops[e.owner] = make(map[int]struct{})
		}
		drops[e.owner][e.idx] = struct{}{}
		if indexOf(c.redoStack, e.owner) >= 0 {
			continue
		}
		live = append(live, e)
	}

	for u, drop := range drops {
		kept := u.actions[:0]
		for i, a := range u.actions {
			if _, ok := drop[i]; !ok {
				kept = append(kept, a)
			}
		}
		u.actions = kept
		if u == c.current || len(u.actions) > 0 {
			continue
		}
		if i := indexOf(c.undoStack, u); i >= 0 {
			c.undoStack = append(c.undoStack[:i], c.undoStack[i+1:]...)
			logger.DebugTagf(logTag, "History: Dropped %q emptied by temp rewind", u.name)
		} else if i := indexOf(c.redoStack, u); i >= 0 {
			c.redoStack = append(c.redoStack[:i], c.redoStack[i+1:]...)
			logger.DebugTagf(logTag, "History: Dropped %q emptied by temp rewind", u.name)
		}
	}
	return live
}

func indexOf(stack []*unit, u *unit) int {
	for i := range stack {
		if stack[i] == u {
			return i
		}
	}
	return -1
}
