package history

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempBatchRewindOutsideBatch(t *testing.T) {
	c := New()
	value := 1

	set := func(v int) {
		old := value
		value = v
		c.Record(func() { value = old }, func() { value = v })
	}

	got := RunInTempBatch(c, func() int {
		set(2)
		set(3)
		return value
	})
	assert.Equal(t, 3, got)
	assert.True(t, c.InTempBatch())

	c.UndoTempBatch()
	assert.Equal(t, 1, value)
	assert.False(t, c.InTempBatch())
	assert.False(t, c.CanUndo(), "temp recording never touches the stacks")
	assert.False(t, c.CanRedo())
}

func TestTempBatchRewindRemovesActionsFromOpenUnit(t *testing.T) {
	c := New()
	tr := &trace{}

	b := c.StartBatch("preview")
	c.AddEvent(tr.action("kept"))
	c.RunInTemp(func() {
		c.AddEvent(tr.action("t1"))
		c.AddEvent(tr.action("t2"))
	})
	c.UndoTempBatch()
	assert.Equal(t, []string{"t2.undo", "t1.undo"}, tr.calls)

	c.AddEvent(tr.action("after"))
	b.End()

	tr.calls = nil
	require.True(t, c.Undo())
	assert.Equal(t, []string{"after.undo", "kept.undo"}, tr.calls,
		"rewound actions are not reversed a second time")
}

func TestClearTempBatchKeepsActions(t *testing.T) {
	c := New()
	tr := &trace{}

	b := c.StartBatch("accept")
	c.RunInTemp(func() {
		c.AddEvent(tr.action("t"))
	})
	c.ClearTempBatch()
	assert.False(t, c.InTempBatch())
	b.End()

	assert.Empty(t, tr.calls)
	require.True(t, c.Undo())
	assert.Equal(t, []string{"t.undo"}, tr.calls)
}

func TestTempRecordingStaysOpenAfterRun(t *testing.T) {
	c := New()
	tr := &trace{}

	c.RunInTemp(func() { c.AddEvent(tr.action("inside")) })
	c.AddEvent(tr.action("later"))
	c.UndoTempBatch()

	assert.Equal(t, []string{"later.undo", "inside.undo"}, tr.calls)
}

func TestNewTempBatchDropsPending(t *testing.T) {
	c := New()
	tr := &trace{}

	c.RunInTemp(func() { c.AddEvent(tr.action("old")) })
	c.RunInTemp(func() { c.AddEvent(tr.action("new")) })
	c.UndoTempBatch()

	assert.Equal(t, []string{"new.undo"}, tr.calls)
}

func TestUndoTempBatchWithoutRecordingIsNoOp(t *testing.T) {
	c := New()
	assert.NotPanics(t, func() {
		c.UndoTempBatch()
		c.ClearTempBatch()
	})
	assert.False(t, c.InTempBatch())
}

func TestTempRewindNotRecorded(t *testing.T) {
	c := New()
	value := 0

	var set func(v int)
	set = func(v int) {
		old := value
		value = v
		c.Record(func() { set(old) }, func() { set(v) })
	}

	b := c.StartBatch("outer")
	c.RunInTemp(func() { set(5) })
	c.UndoTempBatch()
	b.End()

	assert.Equal(t, 0, value)
	assert.False(t, c.CanUndo(), "the rewind itself must not be recorded")
}

func TestTempRewindAcrossCommitRemovesFromCommittedUnit(t *testing.T) {
	c := New()
	tr := &trace{}

	b := c.StartBatch("drag")
	c.AddEvent(tr.action("kept"))
	c.RunInTemp(func() { c.AddEvent(tr.action("t")) })
	b.End()

	c.UndoTempBatch()
	assert.Equal(t, []string{"t.undo"}, tr.calls)

	tr.calls = nil
	require.True(t, c.Undo())
	assert.Equal(t, []string{"kept.undo"}, tr.calls, "the rewound action is reversed exactly once")
}

func TestTempRewindDropsEmptiedCommittedUnit(t *testing.T) {
	c := New()
	tr := &trace{}

	b := c.StartBatch("drag")
	c.RunInTemp(func() { c.AddEvent(tr.action("t")) })
	b.End()
	require.True(t, c.CanUndo())

	c.UndoTempBatch()
	assert.Equal(t, []string{"t.undo"}, tr.calls)
	assert.False(t, c.CanUndo())
	assert.False(t, c.CanRedo())
}

func TestTempRewindSkipsActionsAlreadyUndone(t *testing.T) {
	c := New()
	tr := &trace{}

	b := c.StartBatch("drag")
	c.RunInTemp(func() { c.AddEvent(tr.action("t")) })
	b.End()
	require.True(t, c.Undo())

	c.UndoTempBatch()
	assert.Equal(t, []string{"t.undo"}, tr.calls)
	assert.False(t, c.CanRedo(), "redo must not reapply a rewound action")
}

func TestUndoTempBatchPanicResetsState(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	c := New(WithMetrics(m))
	tr := &trace{}

	c.RunInTemp(func() {
		c.AddEvent(tr.action("ok"))
		c.AddEvent(Func{UndoFn: func() { panic("boom") }})
	})

	assert.PanicsWithValue(t, "boom", func() { c.UndoTempBatch() })
	assert.False(t, c.IsReplaying())
	assert.False(t, c.InTempBatch())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.replayFailures.WithLabelValues(opUndoTemp)))
	assert.Empty(t, tr.calls)

	c.RunInTemp(func() { c.AddEvent(tr.action("next")) })
	c.UndoTempBatch()
	assert.Equal(t, []string{"next.undo"}, tr.calls)
}
