package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchOrderAndConsumption(t *testing.T) {
	m := NewManager()
	var calls []string

	m.Subscribe(TypeHistoryChanged, func(e Event) bool {
		calls = append(calls, "first")
		data, ok := e.Data.(HistoryChangedData)
		assert.True(t, ok)
		return data.Op == HistoryClear
	})
	m.Subscribe(TypeHistoryChanged, func(e Event) bool {
		calls = append(calls, "second")
		return false
	})

	m.Dispatch(TypeHistoryChanged, HistoryChangedData{Op: HistoryCommit})
	assert.Equal(t, []string{"first", "second"}, calls)

	calls = nil
	m.Dispatch(TypeHistoryChanged, HistoryChangedData{Op: HistoryClear})
	assert.Equal(t, []string{"first"}, calls, "consumed event must stop propagation")
}

func TestDispatchWithoutHandlers(t *testing.T) {
	m := NewManager()
	assert.NotPanics(t, func() { m.Dispatch(TypeBufferSaved, BufferSavedData{FilePath: "x"}) })
}

func TestSubscribeDuringDispatch(t *testing.T) {
	m := NewManager()
	count := 0
	m.Subscribe(TypeAppReady, func(e Event) bool {
		count++
		m.Subscribe(TypeAppReady, func(Event) bool { count += 10; return false })
		return false
	})

	m.Dispatch(TypeAppReady, AppReadyData{})
	assert.Equal(t, 1, count, "late subscriber must not see the in-flight event")

	m.Dispatch(TypeAppReady, AppReadyData{})
	assert.Equal(t, 12, count)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "history-changed", TypeHistoryChanged.String())
	assert.Equal(t, "type(99)", Type(99).String())
}
