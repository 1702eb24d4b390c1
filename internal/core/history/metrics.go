package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for one or more coordinators.
// A nil *Metrics records nothing.
type Metrics struct {
	commits        prometheus.Counter
	cancels        prometheus.Counter
	empty          prometheus.Counter
	evictions      prometheus.Counter
	replays        *prometheus.CounterVec
	replayFailures *prometheus.CounterVec
	openBatches    prometheus.Gauge
	unitSize       prometheus.Histogram
}

// NewMetrics registers the history collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		commits: f.NewCounter(prometheus.CounterOpts{
			Name: "ebb_history_commits_total",
			Help: "Units pushed onto the undo stack",
		}),
		cancels: f.NewCounter(prometheus.CounterOpts{
			Name: "ebb_history_cancels_total",
			Help: "Outermost batches cancelled with recorded actions",
		}),
		empty: f.NewCounter(prometheus.CounterOpts{
			Name: "ebb_history_empty_batches_total",
			Help: "Outermost batches closed without recording any action",
		}),
		evictions: f.NewCounter(prometheus.CounterOpts{
			Name: "ebb_history_evictions_total",
			Help: "Units dropped from the bottom of the undo stack by the history limit",
		}),
		replays: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ebb_history_replays_total",
			Help: "Completed replays by operation",
		}, []string{"op"}),
		replayFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ebb_history_replay_failures_total",
			Help: "Replays aborted by a panicking closure, by operation",
		}, []string{"op"}),
		openBatches: f.NewGauge(prometheus.GaugeOpts{
			Name: "ebb_history_open_batches",
			Help: "Batches started and not yet disposed",
		}),
		unitSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ebb_history_unit_actions",
			Help:    "Actions per committed unit",
			Buckets: []float64{1, 2, 5, 10, 50, 100, 1000},
		}),
	}
}

func (m *Metrics) batchOpened() {
	if m != nil {
		m.openBatches.Inc()
	}
}

func (m *Metrics) batchClosed() {
	if m != nil {
		m.openBatches.Dec()
	}
}

func (m *Metrics) committed(size int) {
	if m != nil {
		m.commits.Inc()
		m.unitSize.Observe(float64(size))
	}
}

func (m *Metrics) cancelled() {
	if m != nil {
		m.cancels.Inc()
	}
}

func (m *Metrics) emptyBatch() {
	if m != nil {
		m.empty.Inc()
	}
}

func (m *Metrics) evicted(n int) {
	if m != nil {
		m.evictions.Add(float64(n))
	}
}

func (m *Metrics) replayed(op string) {
	if m != nil {
		m.replays.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) replayFailed(op string) {
	if m != nil {
		m.replayFailures.WithLabelValues(op).Inc()
	}
}
