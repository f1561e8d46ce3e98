package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Emitted      *prometheus.CounterVec
	Dropped      prometheus.Counter
	SinkFailures prometheus.Counter
	QueueDepth   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Emitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ballot_audit_events_total",
			Help: "Audit events emitted by action and outcome",
		}, []string{"action", "outcome"}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "ballot_audit_events_dropped_total",
			Help: "Audit events dropped because the queue was full",
		}),
		SinkFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "ballot_audit_sink_failures_total",
			Help: "Audit events the worker failed to persist",
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "ballot_audit_queue_depth",
			Help: "Audit events waiting for the worker",
		}),
	}
}

func (m *Metrics) incEmitted(e Event) {
	if m == nil {
		return
	}
	m.Emitted.WithLabelValues(string(e.Action), string(e.Outcome)).Inc()
}

func (m *Metrics) incDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) incSinkFailure() {
	if m == nil {
		return
	}
	m.SinkFailures.Inc()
}

func (m *Metrics) setDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}
