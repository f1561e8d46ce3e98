package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments the cooldown gate and its stores.
type Metrics struct {
	Checks         *prometheus.CounterVec
	StoreFallbacks prometheus.Counter
	BreakerOpen    prometheus.Gauge
	ExpiredPurged  prometheus.Counter
}

// New registers the cooldown metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Checks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ballot_cooldown_checks_total",
			Help: "Cooldown checks by scope and outcome",
		}, []string{"scope", "outcome"}),
		StoreFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "ballot_cooldown_store_fallbacks_total",
			Help: "Cooldown store operations served by the in-memory fallback",
		}),
		BreakerOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "ballot_cooldown_breaker_open",
			Help: "1 while the primary cooldown store circuit is open",
		}),
		ExpiredPurged: f.NewCounter(prometheus.CounterOpts{
			Name: "ballot_cooldown_expired_purged_total",
			Help: "Expired cooldown entries removed by the cleanup worker",
		}),
	}
}

func (m *Metrics) IncCheck(scope string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "blocked"
	if allowed {
		outcome = "allowed"
	}
	m.Checks.WithLabelValues(scope, outcome).Inc()
}

func (m *Metrics) IncFallback() {
	if m == nil {
		return
	}
	m.StoreFallbacks.Inc()
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}

func (m *Metrics) AddPurged(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ExpiredPurged.Add(float64(n))
}
