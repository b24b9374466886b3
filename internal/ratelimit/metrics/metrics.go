package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use on a nil receiver.
type Metrics struct {
	RequestsRejected *prometheus.CounterVec
	LimiterErrors    prometheus.Counter
	Degraded         prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custody_ratelimit_rejected_total",
			Help: "Requests rejected by the rate limiter, by endpoint class",
		}, []string{"class"}),
		LimiterErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "custody_ratelimit_store_errors_total",
			Help: "Rate limit checks that failed against the primary store",
		}),
		Degraded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "custody_ratelimit_degraded",
			Help: "1 while the limiter serves from the in-memory fallback",
		}),
	}
}

func (m *Metrics) IncrementRejected(class string) {
	if m == nil {
		return
	}
	m.RequestsRejected.WithLabelValues(class).Inc()
}

func (m *Metrics) IncrementLimiterErrors() {
	if m == nil {
		return
	}
	m.LimiterErrors.Inc()
}

func (m *Metrics) SetDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.Degraded.Set(1)
		return
	}
	m.Degraded.Set(0)
}
