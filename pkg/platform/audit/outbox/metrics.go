package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks relay throughput. A nil *Metrics is a no-op.
type Metrics struct {
	published     prometheus.Counter
	failed        prometheus.Counter
	batchDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custody_outbox_published_total",
			Help: "Outbox entries published to Kafka",
		}),
		failed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custody_outbox_batches_failed_total",
			Help: "Outbox relay batches that failed and will be retried",
		}),
		batchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "custody_outbox_batch_duration_seconds",
			Help:    "Time to claim, publish and mark one outbox batch",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) AddPublished(n int) {
	if m == nil {
		return
	}
	m.published.Add(float64(n))
}

func (m *Metrics) IncFailed() {
	if m == nil {
		return
	}
	m.failed.Inc()
}

func (m *Metrics) ObserveBatchDuration(seconds float64) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(seconds)
}
