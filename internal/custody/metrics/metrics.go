package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the custody module.
// Methods are safe on a nil receiver so services can run without metrics.
type Metrics struct {
	ActorsRegistered  prometheus.Counter
	ActorsDisabled    prometheus.Counter
	AssetsRegistered  prometheus.Counter
	AssetsTransferred prometheus.Counter
	Rejections        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New creates a new Metrics instance registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActorsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "custody_actors_registered_total",
			Help: "Total number of actor registrations, including re-registrations",
		}),
		ActorsDisabled: factory.NewCounter(prometheus.CounterOpts{
			Name: "custody_actors_disabled_total",
			Help: "Total number of actor disable calls",
		}),
		AssetsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "custody_assets_registered_total",
			Help: "Total number of assets registered",
		}),
		AssetsTransferred: factory.NewCounter(prometheus.CounterOpts{
			Name: "custody_asset_transfers_total",
			Help: "Total number of successful custody hand-offs",
		}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custody_rejections_total",
			Help: "Calls rejected by an access or validation rule, by kind",
		}, []string{"operation", "kind"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "custody_operation_duration_seconds",
			Help:    "Duration of custody operations including the store transaction",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementActorsRegistered() {
	if m == nil {
		return
	}
	m.ActorsRegistered.Inc()
}

func (m *Metrics) IncrementActorsDisabled() {
	if m == nil {
		return
	}
	m.ActorsDisabled.Inc()
}

func (m *Metrics) IncrementAssetsRegistered() {
	if m == nil {
		return
	}
	m.AssetsRegistered.Inc()
}

func (m *Metrics) IncrementAssetsTransferred() {
	if m == nil {
		return
	}
	m.AssetsTransferred.Inc()
}

// IncrementRejection counts a rule violation for operation.
func (m *Metrics) IncrementRejection(operation, kind string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(operation, kind).Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
