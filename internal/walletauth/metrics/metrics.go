package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeDenied   = "denied"
	OutcomeError    = "error"
)

// Metrics holds Prometheus collectors for wallet authorization operations.
type Metrics struct {
	Mutations        *prometheus.CounterVec
	Lookups          *prometheus.CounterVec
	Events           *prometheus.CounterVec
	RegisteredTotal  prometheus.Gauge
	OperationLatency *prometheus.HistogramVec
	StoreLatency     *prometheus.HistogramVec
	BatchSize        prometheus.Histogram
}

// New registers collectors on the default registry. Call it once per process.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers collectors on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "microauth_registry_mutations_total",
			Help: "Registry mutations by operation and outcome",
		}, []string{"operation", "outcome"}),
		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "microauth_registry_lookups_total",
			Help: "Status lookups by outcome (found, not_found, invalid_address)",
		}, []string{"outcome"}),
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "microauth_registry_events_total",
			Help: "Registry events emitted, labeled by kind",
		}, []string{"kind"}),
		RegisteredTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "microauth_registry_wallets",
			Help: "Number of wallets with a registry entry",
		}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "microauth_registry_operation_latency_seconds",
			Help:    "Latency of registry service operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "microauth_store_operation_latency_seconds",
			Help:    "Latency of registry store operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "microauth_registry_batch_size",
			Help:    "Number of wallets per batch status lookup",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		}),
	}
}

func (m *Metrics) IncrementMutation(operation, outcome string) {
	m.Mutations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) IncrementLookup(outcome string) {
	m.Lookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementEvent(kind string) {
	m.Events.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetRegistered(n int) {
	m.RegisteredTotal.Set(float64(n))
}

func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveStore(operation string, start time.Time) {
	m.StoreLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveBatchSize(n int) {
	m.BatchSize.Observe(float64(n))
}
