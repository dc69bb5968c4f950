package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the record client, its
// controllers, and the reference store. All methods are safe on a nil
// receiver so metrics stay optional.
type Metrics struct {
	// RecordClient calls by operation and outcome category ("ok" on success)
	ClientRequests *prometheus.CounterVec
	ClientLatency  *prometheus.HistogramVec

	// Local edits seen in autosave mode, independent of save outcomes
	AutosaveEdits prometheus.Counter
	// Autosave requests by outcome: ok, failed, skipped (invalid draft)
	AutosaveSaves *prometheus.CounterVec

	// List refreshes by outcome: ok, failed, stale (superseded by a newer refresh)
	ListRefreshes *prometheus.CounterVec

	// Reference store HTTP latency by route and status code
	StoreLatency *prometheus.HistogramVec
}

// New creates and registers all metrics with reg. Passing nil registers
// with the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ClientRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordsync_client_requests_total",
			Help: "Total RecordStore calls by operation and outcome",
		}, []string{"op", "outcome"}),
		ClientLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recordsync_client_request_duration_seconds",
			Help:    "Duration of RecordStore calls by operation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"op"}),
		AutosaveEdits: factory.NewCounter(prometheus.CounterOpts{
			Name: "recordsync_autosave_edits_total",
			Help: "Total local field edits made in autosave mode",
		}),
		AutosaveSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordsync_autosave_saves_total",
			Help: "Total autosave requests by outcome",
		}, []string{"outcome"}),
		ListRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordsync_list_refreshes_total",
			Help: "Total list refreshes by outcome",
		}, []string{"outcome"}),
		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recordsync_store_http_duration_seconds",
			Help:    "Duration of reference store HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveClientRequest records one RecordStore call.
func (m *Metrics) ObserveClientRequest(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ClientRequests.WithLabelValues(op, outcome).Inc()
	m.ClientLatency.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) IncrementAutosaveEdits() {
	if m != nil {
		m.AutosaveEdits.Inc()
	}
}

func (m *Metrics) IncrementAutosaveSaves(outcome string) {
	if m != nil {
		m.AutosaveSaves.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementListRefreshes(outcome string) {
	if m != nil {
		m.ListRefreshes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveStoreRequest(method, route, status string, d time.Duration) {
	if m != nil {
		m.StoreLatency.WithLabelValues(method, route, status).Observe(d.Seconds())
	}
}
