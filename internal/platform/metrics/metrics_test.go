package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveClientRequest("list", "ok", time.Millisecond)
		m.IncrementAutosaveEdits()
		m.IncrementAutosaveSaves("ok")
		m.IncrementListRefreshes("failed")
		m.ObserveStoreRequest("GET", "/", "200", time.Millisecond)
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveClientRequest("get", "not_found", 2*time.Millisecond)
	m.ObserveClientRequest("get", "not_found", time.Millisecond)
	m.IncrementAutosaveEdits()
	m.IncrementAutosaveSaves("skipped")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClientRequests.WithLabelValues("get", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AutosaveEdits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AutosaveSaves.WithLabelValues("skipped")))
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
