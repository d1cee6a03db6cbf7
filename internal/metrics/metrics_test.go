package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncTransition("end", "applied")
	m.IncTransition("end", "applied")
	m.IncTransition("end", "noop")
	m.IncResult("accepted")
	m.IncRunsCreated()
	m.ObserveRequest("GET", "/health", "200", 0.01)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.EventTransitions.WithLabelValues("end", "applied")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventTransitions.WithLabelValues("end", "noop")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ResultsSubmitted.WithLabelValues("accepted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunsCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/health", "200")))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop()
		Nop()
	})
}
