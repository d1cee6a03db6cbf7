package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPLatency        *prometheus.HistogramVec
	EventTransitions   *prometheus.CounterVec
	RunsCreated        prometheus.Counter
	ResultsSubmitted   *prometheus.CounterVec
	AdminLinksIssued   prometheus.Counter
	AdminLinkVerifies  *prometheus.CounterVec
	NotificationsSent  *prometheus.CounterVec
	LeaderboardQueries prometheus.Counter
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in the server
// and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "arena_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		EventTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_event_transitions_total",
			Help: "Event state transitions by action and outcome",
		}, []string{"action", "outcome"}),
		RunsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "arena_runs_created_total",
			Help: "Total number of runs created",
		}),
		ResultsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_results_submitted_total",
			Help: "Result submissions by outcome",
		}, []string{"outcome"}),
		AdminLinksIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "arena_admin_links_issued_total",
			Help: "Total number of admin links issued",
		}),
		AdminLinkVerifies: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_admin_link_verifications_total",
			Help: "Admin link verifications by outcome",
		}, []string{"outcome"}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_notifications_total",
			Help: "Outbound event notifications by status",
		}, []string{"topic", "status"}),
		LeaderboardQueries: factory.NewCounter(prometheus.CounterOpts{
			Name: "arena_leaderboard_queries_total",
			Help: "Total number of leaderboard reads",
		}),
	}
}

// Nop returns collectors bound to a private registry, for wiring that does not scrape.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) IncTransition(action, outcome string) {
	m.EventTransitions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) IncRunsCreated() {
	m.RunsCreated.Inc()
}

func (m *Metrics) IncResult(outcome string) {
	m.ResultsSubmitted.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncAdminLinksIssued() {
	m.AdminLinksIssued.Inc()
}

func (m *Metrics) IncAdminLinkVerify(outcome string) {
	m.AdminLinkVerifies.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncNotification(topic, status string) {
	m.NotificationsSent.WithLabelValues(topic, status).Inc()
}

func (m *Metrics) IncLeaderboardQueries() {
	m.LeaderboardQueries.Inc()
}
