package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rpupo63/mindmesh-portfolio/auth"
	"github.com/rpupo63/mindmesh-portfolio/leadgate"
)

const metricsNamespace = "portfolio"

// Metrics holds the collectors served on /metrics. Each instance owns its registry so
// servers built in tests do not collide on registration.
type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	leadsCaptured   prometheus.Counter
	leadTransitions *prometheus.CounterVec
	aiRequests      *prometheus.CounterVec
	sessionEvents   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		leadsCaptured: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "leads_captured_total",
			Help:      "Leads recorded through the lead gate.",
		}),
		leadTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lead_gate_transitions_total",
			Help:      "Lead gate state transitions by target state.",
		}, []string{"state"}),
		aiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "assistant_requests_total",
			Help:      "Project assistant questions by outcome.",
		}, []string{"outcome"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "admin_session_events_total",
			Help:      "Admin session changes by type.",
		}, []string{"type"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.leadsCaptured,
		m.leadTransitions,
		m.aiRequests,
		m.sessionEvents,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument records request durations labelled with the matched chi route pattern.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(srw.status)).
			Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) observeGate(_, to leadgate.State) {
	m.leadTransitions.WithLabelValues(to.String()).Inc()
	if to == leadgate.Accepted {
		m.leadsCaptured.Inc()
	}
}

func (m *Metrics) observeAssistant(outcome string) {
	m.aiRequests.WithLabelValues(outcome).Inc()
}

// watchSessions counts session events until the returned function is called.
func (m *Metrics) watchSessions(sessions *auth.Manager) func() {
	return sessions.OnSessionChange(func(e auth.Event) {
		m.sessionEvents.WithLabelValues(string(e.Type)).Inc()
	})
}
