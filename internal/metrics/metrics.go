// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	SignUps        *prometheus.CounterVec
	SignUpFailures *prometheus.CounterVec
	SignIns        *prometheus.CounterVec

	// Listing metrics
	ModerationDecisions *prometheus.CounterVec
	Searches            *prometheus.CounterVec
	SearchResults       prometheus.Histogram
	ReviewOperations    *prometheus.CounterVec
	ProductOperations   *prometheus.CounterVec

	// Notification metrics
	NotificationsSent *prometheus.CounterVec
}

// New registers the collectors, named with prefix, on a fresh registry
// that also carries the Go runtime and process collectors.
func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		SignUps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_signups_total",
				Help: "Completed sign-ups by user type",
			},
			[]string{"user_type"},
		),
		SignUpFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_signup_failures_total",
				Help: "Sign-ups that failed, by stage",
			},
			[]string{"stage"},
		),
		SignIns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_signins_total",
				Help: "Sign-in attempts by result",
			},
			[]string{"result"},
		),

		ModerationDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_moderation_decisions_total",
				Help: "Admin status writes by target status",
			},
			[]string{"status"},
		),
		Searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_searches_total",
				Help: "Public discovery queries by sort key",
			},
			[]string{"sort"},
		),
		SearchResults: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    prefix + "_search_results",
				Help:    "Number of businesses returned per discovery query",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
			},
		),
		ReviewOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_review_operations_total",
				Help: "Review writes by operation",
			},
			[]string{"operation"},
		),
		ProductOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_product_operations_total",
				Help: "Product writes by operation",
			},
			[]string{"operation"},
		),

		NotificationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_notifications_total",
				Help: "Owner notifications by template and result",
			},
			[]string{"template", "result"},
		),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(method, path, status string, started time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(started).Seconds())
}

func (m *Metrics) RecordSignUp(userType string) {
	if m == nil {
		return
	}
	m.SignUps.WithLabelValues(userType).Inc()
}

func (m *Metrics) RecordSignUpFailure(stage string) {
	if m == nil {
		return
	}
	m.SignUpFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) RecordSignIn(result string) {
	if m == nil {
		return
	}
	m.SignIns.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordModeration(status string) {
	if m == nil {
		return
	}
	m.ModerationDecisions.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordSearch(sort string, results int) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(sort).Inc()
	m.SearchResults.Observe(float64(results))
}

func (m *Metrics) RecordReview(operation string) {
	if m == nil {
		return
	}
	m.ReviewOperations.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordProduct(operation string) {
	if m == nil {
		return
	}
	m.ProductOperations.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordNotification(template, result string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(template, result).Inc()
}
