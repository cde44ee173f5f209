// Package metrics exposes Prometheus collectors for form submissions and
// catalog queries.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/hyperengineering/showcase/internal/catalog"
	"github.com/hyperengineering/showcase/internal/contact"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "showcase"

// Submission outcomes.
const (
	OutcomeRejected  = "rejected"
	OutcomeAccepted  = "accepted"
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
)

// Metrics holds the service collectors on a private registry.
// It implements contact.Observer.
type Metrics struct {
	registry *prometheus.Registry

	submissions       *prometheus.CounterVec
	validationErrors  *prometheus.CounterVec
	submitDuration    prometheus.Histogram
	catalogQueries    *prometheus.CounterVec
	openForms         prometheus.Gauge
	formsSwept        prometheus.Counter
	notificationsSent prometheus.Counter
}

var _ contact.Observer = (*Metrics)(nil)

// New creates and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact form submissions by outcome.",
		}, []string{"outcome"}),
		validationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "validation_errors_total",
			Help:      "Field validation failures on submit.",
		}, []string{"field"}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "submit_duration_seconds",
			Help:      "Time from accepted submission to completion.",
			Buckets:   []float64{0.1, 0.5, 1, 1.5, 2, 5, 10},
		}),
		catalogQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "queries_total",
			Help:      "Catalog queries by category.",
		}, []string{"category"}),
		openForms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "forms",
			Name:      "open",
			Help:      "Currently mounted contact forms.",
		}),
		formsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forms",
			Name:      "swept_total",
			Help:      "Idle forms unmounted by the sweeper.",
		}),
		notificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "notifications_total",
			Help:      "Success notifications emitted.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.submissions,
		m.validationErrors,
		m.submitDuration,
		m.catalogQueries,
		m.openForms,
		m.formsSwept,
		m.notificationsSent,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SubmitRejected implements contact.Observer.
func (m *Metrics) SubmitRejected(errs contact.Errors) {
	m.submissions.WithLabelValues(OutcomeRejected).Inc()
	for f := range errs {
		m.validationErrors.WithLabelValues(string(f)).Inc()
	}
}

// SubmitAccepted implements contact.Observer.
func (m *Metrics) SubmitAccepted() {
	m.submissions.WithLabelValues(OutcomeAccepted).Inc()
}

// SubmitCompleted implements contact.Observer.
func (m *Metrics) SubmitCompleted(d time.Duration) {
	m.submissions.WithLabelValues(OutcomeCompleted).Inc()
	m.submitDuration.Observe(d.Seconds())
}

// SubmitAborted implements contact.Observer.
func (m *Metrics) SubmitAborted() {
	m.submissions.WithLabelValues(OutcomeAborted).Inc()
}

// CatalogQueried counts a catalog read for c.
func (m *Metrics) CatalogQueried(c catalog.Category) {
	m.catalogQueries.WithLabelValues(c.Slug()).Inc()
}

// SetOpenForms records the number of mounted forms.
func (m *Metrics) SetOpenForms(n int) {
	m.openForms.Set(float64(n))
}

// FormsSwept counts forms removed by an idle sweep.
func (m *Metrics) FormsSwept(n int) {
	m.formsSwept.Add(float64(n))
}

// Notifier returns a contact.Notifier that counts emitted notifications.
func (m *Metrics) Notifier() contact.Notifier {
	return contact.NotifierFunc(func(ctx context.Context, n contact.Notification) error {
		m.notificationsSent.Inc()
		return nil
	})
}
