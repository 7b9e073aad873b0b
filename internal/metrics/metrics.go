package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds all Prometheus metrics for the session controller
type Metrics struct {
	// Operation metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec
	Rejections        *prometheus.CounterVec
	InFlight          prometheus.Gauge

	// Listener metrics
	ListenerFailures prometheus.Counter

	// Session metrics
	Authenticated   prometheus.Gauge
	SnapshotVersion prometheus.Gauge
}

var _ session.Observer = (*Metrics)(nil)

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sessionkit_operations_total",
				Help: "Total number of settled session operations",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sessionkit_operation_duration_seconds",
				Help:    "Session operation duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"operation"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sessionkit_operation_errors_total",
				Help: "Total number of failed session operations by error kind",
			},
			[]string{"operation", "error_kind"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sessionkit_operation_rejections_total",
				Help: "Total number of operations rejected because another was in progress",
			},
			[]string{"operation"},
		),
		InFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sessionkit_operations_in_flight",
				Help: "Number of session operations currently in progress",
			},
		),
		ListenerFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sessionkit_listener_failures_total",
				Help: "Total number of listener panics recovered during notification",
			},
		),
		Authenticated: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sessionkit_authenticated",
				Help: "1 when the current session carries an identity, otherwise 0",
			},
		),
		SnapshotVersion: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sessionkit_snapshot_version",
				Help: "Version of the last published session snapshot",
			},
		),
	}
}

// OperationStarted implements session.Observer.
func (m *Metrics) OperationStarted(session.OperationKind) {
	m.InFlight.Inc()
}

// OperationSettled implements session.Observer.
func (m *Metrics) OperationSettled(kind session.OperationKind, elapsed time.Duration, err error) {
	m.InFlight.Dec()

	op := kind.String()
	m.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if err == nil {
		m.Operations.WithLabelValues(op, OutcomeSuccess).Inc()
		return
	}

	m.Operations.WithLabelValues(op, OutcomeFailure).Inc()
	m.OperationErrors.WithLabelValues(op, errorKind(err)).Inc()
}

// OperationRejected implements session.Observer.
func (m *Metrics) OperationRejected(kind session.OperationKind) {
	m.Rejections.WithLabelValues(kind.String()).Inc()
}

// ListenerFailed implements session.Observer.
func (m *Metrics) ListenerFailed(any) {
	m.ListenerFailures.Inc()
}

// ObserveSnapshot tracks the published session. Subscribe it as a listener.
func (m *Metrics) ObserveSnapshot(snap session.Snapshot) {
	if snap.Authenticated() {
		m.Authenticated.Set(1)
	} else {
		m.Authenticated.Set(0)
	}
	m.SnapshotVersion.Set(float64(snap.Version))
}

func errorKind(err error) string {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return string(authErr.Kind)
	}
	return string(session.KindUnknown)
}
