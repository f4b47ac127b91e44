package light

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// MetricsSubsystem is a subsystem shared by all metrics exposed by this
// package.
const MetricsSubsystem = "light"

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of client messages verified, by message type and result.
	Verifications metrics.Counter
	// Number of membership and non-membership proofs checked, by result.
	ProofVerifications metrics.Counter
	// Number of clients frozen by misbehaviour.
	Misbehaviours metrics.Counter
	// Latest revision height of a client, by revision number.
	LatestHeight metrics.Gauge
	// Time spent verifying a client message, in seconds.
	VerificationTime metrics.Histogram
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		Verifications: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "verifications",
			Help:      "Number of client messages verified, by message type and result.",
		}, extend(labels, "client_id", "message", "result")).With(labelsAndValues...),
		ProofVerifications: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "proof_verifications",
			Help:      "Number of membership and non-membership proofs checked, by result.",
		}, extend(labels, "client_id", "kind", "result")).With(labelsAndValues...),
		Misbehaviours: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "misbehaviours",
			Help:      "Number of clients frozen by misbehaviour.",
		}, extend(labels, "client_id")).With(labelsAndValues...),
		LatestHeight: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "latest_height",
			Help:      "Latest revision height of a client.",
		}, extend(labels, "client_id", "revision")).With(labelsAndValues...),
		VerificationTime: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "verification_time",
			Help:      "Time spent verifying a client message, in seconds.",
			Buckets:   stdprometheus.ExponentialBuckets(0.0005, 2, 12),
		}, extend(labels, "client_id")).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Verifications:      discard.NewCounter(),
		ProofVerifications: discard.NewCounter(),
		Misbehaviours:      discard.NewCounter(),
		LatestHeight:       discard.NewGauge(),
		VerificationTime:   discard.NewHistogram(),
	}
}

func extend(labels []string, extra ...string) []string {
	out := make([]string, 0, len(labels)+len(extra))
	out = append(out, labels...)
	return append(out, extra...)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
