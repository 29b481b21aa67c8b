// Package metrics holds the Prometheus instruments of the client.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
)

func (o Outcome) String() string {
	return string(o)
}

var (
	registry = prometheus.NewRegistry()

	readLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pegclient",
			Name:      "chain_read_duration_seconds",
			Help:      "Duration of contract reads, retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "status"},
	)

	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pegclient",
			Name:      "operation_state_transitions_total",
			Help:      "Orchestrator state transitions by operation kind and target state.",
		},
		[]string{"kind", "state"},
	)

	operationOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pegclient",
			Name:      "operation_outcomes_total",
			Help:      "Terminal operation outcomes by kind and error kind.",
		},
		[]string{"kind", "status", "error_kind"},
	)

	syncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pegclient",
			Name:      "sync_job_duration_seconds",
			Help:      "Duration of refresh fan-outs, settle delay excluded.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	syncReadFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pegclient",
			Name:      "sync_read_failures_total",
			Help:      "Reads that failed inside refresh fan-outs.",
		},
	)
)

func init() {
	registry.MustRegister(
		readLatency,
		stateTransitions,
		operationOutcomes,
		syncDuration,
		syncReadFailures,
		collectors.NewGoCollector(),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObserveRead records one contract read.
func ObserveRead(method string, err error, d time.Duration) {
	status := Success
	if err != nil {
		status = Error
	}
	readLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

// ObserveTransition records the orchestrator entering state for an operation of kind.
func ObserveTransition(kind, state string) {
	stateTransitions.WithLabelValues(kind, state).Inc()
}

// ObserveOutcome records a terminal operation. errorKind is empty on success.
func ObserveOutcome(kind string, outcome Outcome, errorKind string) {
	operationOutcomes.WithLabelValues(kind, outcome.String(), errorKind).Inc()
}

// ObserveSync records one completed refresh fan-out.
func ObserveSync(d time.Duration, failedReads int) {
	syncDuration.Observe(d.Seconds())
	syncReadFailures.Add(float64(failedReads))
}
