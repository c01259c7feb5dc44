// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulsedeck",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests handled, partitioned by method, route, and status.",
		},
		[]string{"method", "route", "status"},
	)

	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulsedeck",
			Name:      "analyses_total",
			Help:      "Total AI analyses performed, partitioned by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pulsedeck",
			Name:      "analysis_seconds",
			Help:      "AI analysis latency in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
	)

	probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulsedeck",
			Name:      "health_probes_total",
			Help:      "Total synchronous health probes, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register attaches collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		requestsTotal,
		analysesTotal,
		analysisDurationSeconds,
		probesTotal,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRequest records one handled HTTP request.
func ObserveRequest(method, route, status string) {
	requestsTotal.WithLabelValues(method, route, status).Inc()
}

// ObserveAnalysis records an analysis duration with its provider and outcome.
func ObserveAnalysis(provider string, duration time.Duration, outcome string) {
	if outcome != OutcomeError {
		outcome = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(provider, outcome).Inc()
	analysisDurationSeconds.Observe(duration.Seconds())
}

// ObserveProbe records one health probe outcome.
func ObserveProbe(healthy bool) {
	outcome := "healthy"
	if !healthy {
		outcome = "unhealthy"
	}
	probesTotal.WithLabelValues(outcome).Inc()
}
