// Package metrics holds the storefront's Prometheus collectors. They are
// registered with the default registry on import and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mercadotech"

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// CartReconciliationsTotal counts login-time cart merges.
// Label:
//   - result: "ok" or "error"
var CartReconciliationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "reconciliations_total",
		Help:      "Total number of cart reconciliations against the backend, by result.",
	},
	[]string{"result"},
)

// CartPushesTotal counts fire-and-forget cart replacements. Failed pushes are
// dropped, so the error series is the number of lost mirror updates.
var CartPushesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "pushes_total",
		Help:      "Total number of cart pushes to the backend, by result.",
	},
	[]string{"result"},
)

var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of domain events handed to the broker, by topic and result.",
	},
	[]string{"topic", "result"},
)

var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of view-layer requests, by method, route and status code.",
	},
	[]string{"method", "route", "status"},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of view-layer requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
