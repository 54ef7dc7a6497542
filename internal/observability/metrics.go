package observability

import "github.com/prometheus/client_golang/prometheus"

// The served surface is four fixed routes. Anything else callers probe for
// collapses into one label value so route cardinality stays bounded.
var servedRoutes = map[string]struct{}{
	"/v1/answer":  {},
	"/v1/health":  {},
	"/v1/ready":   {},
	"/v1/metrics": {},
}

func RouteLabel(path string) string {
	if _, ok := servedRoutes[path]; ok {
		return path
	}
	return "other"
}

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firmsight_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// Answer requests spend most of their time in two model round trips,
	// so the latency buckets stretch well past the defaults.
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "firmsight_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDurationSeconds)
}
