package metrics

import "github.com/prometheus/client_golang/prometheus"

// HTTPDuration observes request latency by method, route pattern and status.
var HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "credlease",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

func init() {
	register(HTTPDuration)
}
