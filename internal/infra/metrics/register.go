package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector files in this package enqueue their vectors from init() via
// register; the binary installs the whole set with one MustRegister call.
// Tests exercise the vectors without installing them, so nothing here runs
// under `go test`.

var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister installs every collector declared in this package into the
// default registry. Calling it again is a no-op.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(pending...)
	})
}
