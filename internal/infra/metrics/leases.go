package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// LeaseOps counts lease lifecycle operations by operation and outcome.
	LeaseOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "credlease",
		Subsystem: "lease",
		Name:      "operations_total",
		Help:      "Lease lifecycle operations by op and outcome.",
	}, []string{"op", "outcome"})

	// MailCodeFetches counts external mail-code lookups by final status.
	MailCodeFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "credlease",
		Subsystem: "lease",
		Name:      "mail_code_fetches_total",
		Help:      "External mail-code fetches by final status.",
	}, []string{"status"})
)

func init() {
	register(LeaseOps, MailCodeFetches)
}
