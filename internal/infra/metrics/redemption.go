package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ClaimOutcomes counts finished claim attempts by terminal outcome:
	// assigned, unassigned, not_found, revoked, expired, used_up,
	// race_failed, error.
	ClaimOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "credlease",
		Subsystem: "redemption",
		Name:      "claims_total",
		Help:      "Claim attempts by terminal outcome.",
	}, []string{"outcome"})

	// ClaimRetries counts individual retry rounds inside the optimistic
	// claim loop, by trigger (conflict, write_error, verify_mismatch).
	ClaimRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "credlease",
		Subsystem: "redemption",
		Name:      "claim_retries_total",
		Help:      "Retry rounds in the optimistic claim protocol.",
	}, []string{"trigger"})

	// SelectorPicks counts selector results by winning ownership tier.
	SelectorPicks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "credlease",
		Subsystem: "redemption",
		Name:      "selector_picks_total",
		Help:      "Credential selector results by winning tier.",
	}, []string{"tier"})
)

func init() {
	register(ClaimOutcomes, ClaimRetries, SelectorPicks)
}
