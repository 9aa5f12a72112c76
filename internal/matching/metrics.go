package matching

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes
const (
	outcomeSuccess         = "success"
	outcomeRateLimited     = "rate_limited"
	outcomeProfileNotFound = "profile_not_found"
	outcomeStoreError      = "store_error"
	outcomeUpstreamError   = "upstream_error"
	outcomeParseError      = "parse_error"
	outcomeNoCandidates    = "no_candidates"
)

var (
	matchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_requests_total",
			Help: "Gig match requests by outcome",
		},
		[]string{"outcome"},
	)

	upstreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_upstream_duration_seconds",
			Help:    "Latency of the chat-completion call",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
	)

	matchesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_matches_returned",
			Help:    "Matches returned per successful request",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
	)

	entriesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_entries_dropped_total",
			Help: "Matcher entries discarded during reconciliation",
		},
		[]string{"reason"},
	)

	matchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_match_scores",
			Help:    "Distribution of accepted match scores",
			Buckets: prometheus.LinearBuckets(60, 5, 9),
		},
	)
)

func recordOutcome(outcome string) {
	matchRequestsTotal.WithLabelValues(outcome).Inc()
}

func recordUpstream(d time.Duration) {
	upstreamDuration.Observe(d.Seconds())
}

func recordReconciled(matches []Match, dropped map[DropReason]int) {
	matchesReturned.Observe(float64(len(matches)))
	for _, m := range matches {
		matchScores.Observe(float64(m.MatchScore))
	}
	for reason, n := range dropped {
		entriesDropped.WithLabelValues(string(reason)).Add(float64(n))
	}
}
