package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "chatmarkmap", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "chatmarkmap", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// ContentOps counts content repository calls by operation and outcome
	// (ok|unauthenticated|forbidden|not_found|invalid|error).
	ContentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "chatmarkmap", Name: "content_operations_total", Help: "Content repository operations by outcome."},
		[]string{"op", "outcome"},
	)
	Exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "chatmarkmap", Name: "exports_total", Help: "Mind-map snapshot uploads by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ContentOps)
	reg.MustRegister(Exports)
}
