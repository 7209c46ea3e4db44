// Package metrics defines the custom Prometheus collectors of the SkinScan API.
// HTTP request metrics come from echoprometheus; the collectors here cover
// what the middleware cannot see: auth outcomes and upstream calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "skinscan"

// Upstream service labels.
const (
	ServiceGemini    = "gemini"
	ServicePredictor = "predictor"
)

// AuthAttemptsTotal counts register/login attempts.
// Labels:
//   - operation: "register" or "login"
//   - outcome: "success", "invalid", "conflict", "unauthorized", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by outcome.",
	},
	[]string{"operation", "outcome"},
)

// UpstreamRequestsTotal counts calls to external services.
// Labels:
//   - service: ServiceGemini or ServicePredictor
//   - outcome: "success" or "error"
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of calls to upstream services, by outcome.",
	},
	[]string{"service", "outcome"},
)

// UpstreamRequestDuration measures upstream call latency, failures included.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of calls to upstream services.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 15, 30},
	},
	[]string{"service"},
)

// RateLimitedTotal counts requests rejected by the auth rate limiter.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"route"},
)

// ObserveUpstream records one upstream call that started at start.
func ObserveUpstream(service string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(service, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}
