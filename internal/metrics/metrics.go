// AngelaMos | 2026
// metrics.go

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "user_api"

// Outcome label values shared by the auth counters.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidEmail   = "invalid_email"
	OutcomeInvalidPass    = "invalid_password"
	OutcomeNotFound       = "not_found"
	OutcomeNotDelivered   = "not_delivered"
	OutcomeLinkExpired    = "link_expired"
	OutcomeInvalidToken   = "invalid_token"
	OutcomeInternalFailed = "error"
)

var (
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	ForgotPasswordRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "forgot_password_requests_total",
		Help:      "Forgot-password requests by outcome.",
	}, []string{"outcome"})

	PasswordResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "password_resets_total",
		Help:      "Password reset attempts by outcome.",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by a rate limiter.",
	}, []string{"limiter"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
