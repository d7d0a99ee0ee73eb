package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskhub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_auth_attempts_total",
		Help: "Request authentication outcomes by channel and result",
	}, []string{"channel", "result"})

	sessionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_session_events_total",
		Help: "Register, login, logout, refresh and password change outcomes",
	}, []string{"event", "result"})

	tokensRevoked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_tokens_revoked_total",
		Help: "Tokens added to the blacklist by token type",
	}, []string{"token_type"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAuthentication records how a request was authenticated. channel is
// "header", "cookie" or "none".
func ObserveAuthentication(channel, result string) {
	authAttempts.WithLabelValues(channel, result).Inc()
}

// ObserveSessionEvent records the outcome of a session operation.
func ObserveSessionEvent(event, result string) {
	sessionEvents.WithLabelValues(event, result).Inc()
}

// ObserveRevocation counts a token that was newly blacklisted.
func ObserveRevocation(tokenType string) {
	tokensRevoked.WithLabelValues(tokenType).Inc()
}
