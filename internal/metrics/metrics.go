// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "budgetapp/internal/errors"
)

// LedgerOperations counts ledger operations by name and result code.
var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "budget",
	Subsystem: "ledger",
	Name:      "operations_total",
	Help:      "Total ledger operations by operation and result.",
}, []string{"operation", "result"})

// ActiveSessions tracks the number of open user sessions.
var ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "budget",
	Subsystem: "session",
	Name:      "active",
	Help:      "Number of users with an open session.",
})

// AuthAttempts counts sign-up and login attempts by result code.
var AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "budget",
	Subsystem: "auth",
	Name:      "attempts_total",
	Help:      "Total sign-up and login attempts by action and result.",
}, []string{"action", "result"})

// HTTPRequestDuration tracks request latency by route and status.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "budget",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

// Result maps an operation error to a low-cardinality label: "ok" or the
// application error code.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	if code := apperrors.CodeOf(err); code != "" {
		return code
	}
	return apperrors.ErrInternalServer.Code
}

// ObserveLedger records one ledger operation.
func ObserveLedger(operation string, err error) {
	LedgerOperations.WithLabelValues(operation, Result(err)).Inc()
}

// ObserveAuth records one authentication attempt.
func ObserveAuth(action string, err error) {
	AuthAttempts.WithLabelValues(action, Result(err)).Inc()
}

// Middleware records HTTP request latency. Unmatched routes share one label.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
