// Package metrics exposes Prometheus collectors for the HTTP layer and board membership changes.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskup"

var (
	RequestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	ActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Requests currently being served.",
	})

	MembershipTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "membership_transitions_total",
		Help:      "Board membership state changes by kind (join, invite_accept, remove, kick, ban, unban, role).",
	}, []string{"kind"})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Notifications discarded because the dispatch queue was full.",
	})
)

// Membership transition kinds
const (
	TransitionJoin         = "join"
	TransitionInviteAccept = "invite_accept"
	TransitionRemove       = "remove"
	TransitionKick         = "kick"
	TransitionBan          = "ban"
	TransitionUnban        = "unban"
	TransitionRole         = "role"
)

func RecordTransition(kind string) {
	MembershipTransitions.WithLabelValues(kind).Inc()
}

// MetricsMiddleware records count and latency for every request. Unmatched
// routes are grouped under one label to keep cardinality bounded.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ActiveRequests.Inc()
		defer ActiveRequests.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestCount.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry for GET /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
