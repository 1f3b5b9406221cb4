// Package observability exposes Prometheus metrics for the application.
package observability

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignupsTotal counts successful account creations.
	SignupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_signups_total",
		Help: "Total number of successful signups",
	})

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_logins_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	// MessagesCreatedTotal counts created messages.
	MessagesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_created_total",
		Help: "Total number of messages created",
	})

	// LikeTogglesTotal counts like toggles by resulting state.
	LikeTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_like_toggles_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// FollowChangesTotal counts follow edge changes by action.
	FollowChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_follow_changes_total",
		Help: "Total number of follow/unfollow actions",
	}, []string{"action"})
)

var (
	httpMetricsOnce sync.Once
	httpMetrics     *fiberprometheus.FiberPrometheus
)

// NewHTTPMetrics returns the Fiber Prometheus middleware for HTTP-level
// request metrics. Register it on the app and expose it at /metrics. The
// instance is shared: the collectors can only be registered once per
// process.
func NewHTTPMetrics(service string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(service)
	})
	return httpMetrics
}
