// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncPassesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_updates_sync_passes_total",
		Help: "Reconciliation passes, partitioned by outcome.",
	}, []string{"status"})

	EventsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_updates_events_emitted_total",
		Help: "Newly persisted catalog events, partitioned by kind.",
	}, []string{"kind"})

	RateLimitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_updates_rate_limits_total",
		Help: "Rate-limit responses received from the change-record source.",
	})
)
