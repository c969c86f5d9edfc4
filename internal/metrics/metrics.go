// Package metrics exposes the server's Prometheus instrumentation:
// active rooms, connected sockets, and duel actions processed. Grounded
// on r3e-network-service_layer's metrics-registry idiom (one package-
// level registry, counters/gauges registered at init, handlers call
// simple Inc/Dec/Observe methods rather than touching prometheus types
// directly).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sanguosha",
		Name:      "active_rooms",
		Help:      "Number of rooms currently open on the server.",
	})

	ConnectedSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sanguosha",
		Name:      "connected_sockets",
		Help:      "Number of currently open websocket connections.",
	})

	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sanguosha",
		Name:      "actions_total",
		Help:      "Count of player actions processed, by action kind.",
	}, []string{"kind"})

	DuelsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sanguosha",
		Name:      "duels_completed_total",
		Help:      "Count of duels that ran to completion, by winning faction.",
	}, []string{"winner"})
)
