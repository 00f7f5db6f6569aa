package playback

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpg_playback_transitions_total",
			Help: "Total number of playback transitions by outcome (graph, fallback).",
		},
		[]string{"outcome"},
	)

	sessionsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpg_playback_sessions_started_total",
			Help: "Total number of started play sessions by game source.",
		},
		[]string{"source"}, // sample, authored
	)
)
