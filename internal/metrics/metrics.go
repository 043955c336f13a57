// internal/metrics/metrics.go
//
// Prometheus counters for rounds and upstream calls.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RoundsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wheelyhard_rounds_started_total",
			Help: "Rounds successfully started",
		},
	)
	RoundsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wheelyhard_rounds_finished_total",
			Help: "Rounds that reached a terminal status",
		},
		[]string{"outcome"},
	)
	Guesses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wheelyhard_guesses_total",
			Help: "Accepted (non-blank, in-round) guesses",
		},
	)
	UpstreamFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wheelyhard_upstream_failures_total",
			Help: "Failed card, suggestion or artwork retrievals",
		},
		[]string{"kind"},
	)
	DecodeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wheelyhard_artwork_decode_failures_total",
			Help: "Artwork that could not be rendered",
		},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wheelyhard_sessions",
			Help: "Player sessions held in memory",
		},
	)
)

func init() {
	prometheus.MustRegister(RoundsStarted)
	prometheus.MustRegister(RoundsFinished)
	prometheus.MustRegister(Guesses)
	prometheus.MustRegister(UpstreamFailures)
	prometheus.MustRegister(DecodeFailures)
	prometheus.MustRegister(ActiveSessions)
}
