package guard

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
)

var warpDecisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "instance_guard_warp_decisions_total",
		Help: "Warp requests into guarded worlds by outcome",
	},
	[]string{"outcome"},
)

var locksArmed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "instance_guard_locks_total",
		Help: "Times a guarded world emptied and was locked",
	},
)

var redirectFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "instance_guard_redirect_failures_total",
		Help: "Failed deliveries of a deny notice or redirect",
	},
	[]string{"step"},
)

var lockedWorlds = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "instance_guard_locked_worlds",
		Help: "Guarded worlds currently cooling down",
	},
)

var occupiedWorlds = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "instance_guard_world_occupants",
		Help: "Players recorded in each occupied guarded world",
	},
	[]string{"world"},
)

// RegisterMetrics registers the guard metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(warpDecisions)
	reg.MustRegister(locksArmed)
	reg.MustRegister(redirectFailures)
	reg.MustRegister(lockedWorlds)
	reg.MustRegister(occupiedWorlds)
}
