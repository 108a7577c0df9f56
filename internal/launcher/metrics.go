package launcher

import "github.com/prometheus/client_golang/prometheus"

var (
	roundsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "llmlauncher",
			Subsystem: "dispatch",
			Name:      "rounds_total",
			Help:      "Total dispatch rounds",
		},
	)

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmlauncher",
			Subsystem: "dispatch",
			Name:      "family_runs_total",
			Help:      "Total requests issued per model family",
		},
		[]string{"family"},
	)
)

func init() {
	prometheus.MustRegister(roundsTotal, runsTotal)
}
