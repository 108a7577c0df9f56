package dispatch

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmlauncher",
			Subsystem: "dispatch",
			Name:      "requests_total",
			Help:      "Total dispatched requests by family and outcome",
		},
		[]string{"family", "outcome"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llmlauncher",
			Subsystem: "dispatch",
			Name:      "request_duration_seconds",
			Help:      "Wall-clock duration of outbound model requests",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"family"},
	)

	inflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "llmlauncher",
			Subsystem: "dispatch",
			Name:      "inflight_requests",
			Help:      "Outbound model requests currently in flight",
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, inflightRequests)
}

// Observe records a finished result. Render failures never reach the
// transport and are counted here too.
func Observe(r Result) {
	requestsTotal.WithLabelValues(r.Family, string(r.Outcome)).Inc()
	if r.Outcome != OutcomeRenderError {
		requestDuration.WithLabelValues(r.Family).Observe(r.Elapsed.Seconds())
	}
}
