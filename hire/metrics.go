package hire

import "github.com/prometheus/client_golang/prometheus"

var (
	hiresStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hires_started_total",
		Help: "Total number of hires started",
	})

	hiresReturnedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hires_returned_total",
		Help: "Total number of hires returned",
	})

	hireRevenueTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hire_revenue_total",
		Help: "Total charges billed for returned hires",
	})

	bikesMovedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bikes_moved_total",
		Help: "Total number of bikes relocated between stations",
	})

	bikesRepairedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bikes_repaired_total",
		Help: "Total number of completed bike repairs",
	})
)

// RegisterMetrics registers the lifecycle counters with the registry.
func RegisterMetrics(reg *prometheus.Registry) {
	reg.MustRegister(hiresStartedTotal, hiresReturnedTotal, hireRevenueTotal, bikesMovedTotal, bikesRepairedTotal)
}
