// Package metrics provides the centralized Prometheus registry for the
// tennis-edge pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ScansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_edge",
		Name:      "scans_total",
		Help:      "Total number of odds scans executed",
	})
	ScanErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_edge",
		Name:      "scan_errors_total",
		Help:      "Total number of failed odds scans",
	})
	PicksGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_edge",
		Name:      "picks_generated_total",
		Help:      "Total number of value picks generated",
	})
	NotificationsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_edge",
		Name:      "notifications_sent_total",
		Help:      "Total number of pick notifications dispatched",
	})
	RowsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tennis_edge",
		Name:      "rows_dropped_total",
		Help:      "Total number of malformed input rows dropped",
	})
	SimulationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tennis_edge",
		Name:      "simulation_runs_total",
		Help:      "Total number of simulation runs by kind and status",
	}, []string{"kind", "status"})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tennis_edge",
		Name:      "current_bankroll",
		Help:      "Ending bankroll of the most recent simulation",
	})
	BestSweepROI = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tennis_edge",
		Name:      "best_sweep_roi",
		Help:      "ROI of the best cell from the most recent band sweep",
	})
	SweepCells = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tennis_edge",
		Name:      "sweep_cells",
		Help:      "Number of cells in the most recent band sweep",
	})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tennis_edge",
		Name:      "simulation_duration_seconds",
		Help:      "Duration of simulation runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
	OddsFetchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tennis_edge",
		Name:      "odds_fetch_latency_seconds",
		Help:      "Latency of odds API fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ScansTotal)
		registry.MustRegister(ScanErrorsTotal)
		registry.MustRegister(PicksGeneratedTotal)
		registry.MustRegister(NotificationsSentTotal)
		registry.MustRegister(RowsDroppedTotal)
		registry.MustRegister(SimulationRunsTotal)

		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(BestSweepROI)
		registry.MustRegister(SweepCells)

		registry.MustRegister(SimulationDuration)
		registry.MustRegister(OddsFetchLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSimulation records a simulation run event.
// kind should be one of: "backtest", "sweep", "monte_carlo"
func RecordSimulation(kind, status string, durationSeconds float64) {
	SimulationRunsTotal.WithLabelValues(kind, status).Inc()
	SimulationDuration.Observe(durationSeconds)
}

// RecordScan records an odds scan event.
func RecordScan(err error) {
	ScansTotal.Inc()
	if err != nil {
		ScanErrorsTotal.Inc()
	}
}

// RecordPicks records generated picks.
func RecordPicks(count int) {
	PicksGeneratedTotal.Add(float64(count))
}

// UpdateBankroll updates the current bankroll gauge.
func UpdateBankroll(amount float64) {
	CurrentBankroll.Set(amount)
}

// UpdateSweep updates the sweep gauges after a completed sweep.
func UpdateSweep(cells int, bestROI float64) {
	SweepCells.Set(float64(cells))
	BestSweepROI.Set(bestROI)
}
