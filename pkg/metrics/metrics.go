package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sunflower-search/sunflower/pkg/search"
)

const (
	StrategyLabel = "strategy"
	Outcome       = "outcome"
	Succeeded     = "succeeded"
	Failed        = "failed"
)

// To add new metrics:
// 1. Register new metrics in Register() below.
// 2. Add an Emit helper so callers never touch the collectors directly.
var (
	exactBatchCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sunflower_exact_batches_total",
			Help: "Monotonic count of solve-detect-block rounds",
		},
	)

	blockedSunflowerCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sunflower_blocked_total",
			Help: "Monotonic count of sunflowers blocked with a solver clause",
		},
	)

	solveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sunflower_solve_duration_seconds",
			Help:    "The duration of a single solver call in the exact search",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	annealStepCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sunflower_anneal_steps_total",
			Help: "Monotonic count of proposed annealing moves",
		},
	)

	annealAcceptedCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sunflower_anneal_accepted_total",
			Help: "Monotonic count of accepted annealing moves",
		},
	)

	annealEnergy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sunflower_anneal_energy",
			Help: "Number of 3-sunflowers in the current annealing family",
		},
	)

	annealBestEnergy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sunflower_anneal_best_energy",
			Help: "Lowest energy seen during the current annealing run",
		},
	)

	searchOutcomeCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunflower_search_outcomes_total",
			Help: "Searches by strategy and outcome (found, infeasible, inconclusive, error)",
		},
		[]string{StrategyLabel, Outcome},
	)

	searchDurationSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "sunflower_search_duration_seconds",
			Help:       "The duration of a search attempt",
			Objectives: map[float64]float64{0.95: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{Outcome},
	)

	registerOnce sync.Once
)

// Register adds every collector to r. Later calls are no-ops so the default
// registerer can be passed from more than one command.
func Register(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(exactBatchCount)
		r.MustRegister(blockedSunflowerCount)
		r.MustRegister(solveDuration)
		r.MustRegister(annealStepCount)
		r.MustRegister(annealAcceptedCount)
		r.MustRegister(annealEnergy)
		r.MustRegister(annealBestEnergy)
		r.MustRegister(searchOutcomeCount)
		r.MustRegister(searchDurationSummary)
	})
}

func EmitBatch(blocked int, solve time.Duration) {
	exactBatchCount.Inc()
	blockedSunflowerCount.Add(float64(blocked))
	solveDuration.Observe(solve.Seconds())
}

func EmitMove(accepted bool, energy int) {
	annealStepCount.Inc()
	if accepted {
		annealAcceptedCount.Inc()
	}
	annealEnergy.Set(float64(energy))
}

func EmitBestEnergy(energy int) {
	annealBestEnergy.Set(float64(energy))
}

// EmitOutcome classifies err with search.Outcome and counts it.
func EmitOutcome(strategy string, err error) {
	searchOutcomeCount.WithLabelValues(strategy, search.Outcome(err)).Inc()
}

func RegisterSearchSuccess(duration time.Duration) {
	searchDurationSummary.WithLabelValues(Succeeded).Observe(duration.Seconds())
}

func RegisterSearchFailure(duration time.Duration) {
	searchDurationSummary.WithLabelValues(Failed).Observe(duration.Seconds())
}
