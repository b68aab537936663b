package metrics_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunflower-search/sunflower/pkg/metrics"
	"github.com/sunflower-search/sunflower/pkg/search"
)

func gather(t *testing.T, r *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := r.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, l := range m.GetLabel() {
				key += "," + l.GetName() + "=" + l.GetValue()
			}
			values[key] = value(m)
		}
	}
	return values
}

// value reads counters and gauges directly and observations by sample count.
func value(m *dto.Metric) float64 {
	switch {
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	case m.GetHistogram() != nil:
		return float64(m.GetHistogram().GetSampleCount())
	case m.GetSummary() != nil:
		return float64(m.GetSummary().GetSampleCount())
	}
	return 0
}

func TestEmitters(t *testing.T) {
	r := prometheus.NewRegistry()
	metrics.Register(r)
	// a second registration must not panic
	metrics.Register(r)

	before := gather(t, r)

	metrics.EmitBatch(3, 10*time.Millisecond)
	metrics.EmitBatch(0, time.Millisecond)
	metrics.EmitMove(true, 5)
	metrics.EmitMove(false, 4)
	metrics.EmitBestEnergy(2)
	metrics.EmitOutcome("exact", nil)
	metrics.EmitOutcome("exact", search.Infeasible{})
	metrics.EmitOutcome("anneal", search.BudgetExhausted{Strategy: "anneal"})
	metrics.EmitOutcome("anneal", errors.New("boom"))
	metrics.RegisterSearchSuccess(time.Second)
	metrics.RegisterSearchFailure(time.Second)

	after := gather(t, r)
	delta := func(key string) float64 {
		return after[key] - before[key]
	}

	assert.Equal(t, 2.0, delta("sunflower_exact_batches_total"))
	assert.Equal(t, 3.0, delta("sunflower_blocked_total"))
	assert.Equal(t, 2.0, delta("sunflower_solve_duration_seconds"))
	assert.Equal(t, 2.0, delta("sunflower_anneal_steps_total"))
	assert.Equal(t, 1.0, delta("sunflower_anneal_accepted_total"))
	assert.Equal(t, 4.0, after["sunflower_anneal_energy"])
	assert.Equal(t, 2.0, after["sunflower_anneal_best_energy"])
	assert.Equal(t, 1.0, delta("sunflower_search_outcomes_total,outcome=found,strategy=exact"))
	assert.Equal(t, 1.0, delta("sunflower_search_outcomes_total,outcome=infeasible,strategy=exact"))
	assert.Equal(t, 1.0, delta("sunflower_search_outcomes_total,outcome=inconclusive,strategy=anneal"))
	assert.Equal(t, 1.0, delta("sunflower_search_outcomes_total,outcome=error,strategy=anneal"))
	assert.Equal(t, 1.0, delta("sunflower_search_duration_seconds,outcome=succeeded"))
	assert.Equal(t, 1.0, delta("sunflower_search_duration_seconds,outcome=failed"))
}

func TestEmitMoveThreadSafety(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(ii int) {
			defer wg.Done()
			metrics.EmitMove(ii%2 == 0, ii)
		}(i)
	}
	wg.Wait()
}
