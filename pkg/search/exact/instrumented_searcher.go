package exact

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/sunflower-search/sunflower/pkg/search"
)

// InstrumentedSearcher reports how long each search took, split by whether
// it reached a definitive answer (found or infeasible) or not.
type InstrumentedSearcher struct {
	searcher               Searcher
	resolvedMetricsEmitter func(time.Duration)
	failureMetricsEmitter  func(time.Duration)
}

var _ Searcher = &InstrumentedSearcher{}

func NewInstrumentedSearcher(searcher Searcher, resolvedMetricsEmitter, failureMetricsEmitter func(time.Duration)) *InstrumentedSearcher {
	return &InstrumentedSearcher{
		searcher:               searcher,
		resolvedMetricsEmitter: resolvedMetricsEmitter,
		failureMetricsEmitter:  failureMetricsEmitter,
	}
}

func (is *InstrumentedSearcher) Search(ctx context.Context, m, k int) (*Result, error) {
	start := time.Now()
	result, err := is.searcher.Search(ctx, m, k)
	var infeasible search.Infeasible
	if err == nil || errors.As(err, &infeasible) {
		is.resolvedMetricsEmitter(time.Since(start))
	} else {
		is.failureMetricsEmitter(time.Since(start))
	}
	return result, err
}
