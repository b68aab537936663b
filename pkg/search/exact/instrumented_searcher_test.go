package exact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sunflower-search/sunflower/pkg/search"
)

const (
	failure  = time.Duration(0)
	resolved = time.Duration(1)
)

type fakeSearcher struct {
	err error
}

func (s fakeSearcher) Search(ctx context.Context, m, k int) (*Result, error) {
	return nil, s.err
}

func TestInstrumentedSearcher(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
		want time.Duration
	}{
		{name: "found", err: nil, want: resolved},
		{name: "infeasible", err: search.Infeasible{M: 4}, want: resolved},
		{name: "budget", err: search.BudgetExhausted{Strategy: "exact"}, want: failure},
		{name: "error", err: errors.New("fake error"), want: failure},
	} {
		t.Run(tt.name, func(t *testing.T) {
			result := []time.Duration{}

			changeToFailure := func(time.Duration) {
				result = append(result, failure)
			}
			changeToResolved := func(time.Duration) {
				result = append(result, resolved)
			}

			instrumented := NewInstrumentedSearcher(fakeSearcher{err: tt.err}, changeToResolved, changeToFailure)
			_, err := instrumented.Search(context.Background(), 1, 3)
			require.Equal(t, tt.err, err)
			require.Equal(t, 1, len(result)) // only one emitter call per search
			require.Equal(t, tt.want, result[0])
		})
	}
}
