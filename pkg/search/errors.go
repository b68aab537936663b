// Package search holds the outcomes shared by the exact and heuristic
// search strategies.
package search

import (
	"fmt"

	"github.com/pkg/errors"
)

// Infeasible is the definitive negative answer of the exact search: no
// k-sunflower-free family of M n-subsets of a U-element universe exists.
type Infeasible struct {
	N, K, U, M int
	Batches    int
}

func (e Infeasible) Error() string {
	return fmt.Sprintf("no %d-sunflower-free family of %d sets of size %d exists over a universe of %d (proved after %d batches)",
		e.K, e.M, e.N, e.U, e.Batches)
}

// BudgetExhausted reports that a search stopped at its batch or step cap
// without an answer. It is inconclusive: a larger budget may succeed.
type BudgetExhausted struct {
	Strategy string
	Budget   int
	// BestEnergy is the lowest sunflower count seen by the heuristic search,
	// or -1 when the strategy does not track one.
	BestEnergy int
}

func (e BudgetExhausted) Error() string {
	if e.BestEnergy < 0 {
		return fmt.Sprintf("%s search exhausted its budget of %d without resolution", e.Strategy, e.Budget)
	}
	return fmt.Sprintf("%s search exhausted its budget of %d without resolution (best energy %d)", e.Strategy, e.Budget, e.BestEnergy)
}

// Outcome labels a finished search for reporting.
func Outcome(err error) string {
	if err == nil {
		return "found"
	}
	var infeasible Infeasible
	if errors.As(err, &infeasible) {
		return "infeasible"
	}
	var exhausted BudgetExhausted
	if errors.As(err, &exhausted) {
		return "inconclusive"
	}
	return "error"
}
