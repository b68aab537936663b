package solver

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

const pollInterval = 5 * time.Millisecond

// giniSolver keeps a single gini instance for its whole life so that learnt
// clauses survive between calls to Solve.
type giniSolver struct {
	state
	g    *gini.Gini
	c    *logic.C
	lits []z.Lit
}

func newGini(c config) (Solver, error) {
	return &giniSolver{
		state: state{tracer: c.tracer},
		g:     gini.New(),
	}, nil
}

// Exactly allocates one circuit input per variable and encodes the
// cardinality with a sorting network, pinning both Leq(m) and Geq(m).
func (s *giniSolver) Exactly(vars, m int) error {
	if err := s.declare(vars, m); err != nil {
		return err
	}
	s.c = logic.NewCCap(vars)
	s.lits = make([]z.Lit, vars)
	for i := range s.lits {
		s.lits[i] = s.c.Lit()
	}
	cs := s.c.CardSort(s.lits)
	s.c.ToCnf(s.g)
	s.unit(cs.Leq(m))
	s.unit(cs.Geq(m))
	return nil
}

func (s *giniSolver) Exclude(vars ...int) error {
	if err := s.checkClause(vars); err != nil {
		return err
	}
	for _, v := range vars {
		s.g.Add(s.lits[v].Not())
	}
	s.g.Add(z.LitNull)
	return nil
}

func (s *giniSolver) Solve(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.trace(start, err) }()

	if ctx.Err() != nil {
		return Incomplete
	}

	var outcome int
	if ctx.Done() == nil {
		outcome = s.g.Solve()
	} else {
		outcome = s.solveUntil(ctx)
	}

	switch outcome {
	case satisfiable:
		return nil
	case unsatisfiable:
		return NotSatisfiable
	}
	return Incomplete
}

// solveUntil runs the search in the background and stops it if ctx ends
// first.
func (s *giniSolver) solveUntil(ctx context.Context) int {
	bg := s.g.GoSolve()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if res, ok := bg.Test(); ok {
			return res
		}
		select {
		case <-ctx.Done():
			return bg.Stop()
		case <-ticker.C:
		}
	}
}

func (s *giniSolver) Value(v int) bool {
	if v < 0 || v >= len(s.lits) {
		return false
	}
	return s.g.Value(s.lits[v])
}

func (s *giniSolver) unit(m z.Lit) {
	s.g.Add(m)
	s.g.Add(z.LitNull)
}

const (
	satisfiable   = 1
	unsatisfiable = -1
)
