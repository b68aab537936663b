package solver

import (
	"context"
	"time"

	"gonum.org/v1/gonum/stat/combin"
)

// bruteForce walks the m-combinations of the variables in lexicographic
// order. Clauses are only ever added, so a combination rejected once stays
// rejected and the walk resumes where the previous Solve stopped.
type bruteForce struct {
	state
	gen       *combin.CombinationGenerator
	current   []int
	valid     bool
	exhausted bool
	chosen    []bool
	blocked   [][]int
}

func newBruteForce(c config) (Solver, error) {
	return &bruteForce{state: state{tracer: c.tracer}}, nil
}

func (s *bruteForce) Exactly(vars, m int) error {
	if err := s.declare(vars, m); err != nil {
		return err
	}
	s.chosen = make([]bool, vars)
	switch {
	case m > vars:
		s.exhausted = true
	case m == 0:
		s.current, s.valid = []int{}, true
	default:
		s.gen = combin.NewCombinationGenerator(vars, m)
		s.current = make([]int, m)
	}
	return nil
}

func (s *bruteForce) Exclude(vars ...int) error {
	if err := s.checkClause(vars); err != nil {
		return err
	}
	s.blocked = append(s.blocked, append([]int(nil), vars...))
	return nil
}

func (s *bruteForce) Solve(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.trace(start, err) }()

	if s.exhausted {
		return NotSatisfiable
	}
	if s.valid && s.satisfies(s.current) {
		return nil
	}
	if s.gen == nil {
		s.exhausted = true
		return NotSatisfiable
	}
	for i := 0; ; i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			return Incomplete
		}
		if !s.gen.Next() {
			break
		}
		s.gen.Combination(s.current)
		s.valid = true
		if s.satisfies(s.current) {
			return nil
		}
	}
	s.exhausted = true
	return NotSatisfiable
}

func (s *bruteForce) satisfies(comb []int) bool {
	for i := range s.chosen {
		s.chosen[i] = false
	}
	for _, v := range comb {
		s.chosen[v] = true
	}
	for _, clause := range s.blocked {
		ok := false
		for _, v := range clause {
			if !s.chosen[v] {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (s *bruteForce) Value(v int) bool {
	if !s.valid || v < 0 || v >= len(s.chosen) {
		return false
	}
	return s.chosen[v]
}
