// Package solver provides the incremental satisfiability capability used by
// the exact search: one boolean variable per candidate, a single
// exact-cardinality constraint over all of them, and blocking clauses that
// accumulate for the lifetime of the solver.
package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// NotSatisfiable is returned by Solve when no assignment satisfies the
	// registered constraints. The answer is definitive.
	NotSatisfiable = errors.New("constraints not satisfiable")

	// Incomplete is returned by Solve when the context ends first.
	Incomplete = errors.New("cancelled before a solution could be found")
)

// Unavailable reports that a solving backend could not be constructed.
type Unavailable struct {
	Name string
	Err  error
}

func (e Unavailable) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("solver %q is unavailable", e.Name)
	}
	return fmt.Sprintf("solver %q is unavailable: %s", e.Name, e.Err)
}

func (e Unavailable) Unwrap() error {
	return e.Err
}

// Solver is an incremental propositional solver over variables 0..n-1.
type Solver interface {
	// Exactly declares vars variables and requires exactly m of them to be
	// true. It must be called once, before any other method.
	Exactly(vars, m int) error
	// Exclude adds a permanent clause requiring at least one of vars to be
	// false.
	Exclude(vars ...int) error
	// Solve searches for an assignment. It returns nil when one exists,
	// NotSatisfiable when none does, and Incomplete if ctx ends first.
	Solve(ctx context.Context) error
	// Value returns the truth value of v in the last satisfying assignment.
	Value(v int) bool
}

// Model returns the variables that are true in the last satisfying
// assignment of s, in ascending order.
func Model(s Solver, vars int) []int {
	var out []int
	for v := 0; v < vars; v++ {
		if s.Value(v) {
			out = append(out, v)
		}
	}
	return out
}

type Option func(*config) error

type config struct {
	tracer Tracer
}

// WithTracer observes every call to Solve.
func WithTracer(t Tracer) Option {
	return func(c *config) error {
		c.tracer = t
		return nil
	}
}

var defaults = []Option{
	func(c *config) error {
		if c.tracer == nil {
			c.tracer = DefaultTracer{}
		}
		return nil
	},
}

type factory func(c config) (Solver, error)

var backends = map[string]factory{
	"gini":       newGini,
	"bruteforce": newBruteForce,
}

// Backends lists the names accepted by New.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the named backend. An unknown name or a failed
// construction yields Unavailable.
func New(name string, options ...Option) (Solver, error) {
	f, ok := backends[name]
	if !ok {
		return nil, Unavailable{Name: name, Err: fmt.Errorf("known solvers are %v", Backends())}
	}
	var c config
	for _, option := range append(options, defaults...) {
		if err := option(&c); err != nil {
			return nil, Unavailable{Name: name, Err: err}
		}
	}
	s, err := f(c)
	if err != nil {
		return nil, Unavailable{Name: name, Err: err}
	}
	return s, nil
}

// state is the bookkeeping shared by the backends.
type state struct {
	vars     int
	m        int
	declared bool
	clauses  int
	calls    int
	tracer   Tracer
}

func (s *state) declare(vars, m int) error {
	if s.declared {
		return errors.New("cardinality constraint already registered")
	}
	if vars < 1 {
		return fmt.Errorf("need at least one variable, got %d", vars)
	}
	if m < 0 {
		return fmt.Errorf("cardinality must not be negative, got %d", m)
	}
	s.vars, s.m, s.declared = vars, m, true
	return nil
}

func (s *state) checkClause(vars []int) error {
	if !s.declared {
		return errors.New("no cardinality constraint registered")
	}
	if len(vars) == 0 {
		return errors.New("empty blocking clause")
	}
	for _, v := range vars {
		if v < 0 || v >= s.vars {
			return fmt.Errorf("variable %d out of range [0,%d)", v, s.vars)
		}
	}
	s.clauses++
	return nil
}

func (s *state) trace(start time.Time, err error) {
	s.calls++
	s.tracer.Trace(Attempt{
		Call:    s.calls,
		Vars:    s.vars,
		Clauses: s.clauses,
		Err:     err,
		Elapsed: time.Since(start),
	})
}
