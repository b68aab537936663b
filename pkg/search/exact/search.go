// Package exact grows a provably sunflower-free family of a requested size,
// or proves that none exists, by alternating between an incremental solver
// and the sunflower detector: every sunflower found in a candidate family is
// blocked with a clause and the solver is asked again.
package exact

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sunflower-search/sunflower/pkg/config"
	"github.com/sunflower-search/sunflower/pkg/search"
	"github.com/sunflower-search/sunflower/pkg/solver"
	"github.com/sunflower-search/sunflower/pkg/sunflower"
	"github.com/sunflower-search/sunflower/pkg/universe"
)

// Detector is the sunflower oracle consulted after every solve.
type Detector interface {
	Detect(active []universe.SetID, k int) ([]sunflower.Sunflower, error)
}

type Searcher interface {
	Search(ctx context.Context, m, k int) (*Result, error)
}

// Result is a verified sunflower-free family.
type Result struct {
	Family  []universe.SetID
	Sets    []universe.Set
	Batches int
	Blocked int
	Elapsed time.Duration
}

// Batch describes one solve-detect-block round.
type Batch struct {
	Number     int
	Active     []universe.SetID
	Sunflowers []sunflower.Sunflower
	SolveTime  time.Duration
}

// Controller runs a single search against one solver session. Blocking
// clauses are permanent, so a Controller cannot be reused.
type Controller struct {
	idx        *universe.Index
	detector   Detector
	solver     solver.Solver
	logger     logrus.FieldLogger
	maxBatches int
	hook       func(Batch)
	tracer     Tracer
	started    bool
}

var _ Searcher = &Controller{}

type Option func(*Controller)

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithMaxBatches caps the number of solver rounds.
func WithMaxBatches(n int) Option {
	return func(c *Controller) {
		c.maxBatches = n
	}
}

// WithBatchHook is called after the detector has examined each candidate.
func WithBatchHook(fn func(Batch)) Option {
	return func(c *Controller) {
		c.hook = fn
	}
}

// WithTracer receives the same batches as the hook.
func WithTracer(t Tracer) Option {
	return func(c *Controller) {
		c.tracer = t
	}
}

func New(idx *universe.Index, d Detector, s solver.Solver, opts ...Option) *Controller {
	c := &Controller{
		idx:        idx,
		detector:   d,
		solver:     s,
		maxBatches: config.DefaultMaxBatches,
		hook:       func(Batch) {},
		tracer:     DefaultTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		c.logger = discard
	}
	return c
}

// Search looks for m indexed sets containing no k-sunflower. It returns a
// Result when one is found, search.Infeasible when the solver proves there is
// none, and search.BudgetExhausted when the batch cap is reached first.
func (c *Controller) Search(ctx context.Context, m, k int) (*Result, error) {
	if c.started {
		return nil, errors.New("exact search controller has already been used")
	}
	c.started = true

	if m < 1 || m > c.idx.Len() {
		return nil, &config.ConfigurationError{Field: "m", Reason: fmt.Sprintf("family size %d outside [1,%d]", m, c.idx.Len())}
	}
	if k < 2 {
		return nil, &config.ConfigurationError{Field: "k", Reason: fmt.Sprintf("sunflower size must be at least 2, got %d", k)}
	}

	start := time.Now()
	log := c.logger.WithFields(logrus.Fields{"n": c.idx.N(), "k": k, "U": c.idx.U(), "m": m})

	if err := c.solver.Exactly(c.idx.Len(), m); err != nil {
		return nil, errors.Wrap(err, "registering cardinality constraint")
	}

	blocked := 0
	for batch := 1; batch <= c.maxBatches; batch++ {
		solveStart := time.Now()
		err := c.solver.Solve(ctx)
		solveTime := time.Since(solveStart)
		if errors.Is(err, solver.NotSatisfiable) {
			log.WithField("batch", batch).Infof("UNSAT: no sunflower-free family of size %d exists", m)
			return nil, search.Infeasible{N: c.idx.N(), K: k, U: c.idx.U(), M: m, Batches: batch}
		}
		if err != nil {
			return nil, errors.Wrapf(err, "solving batch %d", batch)
		}

		active := c.model()
		if len(active) != m {
			return nil, errors.Errorf("solver returned %d sets, expected %d", len(active), m)
		}

		found, err := c.detector.Detect(active, k)
		if err != nil {
			return nil, errors.Wrapf(err, "detecting sunflowers in batch %d", batch)
		}
		b := Batch{Number: batch, Active: active, Sunflowers: found, SolveTime: solveTime}
		c.tracer.Trace(b)
		c.hook(b)

		if len(found) == 0 {
			log.WithField("batch", batch).Infof("SUCCESS: found sunflower-free family of size %d", m)
			return c.result(active, batch, blocked, time.Since(start)), nil
		}

		for _, sf := range found {
			vars := make([]int, len(sf.Members))
			for i, id := range sf.Members {
				vars[i] = int(id)
			}
			if err := c.solver.Exclude(vars...); err != nil {
				return nil, errors.Wrapf(err, "blocking %s", sf)
			}
		}
		blocked += len(found)

		log.WithFields(logrus.Fields{
			"batch":   batch,
			"blocked": len(found),
			"total":   blocked,
			"solve":   solveTime.Round(time.Millisecond),
		}).Infof("Batch %d: found and blocked %d sunflowers", batch, len(found))
	}

	log.Info("reached max batches without finding a solution")
	return nil, search.BudgetExhausted{Strategy: "exact", Budget: c.maxBatches, BestEnergy: -1}
}

func (c *Controller) model() []universe.SetID {
	vars := solver.Model(c.solver, c.idx.Len())
	active := make([]universe.SetID, len(vars))
	for i, v := range vars {
		active[i] = universe.SetID(v)
	}
	return active
}

func (c *Controller) result(active []universe.SetID, batches, blocked int, elapsed time.Duration) *Result {
	sets := make([]universe.Set, len(active))
	for i, id := range active {
		sets[i] = c.idx.Set(id)
	}
	return &Result{
		Family:  active,
		Sets:    sets,
		Batches: batches,
		Blocked: blocked,
		Elapsed: elapsed,
	}
}
