// Package anneal drives a fixed-size family of random n-sets toward zero
// 3-sunflowers by simulated annealing. The sunflower count (energy) is
// computed once and then maintained incrementally as single members are
// replaced.
package anneal

import (
	"context"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sunflower-search/sunflower/pkg/config"
	"github.com/sunflower-search/sunflower/pkg/search"
	"github.com/sunflower-search/sunflower/pkg/universe"
)

const (
	DefaultTemperature      = 1.0
	DefaultCooling          = 0.99999
	DefaultProgressInterval = 10000
)

// Move describes one proposed replacement. Family is the family after the
// move was applied or rejected and must not be retained.
type Move struct {
	Step     int
	Index    int
	Old, New universe.Set
	Delta    int
	Accepted bool
	Energy   int
	Family   []universe.Set
}

// Progress is reported every progress interval.
type Progress struct {
	Step        int
	Energy      int
	Best        int
	Temperature float64
	Elapsed     time.Duration
}

// Result carries the final and the best family of a run. On success both
// are the same sunflower-free family.
type Result struct {
	Family     []universe.Set
	Energy     int
	Best       []universe.Set
	BestEnergy int
	Steps      int
	Accepted   int
}

type Annealer struct {
	n, u, m     int
	steps       int
	rnd         *rand.Rand
	logger      logrus.FieldLogger
	temperature float64
	cooling     float64
	interval    int
	progress    func(Progress)
	move        func(Move)
}

type Option func(*Annealer)

// WithRand replaces the source seeded from the run parameters.
func WithRand(rnd *rand.Rand) Option {
	return func(a *Annealer) {
		a.rnd = rnd
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Annealer) {
		a.logger = l
	}
}

func WithTemperature(t float64) Option {
	return func(a *Annealer) {
		a.temperature = t
	}
}

func WithCooling(f float64) Option {
	return func(a *Annealer) {
		a.cooling = f
	}
}

func WithProgressInterval(n int) Option {
	return func(a *Annealer) {
		a.interval = n
	}
}

func WithProgress(fn func(Progress)) Option {
	return func(a *Annealer) {
		a.progress = fn
	}
}

// WithMoveHook observes every proposed move.
func WithMoveHook(fn func(Move)) Option {
	return func(a *Annealer) {
		a.move = fn
	}
}

// New prepares a search for p.M distinct p.N-sets over p.U elements with no
// 3-sunflower, within p.Steps moves.
func New(p config.Params, opts ...Option) (*Annealer, error) {
	if err := p.ValidateAnneal(); err != nil {
		return nil, err
	}
	a := &Annealer{
		n:           p.N,
		u:           p.U,
		m:           p.M,
		steps:       p.Steps,
		temperature: DefaultTemperature,
		cooling:     DefaultCooling,
		interval:    DefaultProgressInterval,
		progress:    func(Progress) {},
		move:        func(Move) {},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rnd == nil {
		a.rnd = rand.New(rand.NewSource(p.Seed))
	}
	if a.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		a.logger = discard
	}
	if a.cooling <= 0 || a.cooling > 1 {
		return nil, &config.ConfigurationError{Field: "cooling", Reason: "must be in (0,1]"}
	}
	if a.interval < 1 {
		a.interval = DefaultProgressInterval
	}
	return a, nil
}

// Run anneals until the energy reaches zero or the step budget is spent. In
// the latter case it returns the result together with search.BudgetExhausted;
// Best holds the lowest-energy family seen.
func (a *Annealer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	sets := make([]universe.Set, 0, a.m)
	seen := make(map[universe.Set]struct{}, a.m)
	for len(sets) < a.m {
		s := a.randomSet()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		sets = append(sets, s)
	}

	energy := Energy(sets)
	result := &Result{
		BestEnergy: energy,
		Best:       clone(sets),
	}
	a.logger.WithField("energy", energy).Info("initial energy")

	// with every n-set already in the family there is nothing to move to
	full := config.Exceeds(a.m+1, a.u, a.n)
	temp := a.temperature

	step := 0
	for ; step < a.steps && !full; step++ {
		if energy == 0 {
			break
		}
		if step%1024 == 0 && ctx.Err() != nil {
			result.Family, result.Energy, result.Steps = clone(sets), energy, step
			return result, errors.Wrapf(ctx.Err(), "annealing interrupted at step %d", step)
		}

		idx := a.rnd.Intn(a.m)
		old := sets[idx]
		candidate := a.randomSet()
		for {
			if _, ok := seen[candidate]; !ok {
				break
			}
			candidate = a.randomSet()
		}

		loss := involving(sets, idx, old)
		gain := involving(sets, idx, candidate)
		delta := gain - loss

		accepted := delta <= 0 || (temp > 0 && a.rnd.Float64() < math.Exp(-float64(delta)/temp))
		if accepted {
			delete(seen, old)
			seen[candidate] = struct{}{}
			sets[idx] = candidate
			energy += delta
			result.Accepted++
			if energy < result.BestEnergy {
				result.BestEnergy = energy
				result.Best = clone(sets)
			}
		}
		a.move(Move{
			Step:     step,
			Index:    idx,
			Old:      old,
			New:      candidate,
			Delta:    delta,
			Accepted: accepted,
			Energy:   energy,
			Family:   sets,
		})

		temp *= a.cooling
		if step%a.interval == 0 {
			p := Progress{
				Step:        step,
				Energy:      energy,
				Best:        result.BestEnergy,
				Temperature: temp,
				Elapsed:     time.Since(start),
			}
			a.progress(p)
			a.logger.WithFields(logrus.Fields{
				"step":   p.Step,
				"energy": p.Energy,
				"best":   p.Best,
				"temp":   p.Temperature,
			}).Debug("annealing")
		}
	}

	result.Family, result.Energy, result.Steps = clone(sets), energy, step
	if energy == 0 {
		a.logger.WithField("steps", step).Info("SUCCESS: energy reached zero")
		return result, nil
	}
	a.logger.WithFields(logrus.Fields{"steps": step, "best": result.BestEnergy}).Info("FAILURE: step budget exhausted")
	return result, search.BudgetExhausted{Strategy: "anneal", Budget: a.steps, BestEnergy: result.BestEnergy}
}

// randomSet draws a uniform n-subset of the universe.
func (a *Annealer) randomSet() universe.Set {
	return universe.NewSet(a.rnd.Perm(a.u)[:a.n]...)
}

func clone(sets []universe.Set) []universe.Set {
	out := make([]universe.Set, len(sets))
	copy(out, sets)
	return out
}
