// Package config holds the typed run parameters shared by the indexer and
// both search strategies, and the validation that guards them.
package config

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

const (
	DefaultN          = 3
	DefaultK          = 3
	DefaultU          = 7
	DefaultM          = 20
	DefaultMaxBatches = 1000
	DefaultSteps      = 1000000
	DefaultSolver     = "gini"

	// Anneal command defaults. Over 7 elements at most 12 3-sets are
	// 3-sunflower-free, so the annealer starts from a wider universe.
	DefaultAnnealU = 20
	DefaultAnnealM = 19

	// MaxUniverse is the widest universe a bitmask set can represent.
	MaxUniverse = 64

	// MaxIndexedSets bounds C(U,n) for the exhaustive kernel index.
	MaxIndexedSets = 1 << 24

	// MaxCarrierEntries bounds C(U,n)·(2^n-1), the number of (kernel, set)
	// pairs the index stores in its carrier bitmaps.
	MaxCarrierEntries = 1 << 26
)

// ConfigurationError reports an invalid relationship between run
// parameters. It is always raised before any search work starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...interface{}) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Params are the inputs of a single search run.
type Params struct {
	N int `mapstructure:"n"`
	K int `mapstructure:"k"`
	U int `mapstructure:"universe"`
	M int `mapstructure:"target"`

	MaxBatches int    `mapstructure:"max-batches"`
	Steps      int    `mapstructure:"steps"`
	Solver     string `mapstructure:"solver"`
	Seed       int64  `mapstructure:"seed"`
	Workers    int    `mapstructure:"workers"`
}

// Default returns the parameters the command line starts from.
func Default() Params {
	return Params{
		N:          DefaultN,
		K:          DefaultK,
		U:          DefaultU,
		M:          DefaultM,
		MaxBatches: DefaultMaxBatches,
		Steps:      DefaultSteps,
		Solver:     DefaultSolver,
	}
}

// DefaultAnneal returns the parameters the anneal command starts from.
func DefaultAnneal() Params {
	p := Default()
	p.U, p.M = DefaultAnnealU, DefaultAnnealM
	return p
}

// ValidateUniverse checks that n-subsets of a U-element universe can be
// represented as bitmasks.
func ValidateUniverse(n, u int) error {
	switch {
	case n < 1:
		return invalid("n", "set size must be positive, got %d", n)
	case u > MaxUniverse:
		return invalid("U", "universe size %d exceeds %d", u, MaxUniverse)
	case n >= u:
		return invalid("n", "set size %d must be smaller than universe size %d", n, u)
	}
	return nil
}

// ValidateIndexSize rejects universes whose C(U,n) n-subsets, or the carrier
// entries of their proper subsets, would not fit the exhaustive kernel index.
func ValidateIndexSize(n, u int) error {
	if !Exceeds(MaxIndexedSets, u, n) {
		return invalid("U", "C(%d,%d) sets are too many to index", u, n)
	}
	entries := combin.GeneralizedBinomial(float64(u), float64(n)) * (math.Ldexp(1, n) - 1)
	if entries > MaxCarrierEntries {
		return invalid("n", "C(%d,%d) sets with %.0f proper subsets each are too many kernel carriers to index", u, n, math.Ldexp(1, n)-1)
	}
	return nil
}

// Validate checks the parameters shared by every strategy.
func (p Params) Validate() error {
	if err := ValidateUniverse(p.N, p.U); err != nil {
		return err
	}
	if p.K < 2 {
		return invalid("k", "sunflower size must be at least 2, got %d", p.K)
	}
	if p.M < 1 {
		return invalid("m", "family size must be positive, got %d", p.M)
	}
	if Exceeds(p.M, p.U, p.N) {
		return invalid("m", "family size %d exceeds C(%d,%d)", p.M, p.U, p.N)
	}
	if p.MaxBatches < 0 {
		return invalid("max-batches", "must not be negative, got %d", p.MaxBatches)
	}
	if p.Steps < 0 {
		return invalid("steps", "must not be negative, got %d", p.Steps)
	}
	if p.Workers < 0 {
		return invalid("workers", "must not be negative, got %d", p.Workers)
	}
	return nil
}

// ValidateExact additionally requires the exhaustive index to be tractable.
func (p Params) ValidateExact() error {
	if err := p.Validate(); err != nil {
		return err
	}
	return ValidateIndexSize(p.N, p.U)
}

// ValidateAnneal additionally restricts k to 3, the only size the energy
// function counts.
func (p Params) ValidateAnneal() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.K != 3 {
		return invalid("k", "annealing only counts 3-sunflowers, got k=%d", p.K)
	}
	return nil
}

// Exceeds reports whether v > C(u,n) without overflowing for wide universes.
func Exceeds(v, u, n int) bool {
	if n < 0 || n > u {
		return true
	}
	b := combin.GeneralizedBinomial(float64(u), float64(n))
	if b > float64(math.MaxInt32) {
		return float64(v) > b
	}
	return v > Binomial(u, n)
}

// Binomial returns C(u,n). Callers must keep the result within int range.
func Binomial(u, n int) int {
	return combin.Binomial(u, n)
}
