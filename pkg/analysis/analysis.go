// Package analysis computes read-only statistics over a produced family:
// an independent sunflower count and the spreadness of its sub-patterns.
package analysis

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/sunflower-search/sunflower/pkg/universe"
)

// Sunflowers lists every k-tuple of member indices whose pairwise
// intersections are all equal. It scans all C(m,k) tuples and does not use
// the kernel index, so it can cross-check results from either search.
func Sunflowers(sets []universe.Set, k int) [][]int {
	if k < 2 || len(sets) < k {
		return nil
	}
	var found [][]int
	gen := combin.NewCombinationGenerator(len(sets), k)
	comb := make([]int, k)
	for gen.Next() {
		gen.Combination(comb)
		if isSunflower(sets, comb) {
			found = append(found, append([]int(nil), comb...))
		}
	}
	return found
}

func isSunflower(sets []universe.Set, members []int) bool {
	kernel := sets[members[0]] & sets[members[1]]
	for i := range members {
		for j := i + 1; j < len(members); j++ {
			if sets[members[i]]&sets[members[j]] != kernel {
				return false
			}
		}
	}
	return true
}

// Spread is the outcome of a spreadness scan. A family F is κ-spread when
// every pattern S appears in at most κ^-|S|·|F| members.
type Spread struct {
	Kappa float64
	// Worst is the pattern that attains Kappa, and Count the members
	// containing it.
	Worst universe.Set
	Count int
	// Ratio is Kappa / log2(n), the constant in the κ > C·log n threshold.
	Ratio float64
}

// Spreadness returns the minimum of (|F|/count(S))^(1/|S|) over every
// non-empty proper sub-pattern S of a member. Ties go to the smaller pattern
// bitmask. ok is false when there is no pattern to measure.
func Spreadness(sets []universe.Set, n int) (spread Spread, ok bool) {
	counts := make(map[universe.Set]int)
	for _, s := range sets {
		universe.ProperSubsets(s, func(sub universe.Set) bool {
			if sub != 0 {
				counts[sub]++
			}
			return true
		})
	}
	if len(counts) == 0 {
		return Spread{}, false
	}

	patterns := make([]universe.Set, 0, len(counts))
	for p := range counts {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i] < patterns[j] })

	m := float64(len(sets))
	spread.Kappa = math.Inf(1)
	for _, p := range patterns {
		kappa := math.Pow(m/float64(counts[p]), 1/float64(p.Len()))
		if kappa < spread.Kappa {
			spread.Kappa, spread.Worst, spread.Count = kappa, p, counts[p]
		}
	}
	if n > 1 {
		spread.Ratio = spread.Kappa / math.Log2(float64(n))
	}
	return spread, true
}

// Report is the full analysis of one family.
type Report struct {
	Size       int
	K          int
	Sunflowers [][]int
	Spread     Spread
	HasSpread  bool
}

func Analyze(sets []universe.Set, n, k int) Report {
	r := Report{
		Size:       len(sets),
		K:          k,
		Sunflowers: Sunflowers(sets, k),
	}
	r.Spread, r.HasSpread = Spreadness(sets, n)
	return r
}

func (r Report) Free() bool {
	return len(r.Sunflowers) == 0
}

func (r Report) Write(w io.Writer) error {
	free := "YES"
	if !r.Free() {
		free = "NO"
	}
	if _, err := fmt.Fprintf(w, "Family Size: %d\nSunflower-free: %s\n", r.Size, free); err != nil {
		return err
	}
	if !r.Free() {
		if _, err := fmt.Fprintf(w, "Number of %d-sunflowers: %d\n", r.K, len(r.Sunflowers)); err != nil {
			return err
		}
	}
	if !r.HasSpread {
		return nil
	}
	_, err := fmt.Fprintf(w, "Spreadness (min kappa): %.4f\nWorst subset: %s (appears in %d sets)\nC = kappa / log2(n) = %.4f\n",
		r.Spread.Kappa, r.Spread.Worst, r.Spread.Count, r.Spread.Ratio)
	return err
}
