// Package sunflower detects sunflowers in a family of indexed sets.
//
// A sunflower is a group of k sets that all contain a common kernel K and
// whose petals (each set minus K) are pairwise disjoint. Equivalently, every
// pairwise intersection within the group equals K.
package sunflower

import (
	"fmt"
	"sort"
	"strings"

	roaring "github.com/RoaringBitmap/roaring"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sunflower-search/sunflower/pkg/config"
	"github.com/sunflower-search/sunflower/pkg/universe"
)

// Sunflower is k members of a family sharing Kernel with pairwise-disjoint
// petals. Members are ascending.
type Sunflower struct {
	Kernel  universe.Set
	Members []universe.SetID
}

func (s Sunflower) String() string {
	ids := make([]string, len(s.Members))
	for i, id := range s.Members {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("kernel %s: [%s]", s.Kernel, strings.Join(ids, " "))
}

// Detector finds every sunflower in an active subfamily of an index. It
// holds no mutable state and may be shared.
type Detector struct {
	idx     *universe.Index
	workers int
}

type Option func(*Detector)

// WithWorkers evaluates up to n kernels concurrently. Output does not
// depend on n.
func WithWorkers(n int) Option {
	return func(d *Detector) {
		d.workers = n
	}
}

func NewDetector(idx *universe.Index, opts ...Option) *Detector {
	d := &Detector{idx: idx, workers: 1}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect reports, for every kernel, one group of k active sets with
// pairwise-disjoint petals if such a group exists. The result is empty if
// and only if the active family is k-sunflower-free. Kernels are reported
// in ascending order.
func (d *Detector) Detect(active []universe.SetID, k int) ([]Sunflower, error) {
	return d.DetectBitmap(universe.Bitmap(active), k)
}

// IsFree reports whether the active family contains no k-sunflower.
func (d *Detector) IsFree(active []universe.SetID, k int) (bool, error) {
	found, err := d.Detect(active, k)
	if err != nil {
		return false, err
	}
	return len(found) == 0, nil
}

// DetectBitmap is Detect over a bitmap of active SetIDs. A nil bitmap is an
// empty family.
func (d *Detector) DetectBitmap(active *roaring.Bitmap, k int) ([]Sunflower, error) {
	if k < 2 {
		return nil, &config.ConfigurationError{Field: "k", Reason: fmt.Sprintf("sunflower size must be at least 2, got %d", k)}
	}
	if active == nil || active.GetCardinality() < uint64(k) {
		return nil, nil
	}
	if max := active.Maximum(); int(max) >= d.idx.Len() {
		return nil, errors.Errorf("set id %d is not indexed (index holds %d sets)", max, d.idx.Len())
	}

	kernels := d.candidates(active)
	found := make([]*Sunflower, len(kernels))

	if d.workers <= 1 {
		for i, kernel := range kernels {
			found[i] = d.bloom(kernel, active, k)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(d.workers)
		for i, kernel := range kernels {
			i, kernel := i, kernel
			g.Go(func() error {
				found[i] = d.bloom(kernel, active, k)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var result []Sunflower
	for _, sf := range found {
		if sf != nil {
			result = append(result, *sf)
		}
	}
	return result, nil
}

// candidates returns the kernels that can have k active carriers: only
// proper subsets of active sets qualify.
func (d *Detector) candidates(active *roaring.Bitmap) []universe.Set {
	seen := make(map[universe.Set]struct{})
	it := active.Iterator()
	for it.HasNext() {
		universe.ProperSubsets(d.idx.Set(universe.SetID(it.Next())), func(k universe.Set) bool {
			seen[k] = struct{}{}
			return true
		})
	}
	kernels := make([]universe.Set, 0, len(seen))
	for k := range seen {
		kernels = append(kernels, k)
	}
	sort.Slice(kernels, func(i, j int) bool { return kernels[i] < kernels[j] })
	return kernels
}

// bloom looks for k active carriers of kernel with pairwise-disjoint petals.
func (d *Detector) bloom(kernel universe.Set, active *roaring.Bitmap, k int) *Sunflower {
	carriers := d.idx.CarrierBitmap(kernel)
	if carriers == nil {
		return nil
	}
	present := roaring.And(carriers, active)
	if present.GetCardinality() < uint64(k) {
		return nil
	}

	ids := present.ToArray()
	petals := make([]universe.Set, len(ids))
	for i, id := range ids {
		petals[i] = d.idx.Set(universe.SetID(id)).Minus(kernel)
	}

	chosen := pick(petals, k, 0, 0, make([]int, 0, k))
	if chosen == nil {
		return nil
	}
	members := make([]universe.SetID, len(chosen))
	for i, c := range chosen {
		members[i] = universe.SetID(ids[c])
	}
	return &Sunflower{Kernel: kernel, Members: members}
}

// pick extends chosen with petals disjoint from union, only ever moving
// forward through petals, until k are chosen.
func pick(petals []universe.Set, k, start int, union universe.Set, chosen []int) []int {
	if len(chosen) == k {
		return chosen
	}
	for i := start; i <= len(petals)-(k-len(chosen)); i++ {
		if !petals[i].Disjoint(union) {
			continue
		}
		if res := pick(petals, k, i+1, union|petals[i], append(chosen, i)); res != nil {
			return res
		}
	}
	return nil
}
