// Package universe enumerates the n-subsets of a small universe, assigns
// them stable identities and indexes every candidate kernel by the sets
// that carry it.
package universe

import (
	"io"
	"sort"

	roaring "github.com/RoaringBitmap/roaring"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/sunflower-search/sunflower/pkg/config"
)

// Index is the immutable product of enumerating all n-subsets of a
// U-element universe. It is safe for concurrent readers.
type Index struct {
	n, u     int
	sets     []Set
	ids      map[Set]SetID
	carriers map[Set]*roaring.Bitmap
	kernels  []Set
}

type Option func(*options)

type options struct {
	logger logrus.FieldLogger
}

// WithLogger reports progress of the precomputation to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// NewIndex enumerates the C(u,n) n-subsets in lexicographic order and
// builds the carrier list of every proper subset of each of them.
func NewIndex(n, u int, opts ...Option) (*Index, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		o.logger = discard
	}

	if err := config.ValidateUniverse(n, u); err != nil {
		return nil, err
	}
	if err := config.ValidateIndexSize(n, u); err != nil {
		return nil, err
	}

	total := combin.Binomial(u, n)
	idx := &Index{
		n:        n,
		u:        u,
		sets:     make([]Set, 0, total),
		ids:      make(map[Set]SetID, total),
		carriers: make(map[Set]*roaring.Bitmap),
	}

	o.logger.WithField("sets", total).Debug("precomputing kernels")

	gen := combin.NewCombinationGenerator(u, n)
	comb := make([]int, n)
	for gen.Next() {
		s := NewSet(gen.Combination(comb)...)
		id := SetID(len(idx.sets))
		idx.sets = append(idx.sets, s)
		idx.ids[s] = id

		ProperSubsets(s, func(k Set) bool {
			bm, ok := idx.carriers[k]
			if !ok {
				bm = roaring.New()
				idx.carriers[k] = bm
			}
			bm.Add(uint32(id))
			return true
		})
	}

	idx.kernels = make([]Set, 0, len(idx.carriers))
	for k, bm := range idx.carriers {
		bm.RunOptimize()
		idx.kernels = append(idx.kernels, k)
	}
	sortSets(idx.kernels)

	o.logger.WithField("kernels", len(idx.kernels)).Debug("finished precomputing kernels")
	return idx, nil
}

// N returns the size of every indexed set.
func (idx *Index) N() int { return idx.n }

// U returns the universe size.
func (idx *Index) U() int { return idx.u }

// Len returns C(U,n), the number of SetIDs.
func (idx *Index) Len() int { return len(idx.sets) }

// Set returns the set identified by id. It panics on an unknown id.
func (idx *Index) Set(id SetID) Set {
	return idx.sets[id]
}

// ID returns the identity of s, if s is one of the indexed n-subsets.
func (idx *Index) ID(s Set) (SetID, bool) {
	id, ok := idx.ids[s]
	return id, ok
}

// Sets returns every indexed set, ordered by SetID.
func (idx *Index) Sets() []Set {
	out := make([]Set, len(idx.sets))
	copy(out, idx.sets)
	return out
}

// Kernels returns every kernel candidate in ascending bitmask order.
func (idx *Index) Kernels() []Set {
	out := make([]Set, len(idx.kernels))
	copy(out, idx.kernels)
	return out
}

// CarrierBitmap returns the carrier list of k, or nil if k is not a proper
// subset of any indexed set. The bitmap must not be modified.
func (idx *Index) CarrierBitmap(k Set) *roaring.Bitmap {
	return idx.carriers[k]
}

// Carriers returns the ascending SetIDs whose set contains k.
func (idx *Index) Carriers(k Set) []SetID {
	bm, ok := idx.carriers[k]
	if !ok {
		return nil
	}
	out := make([]SetID, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, SetID(it.Next()))
	}
	return out
}

// Bitmap returns a new bitmap holding ids.
func Bitmap(ids []SetID) *roaring.Bitmap {
	bm := roaring.New()
	for _, id := range ids {
		bm.Add(uint32(id))
	}
	return bm
}

func sortSets(s []Set) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
