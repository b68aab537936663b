package universe

import (
	"math/bits"
	"strconv"
	"strings"
)

// Set is a subset of a universe of at most 64 elements, one bit per
// element. Kernels and petals share the representation.
type Set uint64

// SetID identifies one of the C(U,n) indexed n-subsets.
type SetID uint32

// NewSet returns the set containing the given elements.
func NewSet(elems ...int) Set {
	var s Set
	for _, e := range elems {
		s |= 1 << uint(e)
	}
	return s
}

// Len returns the number of elements in s.
func (s Set) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Contains reports whether element e is in s.
func (s Set) Contains(e int) bool {
	return s&(1<<uint(e)) != 0
}

// Intersect returns s ∩ o.
func (s Set) Intersect(o Set) Set {
	return s & o
}

// Minus returns s \ o.
func (s Set) Minus(o Set) Set {
	return s &^ o
}

// Disjoint reports whether s and o share no element.
func (s Set) Disjoint(o Set) bool {
	return s&o == 0
}

// SubsetOf reports whether every element of s is in o.
func (s Set) SubsetOf(o Set) bool {
	return s&^o == 0
}

// Elements returns the members of s in ascending order.
func (s Set) Elements() []int {
	elems := make([]int, 0, s.Len())
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		elems = append(elems, bits.TrailingZeros64(rest))
	}
	return elems
}

func (s Set) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range s.Elements() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(e))
	}
	b.WriteByte('}')
	return b.String()
}

// ProperSubsets calls fn for every subset of s except s itself, including
// the empty set. Iteration stops early if fn returns false.
func ProperSubsets(s Set, fn func(Set) bool) {
	if s == 0 {
		return
	}
	for sub := (s - 1) & s; ; sub = (sub - 1) & s {
		if !fn(sub) {
			return
		}
		if sub == 0 {
			return
		}
	}
}
