package chash

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Slice is one half-open colored interval [Begin, End) over [0, L) held by a
// DeltaBuilder.
type Slice[I constraints.Unsigned] struct {
	Begin, End int
	RealID     I
}

// AddedReal pairs a newly registered real with the id the caller assigned
// it. Real is recorded by value rather than as a map key, since
// only constrains Real to Bytes(), not to being comparable.
type AddedReal[I constraints.Unsigned] struct {
	Real Real
	ID   I
}

// Delta is the data-plane change set a DeltaBuilder accumulates: reals to
// add, ids to remove, and the resulting disjoint slice cover.
type Delta[I constraints.Unsigned] struct {
	Add    []AddedReal[I]
	Remove map[I]bool
	Slices []Slice[I]
}

// DeltaBuilder (C8, optional) collects a Delta for shipping to a remote data
// plane without forcing the receiver to replay init_lookup. It never reads
// or writes a lookup array itself; it tracks only the added reals, the
// removed ids, and the slice cover.
type DeltaBuilder[I constraints.Unsigned] struct {
	lookupSize int
	delta      Delta[I]
}

// NewDeltaBuilder starts an empty delta over a ring of size lookupSize.
func NewDeltaBuilder[I constraints.Unsigned](lookupSize int) *DeltaBuilder[I] {
	return &DeltaBuilder[I]{
		lookupSize: lookupSize,
		delta:      Delta[I]{Remove: make(map[I]bool)},
	}
}

// AddReal records a newly registered real in the delta's Add set.
func (b *DeltaBuilder[I]) AddReal(real Real, id I) {
	b.delta.Add = append(b.delta.Add, AddedReal[I]{Real: real, ID: id})
}

// RemoveReal records id's removal in the delta's Remove set.
func (b *DeltaBuilder[I]) RemoveReal(id I) {
	b.delta.Remove[id] = true
}

// AddSlice inserts [begin, end) colored id into the cover. A slice that
// straddles the ring boundary (begin > end) is split at L and inserted as
// two pieces.
func (b *DeltaBuilder[I]) AddSlice(begin, end int, id I) {
	if begin > end {
		b.insert(begin, b.lookupSize, id)
		b.insert(0, end, id)
		return
	}
	b.insert(begin, end, id)
}

// insert merges [begin, end) (already non-wrapping) into the cover, clipping
// or absorbing whatever it overlaps (the left/right-overlap
// rules).
func (b *DeltaBuilder[I]) insert(begin, end int, id I) {
	if begin >= end {
		return
	}

	existing := append([]Slice[I](nil), b.delta.Slices...)
	sort.Slice(existing, func(i, j int) bool { return existing[i].Begin < existing[j].Begin })

	result := make([]Slice[I], 0, len(existing)+1)
	for _, s := range existing {
		switch {
		case s.End <= begin || s.Begin >= end:
			// Disjoint from the new slice: untouched.
			result = append(result, s)

		case s.Begin >= begin && s.End <= end:
			// Fully covered by the new slice: dropped.

		case s.Begin < begin && s.End > end:
			// New slice falls strictly inside s.
			if s.RealID == id {
				// Already the same color across the whole region: no-op.
				result = append(result, s)
			} else {
				result = append(result, Slice[I]{Begin: s.Begin, End: begin, RealID: s.RealID})
				result = append(result, Slice[I]{Begin: end, End: s.End, RealID: s.RealID})
			}

		case s.Begin < begin:
			// Left overlap: s.Begin < begin < s.End <= end.
			if s.RealID == id {
				begin = s.Begin
			} else {
				result = append(result, Slice[I]{Begin: s.Begin, End: begin, RealID: s.RealID})
			}

		default:
			// Right overlap: begin <= s.Begin < end < s.End.
			if s.RealID == id {
				end = s.End
			} else {
				result = append(result, Slice[I]{Begin: end, End: s.End, RealID: s.RealID})
			}
		}
	}

	result = append(result, Slice[I]{Begin: begin, End: end, RealID: id})
	sort.Slice(result, func(i, j int) bool { return result[i].Begin < result[j].Begin })
	b.delta.Slices = result
}

// Build returns the accumulated delta. The builder remains usable
// afterward; Build does not reset its state.
func (b *DeltaBuilder[I]) Build() Delta[I] {
	return b.delta
}
