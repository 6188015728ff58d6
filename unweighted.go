package chash

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// unweightedRing is a salted consistent-hash ring (C3) used only during
// construction to pick a real for a ring position. It is an append-only,
// ordered map hash -> RealId with at most one entry per distinct hash.
//
// Collisions are broken by keeping whichever real
// "compares greater"; this port breaks them by keeping whichever RealId is
// numerically greater. Both rules are deterministic and independent of
// input order — the property a deterministic ring build requires — and RealId
// ordering avoids demanding an Ord constraint on the caller's Real type,
// which should only be used at the
// construction boundary anyway.
type unweightedRing[I constraints.Unsigned] struct {
	keys   []idHash // sorted ascending, no duplicates
	values map[idHash]I
}

// newUnweightedRing builds a ring from the given reals/ids under one salt.
// It returns the ring and the set of RealIds that survived into it (a real
// can be entirely lost if every one of its hash occurrences collided with a
// greater-id real).
func newUnweightedRing[I constraints.Unsigned](reals []Real, ids []I, s salt) (*unweightedRing[I], map[I]bool) {
	values := make(map[idHash]I, len(reals))
	for i, r := range reals {
		h := hashBytes(r.Bytes(), s)
		id := ids[i]
		if cur, ok := values[h]; !ok || id > cur {
			values[h] = id
		}
	}

	keys := make([]idHash, 0, len(values))
	for h := range values {
		keys = append(keys, h)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	survivors := make(map[I]bool, len(values))
	for _, id := range values {
		survivors[id] = true
	}

	return &unweightedRing[I]{keys: keys, values: values}, survivors
}

// match returns the RealId for the smallest key >= query, wrapping to the
// first entry if none is. The ring must be non-empty.
func (r *unweightedRing[I]) match(query idHash) I {
	n := sort.Search(len(r.keys), func(i int) bool { return r.keys[i] >= query })
	if n == len(r.keys) {
		n = 0
	}
	return r.values[r.keys[n]]
}
