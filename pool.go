package chash

import (
	"math/rand"

	"golang.org/x/exp/constraints"
)

// unweightedPool (C4) is a sequence of unweighted rings built from one
// deterministic RNG stream, consulted round-robin by the head assigner.
// Any single ring biases placements by its particular collision set;
// averaging across many rings (the pack's choice of a flat list of small
// rings over one large salted table) breaks correlations
// between head positions and real ordering.
type unweightedPool[I constraints.Unsigned] struct {
	rings []*unweightedRing[I]
}

// newUnweightedPool builds size rings over reals/ids, drawing each ring's
// salt from rng. It fails with ErrPoolCollision if, across every ring, some
// real never survives a collision.
func newUnweightedPool[I constraints.Unsigned](reals []Real, ids []I, size int, rng *rand.Rand) (*unweightedPool[I], error) {
	unseen := make(map[I]bool, len(ids))
	for _, id := range ids {
		unseen[id] = true
	}

	rings := make([]*unweightedRing[I], 0, size)
	for i := 0; i < size; i++ {
		s := rng.Uint32()
		ring, survivors := newUnweightedRing[I](reals, ids, s)
		rings = append(rings, ring)
		for id := range survivors {
			delete(unseen, id)
		}
	}

	if len(unseen) > 0 {
		return nil, ErrPoolCollision
	}

	return &unweightedPool[I]{rings: rings}, nil
}

// match queries ring u of the pool.
func (p *unweightedPool[I]) match(u int, query idHash) I {
	return p.rings[u].match(query)
}

// size returns the number of rings in the pool.
func (p *unweightedPool[I]) size() int {
	return len(p.rings)
}
