package chash

import (
	"math/rand"

	"golang.org/x/exp/constraints"
)

// assignHeads (C5) walks the lookup index space in bit-reversed order,
// drawing a real from the round-robin pool at each valid position and
// appending that position to the real's head list, rebalancing every
// segmentsPerWeight*realCount assignments.
func assignHeads[I constraints.Unsigned](u *Updater[I], ids []I, pool *unweightedPool[I], rng *rand.Rand) error {
	realCount := len(ids)
	need := realCount * int(MaxWeight) * u.segmentsPerWeight
	target := need
	if u.lookupSize < target {
		target = u.lookupSize
	}

	width := pow2LowerBound(u.lookupSize)
	seq := newBitReversedSequence(width)

	rebalanceEvery := u.segmentsPerWeight * realCount

	ringIdx := 0
	distributed := 0
	for distributed < target {
		_, pos32, ok := seq.next()
		if !ok {
			break
		}
		pos := int(pos32)
		if pos >= u.lookupSize {
			continue
		}

		key := rng.Uint32()
		id := pool.match(ringIdx, key)
		ringIdx = nextRingPosition(pool.size(), ringIdx)

		info, ok := u.infos[id]
		if !ok {
			// The pool only ever returns ids from the configured set; this
			// would indicate an internal invariant violation.
			return ErrInternalInvariant
		}
		info.heads = append(info.heads, pos)
		distributed++

		if rebalanceEvery > 0 && distributed%rebalanceEvery == 0 {
			rebalanceHeads(u, distributed/realCount)
			u.reportProgress("assign:rebalance", distributed, target)
		}
	}

	if distributed != target {
		return ErrInternalInvariant
	}

	return nil
}

// rebalanceHeads (part of C5) keeps the bit-reversed interleaving from
// drifting: reals whose head count exceeds target donate their most
// recently assigned position to reals whose head count is below target,
// until every receiver has reached target or every donor is down to it.
// Donors are never taken below target, and surplus a donor still holds once
// the receivers are full stays with it, so counts above target are not
// evened out (5,5,5,0 with target 3 ends as 3,4,5,3). This moves a
// position, not a painting, so it never touches any lookup invariant.
func rebalanceHeads[I constraints.Unsigned](u *Updater[I], target int) {
	var low, high []I
	for _, id := range u.order {
		info := u.infos[id]
		n := len(info.heads)
		switch {
		case n > target:
			high = append(high, id)
		case n < target:
			low = append(low, id)
		}
	}

	if len(low) == 0 || len(high) == 0 {
		return
	}

	l, h := 0, 0
	for l < len(low) {
		donor := u.infos[high[h]]
		receiver := u.infos[low[l]]

		last := len(donor.heads) - 1
		receiver.heads = append(receiver.heads, donor.heads[last])
		donor.heads = donor.heads[:last]

		if len(receiver.heads) == target {
			l++
			if l == len(low) {
				break
			}
		}
		if len(donor.heads) == target {
			h++
			if h == len(high) {
				break
			}
		}
	}
}
