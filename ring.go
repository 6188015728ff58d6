package chash

import "math/bits"

// next returns the next position on a ring of the given size, wrapping from
// size-1 back to 0.
func next(size, i int) int {
	i++
	if i == size {
		return 0
	}
	return i
}

// prev returns the previous position on a ring of the given size, wrapping
// from 0 back to size-1.
func prev(size, i int) int {
	if i == 0 {
		return size - 1
	}
	return i - 1
}

// nextRingPosition advances a round-robin cursor over a ring of the given
// size. Separate from next so callers that cycle a pool index (rather than
// a lookup position) read distinctly at call sites.
func nextRingPosition(size, i int) int {
	return next(size, i)
}

// pow2LowerBound returns the smallest b such that 2^b >= x. x must be >= 1.
func pow2LowerBound(x int) uint8 {
	if x <= 1 {
		return 0
	}
	return uint8(bits.Len(uint(x - 1)))
}

// reverseBits reverses the low `width` bits of x, yielding a value in
// [0, 2^width). width must be in [0, 32].
func reverseBits(width uint8, x uint32) uint32 {
	if width == 0 {
		return 0
	}
	return bits.Reverse32(x) >> (32 - width)
}

// bitReversedSequence enumerates reverseBits(width, 0), reverseBits(width, 1),
// ..., reverseBits(width, 2^width - 1) — every value in [0, 2^width) exactly
// once, in an order that places each successive value roughly in the middle
// of the largest remaining gap left by prior values. This is the fractally
// uniform fill order the head assigner (C5) relies on for its incremental
// fairness: see assign.go.
type bitReversedSequence struct {
	width uint8
	i     uint64
	n     uint64
	done  bool
}

// newBitReversedSequence creates an iterator over [0, 2^width).
func newBitReversedSequence(width uint8) *bitReversedSequence {
	return &bitReversedSequence{width: width, n: uint64(1) << width}
}

// next returns the next (rawIndex, reversedValue) pair and true, or
// (0, 0, false) once the sequence is exhausted.
func (s *bitReversedSequence) next() (rawIndex int, value uint32, ok bool) {
	if s.done || s.i >= s.n {
		s.done = true
		return 0, 0, false
	}
	value = reverseBits(s.width, uint32(s.i))
	rawIndex = int(s.i)
	s.i++
	return rawIndex, value, true
}
