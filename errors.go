package chash

import "errors"

// Sentinel errors returned from New. Wrap with fmt.Errorf("...: %w", err)
// when a caller needs to add context; callers should use errors.Is against
// these values rather than matching error strings.
var (
	// ErrInvalidConfiguration is returned when the inputs to New violate a
	// precondition: an empty real set, reals/ids/weights of unequal length,
	// a lookup size smaller than segmentsPerWeight*MaxWeight, a weight
	// outside [0, MaxWeight], a duplicate RealId, or use of the reserved
	// invalid id. A zero or negative PoolSize (like any other zero Config
	// field) is not an error: New replaces it with its default.
	ErrInvalidConfiguration = errors.New("chash: invalid configuration")

	// ErrPoolCollision is returned when, across every ring in the
	// unweighted pool, at least one configured real has no surviving
	// entry — every occurrence of it was lost to a hash collision. Callers
	// should retry with a larger pool size.
	ErrPoolCollision = errors.New("chash: unweighted pool does not cover every real")

	// ErrInternalInvariant signals a violated invariant during
	// construction. It should only ever surface due to a library bug.
	ErrInternalInvariant = errors.New("chash: internal invariant violated")
)
