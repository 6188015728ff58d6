package chash

// Real is the opaque backend identity the core hashes and orders. Only
// Bytes is required: the generic layer
// is used solely at the construction boundary (New) to feed the unweighted
// rings (C3) and is never consulted again once heads are assigned — from
// that point on RealId is the only currency the core deals in.
type Real interface {
	Bytes() []byte
}

// Weight is a backend's share of traffic, in [0, MaxWeight]. Zero means the
// real is administratively disabled but keeps its head list so it can be
// re-enabled without rebuilding.
type Weight uint32

// MaxWeight is the largest weight a real may be configured with.
const MaxWeight Weight = 100

// Tunable constants with their defaults.
const (
	// RNGSeed seeds the deterministic stream used to salt the unweighted
	// pool and to draw ring queries during head assignment. A fixed
	// constant
	// keeps two updaters built from identical inputs bit-identical.
	RNGSeed = 42

	// DefaultSegmentsPerWeight is the number of head positions granted per
	// weight unit when a caller doesn't override it.
	DefaultSegmentsPerWeight = 20

	// DefaultPoolSize is the number of unweighted rings the pool (C4)
	// builds when a caller doesn't override it.
	DefaultPoolSize = 20000

	// DefaultDeviationTolerance bounds how far a real's effective cell
	// share may drift from its configured share before Adjust trims or
	// grows its enabled slice count.
	DefaultDeviationTolerance = 0.05
)
