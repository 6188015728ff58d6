package chash

// nameReal is the minimal Real used across the test files: a backend
// identity keyed by its human-readable name.
type nameReal string

func (n nameReal) Bytes() []byte { return []byte(n) }

// fourReals returns the standard E1-style fixture: four reals named
// alpha..delta with ids 1..4.
func fourReals() ([]Real, []uint32) {
	reals := []Real{nameReal("alpha"), nameReal("beta"), nameReal("gamma"), nameReal("delta")}
	ids := []uint32{1, 2, 3, 4}
	return reals, ids
}

// prodConfig is smallConfig's production-scale counterpart: C=20 segments
// per weight unit and a 20000-ring pool, the package's documented
// defaults. Tests built on it exercise the fairness bounds at the scale
// they're actually specified at, not a toy-sized stand-in.
func prodConfig() Config {
	return Config{SegmentsPerWeight: DefaultSegmentsPerWeight, PoolSize: DefaultPoolSize, Seed: RNGSeed}
}
