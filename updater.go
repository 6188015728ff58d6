package chash

import (
	"fmt"
	"math/rand"

	"golang.org/x/exp/constraints"
)

// ProgressFunc is an optional caller-supplied progress sink, invoked at
// rebalance boundaries during construction and at each slice toggle during
// weight application. Lifted out of the core so construction and rebalance
// progress never embeds I/O directly — cmd/chashdemo wires this to
// internal/chashlog.
type ProgressFunc func(stage string, done, total int)

// realInfo is the per-real bookkeeping the updater maintains.
type realInfo[I constraints.Unsigned] struct {
	heads   []int // ordered list of lookup-array indices assigned to this real
	enabled int   // prefix length of heads currently active
	weight  Weight
}

// Config holds the tunables a caller may override when constructing an
// Updater. Zero-value fields fall back to their documented defaults.
type Config struct {
	// SegmentsPerWeight is the number of head positions granted per weight
	// unit. Defaults to DefaultSegmentsPerWeight.
	SegmentsPerWeight int

	// PoolSize is the number of unweighted rings built for the round-robin
	// pool. Defaults to DefaultPoolSize.
	PoolSize int

	// LookupSize is the length of the lookup array this updater will
	// paint. Defaults to RequiredLookupSize(len(reals), SegmentsPerWeight).
	LookupSize int

	// DeviationTolerance bounds Adjust's target window. Defaults to
	// DefaultDeviationTolerance.
	DeviationTolerance float64

	// Seed overrides RNGSeed for the deterministic salt/draw stream. Two
	// updaters built with the same Seed (and otherwise identical inputs)
	// produce identical lookup arrays.
	Seed int64

	// Progress, if non-nil, is invoked during construction (at rebalance
	// boundaries) and during UpdateWeight/UpdateLookup (at each slice
	// toggle).
	Progress ProgressFunc
}

func (c Config) withDefaults(realCount int) Config {
	if c.SegmentsPerWeight <= 0 {
		c.SegmentsPerWeight = DefaultSegmentsPerWeight
	}
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.LookupSize <= 0 {
		c.LookupSize = RequiredLookupSize(realCount, c.SegmentsPerWeight)
	}
	if c.DeviationTolerance <= 0 {
		c.DeviationTolerance = DefaultDeviationTolerance
	}
	if c.Seed == 0 {
		c.Seed = RNGSeed
	}
	return c
}

// Updater (C7) is the public façade: construction, weight application,
// lookup initialization, and the optional deviation-bounded adjustment
// pass. One instance is immutable in structure (no reals added or removed
// after New) but mutable in weights. All methods are single-threaded
// cooperative.
type Updater[I constraints.Unsigned] struct {
	segmentsPerWeight int
	lookupSize        int
	deviationTol      float64
	progress          ProgressFunc

	infos       map[I]*realInfo[I]
	order       []I // stable iteration order, insertion order of New's ids
	enabledBits []bool

	realsActive int
	totalWeight Weight
}

// invalidID returns the reserved sentinel for I: its maximum representable
// value. Callers must not register a real with this id.
func invalidID[I constraints.Unsigned]() I {
	var zero I
	return ^zero
}

// Valid reports whether id is not the reserved invalid sentinel.
func Valid[I constraints.Unsigned](id I) bool {
	return id != invalidID[I]()
}

// Invalid returns the reserved sentinel RealId for I.
func Invalid[I constraints.Unsigned]() I {
	return invalidID[I]()
}

// RequiredLookupSize returns the canonical lookup size for realCount reals
// at the given segmentsPerWeight: realCount * MaxWeight * segmentsPerWeight.
func RequiredLookupSize(realCount, segmentsPerWeight int) int {
	return realCount * int(MaxWeight) * segmentsPerWeight
}

// New constructs an Updater from parallel reals/ids/weights slices. It
// installs per-real bookkeeping, builds the unweighted pool, and runs head
// assignment with periodic rebalancing. It does not
// paint any lookup array — call InitLookup for that.
func New[I constraints.Unsigned](reals []Real, ids []I, weights []Weight, cfg Config) (*Updater[I], error) {
	if len(reals) == 0 || len(reals) != len(ids) || len(ids) != len(weights) {
		return nil, fmt.Errorf("%w: reals/ids/weights must be equal-length and non-empty", ErrInvalidConfiguration)
	}

	cfg = cfg.withDefaults(len(reals))

	if cfg.PoolSize < 1 {
		return nil, fmt.Errorf("%w: pool size must be >= 1", ErrInvalidConfiguration)
	}
	if cfg.PoolSize+cfg.SegmentsPerWeight*int(MaxWeight) == 0 {
		return nil, fmt.Errorf("%w: pool size and segments-per-weight budget cannot both be zero", ErrInvalidConfiguration)
	}
	if cfg.LookupSize < cfg.SegmentsPerWeight*int(MaxWeight) {
		return nil, fmt.Errorf("%w: lookup size smaller than segmentsPerWeight*MaxWeight", ErrInvalidConfiguration)
	}

	invalid := invalidID[I]()
	infos := make(map[I]*realInfo[I], len(ids))
	order := make([]I, 0, len(ids))
	var totalWeight Weight
	var realsActive int

	for i, id := range ids {
		if id == invalid {
			return nil, fmt.Errorf("%w: real id %v is the reserved invalid sentinel", ErrInvalidConfiguration, id)
		}
		if weights[i] > MaxWeight {
			return nil, fmt.Errorf("%w: weight %d exceeds MaxWeight %d", ErrInvalidConfiguration, weights[i], MaxWeight)
		}
		if _, dup := infos[id]; dup {
			return nil, fmt.Errorf("%w: duplicate real id %v", ErrInvalidConfiguration, id)
		}

		info := &realInfo[I]{
			enabled: int(weights[i]) * cfg.SegmentsPerWeight,
			weight:  weights[i],
		}
		infos[id] = info
		order = append(order, id)
		totalWeight += weights[i]
		if info.enabled != 0 {
			realsActive++
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	pool, err := newUnweightedPool[I](reals, ids, cfg.PoolSize, rng)
	if err != nil {
		return nil, err
	}

	u := &Updater[I]{
		segmentsPerWeight: cfg.SegmentsPerWeight,
		lookupSize:        cfg.LookupSize,
		deviationTol:      cfg.DeviationTolerance,
		progress:          cfg.Progress,
		infos:             infos,
		order:             order,
		enabledBits:       make([]bool, cfg.LookupSize),
		realsActive:       realsActive,
		totalWeight:       totalWeight,
	}

	if err := assignHeads(u, ids, pool, rng); err != nil {
		return nil, err
	}

	// Mark enabled bits for every real's initial enabled prefix; clear any
	// bit assigned beyond it. Construction-only — no painting walk needed
	// (InitLookup paints the caller's array separately).
	for _, info := range u.infos {
		for i, pos := range info.heads {
			u.enabledBits[pos] = i < info.enabled
		}
	}

	return u, nil
}

// LookupSize returns L, the length of lookup arrays this updater paints.
func (u *Updater[I]) LookupSize() int {
	return u.lookupSize
}

// Disabled reports whether every real currently has zero enabled heads.
func (u *Updater[I]) Disabled() bool {
	return u.realsActive == 0
}

func (u *Updater[I]) reportProgress(stage string, done, total int) {
	if u.progress != nil {
		u.progress(stage, done, total)
	}
}

// InitLookup fills lookup (which must have length LookupSize()) from the
// current heads/enabled state. Every cell ends up holding the RealId of the
// nearest preceding enabled head on the ring, or the invalid sentinel if no
// real is enabled at all.
func (u *Updater[I]) InitLookup(lookup []I) {
	inv := invalidID[I]()
	for i := range lookup {
		lookup[i] = inv
	}

	if u.Disabled() {
		return
	}

	for _, id := range u.order {
		info := u.infos[id]
		for _, pos := range info.heads[:info.enabled] {
			lookup[pos] = id
		}
	}

	tint := lookup[0]
	if tint == inv {
		for i := len(lookup) - 1; i >= 0; i-- {
			if lookup[i] != inv {
				tint = lookup[i]
				break
			}
		}
	}

	for i := range lookup {
		if lookup[i] != inv {
			tint = lookup[i]
		}
		lookup[i] = tint
	}
}

// UpdateWeight is idempotent and a silent no-op if id is unknown. It
// disables or enables id's slices one at a time until its enabled head
// count matches newWeight*SegmentsPerWeight.
func (u *Updater[I]) UpdateWeight(id I, newWeight Weight, lookup []I) {
	info, ok := u.infos[id]
	if !ok {
		return
	}

	was := info.enabled
	target := int(newWeight) * u.segmentsPerWeight

	total := abs(target - was)
	done := 0
	for info.enabled > target {
		disableSlice(u, id, info, lookup)
		done++
		u.reportProgress("update-weight:disable", done, total)
	}
	for info.enabled < target {
		enableSlice(u, id, info, lookup)
		done++
		u.reportProgress("update-weight:enable", done, total)
	}

	if was == 0 && newWeight != 0 {
		u.realsActive++
	}
	if newWeight == 0 && was != 0 {
		u.realsActive--
		if u.realsActive == 0 {
			inv := invalidID[I]()
			for i := range lookup {
				lookup[i] = inv
			}
		}
	}

	u.totalWeight -= info.weight
	u.totalWeight += newWeight
	info.weight = newWeight
}

// UpdateLookup applies UpdateWeight for each (ids[k], weights[k]) pair in
// input order. Order matters: different orders can yield different
// intermediate colorings, though determinism is preserved per-order.
func (u *Updater[I]) UpdateLookup(ids []I, weights []Weight, lookup []I) {
	for k, id := range ids {
		u.UpdateWeight(id, weights[k], lookup)
	}
}

// SetWeights updates each real's target enabled count and the enabled
// bitmap without painting lookup. Useful when a caller wants to stage
// several weight changes and paint once via a later InitLookup-equivalent
// pass, or is only tracking enabled-head bookkeeping.
func (u *Updater[I]) SetWeights(ids []I, weights []Weight) {
	for k, id := range ids {
		info, ok := u.infos[id]
		if !ok {
			continue
		}

		if info.enabled == 0 && weights[k] != 0 {
			u.realsActive++
		}
		if weights[k] == 0 && info.enabled != 0 {
			u.realsActive--
		}

		current := info.enabled
		updated := int(weights[k]) * u.segmentsPerWeight
		if updated > current {
			for _, pos := range info.heads[current:updated] {
				u.enabledBits[pos] = true
			}
		} else {
			for _, pos := range info.heads[updated:current] {
				u.enabledBits[pos] = false
			}
		}
		info.enabled = updated

		u.totalWeight += weights[k]
		u.totalWeight -= info.weight
		info.weight = weights[k]
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
