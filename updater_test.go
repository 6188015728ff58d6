package chash

import (
	"errors"
	"testing"
)

func smallConfig() Config {
	return Config{SegmentsPerWeight: 2, PoolSize: 200, Seed: RNGSeed}
}

func TestNewRejectsMismatchedLengths(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{100, 100, 100} // one short
	if _, err := New[uint32](reals, ids, weights, smallConfig()); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("New with mismatched lengths = %v, want ErrInvalidConfiguration", err)
	}
}

func TestNewRejectsInvalidSentinelID(t *testing.T) {
	reals, _ := fourReals()
	ids := []uint32{1, 2, 3, invalidID[uint32]()}
	weights := []Weight{100, 100, 100, 100}
	if _, err := New[uint32](reals, ids, weights, smallConfig()); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("New with the reserved sentinel id = %v, want ErrInvalidConfiguration", err)
	}
}

func TestNewRejectsDuplicateID(t *testing.T) {
	reals, _ := fourReals()
	ids := []uint32{1, 2, 3, 3}
	weights := []Weight{100, 100, 100, 100}
	if _, err := New[uint32](reals, ids, weights, smallConfig()); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("New with a duplicate id = %v, want ErrInvalidConfiguration", err)
	}
}

func TestNewRejectsOverweight(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{MaxWeight + 1, 100, 100, 100}
	if _, err := New[uint32](reals, ids, weights, smallConfig()); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("New with weight > MaxWeight = %v, want ErrInvalidConfiguration", err)
	}
}

func TestRequiredLookupSize(t *testing.T) {
	if got := RequiredLookupSize(4, 20); got != 8000 {
		t.Fatalf("RequiredLookupSize(4, 20) = %d, want 8000", got)
	}
}

// TestInitLookupCoverage is a scaled-down E1: equal weights should split a
// lookup array into roughly equal shares, with every cell held by an
// enabled real.
func TestInitLookupCoverage(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{100, 100, 100, 100}

	u, err := New[uint32](reals, ids, weights, smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)

	counts := map[uint32]int{}
	inv := invalidID[uint32]()
	for _, v := range lookup {
		if v == inv {
			t.Fatal("found invalid sentinel in lookup while every real has weight > 0")
		}
		counts[v]++
	}

	want := float64(u.LookupSize()) / float64(len(ids))
	for _, id := range ids {
		got := float64(counts[id])
		if got < want*0.7 || got > want*1.3 {
			t.Errorf("real %d got %d cells, want roughly %.0f (within 30%%)", id, counts[id], want)
		}
	}
}

// TestInitLookupIdempotent is invariant 4: re-running InitLookup must reproduce the
// same buffer.
func TestInitLookupIdempotent(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{100, 100, 100, 100}

	u, err := New[uint32](reals, ids, weights, smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a := make([]uint32, u.LookupSize())
	b := make([]uint32, u.LookupSize())
	u.InitLookup(a)
	u.InitLookup(b)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("InitLookup not idempotent at index %d: %d != %d", i, a[i], b[i])
		}
	}
}

// TestNewIsDeterministic is invariant 3: identical inputs must produce identical
// lookup arrays.
func TestNewIsDeterministic(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{100, 100, 100, 100}

	u1, err := New[uint32](reals, ids, weights, smallConfig())
	if err != nil {
		t.Fatalf("New 1: %v", err)
	}
	u2, err := New[uint32](reals, ids, weights, smallConfig())
	if err != nil {
		t.Fatalf("New 2: %v", err)
	}

	l1 := make([]uint32, u1.LookupSize())
	l2 := make([]uint32, u2.LookupSize())
	u1.InitLookup(l1)
	u2.InitLookup(l2)

	for i := range l1 {
		if l1[i] != l2[i] {
			t.Fatalf("lookup[%d] diverged between identically configured updaters: %d != %d", i, l1[i], l2[i])
		}
	}
}

// TestUpdateWeightDisableOneRemovesItFromLookup is E3 (disable-one).
func TestUpdateWeightDisableOneRemovesItFromLookup(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{100, 100, 100, 100}

	u, err := New[uint32](reals, ids, weights, smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)

	u.UpdateWeight(4, 0, lookup)

	for i, v := range lookup {
		if v == 4 {
			t.Fatalf("lookup[%d] still holds disabled real 4", i)
		}
	}
}

// TestUpdateWeightDisableAllFillsSentinel is invariant 7 (disable-all).
func TestUpdateWeightDisableAllFillsSentinel(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{100, 100, 100, 100}

	u, err := New[uint32](reals, ids, weights, smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)

	for _, id := range ids {
		u.UpdateWeight(id, 0, lookup)
	}

	inv := invalidID[uint32]()
	for i, v := range lookup {
		if v != inv {
			t.Fatalf("lookup[%d] = %d, want invalid sentinel after every real is disabled", i, v)
		}
	}
	if !u.Disabled() {
		t.Fatal("Disabled() = false after every real was brought to weight 0")
	}
}

// TestUpdateWeightIsLocal is invariant 8: update_weight only touches cells
// that belonged to the disabling real or that the newly painted slice
// covers.
func TestUpdateWeightIsLocal(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{100, 100, 100, 100}

	u, err := New[uint32](reals, ids, weights, smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)

	before := append([]uint32(nil), lookup...)
	u.UpdateWeight(4, 50, lookup)

	for i := range lookup {
		if before[i] != 4 && before[i] != lookup[i] {
			t.Fatalf("cell %d changed from %d to %d despite not belonging to the updated real", i, before[i], lookup[i])
		}
	}
}

// TestInitLookupFairFourAtProductionScale is E1 at production scale: C=20,
// the default 20000-ring pool, L=8000, weights all 100. Each real's share
// must land within 2% of L/4.
func TestInitLookupFairFourAtProductionScale(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{100, 100, 100, 100}

	u, err := New[uint32](reals, ids, weights, prodConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if u.LookupSize() != 8000 {
		t.Fatalf("LookupSize() = %d, want 8000", u.LookupSize())
	}

	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)

	counts := map[uint32]int{}
	for _, v := range lookup {
		counts[v]++
	}

	want := float64(u.LookupSize()) / float64(len(ids))
	for _, id := range ids {
		got := float64(counts[id])
		if got < want*0.98 || got > want*1.02 {
			t.Errorf("real %d got %d cells, want within 2%% of %.0f", id, counts[id], want)
		}
	}
}

// TestInitLookupOneBigAtProductionScale is E2: weights {100,1,1,1} at
// L=8000. Id 1 must claim no more than 78% of cells, every other id must
// claim at least one cell, and after Adjust id 1's deviation from its
// 100/103 share must fall within 20%.
func TestInitLookupOneBigAtProductionScale(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{100, 1, 1, 1}

	u, err := New[uint32](reals, ids, weights, prodConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)

	counts := map[uint32]int{}
	for _, v := range lookup {
		counts[v]++
	}

	L := float64(u.LookupSize())
	if share := float64(counts[1]) / L; share > 0.78 {
		t.Errorf("real 1 claims %.1f%% of cells, want <= 78%%", share*100)
	}
	for _, id := range []uint32{2, 3, 4} {
		if counts[id] < 1 {
			t.Errorf("real %d claims 0 cells, want >= 1", id)
		}
	}

	u.Adjust(lookup)

	afterCounts := map[uint32]int{}
	for _, v := range lookup {
		afterCounts[v]++
	}

	target := 100.0 / 103.0 * L
	dev := (float64(afterCounts[1]) - target) / target
	if dev < 0 {
		dev = -dev
	}
	if dev > 0.20 {
		t.Errorf("real 1's deviation from its 100/103 share after Adjust = %.1f%%, want <= 20%%", dev*100)
	}
}

// TestInitLookupSparseAtProductionScale is E4: the same equal-weight reals
// as E1 but at L=24000. Each real must land within 10% of L/4.
func TestInitLookupSparseAtProductionScale(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{100, 100, 100, 100}

	cfg := prodConfig()
	cfg.LookupSize = 24000
	u, err := New[uint32](reals, ids, weights, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)

	counts := map[uint32]int{}
	for _, v := range lookup {
		counts[v]++
	}

	want := 24000.0 / float64(len(ids))
	for _, id := range ids {
		got := float64(counts[id])
		if got < want*0.9 || got > want*1.1 {
			t.Errorf("real %d got %d cells, want within 10%% of %.0f", id, counts[id], want)
		}
	}
}

func TestUpdateWeightUnknownIDIsNoOp(t *testing.T) {
	reals, ids := fourReals()
	weights := []Weight{100, 100, 100, 100}

	u, err := New[uint32](reals, ids, weights, smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)
	before := append([]uint32(nil), lookup...)

	u.UpdateWeight(999, 50, lookup)

	for i := range lookup {
		if before[i] != lookup[i] {
			t.Fatalf("UpdateWeight with an unknown id mutated cell %d", i)
		}
	}
}
