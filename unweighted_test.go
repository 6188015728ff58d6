package chash

import "testing"

func TestUnweightedRingCoversEveryReal(t *testing.T) {
	reals, ids := fourReals()
	ring, survivors := newUnweightedRing[uint32](reals, ids, 99)

	if len(ring.keys) == 0 {
		t.Fatal("ring has no entries")
	}
	for _, id := range ids {
		if !survivors[id] {
			t.Errorf("id %d did not survive construction under salt 99", id)
		}
	}
}

func TestUnweightedRingMatchWrapsToFirst(t *testing.T) {
	reals, ids := fourReals()
	ring, _ := newUnweightedRing[uint32](reals, ids, 1)

	last := ring.keys[len(ring.keys)-1]
	got := ring.match(last + 1) // past every key: must wrap to the first
	want := ring.values[ring.keys[0]]
	if got != want {
		t.Errorf("match(%d) = %d, want wrap-around match %d", last+1, got, want)
	}
}

func TestUnweightedRingMatchFindsSmallestKeyAtLeastQuery(t *testing.T) {
	reals, ids := fourReals()
	ring, _ := newUnweightedRing[uint32](reals, ids, 1)

	for _, k := range ring.keys {
		if got := ring.match(k); got != ring.values[k] {
			t.Errorf("match(%d) = %d, want %d (exact key hit)", k, got, ring.values[k])
		}
	}
}

func TestUnweightedRingCollisionTieBreakIsGreaterID(t *testing.T) {
	values := map[idHash]uint32{}
	const h idHash = 123

	candidate := uint32(5)
	if cur, ok := values[h]; !ok || candidate > cur {
		values[h] = candidate
	}
	candidate = uint32(2)
	if cur, ok := values[h]; !ok || candidate > cur {
		values[h] = candidate
	}
	if values[h] != 5 {
		t.Fatalf("tie-break kept %d, want the numerically greater id 5", values[h])
	}
}
