package chash

import (
	"sort"
	"testing"
)

// TestDeltaBuilderBoundaryCrossingSlice is E6: inserting a straddling slice
// into an empty delta splits it at L.
func TestDeltaBuilderBoundaryCrossingSlice(t *testing.T) {
	const lookupSize = 200
	b := NewDeltaBuilder[uint32](lookupSize)
	b.AddSlice(100, 10, 42)

	got := b.Build().Slices
	sort.Slice(got, func(i, j int) bool { return got[i].Begin < got[j].Begin })

	want := []Slice[uint32]{
		{Begin: 0, End: 10, RealID: 42},
		{Begin: 100, End: lookupSize, RealID: 42},
	}
	assertSameSlices(t, got, want)
}

func TestDeltaBuilderLeftOverlapDifferentIDClips(t *testing.T) {
	b := NewDeltaBuilder[uint32](100)
	b.AddSlice(0, 50, 1)
	b.AddSlice(30, 70, 2)

	got := b.Build().Slices
	want := []Slice[uint32]{
		{Begin: 0, End: 30, RealID: 1},
		{Begin: 30, End: 70, RealID: 2},
	}
	assertSameSlices(t, got, want)
}

func TestDeltaBuilderLeftOverlapSameIDMerges(t *testing.T) {
	b := NewDeltaBuilder[uint32](100)
	b.AddSlice(0, 50, 1)
	b.AddSlice(30, 70, 1)

	got := b.Build().Slices
	want := []Slice[uint32]{{Begin: 0, End: 70, RealID: 1}}
	assertSameSlices(t, got, want)
}

func TestDeltaBuilderRightOverlapDifferentIDClips(t *testing.T) {
	b := NewDeltaBuilder[uint32](100)
	b.AddSlice(50, 100, 1)
	b.AddSlice(0, 60, 2)

	got := b.Build().Slices
	want := []Slice[uint32]{
		{Begin: 0, End: 60, RealID: 2},
		{Begin: 60, End: 100, RealID: 1},
	}
	assertSameSlices(t, got, want)
}

func TestDeltaBuilderFullyCoveredSliceIsRemoved(t *testing.T) {
	b := NewDeltaBuilder[uint32](100)
	b.AddSlice(40, 60, 1)
	b.AddSlice(0, 100, 2)

	got := b.Build().Slices
	want := []Slice[uint32]{{Begin: 0, End: 100, RealID: 2}}
	assertSameSlices(t, got, want)
}

func TestDeltaBuilderNewSliceInsideExistingSplitsIt(t *testing.T) {
	b := NewDeltaBuilder[uint32](100)
	b.AddSlice(0, 100, 1)
	b.AddSlice(40, 60, 2)

	got := b.Build().Slices
	want := []Slice[uint32]{
		{Begin: 0, End: 40, RealID: 1},
		{Begin: 40, End: 60, RealID: 2},
		{Begin: 60, End: 100, RealID: 1},
	}
	assertSameSlices(t, got, want)
}

// TestDeltaSlicesAreDisjoint is invariant 9, run against a sequence of
// overlapping insertions.
func TestDeltaSlicesAreDisjoint(t *testing.T) {
	b := NewDeltaBuilder[uint32](500)
	b.AddSlice(0, 100, 1)
	b.AddSlice(450, 50, 2) // straddles
	b.AddSlice(80, 120, 3)
	b.AddSlice(200, 210, 1)

	slices := b.Build().Slices
	sort.Slice(slices, func(i, j int) bool { return slices[i].Begin < slices[j].Begin })

	for i := 1; i < len(slices); i++ {
		if slices[i].Begin < slices[i-1].End {
			t.Fatalf("slices %v and %v overlap", slices[i-1], slices[i])
		}
	}
}

func assertSameSlices(t *testing.T, got, want []Slice[uint32]) {
	t.Helper()
	sort.Slice(got, func(i, j int) bool { return got[i].Begin < got[j].Begin })
	sort.Slice(want, func(i, j int) bool { return want[i].Begin < want[j].Begin })

	if len(got) != len(want) {
		t.Fatalf("got %d slices %v, want %d slices %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("slice %d = %v, want %v (full: got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}
