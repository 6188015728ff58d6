package reload

import (
	"testing"

	"github.com/dl/chash"
)

func TestParseWeightsSkipsBlankAndCommentLines(t *testing.T) {
	data := []byte("# comment\n\n1 100\n2 200\n")
	lines, err := ParseWeights(data)
	if err != nil {
		t.Fatalf("ParseWeights: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ID != 1 || lines[0].Weight != 100 {
		t.Errorf("line 0 = %+v, want {1 100}", lines[0])
	}
	if lines[1].ID != 2 || lines[1].Weight != 200 {
		t.Errorf("line 1 = %+v, want {2 200}", lines[1])
	}
}

func TestParseWeightsRejectsWrongFieldCount(t *testing.T) {
	if _, err := ParseWeights([]byte("1 100 extra\n")); err == nil {
		t.Error("expected an error for a 3-field line")
	}
}

func TestParseWeightsRejectsNonNumericFields(t *testing.T) {
	if _, err := ParseWeights([]byte("one 100\n")); err == nil {
		t.Error("expected an error for a non-numeric id")
	}
}

type nameReal string

func (n nameReal) Bytes() []byte { return []byte(n) }

func TestApplyRepaintsLookupForChangedWeights(t *testing.T) {
	reals := []chash.Real{nameReal("alpha"), nameReal("beta")}
	ids := []uint32{1, 2}
	weights := []chash.Weight{100, 100}
	u, err := chash.New[uint32](reals, ids, weights, chash.Config{SegmentsPerWeight: 2, PoolSize: 200, Seed: chash.RNGSeed})
	if err != nil {
		t.Fatalf("chash.New: %v", err)
	}
	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)

	Apply(u, []WeightLine{{ID: 2, Weight: 0}}, lookup)

	for _, id := range lookup {
		if id == 2 {
			t.Fatal("real 2 still appears in lookup after its weight was set to 0")
		}
	}
}
