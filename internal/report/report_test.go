package report

import (
	"strings"
	"testing"

	"github.com/dl/chash"
)

type nameReal string

func (n nameReal) Bytes() []byte { return []byte(n) }

func buildSnapshot(t *testing.T) (Snapshot, map[uint32]string) {
	t.Helper()
	reals := []chash.Real{nameReal("alpha"), nameReal("beta"), nameReal("gamma")}
	ids := []uint32{1, 2, 3}
	weights := []chash.Weight{100, 100, 100}
	names := map[uint32]string{1: "alpha", 2: "beta", 3: "gamma"}

	u, err := chash.New[uint32](reals, ids, weights, chash.Config{SegmentsPerWeight: 2, PoolSize: 200, Seed: chash.RNGSeed})
	if err != nil {
		t.Fatalf("chash.New: %v", err)
	}
	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)

	return Build(u, lookup, names), names
}

func TestBuildProducesOneEntryPerReal(t *testing.T) {
	snap, names := buildSnapshot(t)
	if len(snap.Entries) != len(names) {
		t.Fatalf("Build produced %d entries, want %d", len(snap.Entries), len(names))
	}
	for _, e := range snap.Entries {
		if e.Name != names[e.ID] {
			t.Errorf("entry %d: Name = %q, want %q", e.ID, e.Name, names[e.ID])
		}
	}
}

func TestBuildFromTallyUsesSuppliedCounts(t *testing.T) {
	reals := []chash.Real{nameReal("alpha"), nameReal("beta")}
	ids := []uint32{1, 2}
	weights := []chash.Weight{100, 100}
	u, err := chash.New[uint32](reals, ids, weights, chash.Config{SegmentsPerWeight: 2, PoolSize: 200, Seed: chash.RNGSeed})
	if err != nil {
		t.Fatalf("chash.New: %v", err)
	}

	tally := map[uint32]int{1: 700, 2: 300}
	snap := BuildFromTally(u, tally, map[uint32]string{1: "alpha", 2: "beta"})
	for _, e := range snap.Entries {
		if e.EffectiveCells != tally[e.ID] {
			t.Errorf("entry %d: EffectiveCells = %d, want %d", e.ID, e.EffectiveCells, tally[e.ID])
		}
	}
}

func TestTextFormatterRendersNamesAndCounts(t *testing.T) {
	snap, _ := buildSnapshot(t)
	f := NewTextFormatter(NoStyles(), false)
	out := string(f.Format(nil, snap))

	for _, name := range []string{"alpha", "beta", "gamma"} {
		if !strings.Contains(out, name) {
			t.Errorf("text report missing %q:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "cells (") {
		t.Errorf("text report missing cell-count summary:\n%s", out)
	}
}

func TestTextFormatterReportsDisabled(t *testing.T) {
	reals := []chash.Real{nameReal("alpha")}
	ids := []uint32{1}
	weights := []chash.Weight{0}
	u, err := chash.New[uint32](reals, ids, weights, chash.Config{SegmentsPerWeight: 2, PoolSize: 200, Seed: chash.RNGSeed})
	if err != nil {
		t.Fatalf("chash.New: %v", err)
	}
	lookup := make([]uint32, u.LookupSize())
	u.InitLookup(lookup)
	snap := Build(u, lookup, nil)

	f := NewTextFormatter(NoStyles(), false)
	out := string(f.Format(nil, snap))
	if !strings.Contains(out, "all reals disabled") {
		t.Errorf("expected disabled-lookup message, got:\n%s", out)
	}
}

func TestJSONFormatterEmitsOneLinePerReal(t *testing.T) {
	snap, _ := buildSnapshot(t)
	f := NewJSONFormatter()
	out := string(f.Format(nil, snap))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != len(snap.Entries) {
		t.Fatalf("JSON report has %d lines, want %d", len(lines), len(snap.Entries))
	}
	for _, line := range lines {
		if !strings.Contains(line, `"id"`) || !strings.Contains(line, `"effective_cells"`) {
			t.Errorf("JSON line missing expected fields: %s", line)
		}
	}
}

func TestRenderBarClampsShare(t *testing.T) {
	if got := renderBar(-1); len(got) != barWidth*len("░") {
		t.Errorf("renderBar(-1) length in bytes = %d, want an all-empty bar", len(got))
	}
	if got := renderBar(2); got != strings.Repeat("█", barWidth) {
		t.Errorf("renderBar(2) = %q, want a fully filled bar", got)
	}
}
