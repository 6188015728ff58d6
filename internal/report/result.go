package report

import "github.com/dl/chash"

// Entry is one real's row in a fragmentation report: its identity, its
// configured weight, and how that weight is actually realized in a painted
// lookup array.
type Entry struct {
	ID              uint32
	Name            string
	Weight          chash.Weight
	Enabled         bool
	ConfiguredCells int
	EffectiveCells  int
	Deviation       float64
}

// Snapshot is a full report: one Entry per registered real plus the lookup
// array's overall size, ready to hand to a Formatter.
type Snapshot struct {
	LookupSize int
	Disabled   bool
	Entries    []Entry
}

// Build assembles a Snapshot from an Updater's Stats and a name lookup
// keyed by RealId, so a report can print human names instead of bare ids.
func Build(u *chash.Updater[uint32], lookup []uint32, names map[uint32]string) Snapshot {
	return buildFrom(u, u.Stats(lookup), names)
}

// BuildFromTally assembles a Snapshot from a caller-supplied hit tally (for
// example a sampler's synthetic-request counts) instead of a raw pass over
// the lookup array.
func BuildFromTally(u *chash.Updater[uint32], tally map[uint32]int, names map[uint32]string) Snapshot {
	return buildFrom(u, u.StatsFromCounts(tally), names)
}

func buildFrom(u *chash.Updater[uint32], stats []chash.RealStat[uint32], names map[uint32]string) Snapshot {
	entries := make([]Entry, len(stats))
	for i, s := range stats {
		entries[i] = Entry{
			ID:              s.ID,
			Name:            names[s.ID],
			Weight:          s.Weight,
			Enabled:         s.Enabled,
			ConfiguredCells: s.ConfiguredCells,
			EffectiveCells:  s.EffectiveCells,
			Deviation:       s.Deviation,
		}
	}
	return Snapshot{
		LookupSize: u.LookupSize(),
		Disabled:   u.Disabled(),
		Entries:    entries,
	}
}
