package chash

import "golang.org/x/exp/constraints"

// RealStat is a point-in-time snapshot of one real's share of a painted
// lookup array, suitable for reporting or alerting on fragmentation.
type RealStat[I constraints.Unsigned] struct {
	ID              I
	Weight          Weight
	Enabled         bool
	ConfiguredCells int
	EffectiveCells  int
	Deviation       float64
}

// Stats counts lookup against u's registered reals and reports each one's
// configured share, effective share, and deviation between the two. Safe
// to call concurrently with other readers of a finished lookup array; it
// does not mutate u or lookup.
func (u *Updater[I]) Stats(lookup []I) []RealStat[I] {
	counts := make(map[I]int, len(u.order))
	for _, id := range lookup {
		counts[id]++
	}
	return u.StatsFromCounts(counts)
}

// StatsFromCounts reports the same per-real shares as Stats, but against a
// caller-supplied hit count (for example a sampler's tally of synthetic
// requests) instead of a raw pass over lookup.
func (u *Updater[I]) StatsFromCounts(counts map[I]int) []RealStat[I] {
	stats := make([]RealStat[I], 0, len(u.order))
	for _, id := range u.order {
		info := u.infos[id]
		effective := counts[id]
		stats = append(stats, RealStat[I]{
			ID:              id,
			Weight:          info.weight,
			Enabled:         info.weight > 0,
			ConfiguredCells: u.configuredCells(info.weight),
			EffectiveCells:  effective,
			Deviation:       u.deviation(info.weight, effective),
		})
	}
	return stats
}
