package chash

import "golang.org/x/exp/constraints"

// configuredCells returns the cell share a real configured with weight w is
// entitled to: floor(L * w / totalWeight).
func (u *Updater[I]) configuredCells(w Weight) int {
	return int(uint64(u.lookupSize) * uint64(w) / uint64(u.totalWeight))
}

// deviation returns the signed fractional deviation of effective from the
// configured cell share for weight w.
func (u *Updater[I]) deviation(w Weight, effective int) float64 {
	target := u.configuredCells(w)
	if target == 0 {
		return 0
	}
	return float64(effective-target) / float64(target)
}

func adjustDown[I constraints.Unsigned](u *Updater[I], id I, info *realInfo[I], lookup []I, effective int) {
	target := u.configuredCells(info.weight)
	for info.enabled > 1 && effective > target {
		effective -= disableSlice(u, id, info, lookup)
	}
}

func adjustUp[I constraints.Unsigned](u *Updater[I], id I, info *realInfo[I], lookup []I, effective int) {
	target := u.configuredCells(info.weight)
	for info.enabled < len(info.heads) && effective < target {
		effective += enableSlice(u, id, info, lookup)
	}
	if effective > target && info.enabled > 0 {
		disableSlice(u, id, info, lookup)
	}
}

// Adjust is the optional deviation-bounded adjustment pass.
// Slice sizes aren't uniform, so a real's post-update effective cell count
// can deviate from its configured share; Adjust trims or grows each real's
// enabled-head count to bring it back within DeviationTolerance. This is a
// quality pass, not a consistency pass: consistency guarantees still hold,
// but a cell may flip color more often than under a raw weight change.
func (u *Updater[I]) Adjust(lookup []I) {
	if u.Disabled() {
		return
	}

	distribution := make(map[I]int, len(u.order))
	for _, id := range lookup {
		distribution[id]++
	}

	for _, id := range u.order {
		info := u.infos[id]
		if info.weight == 0 {
			continue
		}

		effective := distribution[id]
		dev := u.deviation(info.weight, effective)
		switch {
		case dev > u.deviationTol:
			adjustDown(u, id, info, lookup, effective)
		case dev < -u.deviationTol:
			adjustUp(u, id, info, lookup, effective)
		}
	}
}
