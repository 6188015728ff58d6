package chash

import "golang.org/x/exp/constraints"

// colorSlice repaints the maximal run of cells starting at start that are
// neither already colored id nor themselves an enabled head, to id. It is
// the shared core of enableSlice and disableSlice.
func colorSlice[I constraints.Unsigned](u *Updater[I], id I, start int, lookup []I) int {
	tint := lookup[start]
	if tint == id {
		return 0
	}

	changed := 0
	for i := start; lookup[i] == tint && !u.enabledBits[i]; i = next(u.lookupSize, i) {
		lookup[i] = id
		changed++
	}
	return changed
}

// disableSlice disables id's last enabled head and merges its cells into
// the slice immediately to its left (the "left neighbor" shadow policy: this is a local merge, not a cascading
// rewrite, which is what preserves the consistent-hashing property when a
// weight decreases).
//
// Edge case: when id is the only enabled real globally, the cells it owned
// have no left-neighbor real to shadow into; InitLookup's invariant that
// every cell is either invalid or owned by an enabled real is instead
// maintained by UpdateWeight, which fills the whole array with the invalid
// sentinel once realsActive drops to zero.
func disableSlice[I constraints.Unsigned](u *Updater[I], id I, info *realInfo[I], lookup []I) int {
	info.enabled--
	disablePos := info.heads[info.enabled]
	shadow := lookup[prev(u.lookupSize, disablePos)]

	u.enabledBits[disablePos] = false
	return colorSlice(u, shadow, disablePos, lookup)
}

// enableSlice enables id's next head, past the last currently enabled one,
// and paints the new slice.
func enableSlice[I constraints.Unsigned](u *Updater[I], id I, info *realInfo[I], lookup []I) int {
	if info.enabled == len(info.heads) {
		return 0
	}

	if u.Disabled() {
		for i := range lookup {
			lookup[i] = id
		}
		u.enabledBits[info.heads[info.enabled]] = true
		info.enabled++
		return u.lookupSize
	}

	if u.realsActive == 1 && len(lookup) > 0 && lookup[0] == id {
		u.enabledBits[info.heads[info.enabled]] = true
		info.enabled++
		return 0
	}

	start := info.heads[info.enabled]
	changed := colorSlice(u, id, start, lookup)
	u.enabledBits[start] = true
	info.enabled++
	return changed
}
