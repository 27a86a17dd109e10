package domain

// Diff computes the minimal delta between two consecutive grid observations.
// A patch is included iff its full (pchtype, merged, facebd, cornerbd) tuple
// changed; the returned entries always carry the complete post-state, never a
// partial field set. Patches touched and reverted between observations are
// absent by construction.
//
// The result is ordered by pchidx. A nil prev yields every patch of cur
// (initial load).
func Diff(prev, cur *PatchGrid) []PatchState {
	if cur == nil {
		return nil
	}
	if prev == nil {
		delta := make([]PatchState, len(cur.Patches))
		copy(delta, cur.Patches)
		return delta
	}

	var delta []PatchState
	for i, p := range cur.Patches {
		if i >= len(prev.Patches) || prev.Patches[i] != p {
			delta = append(delta, p)
		}
	}
	return delta
}

// Apply merges a delta into a grid, returning a new grid. It is the inverse
// of Diff: Apply(prev, Diff(prev, cur)) reproduces cur.
func Apply(grid *PatchGrid, delta []PatchState) *PatchGrid {
	next := grid.Clone()
	for _, p := range delta {
		if p.PchIdx >= 0 && p.PchIdx < len(next.Patches) {
			next.Patches[p.PchIdx] = p
		}
	}
	return next
}

// Replay reconstructs the grid state as of events[upto] by applying the
// deltas of events[0..upto] in seq order onto the initial snapshot.
func Replay(initial *PatchGrid, events []PatchEvent, upto int) *PatchGrid {
	state := initial.Clone()
	for i := 0; i <= upto && i < len(events); i++ {
		state = Apply(state, events[i].PatchDelta)
	}
	return state
}
