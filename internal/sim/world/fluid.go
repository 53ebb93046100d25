package world

import "sandvox.gg/internal/sim/blocks"

// maxLateralSpreads bounds how far one fluid cell widens per wake-up. The
// spread writes re-queue their own neighborhoods, so a pool still levels out,
// just over several fluid ticks instead of one.
const maxLateralSpreads = 2

// stepFluids drains up to the configured budget from the active set, in
// sorted key order. Membership in the set means "reevaluate this cell", so
// entries whose block is no longer fluid drop out for free.
func (w *World) stepFluids() {
	if len(w.fluidQueue) == 0 {
		return
	}
	keys := sortedSet(w.fluidQueue)
	if len(keys) > w.cfg.FluidBudget {
		keys = keys[:w.cfg.FluidBudget]
	}
	for _, p := range keys {
		delete(w.fluidQueue, p)
		w.stepFluidCell(p)
	}
}

func (w *World) stepFluidCell(p PackedPos) {
	v := p.Unpack()
	b := w.BlockAt(v.X, v.Y, v.Z)
	if !blocks.Fluid(b) {
		return
	}

	// Gravity first: a falling column does not widen.
	below := w.BlockAt(v.X, v.Y-1, v.Z)
	if below == blocks.Air {
		w.setBlockAt(v.X, v.Y-1, v.Z, b, AuthorWorld, false)
		return
	}

	// Lateral spread happens on a settled surface only; a torch or flower
	// underneath is neither support nor a fall target, so the cell rests.
	if !blocks.Solid(below) && !blocks.Fluid(below) {
		return
	}

	spreads := 0
	for _, d := range lateralNeighbors {
		if spreads >= maxLateralSpreads {
			return
		}
		nx, nz := v.X+d.X, v.Z+d.Z
		if w.BlockAt(nx, v.Y, nz) != blocks.Air {
			continue
		}
		// Spreading requires footing under the target cell, so pools
		// stop at ledges instead of sheeting down cliff faces.
		under := w.BlockAt(nx, v.Y-1, nz)
		if !blocks.Solid(under) && !blocks.Fluid(under) {
			continue
		}
		w.setBlockAt(nx, v.Y, nz, b, AuthorWorld, false)
		spreads++
	}
}
