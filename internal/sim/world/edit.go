package world

import "sandvox.gg/internal/sim/blocks"

// SetBlockAt is the single edit funnel: every voxel mutation in the system,
// whether from a player, a remote peer, or the simulation itself, lands here.
// Placing an identical block is a no-op and emits nothing. Direct player
// interaction refreshes signals immediately; simulation-authored edits take
// the debounced path.
func (w *World) SetBlockAt(x, y, z int, b blocks.ID, author string) bool {
	return w.setBlockAt(x, y, z, b, author, author != AuthorWorld)
}

func (w *World) setBlockAt(x, y, z int, b blocks.ID, author string, immediate bool) bool {
	if y < 0 || y >= WorldHeight {
		return false
	}
	cx, _ := chunkCoord(x)
	cz, _ := chunkCoord(z)
	w.ensureChunkIndexed(cx, cz)
	prev := w.BlockAt(x, y, z)

	// Player edits cannot displace unbreakable blocks.
	if author != AuthorWorld && !blocks.Breakable(prev) {
		return false
	}

	// A gravity block placed over empty space never becomes a voxel: it
	// spawns a falling entity that lands through this same funnel later.
	if blocks.Gravity(b) && prev == blocks.Air && !blocks.Solid(w.BlockAt(x, y-1, z)) {
		w.spawnFallingBlock(x, y, z, b)
		return true
	}

	if !w.chunks.SetBlock(x, y, z, b) {
		return false
	}

	e := BlockEdit{X: x, Y: y, Z: z, Block: b, Author: author, Seq: w.editSeq.Add(1), Tick: w.tick.Load()}
	for _, s := range w.sinks {
		s.BlockEdit(e)
	}

	w.markDirtyAround(x, y, z)
	w.queueFluidAround(x, y, z)
	w.dropBlockState(x, y, z, prev, b)

	if immediate {
		w.refreshSignals()
	} else {
		w.signalPending = true
	}

	// Removing support releases gravity blocks stacked above.
	if !blocks.Solid(b) {
		w.releaseUnsupported(x, y+1, z)
	}
	return true
}

// markDirtyAround marks the edited chunk, plus the neighbor chunk when the
// edit sits on a border. Dirty marks coalesce; flushDirty emits one remesh
// request per chunk.
func (w *World) markDirtyAround(x, y, z int) {
	cx, lx := chunkCoord(x)
	cz, lz := chunkCoord(z)
	w.dirty[ChunkKey{CX: cx, CZ: cz}] = struct{}{}
	if lx == 0 {
		w.dirty[ChunkKey{CX: cx - 1, CZ: cz}] = struct{}{}
	}
	if lx == ChunkSize-1 {
		w.dirty[ChunkKey{CX: cx + 1, CZ: cz}] = struct{}{}
	}
	if lz == 0 {
		w.dirty[ChunkKey{CX: cx, CZ: cz - 1}] = struct{}{}
	}
	if lz == ChunkSize-1 {
		w.dirty[ChunkKey{CX: cx, CZ: cz + 1}] = struct{}{}
	}
}

func (w *World) flushDirty() {
	if len(w.dirty) == 0 {
		return
	}
	if w.mesher != nil {
		for _, k := range w.chunkKeysOf(w.dirty) {
			w.mesher.ChunkDirty(k.CX, k.CZ)
		}
	}
	clear(w.dirty)
}

// chunkKeysOf sorts a ChunkKey set; ChunkKey is a struct so the generic
// sortedSet does not apply.
func (w *World) chunkKeysOf(m map[ChunkKey]struct{}) []ChunkKey {
	keys := make([]ChunkKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortChunkKeys(keys)
	return keys
}

// queueFluidAround wakes the edited cell and its 6 neighbors. Stale entries
// are dropped by the fluid drain, so over-queueing is harmless.
func (w *World) queueFluidAround(x, y, z int) {
	w.fluidQueue[Pack(x, y, z)] = struct{}{}
	for _, d := range axisNeighbors {
		w.fluidQueue[Pack(x+d.X, y+d.Y, z+d.Z)] = struct{}{}
	}
}

// dropBlockState clears sparse per-block state that no longer matches the
// voxel underneath it, and keeps the signal index current.
func (w *World) dropBlockState(x, y, z int, prev, next blocks.ID) {
	if prev == next {
		return
	}
	p := Pack(x, y, z)
	switch prev {
	case blocks.Lever, blocks.Button, blocks.WoodButton:
		delete(w.active, p)
	case blocks.RedstoneLamp, blocks.RedstoneLampLit:
		delete(w.lampOn, p)
	case blocks.TNT, blocks.NoteBlock, blocks.CommandBlock:
		delete(w.prevPowered, p)
	}
	if signalRelevant(next) {
		w.signalIndex[p] = struct{}{}
	} else {
		delete(w.signalIndex, p)
	}
}

// releaseUnsupported converts the gravity block at (x, y, z), if any, into a
// falling entity. The voxel removal re-enters the funnel, which releases the
// next block up, so whole columns of sand come down one conversion at a time.
func (w *World) releaseUnsupported(x, y, z int) {
	if y >= WorldHeight {
		return
	}
	b := w.BlockAt(x, y, z)
	if !blocks.Gravity(b) {
		return
	}
	if blocks.Solid(w.BlockAt(x, y-1, z)) {
		return
	}
	w.setBlockAt(x, y, z, blocks.Air, AuthorWorld, false)
	w.spawnFallingBlock(x, y, z, b)
}

// ToggleLever flips the lever at (x, y, z) and recomputes signals immediately.
// Returns the new state; false with no effect when the block is not a lever.
func (w *World) ToggleLever(x, y, z int) (bool, bool) {
	if w.BlockAt(x, y, z) != blocks.Lever {
		return false, false
	}
	p := Pack(x, y, z)
	w.active[p] = !w.active[p]
	w.markDirtyAround(x, y, z)
	w.refreshSignals()
	return w.active[p], true
}

// PressButton latches the button at (x, y, z) on and schedules its release.
// Pressing an already-pressed button restarts the timer.
func (w *World) PressButton(x, y, z int) bool {
	b := w.BlockAt(x, y, z)
	if b != blocks.Button && b != blocks.WoodButton {
		return false
	}
	p := Pack(x, y, z)
	w.active[p] = true
	w.markDirtyAround(x, y, z)

	due := w.tick.Load() + uint64(w.cfg.ButtonReleaseTicks)
	replaced := false
	for i := range w.buttonTimers {
		if w.buttonTimers[i].pos == p {
			w.buttonTimers[i].due = due
			replaced = true
			break
		}
	}
	if !replaced {
		w.buttonTimers = append(w.buttonTimers, buttonTimer{pos: p, due: due})
	}

	w.refreshSignals()
	return true
}

// stepButtonTimers releases due buttons. Expired timers whose block is no
// longer a button are discarded without effect.
func (w *World) stepButtonTimers(now uint64) {
	if len(w.buttonTimers) == 0 {
		return
	}
	kept := w.buttonTimers[:0]
	released := false
	for _, t := range w.buttonTimers {
		if t.due > now {
			kept = append(kept, t)
			continue
		}
		v := t.pos.Unpack()
		// The flag clears even when the block was replaced or its chunk is
		// not resident, so a button can never come back stuck on.
		delete(w.active, t.pos)
		b := w.BlockAt(v.X, v.Y, v.Z)
		if b == blocks.Button || b == blocks.WoodButton {
			w.markDirtyAround(v.X, v.Y, v.Z)
			released = true
		}
	}
	w.buttonTimers = kept
	if released {
		w.refreshSignals()
	}
}
