package world

import "sandvox.gg/internal/sim/blocks"

const (
	maxPower = 15
	// signalBudget caps the cells visited per recompute so a pathological
	// wire sprawl degrades to a truncated network instead of a stalled tick.
	signalBudget = 5000

	tntBlastRadius = 2
)

// signalRelevant reports whether a block participates in signal recompute and
// therefore belongs in the signal index.
func signalRelevant(b blocks.ID) bool {
	switch b {
	case blocks.RedstoneWire, blocks.RedstoneTorch, blocks.RedstoneBlock,
		blocks.Lever, blocks.Button, blocks.WoodButton, blocks.Repeater,
		blocks.RedstoneLamp, blocks.RedstoneLampLit,
		blocks.NoteBlock, blocks.TNT, blocks.CommandBlock:
		return true
	}
	return false
}

// indexChunkSignals scans a chunk volume into the signal index and returns the
// number of cells indexed. Generation never places devices, so only chunks
// restored from snapshots or rebuilt from an edit overlay contribute.
func (w *World) indexChunkSignals(ch *Chunk) int {
	base := Vec3i{X: ch.CX * ChunkSize, Z: ch.CZ * ChunkSize}
	n := 0
	for y := 0; y < WorldHeight; y++ {
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				if signalRelevant(ch.Get(x, y, z)) {
					w.signalIndex[Pack(base.X+x, y, base.Z+z)] = struct{}{}
					n++
				}
			}
		}
	}
	return n
}

// PowerAt returns the wire power level at a block position, 0..15.
func (w *World) PowerAt(x, y, z int) uint8 {
	return w.power[Pack(x, y, z)]
}

// LampLit reports whether the lamp at (x, y, z) is lit. Lamps keep their
// voxel id; the lit state lives beside the grid and drives the remesh.
func (w *World) LampLit(x, y, z int) bool {
	return w.lampOn[Pack(x, y, z)]
}

// Activated reports the lever/button activation flag at (x, y, z).
func (w *World) Activated(x, y, z int) bool {
	return w.active[Pack(x, y, z)]
}

// sourceLevel returns the emission level of a block, 0 for non-sources.
// Repeaters are not listed here: they emit only once their input is live.
func (w *World) sourceLevel(p PackedPos, b blocks.ID) uint8 {
	switch b {
	case blocks.RedstoneBlock, blocks.RedstoneTorch:
		return maxPower
	case blocks.Lever, blocks.Button, blocks.WoodButton:
		if w.active[p] {
			return maxPower
		}
	}
	return 0
}

// refreshSignals recomputes the whole wire network from scratch: sources seed
// adjacent wires at full power, wire-to-wire hops decay by one, repeaters
// re-emit full power once any neighboring wire or source reaches them. The
// recompute is pure; lamp flips and edge triggers apply afterward.
func (w *World) refreshSignals() {
	newPower := make(map[PackedPos]uint8, len(w.power))
	repeaterOn := map[PackedPos]bool{}

	// Bucket queue by level; propagation only ever decreases the level, so
	// draining from 15 down visits each wire at its final power first.
	var buckets [maxPower + 1][]PackedPos
	visited := 0

	raise := func(p PackedPos, level uint8) {
		if level == 0 || newPower[p] >= level {
			return
		}
		newPower[p] = level
		buckets[level] = append(buckets[level], p)
	}

	// emit seeds the wires around an emitting cell at full power and wakes
	// adjacent repeaters, which emit in turn. Repeater activation is
	// monotone within one recompute, so the recursion terminates.
	var emit func(v Vec3i)
	emit = func(v Vec3i) {
		for _, d := range axisNeighbors {
			n := v.Add(d)
			switch w.BlockAt(n.X, n.Y, n.Z) {
			case blocks.RedstoneWire:
				raise(PackVec(n), maxPower)
			case blocks.Repeater:
				np := PackVec(n)
				if !repeaterOn[np] {
					repeaterOn[np] = true
					emit(n)
				}
			}
		}
	}

	// Sorted source scan keeps the (budget-capped) traversal deterministic.
	for _, p := range sortedSet(w.signalIndex) {
		v := p.Unpack()
		b := w.BlockAt(v.X, v.Y, v.Z)
		if lvl := w.sourceLevel(p, b); lvl > 0 {
			// First hop from a source keeps full power.
			emit(v)
		}
	}

	// Drain buckets top-down. A repeater waking mid-drain can append back
	// into a higher bucket, so the pass restarts until nothing moves;
	// levels only ever rise, so the fixpoint is reached within the budget.
	var cursors [maxPower + 1]int
	for visited < signalBudget {
		advanced := false
		for level := maxPower; level >= 1 && visited < signalBudget; level-- {
			for cursors[level] < len(buckets[level]) && visited < signalBudget {
				p := buckets[level][cursors[level]]
				cursors[level]++
				if int(newPower[p]) != level {
					continue // superseded by a higher raise
				}
				visited++
				advanced = true
				v := p.Unpack()

				for _, d := range axisNeighbors {
					n := v.Add(d)
					switch w.BlockAt(n.X, n.Y, n.Z) {
					case blocks.RedstoneWire:
						raise(PackVec(n), uint8(level-1))
					case blocks.Repeater:
						np := PackVec(n)
						if !repeaterOn[np] {
							repeaterOn[np] = true
							emit(n)
						}
					}
				}
			}
		}
		if !advanced {
			break
		}
	}
	if visited >= signalBudget {
		w.logf("signals: recompute truncated at %d cells", signalBudget)
	}

	// Apply phase: lamp flips, then one edge trigger per 0->1 transition.
	poweredNow := map[PackedPos]bool{}
	var fired []Vec3i

	for _, p := range sortedSet(w.signalIndex) {
		v := p.Unpack()
		b := w.BlockAt(v.X, v.Y, v.Z)
		switch b {
		case blocks.RedstoneLamp, blocks.RedstoneLampLit:
			on := w.poweredBy(v, newPower, repeaterOn)
			if w.lampOn[p] != on {
				if on {
					w.lampOn[p] = true
				} else {
					delete(w.lampOn, p)
				}
				w.markDirtyAround(v.X, v.Y, v.Z)
			}
		case blocks.TNT, blocks.NoteBlock, blocks.CommandBlock:
			on := w.poweredBy(v, newPower, repeaterOn)
			if on {
				poweredNow[p] = true
				if !w.prevPowered[p] {
					fired = append(fired, v)
				}
			}
		}
	}

	// Devices whose chunk is not resident keep their edge memory; otherwise
	// streaming the chunk back in would replay their one-shot action.
	for _, p := range sortedKeys(w.prevPowered) {
		if _, ok := w.signalIndex[p]; !ok && w.prevPowered[p] {
			poweredNow[p] = true
		}
	}

	w.power = newPower
	w.prevPowered = poweredNow
	w.signalPending = false

	for _, v := range fired {
		w.fireDevice(v)
	}
}

// poweredBy reports whether a device position has a live neighbor: a powered
// wire, an emitting source, or an active repeater.
func (w *World) poweredBy(v Vec3i, power map[PackedPos]uint8, repeaterOn map[PackedPos]bool) bool {
	for _, d := range axisNeighbors {
		n := v.Add(d)
		np := PackVec(n)
		if power[np] > 0 || repeaterOn[np] {
			return true
		}
		nb := w.BlockAt(n.X, n.Y, n.Z)
		if w.sourceLevel(np, nb) > 0 {
			return true
		}
	}
	return false
}

// fireDevice runs the one-shot action of an edge-triggered device.
func (w *World) fireDevice(v Vec3i) {
	switch w.BlockAt(v.X, v.Y, v.Z) {
	case blocks.TNT:
		w.explode(v)
	case blocks.NoteBlock:
		w.logf("note: block at (%d,%d,%d) played", v.X, v.Y, v.Z)
	case blocks.CommandBlock:
		w.logf("command: block at (%d,%d,%d) pulsed", v.X, v.Y, v.Z)
	}
}

// explode removes the TNT and every breakable block within the blast radius.
// All removals route through the edit funnel, so chain reactions happen when
// another TNT inside the radius sees its own 0->1 edge on the next refresh.
func (w *World) explode(center Vec3i) {
	w.setBlockAt(center.X, center.Y, center.Z, blocks.Air, AuthorWorld, false)
	r := tntBlastRadius
	for dy := -r; dy <= r; dy++ {
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy+dz*dz > r*r {
					continue
				}
				x, y, z := center.X+dx, center.Y+dy, center.Z+dz
				b := w.BlockAt(x, y, z)
				if b == blocks.Air || !blocks.Breakable(b) {
					continue
				}
				w.setBlockAt(x, y, z, blocks.Air, AuthorWorld, false)
			}
		}
	}
	w.logf("tnt: exploded at (%d,%d,%d)", center.X, center.Y, center.Z)
}
