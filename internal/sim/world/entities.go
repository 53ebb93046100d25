package world

import (
	"math"

	"sandvox.gg/internal/sim/blocks"
)

const (
	gravityAccel     = 24.0 // blocks/s^2
	terminalVelocity = 40.0 // blocks/s
	airDragPerTick   = 0.98
	itemTTLTicks     = 6000
)

// FallingBlock is a voxel in transit: the grid cell is already air and the
// block exists only as this entity until it lands through the edit funnel.
type FallingBlock struct {
	ID    uint64
	Pos   Vec3f
	Vel   Vec3f
	Block blocks.ID
}

// DroppedItem is a world pickup with a despawn age.
type DroppedItem struct {
	ID    uint64
	Pos   Vec3f
	Vel   Vec3f
	Item  blocks.ID
	Count int
	Age   int
}

func (w *World) nextID() uint64 {
	w.nextEntityID++
	return w.nextEntityID
}

// spawnFallingBlock starts a gravity block falling from cell (x, y, z).
func (w *World) spawnFallingBlock(x, y, z int, b blocks.ID) {
	w.falling = append(w.falling, &FallingBlock{
		ID:    w.nextID(),
		Pos:   Vec3f{X: float64(x) + 0.5, Y: float64(y), Z: float64(z) + 0.5},
		Block: b,
	})
}

// SpawnItem drops a pickup at a continuous position.
func (w *World) SpawnItem(pos Vec3f, item blocks.ID, count int) {
	w.items = append(w.items, &DroppedItem{
		ID:    w.nextID(),
		Pos:   pos,
		Item:  item,
		Count: count,
	})
}

// stepEntities advances falling blocks and items one tick. Slices keep
// insertion order, so the update is deterministic without sorting.
func (w *World) stepEntities() {
	dt := 1.0 / float64(w.cfg.TickRateHz)

	if len(w.falling) > 0 {
		kept := w.falling[:0]
		for _, f := range w.falling {
			if w.stepFallingBlock(f, dt) {
				kept = append(kept, f)
			}
		}
		w.falling = kept
	}

	if len(w.items) > 0 {
		kept := w.items[:0]
		for _, it := range w.items {
			it.Age++
			if it.Age >= itemTTLTicks {
				continue
			}
			w.stepItem(it, dt)
			kept = append(kept, it)
		}
		w.items = kept
	}
}

// stepFallingBlock returns false once the entity has landed or been shed.
func (w *World) stepFallingBlock(f *FallingBlock, dt float64) bool {
	f.Vel.Y = (f.Vel.Y - gravityAccel*dt) * airDragPerTick
	if f.Vel.Y < -terminalVelocity {
		f.Vel.Y = -terminalVelocity
	}
	f.Pos.Y += f.Vel.Y * dt

	x := int(math.Floor(f.Pos.X))
	z := int(math.Floor(f.Pos.Z))
	cy := int(math.Floor(f.Pos.Y))

	if cy < 0 {
		// Fell out of the world band; the block is gone.
		return false
	}
	if !blocks.Solid(w.BlockAt(x, cy-1, z)) {
		return true
	}

	// Landed: solidify into the lowest open cell of this column, or shed as
	// an item when something claimed the cell mid-fall.
	if w.BlockAt(x, cy, z) == blocks.Air {
		w.setBlockAt(x, cy, z, f.Block, AuthorWorld, false)
	} else if w.BlockAt(x, cy+1, z) == blocks.Air {
		w.setBlockAt(x, cy+1, z, f.Block, AuthorWorld, false)
	} else {
		w.SpawnItem(Vec3f{X: f.Pos.X, Y: float64(cy) + 1, Z: f.Pos.Z}, f.Block, 1)
	}
	return false
}

func (w *World) stepItem(it *DroppedItem, dt float64) {
	it.Vel.Y = (it.Vel.Y - gravityAccel*dt) * airDragPerTick
	if it.Vel.Y < -terminalVelocity {
		it.Vel.Y = -terminalVelocity
	}
	next := it.Pos.Y + it.Vel.Y*dt

	x := int(math.Floor(it.Pos.X))
	z := int(math.Floor(it.Pos.Z))
	ny := int(math.Floor(next))

	if ny >= 0 && blocks.Solid(w.BlockAt(x, ny, z)) {
		it.Pos.Y = float64(ny) + 1
		it.Vel.Y = 0
		return
	}
	it.Pos.Y = next
	if it.Pos.Y < -8 {
		it.Pos.Y = -8 // rest below bedrock until despawn
		it.Vel.Y = 0
	}
}

// FallingBlocks and Items expose entity snapshots for collaborators.
func (w *World) FallingBlocks() []*FallingBlock { return w.falling }
func (w *World) Items() []*DroppedItem { return w.items }
