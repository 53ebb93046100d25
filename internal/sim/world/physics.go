package world

import (
	"math"

	"sandvox.gg/internal/sim/blocks"
)

const (
	collideEpsilon  = 1e-4
	fallDamageGrace = 3.0 // blocks of free fall before damage accrues
)

// Body is an axis-aligned collision box: Pos is the feet center, the box
// spans Width/2 on each horizontal side and Height upward.
type Body struct {
	Pos    Vec3f
	Vel    Vec3f
	Width  float64
	Height float64

	// OnGround latches true only when a downward sweep hits a surface.
	OnGround bool

	fallPeak float64
}

// StepBody advances a body one tick against the voxel grid: gravity, then one
// swept move per axis, Y first so floors resolve before walls. The returned
// value is fall damage in half-hearts, zero except on landing ticks.
func (w *World) StepBody(b *Body, dt float64) float64 {
	b.Vel.Y -= gravityAccel * dt
	if b.Vel.Y < -terminalVelocity {
		b.Vel.Y = -terminalVelocity
	}

	if !b.OnGround && b.Pos.Y > b.fallPeak {
		b.fallPeak = b.Pos.Y
	}

	wasAirborne := !b.OnGround
	b.OnGround = false
	landed := w.sweepY(b, b.Vel.Y*dt)
	w.sweepX(b, b.Vel.X*dt)
	w.sweepZ(b, b.Vel.Z*dt)

	var damage float64
	if landed {
		if wasAirborne {
			drop := b.fallPeak - b.Pos.Y
			if drop > fallDamageGrace {
				damage = drop - fallDamageGrace
			}
		}
		b.fallPeak = b.Pos.Y
	}
	return damage
}

// sweepY moves vertically and reports a downward landing.
func (w *World) sweepY(b *Body, dy float64) bool {
	if dy == 0 {
		return false
	}
	next := b.Pos.Y + dy
	half := b.Width / 2

	// Walk every cell the move crosses; terminal velocity spans more than
	// one block per tick.
	if dy < 0 {
		for y := int(math.Floor(b.Pos.Y+collideEpsilon)) - 1; y >= int(math.Floor(next)); y-- {
			if w.boxOverlapsSolid(b.Pos.X-half, b.Pos.Z-half, b.Pos.X+half, b.Pos.Z+half, y, y) {
				b.Pos.Y = float64(y) + 1
				b.Vel.Y = 0
				b.OnGround = true
				return true
			}
		}
	} else {
		for y := int(math.Floor(b.Pos.Y+b.Height-collideEpsilon)) + 1; y <= int(math.Floor(next+b.Height)); y++ {
			if w.boxOverlapsSolid(b.Pos.X-half, b.Pos.Z-half, b.Pos.X+half, b.Pos.Z+half, y, y) {
				b.Pos.Y = float64(y) - b.Height - collideEpsilon
				b.Vel.Y = 0
				return false
			}
		}
	}
	b.Pos.Y = next
	return false
}

func (w *World) sweepX(b *Body, dx float64) {
	if dx == 0 {
		return
	}
	next := b.Pos.X + dx
	half := b.Width / 2

	var edge float64
	if dx > 0 {
		edge = next + half
	} else {
		edge = next - half
	}
	cell := int(math.Floor(edge))
	if w.columnOverlapsSolid(cell, cell, int(math.Floor(b.Pos.Z-half)), int(math.Floor(b.Pos.Z+half)), b.Pos.Y, b.Height) {
		if dx > 0 {
			b.Pos.X = float64(cell) - half - collideEpsilon
		} else {
			b.Pos.X = float64(cell) + 1 + half + collideEpsilon
		}
		b.Vel.X = 0
		return
	}
	b.Pos.X = next
}

func (w *World) sweepZ(b *Body, dz float64) {
	if dz == 0 {
		return
	}
	next := b.Pos.Z + dz
	half := b.Width / 2

	var edge float64
	if dz > 0 {
		edge = next + half
	} else {
		edge = next - half
	}
	cell := int(math.Floor(edge))
	if w.columnOverlapsSolid(int(math.Floor(b.Pos.X-half)), int(math.Floor(b.Pos.X+half)), cell, cell, b.Pos.Y, b.Height) {
		if dz > 0 {
			b.Pos.Z = float64(cell) - half - collideEpsilon
		} else {
			b.Pos.Z = float64(cell) + 1 + half + collideEpsilon
		}
		b.Vel.Z = 0
		return
	}
	b.Pos.Z = next
}

// boxOverlapsSolid tests the horizontal footprint against one Y band.
func (w *World) boxOverlapsSolid(minX, minZ, maxX, maxZ float64, y0, y1 int) bool {
	x0 := int(math.Floor(minX))
	x1 := int(math.Floor(maxX - collideEpsilon))
	z0 := int(math.Floor(minZ))
	z1 := int(math.Floor(maxZ - collideEpsilon))
	for y := y0; y <= y1; y++ {
		for z := z0; z <= z1; z++ {
			for x := x0; x <= x1; x++ {
				if blocks.Solid(w.BlockAt(x, y, z)) {
					return true
				}
			}
		}
	}
	return false
}

// columnOverlapsSolid tests a cell range against the body's vertical span.
func (w *World) columnOverlapsSolid(x0, x1, z0, z1 int, feetY, height float64) bool {
	y0 := int(math.Floor(feetY))
	y1 := int(math.Floor(feetY + height - collideEpsilon))
	for y := y0; y <= y1; y++ {
		for z := z0; z <= z1; z++ {
			for x := x0; x <= x1; x++ {
				if blocks.Solid(w.BlockAt(x, y, z)) {
					return true
				}
			}
		}
	}
	return false
}
