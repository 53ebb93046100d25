package world

import "sandvox.gg/internal/sim/world/logic/mathx"

// Vec3i is an integer block position in world space.
type Vec3i struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

// axisNeighbors are the 6 face-adjacent offsets, in a fixed order so every
// scan over neighbors is deterministic.
var axisNeighbors = [6]Vec3i{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// lateralNeighbors are the 4 horizontal offsets, fixed order.
var lateralNeighbors = [4]Vec3i{
	{X: 1}, {X: -1}, {Z: 1}, {Z: -1},
}

// Vec3f is a continuous position/velocity for kinematic bodies.
type Vec3f struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PackedPos is a block position packed into one integer key. Sparse per-block
// state (redstone power, activation flags, the fluid queue) is keyed by this
// instead of formatted strings: 26 signed bits for X and Z, 12 for Y.
type PackedPos int64

const (
	packAxisBits = 26
	packAxisMask = (1 << packAxisBits) - 1
	packYBits    = 12
	packYMask    = (1 << packYBits) - 1
)

func Pack(x, y, z int) PackedPos {
	px := uint64(uint32(int32(x))) & packAxisMask
	pz := uint64(uint32(int32(z))) & packAxisMask
	py := uint64(uint32(int32(y))) & packYMask
	return PackedPos(px | pz<<packAxisBits | py<<(2*packAxisBits))
}

func PackVec(v Vec3i) PackedPos { return Pack(v.X, v.Y, v.Z) }

func (p PackedPos) Unpack() Vec3i {
	ux := uint64(p) & packAxisMask
	uz := (uint64(p) >> packAxisBits) & packAxisMask
	uy := (uint64(p) >> (2 * packAxisBits)) & packYMask
	return Vec3i{
		X: signExtend(ux, packAxisBits),
		Y: signExtend(uy, packYBits),
		Z: signExtend(uz, packAxisBits),
	}
}

func signExtend(v uint64, bits uint) int {
	shift := 64 - bits
	return int(int64(v<<shift) >> shift)
}

// Manhattan distance between two block positions.
func Manhattan(a, b Vec3i) int {
	return mathx.AbsInt(a.X-b.X) + mathx.AbsInt(a.Y-b.Y) + mathx.AbsInt(a.Z-b.Z)
}
