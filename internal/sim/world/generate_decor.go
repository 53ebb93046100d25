package world

import (
	"sandvox.gg/internal/sim/blocks"
	"sandvox.gg/internal/sim/world/logic/mathx"
)

// Decoration gates. Each category samples its own noise source so the gates
// stay independent; the if/else chain makes categories mutually exclusive
// per column.
const (
	treeGate     = 0.80
	flowerGate   = 0.84
	plantGate    = 0.78
	mushroomGate = 0.88
	shoreGate    = 0.80
	lilyGate     = 0.90
)

// decorate places vegetation per column on the generated surface.
func (g *generator) decorate(ch *Chunk, heights *[ChunkSize][ChunkSize]int) {
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			wx := ch.CX*ChunkSize + x
			wz := ch.CZ*ChunkSize + z
			h := heights[x][z]
			g.decorateColumn(ch, x, z, wx, wz, h)
		}
	}
}

func (g *generator) decorateColumn(ch *Chunk, x, z, wx, wz, h int) {
	fx := float64(wx)
	fz := float64(wz)
	surface := ch.Get(x, h, z)

	// Lily pads float on open water.
	if surface == blocks.Water || (h < SeaLevel && ch.Get(x, SeaLevel, z) == blocks.Water) {
		if ch.Get(x, SeaLevel+1, z) == blocks.Air && g.noise.Plants.Noise2D(fx*0.91, fz*0.91) > lilyGate {
			ch.Set(x, SeaLevel+1, z, blocks.LilyPad)
		}
		return
	}

	// Shoreline cane/cactus on sand.
	if surface == blocks.Sand {
		if h+1 >= WorldHeight || ch.Get(x, h+1, z) != blocks.Air {
			return
		}
		if g.noise.Plants.Noise2D(fx*0.77, fz*0.77) <= shoreGate {
			return
		}
		if g.nearWater(ch, x, z, h) {
			g.placeStack(ch, x, h+1, z, blocks.SugarCane, 1+int(mathx.Hash2(int64(g.cfg.Seed)+11, wx, wz)%3))
		} else {
			g.placeStack(ch, x, h+1, z, blocks.Cactus, 1+int(mathx.Hash2(int64(g.cfg.Seed)+13, wx, wz)%2))
		}
		return
	}

	if surface != blocks.Grass {
		return
	}
	if h+1 >= WorldHeight || ch.Get(x, h+1, z) != blocks.Air {
		return
	}

	switch {
	case g.noise.Trees.Noise2D(fx*0.83, fz*0.83) > treeGate:
		g.placeTree(ch, x, h+1, z, wx, wz)
	case g.noise.Flowers.Noise2D(fx*0.89, fz*0.89) > flowerGate:
		if mathx.Hash2(int64(g.cfg.Seed)+17, wx, wz)%2 == 0 {
			ch.Set(x, h+1, z, blocks.Dandelion)
		} else {
			ch.Set(x, h+1, z, blocks.Rose)
		}
	case g.noise.Plants.Noise2D(fx*0.71, fz*0.71) > plantGate:
		if mathx.Hash2(int64(g.cfg.Seed)+19, wx, wz)%4 == 0 {
			ch.Set(x, h+1, z, blocks.Fern)
		} else {
			ch.Set(x, h+1, z, blocks.TallGrass)
		}
	case g.underCanopy(ch, x, h+1, z) && g.noise.Plants.Noise2D(fx*1.31, fz*1.31) > mushroomGate:
		if mathx.Hash2(int64(g.cfg.Seed)+23, wx, wz)%2 == 0 {
			ch.Set(x, h+1, z, blocks.BrownMushroom)
		} else {
			ch.Set(x, h+1, z, blocks.RedMushroom)
		}
	}
}

// nearWater reports water in any lateral neighbor at or one below surface
// height, staying inside the chunk.
func (g *generator) nearWater(ch *Chunk, x, z, h int) bool {
	for _, d := range lateralNeighbors {
		nx, nz := x+d.X, z+d.Z
		if nx < 0 || nx >= ChunkSize || nz < 0 || nz >= ChunkSize {
			continue
		}
		if ch.Get(nx, h, nz) == blocks.Water || (h > 0 && ch.Get(nx, h-1, nz) == blocks.Water) {
			return true
		}
	}
	return false
}

// underCanopy reports leaves directly above within a short scan; mushrooms
// only grow in shade.
func (g *generator) underCanopy(ch *Chunk, x, y, z int) bool {
	for dy := 1; dy <= 7; dy++ {
		ny := y + dy
		if ny >= WorldHeight {
			return false
		}
		if ch.Get(x, ny, z) == blocks.Leaves {
			return true
		}
	}
	return false
}

// placeStack grows cane/cactus upward while the cells stay clear.
func (g *generator) placeStack(ch *Chunk, x, y, z int, b blocks.ID, n int) {
	for i := 0; i < n; i++ {
		yy := y + i
		if yy >= WorldHeight || ch.Get(x, yy, z) != blocks.Air {
			return
		}
		ch.Set(x, yy, z, b)
	}
}

// placeTree writes a trunk plus a leaf canopy. Cells outside this chunk are
// skipped; trees near borders come out trimmed, which keeps generation a pure
// function of (seed, cx, cz).
func (g *generator) placeTree(ch *Chunk, x, baseY, z, wx, wz int) {
	trunk := 4 + int(mathx.Hash2(int64(g.cfg.Seed)+29, wx, wz)%3)
	if baseY+trunk+2 >= WorldHeight {
		return
	}

	for i := 0; i < trunk; i++ {
		ch.Set(x, baseY+i, z, blocks.Log)
	}

	top := baseY + trunk
	for dy := -2; dy <= 1; dy++ {
		radius := 2
		if dy >= 0 {
			radius = 1
		}
		for dz := -radius; dz <= radius; dz++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx == 0 && dz == 0 && dy < 0 {
					continue // trunk
				}
				if mathx.AbsInt(dx) == radius && mathx.AbsInt(dz) == radius && dy >= 0 {
					continue // clip corners
				}
				nx, ny, nz := x+dx, top+dy, z+dz
				if nx < 0 || nx >= ChunkSize || nz < 0 || nz >= ChunkSize || ny >= WorldHeight {
					continue
				}
				if ch.Get(nx, ny, nz) == blocks.Air {
					ch.Set(nx, ny, nz, blocks.Leaves)
				}
			}
		}
	}
}
