package world

import (
	"sandvox.gg/internal/sim/blocks"
	"sandvox.gg/internal/sim/world/logic/mathx"
)

const (
	houseGate = 0.82
	houseSize = 5 // footprint edge, blocks
	houseWall = 3 // wall height above the floor
)

// placeHouse considers one candidate house per chunk, gated by the structures
// noise source. The site must be flat grass above the waterline; anything else
// skips the house silently. A skipped house is not an error: the next seed or
// the next chunk simply doesn't have one.
func (g *generator) placeHouse(ch *Chunk, heights *[ChunkSize][ChunkSize]int) {
	if g.noise.Structures.Noise2D(float64(ch.CX)*0.73, float64(ch.CZ)*0.97) <= houseGate {
		return
	}

	// Deterministic site inside the chunk with room for the full footprint.
	h2 := mathx.Hash2(int64(g.cfg.Seed)+31, ch.CX, ch.CZ)
	margin := ChunkSize - houseSize - 1
	sx := 1 + int(h2%uint64(margin))
	sz := 1 + int((h2>>16)%uint64(margin))

	floorY, ok := g.houseSite(ch, heights, sx, sz)
	if !ok {
		if g.logger != nil {
			g.logger.Printf("worldgen: house site unsuitable, chunk=(%d,%d)", ch.CX, ch.CZ)
		}
		return
	}

	g.buildHouse(ch, sx, floorY, sz)
}

// houseSite validates a flat all-grass footprint above the waterline and
// returns the floor height.
func (g *generator) houseSite(ch *Chunk, heights *[ChunkSize][ChunkSize]int, sx, sz int) (int, bool) {
	base := heights[sx][sz]
	if base <= SeaLevel {
		return 0, false
	}
	if base+houseWall+2 >= WorldHeight {
		return 0, false
	}
	for dz := 0; dz < houseSize; dz++ {
		for dx := 0; dx < houseSize; dx++ {
			x, z := sx+dx, sz+dz
			if heights[x][z] != base {
				return 0, false
			}
			if ch.Get(x, base, z) != blocks.Grass {
				return 0, false
			}
		}
	}
	return base, true
}

// buildHouse writes a plank hut with log corners, a door gap and a flat roof.
func (g *generator) buildHouse(ch *Chunk, sx, floorY, sz int) {
	doorX := sx + houseSize/2

	for dz := 0; dz < houseSize; dz++ {
		for dx := 0; dx < houseSize; dx++ {
			x, z := sx+dx, sz+dz

			// Floor replaces the grass.
			ch.Set(x, floorY, z, blocks.Planks)

			edgeX := dx == 0 || dx == houseSize-1
			edgeZ := dz == 0 || dz == houseSize-1

			for wy := 1; wy <= houseWall; wy++ {
				y := floorY + wy
				switch {
				case edgeX && edgeZ:
					ch.Set(x, y, z, blocks.Log)
				case edgeX || edgeZ:
					// Door gap on the near wall, two blocks tall.
					if z == sz && x == doorX && wy <= 2 {
						ch.Set(x, y, z, blocks.Air)
						continue
					}
					ch.Set(x, y, z, blocks.Planks)
				default:
					ch.Set(x, y, z, blocks.Air)
				}
			}

			ch.Set(x, floorY+houseWall+1, z, blocks.Planks)
		}
	}

	// One torch inside so the hut reads as inhabited.
	ch.Set(sx+1, floorY+1, sz+houseSize-2, blocks.Torch)
}
