package world

import "sandvox.gg/internal/sim/blocks"

// Cave carving thresholds. The widen threshold must stay above the carve
// threshold: cells that clear it also carve their orthogonal neighbors.
const (
	caveCarveThreshold  = 0.72
	caveWidenThreshold  = 0.78
	caveSurfaceMargin   = 4
	caveRoundMinAirSide = 3
)

// carveCaves removes solid cells in two passes. Pass 1 carves where a weighted
// blend of three noise fields exceeds the threshold, widening into orthogonal
// neighbors past the higher threshold. Pass 2 opens any remaining solid cell
// with 3 or more air neighbors, rounding the chambers.
func (g *generator) carveCaves(ch *Chunk, heights *[ChunkSize][ChunkSize]int) {
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			wx := ch.CX*ChunkSize + x
			wz := ch.CZ*ChunkSize + z
			top := heights[x][z] - caveSurfaceMargin

			for y := bedrockY + 2; y < top; y++ {
				v := g.caveDensity(wx, y, wz)
				if v <= caveCarveThreshold {
					continue
				}
				g.carveCell(ch, x, y, z, top)
				if v > caveWidenThreshold {
					g.carveCell(ch, x+1, y, z, top)
					g.carveCell(ch, x-1, y, z, top)
					g.carveCell(ch, x, y, z+1, top)
					g.carveCell(ch, x, y, z-1, top)
					g.carveCell(ch, x, y+1, z, top)
					g.carveCell(ch, x, y-1, z, top)
				}
			}
		}
	}

	g.roundChambers(ch, heights)
}

// caveDensity blends three fields sampled from the caves source. The vertical
// coordinate is folded into the sample positions so the field varies by depth.
func (g *generator) caveDensity(wx, y, wz int) float64 {
	fx := float64(wx)
	fy := float64(y)
	fz := float64(wz)

	n1 := g.noise.Caves.Noise2D(fx/42, fz/42)
	n2 := g.noise.Caves.Noise2D((fx+3131)/27, (fz-3131)/27)
	n3 := g.noise.Caves.Noise2D(fx/15+fy/9, fz/15-fy/11)

	return n1*0.3 + n2*0.3 + n3*0.4
}

// carveCell clears a solid, carvable cell. Writes outside this chunk or the
// cave band are dropped; cross-chunk widening is intentionally not modeled so
// generation stays a pure function of (seed, cx, cz).
func (g *generator) carveCell(ch *Chunk, x, y, z, top int) {
	if x < 0 || x >= ChunkSize || z < 0 || z >= ChunkSize {
		return
	}
	if y < bedrockY+2 || y >= top {
		return
	}
	b := ch.Get(x, y, z)
	if !blocks.Solid(b) || b == blocks.Bedrock {
		return
	}
	ch.Set(x, y, z, blocks.Air)
}

// roundChambers is cave pass 2: any solid cell with >= 3 air neighbors inside
// the cave band becomes air. Candidates are collected first so the pass sees a
// consistent snapshot and cannot cascade within itself.
func (g *generator) roundChambers(ch *Chunk, heights *[ChunkSize][ChunkSize]int) {
	type cell struct{ x, y, z int }
	var open []cell

	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			top := heights[x][z] - caveSurfaceMargin
			for y := bedrockY + 2; y < top; y++ {
				b := ch.Get(x, y, z)
				if !blocks.Solid(b) || b == blocks.Bedrock {
					continue
				}
				air := 0
				for _, d := range axisNeighbors {
					nx, ny, nz := x+d.X, y+d.Y, z+d.Z
					if nx < 0 || nx >= ChunkSize || nz < 0 || nz >= ChunkSize {
						continue
					}
					if ny < 0 || ny >= WorldHeight {
						continue
					}
					if ch.Get(nx, ny, nz) == blocks.Air {
						air++
					}
				}
				if air >= caveRoundMinAirSide {
					open = append(open, cell{x, y, z})
				}
			}
		}
	}

	for _, c := range open {
		ch.Set(c.x, c.y, c.z, blocks.Air)
	}
}
