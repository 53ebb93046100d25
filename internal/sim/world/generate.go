package world

import (
	"log"

	"sandvox.gg/internal/sim/blocks"
	"sandvox.gg/internal/sim/noise"
	"sandvox.gg/internal/sim/world/logic/mathx"
)

const (
	// SeaLevel is the water backfill height.
	SeaLevel = 24

	bedrockY     = 0
	minSurfaceY  = bedrockY + 3
	maxSurfaceY  = WorldHeight - 2
	flatSurfaceY = 26
)

// World types.
const (
	WorldTypeNormal = "normal"
	WorldTypeFlat   = "flat"
)

// GenConfig is the session-wide generation config. Fixed once per session;
// not hot-swappable mid-generation.
type GenConfig struct {
	Seed      int32
	WorldType string // "normal" | "flat"
}

// generator produces chunk terrain deterministically from the world seed.
type generator struct {
	cfg    GenConfig
	noise  *noise.Set
	logger *log.Logger
}

func newGenerator(cfg GenConfig, logger *log.Logger) *generator {
	if cfg.WorldType == "" {
		cfg.WorldType = WorldTypeNormal
	}
	return &generator{
		cfg:    cfg,
		noise:  noise.NewSet(cfg.Seed),
		logger: logger,
	}
}

func (g *generator) flat() bool { return g.cfg.WorldType == WorldTypeFlat }

// generateChunk fills a chunk in deterministic passes: heightfield + columns,
// cave carving, ore veins, vegetation, and at most one house site. Generation
// always completes; unsuitable decoration sites are skipped, never fatal.
func (g *generator) generateChunk(ch *Chunk) {
	var heights [ChunkSize][ChunkSize]int
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			wx := ch.CX*ChunkSize + x
			wz := ch.CZ*ChunkSize + z
			h := g.surfaceHeight(wx, wz)
			heights[x][z] = h
			g.fillColumn(ch, x, z, wx, wz, h)
		}
	}

	if g.flat() {
		// Flat worlds keep the bedrock/water/surface machinery but skip
		// height variance, caves, trees and decoration.
		ch.dirty = true
		return
	}

	g.carveCaves(ch, &heights)
	g.placeOres(ch, &heights)
	g.decorate(ch, &heights)
	g.placeHouse(ch, &heights)
	ch.dirty = true
}

// surfaceHeight blends three fractal bands weighted by the coarse biome value.
// Three amplitude regimes: plains, hills, mountains.
func (g *generator) surfaceHeight(wx, wz int) int {
	if g.flat() {
		return flatSurfaceY
	}

	fx := float64(wx)
	fz := float64(wz)

	broad := g.noise.Terrain.Fractal2D(fx/220, fz/220, 4, 2.0, 0.5)
	mid := g.noise.Terrain.Fractal2D(fx/80, fz/80, 3, 2.0, 0.5)
	fine := g.noise.Terrain.Fractal2D(fx/26, fz/26, 2, 2.0, 0.5)

	var amp, base float64
	switch b := g.biomeValue(wx, wz); {
	case b < 0.40: // plains
		amp, base = 7, SeaLevel+2
	case b < 0.75: // hills
		amp, base = 18, SeaLevel+3
	default: // mountains
		amp, base = 38, SeaLevel+4
	}

	h := base + (broad-0.5)*2*amp + (mid-0.5)*amp + (fine-0.5)*(amp/2)
	return mathx.ClampInt(int(h), minSurfaceY, maxSurfaceY)
}

// biomeValue is a coarse [0,1] field; low values read as dry lowland.
func (g *generator) biomeValue(wx, wz int) float64 {
	return g.noise.Biome.Fractal2D(float64(wx)/420, float64(wz)/420, 2, 2.0, 0.5)
}

// fillColumn writes bedrock -> stone -> dirt -> surface, then backfills water
// above terrain up to sea level.
func (g *generator) fillColumn(ch *Chunk, x, z, wx, wz, h int) {
	ch.Set(x, bedrockY, z, blocks.Bedrock)
	// Second bedrock layer is jittered so the floor isn't perfectly flat.
	if mathx.Hash2(int64(g.cfg.Seed), wx, wz)%2 == 0 {
		ch.Set(x, bedrockY+1, z, blocks.Bedrock)
	} else {
		ch.Set(x, bedrockY+1, z, blocks.Stone)
	}

	for y := bedrockY + 2; y <= h; y++ {
		switch {
		case y < h-3:
			ch.Set(x, y, z, blocks.Stone)
		case y < h:
			ch.Set(x, y, z, blocks.Dirt)
		default:
			ch.Set(x, y, z, g.surfaceBlock(wx, wz, h))
		}
	}

	for y := h + 1; y <= SeaLevel && y < WorldHeight; y++ {
		ch.Set(x, y, z, blocks.Water)
	}
}

// surfaceBlock picks the top block by biome and sea-level proximity.
func (g *generator) surfaceBlock(wx, wz, h int) blocks.ID {
	if g.flat() {
		return blocks.Grass
	}
	if h <= SeaLevel+1 {
		return blocks.Sand
	}
	if g.biomeValue(wx, wz) < 0.18 {
		return blocks.Sand
	}
	return blocks.Grass
}

// placeOres seeds small ore pockets inside stone, well below the surface.
func (g *generator) placeOres(ch *Chunk, heights *[ChunkSize][ChunkSize]int) {
	seed := int64(g.cfg.Seed)
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			wx := ch.CX*ChunkSize + x
			wz := ch.CZ*ChunkSize + z
			maxY := heights[x][z] - 6
			for y := bedrockY + 2; y < maxY; y++ {
				if ch.Get(x, y, z) != blocks.Stone {
					continue
				}
				roll := mathx.Hash2(seed+int64(y)*131, wx, wz) % 1000
				switch {
				case roll < 2 && y < 14:
					ch.Set(x, y, z, blocks.DiamondOre)
				case roll < 5 && y < 18:
					ch.Set(x, y, z, blocks.GoldOre)
				case roll < 9 && y < 20:
					ch.Set(x, y, z, blocks.RedstoneOre)
				case roll < 18:
					ch.Set(x, y, z, blocks.IronOre)
				case roll < 32:
					ch.Set(x, y, z, blocks.CoalOre)
				}
			}
		}
	}
}
