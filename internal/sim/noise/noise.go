// Package noise wraps seeded gradient noise for every procedural pass.
//
// All sources derive from the single 32-bit world seed by fixed offsets, so a
// seed fully determines terrain, caves and decoration while the individual
// passes stay decorrelated.
package noise

import (
	"github.com/aquilax/go-perlin"
)

// Seed offsets for the derived sources. Changing any of these is a
// world-format break: existing seeds would generate different worlds.
const (
	offsetTerrain    = 0
	offsetTrees      = 7
	offsetFlowers    = 13
	offsetBiome      = 29
	offsetStructures = 57
	offsetPlants     = 71
	offsetCaves      = 101
)

// Source is a single seeded permutation-table gradient noise instance.
// Reseeding means constructing a new Source; the permutation table is rebuilt
// from the seed, there is no partial reseed.
type Source struct {
	p *perlin.Perlin
}

// New builds a Source from a 32-bit seed.
func New(seed int32) *Source {
	// alpha/beta are irrelevant at a single octave; fractal shaping is done
	// explicitly in Fractal2D so octaves/lacunarity/gain stay configurable.
	return &Source{p: perlin.NewPerlin(2, 2, 1, int64(seed))}
}

// Noise2D returns gradient noise at (x, y), normalized to [0, 1].
func (s *Source) Noise2D(x, y float64) float64 {
	v := (s.p.Noise2D(x, y) + 1) / 2
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Raw2D returns the unnormalized gradient noise, roughly in [-1, 1].
func (s *Source) Raw2D(x, y float64) float64 {
	return s.p.Noise2D(x, y)
}

// Fractal2D sums octaves of Raw2D at increasing frequency and decreasing
// amplitude, normalized back to [0, 1] by the total amplitude.
func (s *Source) Fractal2D(x, y float64, octaves int, lacunarity, gain float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	var sum, amp, norm float64
	amp = 1
	freq := 1.0
	for i := 0; i < octaves; i++ {
		sum += s.p.Noise2D(x*freq, y*freq) * amp
		norm += amp
		amp *= gain
		freq *= lacunarity
	}
	v := (sum/norm + 1) / 2
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Set bundles the per-purpose sources derived from one world seed.
type Set struct {
	Terrain    *Source
	Trees      *Source
	Flowers    *Source
	Biome      *Source
	Structures *Source
	Plants     *Source
	Caves      *Source
}

// NewSet derives all sources from the world seed.
func NewSet(seed int32) *Set {
	return &Set{
		Terrain:    New(seed + offsetTerrain),
		Trees:      New(seed + offsetTrees),
		Flowers:    New(seed + offsetFlowers),
		Biome:      New(seed + offsetBiome),
		Structures: New(seed + offsetStructures),
		Plants:     New(seed + offsetPlants),
		Caves:      New(seed + offsetCaves),
	}
}
