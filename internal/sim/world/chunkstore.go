package world

import (
	"crypto/sha256"
	"sort"

	"sandvox.gg/internal/sim/blocks"
	"sandvox.gg/internal/sim/world/logic/mathx"
)

const (
	// ChunkSize is the horizontal chunk edge in blocks.
	ChunkSize = 16
	// WorldHeight is the vertical extent in blocks; Y is valid in [0, WorldHeight).
	WorldHeight = 80

	chunkVolume = ChunkSize * ChunkSize * WorldHeight
)

// ChunkKey identifies a chunk column.
type ChunkKey struct {
	CX int
	CZ int
}

// Chunk is a dense 16x16x80 block volume. Owned exclusively by the ChunkStore;
// mutated only by generation passes and the world edit path.
type Chunk struct {
	CX, CZ int
	Blocks [chunkVolume]blocks.ID

	dirty bool
	hash  [32]byte
}

// index maps local coordinates to the dense array: x fastest, then z, then y.
func (c *Chunk) index(x, y, z int) int {
	return x + z*ChunkSize + y*ChunkSize*ChunkSize
}

func (c *Chunk) Get(x, y, z int) blocks.ID {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b blocks.ID) {
	i := c.index(x, y, z)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.dirty = true
}

// Digest hashes the raw block volume. Cached until the next mutation.
func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		buf := make([]byte, chunkVolume)
		for i, v := range c.Blocks {
			buf[i] = byte(v)
		}
		h.Write(buf)
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

// ChunkStore owns all loaded chunks and generates missing ones on demand.
// Accessed only from the world loop goroutine.
type ChunkStore struct {
	gen    *generator
	chunks map[ChunkKey]*Chunk

	// edits is the sparse overlay of every written cell, keyed by chunk and
	// local index. It outlives the chunks themselves: eviction drops the
	// volume but keeps the overlay, and Ensure replays it over regenerated
	// terrain.
	edits map[ChunkKey]map[int]blocks.ID
}

func newChunkStore(gen *generator) *ChunkStore {
	return &ChunkStore{
		gen:    gen,
		chunks: map[ChunkKey]*Chunk{},
		edits:  map[ChunkKey]map[int]blocks.ID{},
	}
}

// chunkCoord splits a world coordinate into chunk coordinate and local offset.
// The local wrap is correct for negative inputs.
func chunkCoord(n int) (c, local int) {
	return mathx.FloorDiv(n, ChunkSize), mathx.Mod(n, ChunkSize)
}

// Block never fails: AIR outside vertical bounds, and an opaque STONE sentinel
// when the owning chunk is not loaded, so world edges behave as unknown solid
// terrain instead of leaking void.
func (s *ChunkStore) Block(x, y, z int) blocks.ID {
	if y < 0 || y >= WorldHeight {
		return blocks.Air
	}
	cx, lx := chunkCoord(x)
	cz, lz := chunkCoord(z)
	ch, ok := s.chunks[ChunkKey{CX: cx, CZ: cz}]
	if !ok {
		return blocks.Stone
	}
	return ch.Get(lx, y, lz)
}

// SetBlock writes a voxel and records it in the edit overlay. Outside vertical
// bounds it is a no-op; a write into an unloaded chunk generates the chunk
// first. Returns false on a no-op.
func (s *ChunkStore) SetBlock(x, y, z int, b blocks.ID) bool {
	if y < 0 || y >= WorldHeight {
		return false
	}
	cx, lx := chunkCoord(x)
	cz, lz := chunkCoord(z)
	ch := s.Ensure(cx, cz)
	if ch.Get(lx, y, lz) == b {
		return false
	}
	ch.Set(lx, y, lz, b)
	s.recordEdit(ChunkKey{CX: cx, CZ: cz}, ch.index(lx, y, lz), b)
	return true
}

// recordEdit keeps the last written value per cell, last writer wins.
func (s *ChunkStore) recordEdit(k ChunkKey, idx int, b blocks.ID) {
	m := s.edits[k]
	if m == nil {
		m = map[int]blocks.ID{}
		s.edits[k] = m
	}
	m[idx] = b
}

// restoreEdit records an overlay cell from world coordinates, without touching
// any loaded chunk. Used when importing a snapshot.
func (s *ChunkStore) restoreEdit(x, y, z int, b blocks.ID) {
	cx, lx := chunkCoord(x)
	cz, lz := chunkCoord(z)
	s.recordEdit(ChunkKey{CX: cx, CZ: cz}, lx+lz*ChunkSize+y*ChunkSize*ChunkSize, b)
}

// Loaded reports whether the chunk owning (x, z) is resident.
func (s *ChunkStore) Loaded(x, z int) bool {
	cx, _ := chunkCoord(x)
	cz, _ := chunkCoord(z)
	_, ok := s.chunks[ChunkKey{CX: cx, CZ: cz}]
	return ok
}

// Ensure returns the chunk at (cx, cz), generating it if missing. Regenerated
// terrain gets the recorded edit overlay replayed on top, so a chunk that
// cycled out of view comes back with every player build intact.
func (s *ChunkStore) Ensure(cx, cz int) *Chunk {
	k := ChunkKey{CX: cx, CZ: cz}
	if ch, ok := s.chunks[k]; ok {
		return ch
	}
	ch := &Chunk{CX: cx, CZ: cz}
	s.gen.generateChunk(ch)
	for i, b := range s.edits[k] {
		ch.Blocks[i] = b
	}
	s.chunks[k] = ch
	return ch
}

// Peek returns the chunk at (cx, cz) without generating it.
func (s *ChunkStore) Peek(cx, cz int) (*Chunk, bool) {
	ch, ok := s.chunks[ChunkKey{CX: cx, CZ: cz}]
	return ch, ok
}

// Evict drops a resident chunk volume. The edit overlay stays behind; a later
// Ensure regenerates the terrain and replays every recorded edit.
func (s *ChunkStore) Evict(cx, cz int) {
	delete(s.chunks, ChunkKey{CX: cx, CZ: cz})
}

// CellEdit is one overlay cell in world coordinates.
type CellEdit struct {
	X, Y, Z int
	Block   blocks.ID
}

// RecordedEdits returns the overlay in deterministic order, including cells
// whose chunk is currently evicted.
func (s *ChunkStore) RecordedEdits() []CellEdit {
	keys := make([]ChunkKey, 0, len(s.edits))
	for k := range s.edits {
		keys = append(keys, k)
	}
	sortChunkKeys(keys)

	var out []CellEdit
	for _, k := range keys {
		m := s.edits[k]
		for _, i := range sortedKeys(m) {
			out = append(out, CellEdit{
				X:     k.CX*ChunkSize + i%ChunkSize,
				Y:     i / (ChunkSize * ChunkSize),
				Z:     k.CZ*ChunkSize + (i/ChunkSize)%ChunkSize,
				Block: m[i],
			})
		}
	}
	return out
}

// LoadedChunkKeys returns resident chunk keys in deterministic order.
func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

func (s *ChunkStore) LoadedCount() int { return len(s.chunks) }
