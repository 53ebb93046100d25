package world

import (
	"testing"

	"sandvox.gg/internal/sim/blocks"
)

func TestChunkIndexCoversVolume(t *testing.T) {
	var c Chunk
	seen := make(map[int]bool, chunkVolume)
	for y := 0; y < WorldHeight; y++ {
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				i := c.index(x, y, z)
				if i < 0 || i >= chunkVolume {
					t.Fatalf("index(%d,%d,%d) = %d out of range", x, y, z, i)
				}
				if seen[i] {
					t.Fatalf("index(%d,%d,%d) = %d collides", x, y, z, i)
				}
				seen[i] = true
			}
		}
	}
}

func TestChunkCoordNegativeWrap(t *testing.T) {
	cases := []struct {
		n, wantC, wantL int
	}{
		{0, 0, 0},
		{15, 0, 15},
		{16, 1, 0},
		{-1, -1, 15},
		{-16, -1, 0},
		{-17, -2, 15},
	}
	for _, tc := range cases {
		c, l := chunkCoord(tc.n)
		if c != tc.wantC || l != tc.wantL {
			t.Errorf("chunkCoord(%d) = (%d,%d), want (%d,%d)", tc.n, c, l, tc.wantC, tc.wantL)
		}
	}
}

func TestBlockSentinels(t *testing.T) {
	s := newChunkStore(newGenerator(GenConfig{Seed: 1, WorldType: WorldTypeFlat}, nil))

	if got := s.Block(0, -1, 0); got != blocks.Air {
		t.Fatalf("below world: got %v, want air", got)
	}
	if got := s.Block(0, WorldHeight, 0); got != blocks.Air {
		t.Fatalf("above world: got %v, want air", got)
	}
	// Unloaded chunks read as unknown solid terrain.
	if got := s.Block(1000, 40, 1000); got != blocks.Stone {
		t.Fatalf("unloaded chunk: got %v, want stone sentinel", got)
	}
}

func TestSetBlockNoops(t *testing.T) {
	s := newChunkStore(newGenerator(GenConfig{Seed: 1, WorldType: WorldTypeFlat}, nil))

	if s.SetBlock(0, -1, 0, blocks.Stone) {
		t.Fatal("write below world should be a no-op")
	}
	if s.SetBlock(0, WorldHeight, 0, blocks.Stone) {
		t.Fatal("write above world should be a no-op")
	}

	if !s.SetBlock(3, 40, 3, blocks.Stone) {
		t.Fatal("first write should report a change")
	}
	if s.SetBlock(3, 40, 3, blocks.Stone) {
		t.Fatal("identical write should report no change")
	}
}

func TestEnsureReplaysEditsAfterEvict(t *testing.T) {
	s := newChunkStore(newGenerator(GenConfig{Seed: 7, WorldType: WorldTypeFlat}, nil))

	s.SetBlock(3, 40, 3, blocks.Stone)
	s.SetBlock(3, 41, 3, blocks.Planks)
	// Same cell again: the overlay keeps the last value.
	s.SetBlock(3, 41, 3, blocks.Glass)

	s.Evict(0, 0)
	if s.Loaded(3, 3) {
		t.Fatal("chunk should be evicted")
	}

	ch := s.Ensure(0, 0)
	if got := ch.Get(3, 40, 3); got != blocks.Stone {
		t.Fatalf("cell (3,40,3) = %v after regen, want stone", got)
	}
	if got := ch.Get(3, 41, 3); got != blocks.Glass {
		t.Fatalf("cell (3,41,3) = %v after regen, want glass", got)
	}
	// Untouched terrain still comes from the generator.
	if got := ch.Get(8, 26, 8); got != blocks.Grass {
		t.Fatalf("surface cell = %v after regen, want grass", got)
	}
}

func TestRecordedEditsDeterministicOrder(t *testing.T) {
	s := newChunkStore(newGenerator(GenConfig{Seed: 7, WorldType: WorldTypeFlat}, nil))
	s.SetBlock(20, 40, 3, blocks.Stone)
	s.SetBlock(-5, 40, 3, blocks.Stone)
	s.SetBlock(1, 40, 1, blocks.Stone)

	got := s.RecordedEdits()
	want := [][3]int{{-5, 40, 3}, {1, 40, 1}, {20, 40, 3}}
	if len(got) != len(want) {
		t.Fatalf("got %d edits, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].X != w[0] || got[i].Y != w[1] || got[i].Z != w[2] {
			t.Fatalf("edits[%d] = (%d,%d,%d), want (%d,%d,%d)",
				i, got[i].X, got[i].Y, got[i].Z, w[0], w[1], w[2])
		}
	}
}

func TestPackedPosRoundTrip(t *testing.T) {
	cases := []Vec3i{
		{0, 0, 0},
		{1, 2, 3},
		{-1, 79, -1},
		{1 << 20, 0, -(1 << 20)},
		{-33554432, 0, 33554431}, // 26-bit extremes
	}
	for _, v := range cases {
		if got := PackVec(v).Unpack(); got != v {
			t.Errorf("Pack/Unpack %v = %v", v, got)
		}
	}
}

func TestEvictAndKeys(t *testing.T) {
	s := newChunkStore(newGenerator(GenConfig{Seed: 7, WorldType: WorldTypeFlat}, nil))
	s.Ensure(2, 1)
	s.Ensure(-1, 3)
	s.Ensure(0, 0)

	keys := s.LoadedChunkKeys()
	want := []ChunkKey{{-1, 3}, {0, 0}, {2, 1}}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %v, want %v", i, keys[i], want[i])
		}
	}

	s.Evict(0, 0)
	if s.Loaded(5, 5) {
		t.Fatal("chunk (0,0) should be evicted")
	}
	if s.LoadedCount() != 2 {
		t.Fatalf("count = %d, want 2", s.LoadedCount())
	}
}
