package snapshot

import (
	"bytes"
	"testing"
)

func sample(tick uint64) SnapshotV1 {
	return SnapshotV1{
		Header:     Header{Version: 1, WorldID: "world_1", Tick: tick},
		Seed:       1337,
		WorldType:  "normal",
		TickRateHz: 30,
		EditSeq:    99,
		Chunks: []ChunkV1{
			{CX: 0, CZ: 0, Blocks: bytes.Repeat([]byte{1}, 64)},
		},
		Edits:       []EditV1{{X: -20, Y: 40, Z: 3, Block: 5}},
		Activations: []PackedFlagV1{{Pos: 42, On: true}},
		LampsOn:     []int64{43},
		Powered:     []int64{44},
		Falling:     []FallingV1{{ID: 1, Pos: [3]float64{0.5, 30, 0.5}, Block: 7}},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteSnapshot(dir, sample(120))
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if got.Header.Tick != 120 || got.Seed != 1337 || got.EditSeq != 99 {
		t.Fatalf("round trip lost fields: %+v", got.Header)
	}
	if len(got.Chunks) != 1 || !bytes.Equal(got.Chunks[0].Blocks, bytes.Repeat([]byte{1}, 64)) {
		t.Fatal("chunk payload corrupted")
	}
	if len(got.Powered) != 1 || got.Powered[0] != 44 {
		t.Fatal("powered list lost")
	}
	if len(got.Edits) != 1 || got.Edits[0] != (EditV1{X: -20, Y: 40, Z: 3, Block: 5}) {
		t.Fatal("edit overlay lost")
	}
}

func TestLatestPicksNewest(t *testing.T) {
	dir := t.TempDir()

	if Latest(dir) != "" {
		t.Fatal("empty dir should have no latest")
	}
	for _, tick := range []uint64{3000, 6000, 900} {
		if _, err := WriteSnapshot(dir, sample(tick)); err != nil {
			t.Fatalf("WriteSnapshot: %v", err)
		}
	}

	got, err := ReadSnapshot(Latest(dir))
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if got.Header.Tick != 6000 {
		t.Fatalf("latest tick = %d, want 6000", got.Header.Tick)
	}
}

func TestReadRejectsUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	s := sample(1)
	s.Header.Version = 2
	path, err := WriteSnapshot(dir, s)
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatal("version 2 should be rejected")
	}
}
