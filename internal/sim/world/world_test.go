package world

import (
	"testing"

	"sandvox.gg/internal/sim/blocks"
)

func buildScriptedWorld(t *testing.T) *World {
	t.Helper()
	w := newTestWorld(t, WorldConfig{Seed: 77, FluidEveryTicks: 1, FluidBudget: 64, SignalEveryTicks: 1})

	w.SetBlockAt(4, 40, 4, blocks.Stone, "p1")
	w.SetBlockAt(5, 40, 4, blocks.RedstoneWire, "p1")
	w.SetBlockAt(6, 40, 4, blocks.RedstoneLamp, "p1")
	w.SetBlockAt(3, 40, 4, blocks.Lever, "p1")
	w.ToggleLever(3, 40, 4)
	w.SetBlockAt(10, 40, 10, blocks.Sand, "p1")
	w.SubmitEdits("p2", []BlockEdit{
		{X: 8, Y: 40, Z: 8, Block: blocks.Planks},
		{X: 8, Y: 41, Z: 8, Block: blocks.Glass},
	})
	for i := 0; i < 90; i++ {
		w.StepOnce()
	}
	return w
}

func TestSameScriptSameDigest(t *testing.T) {
	a := buildScriptedWorld(t)
	b := buildScriptedWorld(t)

	if a.StateDigest() != b.StateDigest() {
		t.Fatal("identical scripts diverged")
	}

	b.SetBlockAt(0, 40, 0, blocks.Stone, "p9")
	if a.StateDigest() == b.StateDigest() {
		t.Fatal("digest blind to an extra edit")
	}
}

func TestTickLogDigestMatchesState(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Seed: 3, SignalEveryTicks: 1})
	tl := &captureTickLog{}
	w.SetTickLogger(tl)

	w.SetBlockAt(1, 40, 1, blocks.Stone, "p1")
	w.StepOnce()

	if tl.last.Digest != w.StateDigest() {
		t.Fatal("logged digest differs from live state digest")
	}
	if tl.last.Tick != 0 {
		t.Fatalf("logged tick = %d, want 0", tl.last.Tick)
	}
	if w.CurrentTick() != 1 {
		t.Fatalf("tick after one step = %d, want 1", w.CurrentTick())
	}
}

type captureTickLog struct {
	last TickLogEntry
}

func (c *captureTickLog) WriteTick(e TickLogEntry) error {
	c.last = e
	return nil
}

func TestSnapshotRoundTripRestoresDigest(t *testing.T) {
	cfg := WorldConfig{Seed: 42, WorldType: WorldTypeFlat, TickRateHz: 30, FluidEveryTicks: 1, FluidBudget: 96, SignalEveryTicks: 1}
	a := newTestWorld(t, cfg)

	a.SetBlockAt(5, 40, 5, blocks.Lever, "p1")
	a.SetBlockAt(6, 40, 5, blocks.RedstoneLamp, "p1")
	a.ToggleLever(5, 40, 5)
	a.SetBlockAt(12, 70, 12, blocks.Sand, "p1") // long fall: still airborne below

	// Drain the fluid wake queue; it is transient and not snapshotted.
	for i := 0; i < 10; i++ {
		a.StepOnce()
	}
	if len(a.fluidQueue) != 0 {
		t.Fatal("fixture still has queued fluid cells")
	}
	if len(a.falling) != 1 {
		t.Fatalf("fixture wants one airborne entity, have %d", len(a.falling))
	}

	snap := a.ExportSnapshot()

	b := newTestWorld(t, cfg)
	if err := b.ImportSnapshot(snap); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}

	if !b.LampLit(6, 40, 5) {
		t.Fatal("lamp state lost across snapshot")
	}
	if b.CurrentTick() != a.CurrentTick() {
		t.Fatalf("tick %d != %d", b.CurrentTick(), a.CurrentTick())
	}
	if a.StateDigest() != b.StateDigest() {
		t.Fatal("digest changed across snapshot round trip")
	}

	// Both copies keep agreeing as they run.
	for i := 0; i < 60; i++ {
		a.StepOnce()
		b.StepOnce()
	}
	if a.StateDigest() != b.StateDigest() {
		t.Fatal("copies diverged after resume")
	}
}

func TestSnapshotRejectsWrongSeed(t *testing.T) {
	a := newTestWorld(t, WorldConfig{Seed: 1})
	a.chunks.Ensure(0, 0)
	snap := a.ExportSnapshot()

	b := newTestWorld(t, WorldConfig{Seed: 2})
	if err := b.ImportSnapshot(snap); err == nil {
		t.Fatal("import should reject a different seed")
	}
}

func TestChunkStreamingFollowsPlayer(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Seed: 9, ViewDistance: 2, EvictMargin: 1, GenBudgetPerTick: 4})

	w.UpdatePlayer(PlayerPose{ID: "p1", X: 8, Y: 30, Z: 8})
	for i := 0; i < 20; i++ {
		w.StepOnce()
	}
	// Full ring around chunk (0,0) at view distance 2.
	want := (2*2 + 1) * (2*2 + 1)
	if got := w.chunks.LoadedCount(); got != want {
		t.Fatalf("loaded chunks = %d, want %d", got, want)
	}

	// Teleport far away: the old neighborhood falls outside view+margin and
	// gets evicted while the new one streams in.
	w.UpdatePlayer(PlayerPose{ID: "p1", X: 8 + 40*ChunkSize, Y: 30, Z: 8})
	for i := 0; i < 20; i++ {
		w.StepOnce()
	}
	if w.chunks.Loaded(8, 8) {
		t.Fatal("origin chunk still loaded after teleport")
	}
	if !w.chunks.Loaded(8+40*ChunkSize, 8) {
		t.Fatal("destination chunk not loaded")
	}
}

func TestEditsSurviveEvictionAndReload(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Seed: 11, ViewDistance: 2, EvictMargin: 1, GenBudgetPerTick: 64})

	if !w.SetBlockAt(8, 40, 8, blocks.Glass, "p1") {
		t.Fatal("placement failed")
	}
	w.UpdatePlayer(PlayerPose{ID: "p1", X: 8, Y: 30, Z: 8})
	for i := 0; i < 5; i++ {
		w.StepOnce()
	}
	if !w.chunks.Loaded(8, 8) {
		t.Fatal("origin chunk not streamed in")
	}

	far := float64(40 * ChunkSize)
	w.UpdatePlayer(PlayerPose{ID: "p1", X: far, Y: 30, Z: far})
	for i := 0; i < 10; i++ {
		w.StepOnce()
	}
	if w.chunks.Loaded(8, 8) {
		t.Fatal("origin chunk still resident after leaving")
	}

	w.UpdatePlayer(PlayerPose{ID: "p1", X: 8, Y: 30, Z: 8})
	for i := 0; i < 10; i++ {
		w.StepOnce()
	}
	if got := w.BlockAt(8, 40, 8); got != blocks.Glass {
		t.Fatalf("edit lost after eviction and reload: got %v, want glass", got)
	}
}

func TestLeverStateSurvivesEviction(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Seed: 11, ViewDistance: 2, EvictMargin: 1, GenBudgetPerTick: 64, SignalEveryTicks: 1})

	w.SetBlockAt(5, 40, 5, blocks.Lever, "p1")
	w.SetBlockAt(6, 40, 5, blocks.RedstoneLamp, "p1")
	w.ToggleLever(5, 40, 5)
	if !w.LampLit(6, 40, 5) {
		t.Fatal("lamp not lit before eviction")
	}

	far := float64(40 * ChunkSize)
	w.UpdatePlayer(PlayerPose{ID: "p1", X: far, Y: 30, Z: far})
	for i := 0; i < 10; i++ {
		w.StepOnce()
	}
	if w.chunks.Loaded(5, 5) {
		t.Fatal("circuit chunk still resident after leaving")
	}

	w.UpdatePlayer(PlayerPose{ID: "p1", X: 8, Y: 30, Z: 8})
	for i := 0; i < 10; i++ {
		w.StepOnce()
	}
	if w.BlockAt(5, 40, 5) != blocks.Lever {
		t.Fatal("lever voxel lost across eviction")
	}
	if !w.Activated(5, 40, 5) {
		t.Fatal("lever activation lost across eviction")
	}
	if !w.LampLit(6, 40, 5) {
		t.Fatal("lamp not re-lit after the circuit streamed back in")
	}
}

func TestSnapshotCarriesEvictedEdits(t *testing.T) {
	cfg := WorldConfig{Seed: 13, ViewDistance: 2, EvictMargin: 1, GenBudgetPerTick: 64}
	a := newTestWorld(t, cfg)

	a.SetBlockAt(8, 40, 8, blocks.Planks, "p1")
	far := float64(40 * ChunkSize)
	a.UpdatePlayer(PlayerPose{ID: "p1", X: far, Y: 30, Z: far})
	for i := 0; i < 10; i++ {
		a.StepOnce()
	}
	if a.chunks.Loaded(8, 8) {
		t.Fatal("edited chunk still resident after leaving")
	}

	b := newTestWorld(t, cfg)
	if err := b.ImportSnapshot(a.ExportSnapshot()); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}
	b.UpdatePlayer(PlayerPose{ID: "p2", X: 8, Y: 30, Z: 8})
	for i := 0; i < 10; i++ {
		b.StepOnce()
	}
	if got := b.BlockAt(8, 40, 8); got != blocks.Planks {
		t.Fatalf("evicted edit missing after snapshot restore: got %v, want planks", got)
	}
}

func TestRemovePlayerStopsStreaming(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Seed: 9, ViewDistance: 1, EvictMargin: 1, GenBudgetPerTick: 4})

	w.UpdatePlayer(PlayerPose{ID: "p1", X: 8, Y: 30, Z: 8})
	for i := 0; i < 10; i++ {
		w.StepOnce()
	}
	before := w.chunks.LoadedCount()
	if before == 0 {
		t.Fatal("no chunks streamed for the player")
	}

	w.RemovePlayer("p1")
	for i := 0; i < 10; i++ {
		w.StepOnce()
	}
	// No players: resident chunks are left alone rather than evicted.
	if got := w.chunks.LoadedCount(); got != before {
		t.Fatalf("loaded chunks changed to %d after last player left, want %d", got, before)
	}
}
