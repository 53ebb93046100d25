package world

import (
	"context"
	"math"
	"time"

	"sandvox.gg/internal/sim/world/logic/mathx"
)

// Run drives the world at the configured tick rate until the context ends or
// Stop is called. All simulation state is touched only from this goroutine;
// inputs arrive through the channel API and drain at tick boundaries.
func (w *World) Run(ctx context.Context) {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logf("world %s: loop started, %d Hz, seed=%d type=%s",
		w.cfg.ID, w.cfg.TickRateHz, w.cfg.Seed, w.cfg.WorldType)

	for {
		select {
		case <-ctx.Done():
			w.logf("world %s: loop stopped at tick %d", w.cfg.ID, w.tick.Load())
			return
		case <-w.stop:
			w.logf("world %s: loop stopped at tick %d", w.cfg.ID, w.tick.Load())
			return
		case <-ticker.C:
			w.StepOnce()
		}
	}
}

// Stop ends Run. Safe to call once from any goroutine.
func (w *World) Stop() { close(w.stop) }

// StepOnce runs exactly one simulation tick: drain inputs, advance every
// subsystem in fixed order, flush remeshes, log. Exposed so tests and the
// replay tool can drive the world without a ticker.
func (w *World) StepOnce() {
	now := w.tick.Load()
	seqBefore := w.editSeq.Load()

	w.drainInputs()
	w.stepButtonTimers(now)
	w.stepEntities()

	if w.lastFluidTick+uint64(w.cfg.FluidEveryTicks) <= now {
		w.lastFluidTick = now
		w.stepFluids()
	}
	if w.signalPending && w.lastSignalTick+uint64(w.cfg.SignalEveryTicks) <= now {
		w.lastSignalTick = now
		w.refreshSignals()
	}

	w.streamChunks()
	w.flushDirty()

	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{
			Tick:   now,
			Edits:  int(w.editSeq.Load() - seqBefore),
			Chunks: w.chunks.LoadedCount(),
			Digest: w.stateDigest(),
		})
	}
	if w.snapshotSink != nil && now > 0 && now%uint64(w.cfg.SnapshotEveryTicks) == 0 {
		select {
		case w.snapshotSink <- w.ExportSnapshot():
		default:
			w.logf("world %s: snapshot sink full, tick %d skipped", w.cfg.ID, now)
		}
	}

	w.tick.Store(now + 1)
}

func (w *World) drainInputs() {
	for {
		select {
		case batch := <-w.inEdits:
			// Remote batches keep player rules but defer the signal refresh:
			// one debounced recompute covers the whole batch instead of one
			// per edit.
			for _, e := range batch.Edits {
				w.setBlockAt(e.X, e.Y, e.Z, e.Block, batch.Author, false)
			}
		case p := <-w.inPoses:
			w.players[p.ID] = p
		case id := <-w.inLeaves:
			delete(w.players, id)
			delete(w.streamCenters, id)
		case fn := <-w.inFuncs:
			fn(w)
		default:
			return
		}
	}
}

// SubmitEdits queues a remote edit batch for the next tick.
func (w *World) SubmitEdits(author string, edits []BlockEdit) {
	w.inEdits <- remoteEditBatch{Author: author, Edits: edits}
}

// UpdatePlayer queues a player pose; a new ID joins the session.
func (w *World) UpdatePlayer(p PlayerPose) { w.inPoses <- p }

// RemovePlayer drops a player and their chunk anchor.
func (w *World) RemovePlayer(id string) { w.inLeaves <- id }

// Do runs fn on the world goroutine at the next tick boundary.
func (w *World) Do(fn func(*World)) { w.inFuncs <- fn }

// streamChunks generates missing chunks around player anchors under the
// per-tick budget and evicts chunks beyond the view plus margin. With no
// players resident chunks are left alone.
func (w *World) streamChunks() {
	if len(w.players) == 0 {
		return
	}

	budget := w.cfg.GenBudgetPerTick
	centers := make([]ChunkKey, 0, len(w.players))
	for _, id := range sortedKeys(w.players) {
		p := w.players[id]
		cx, _ := chunkCoord(int(math.Floor(p.X)))
		cz, _ := chunkCoord(int(math.Floor(p.Z)))
		c := ChunkKey{CX: cx, CZ: cz}
		w.streamCenters[id] = c
		centers = append(centers, c)

		for r := 0; r <= w.cfg.ViewDistance && budget > 0; r++ {
			budget = w.generateRing(c, r, budget)
		}
	}

	keep := w.cfg.ViewDistance + w.cfg.EvictMargin
	for _, k := range w.chunks.LoadedChunkKeys() {
		near := false
		for _, c := range centers {
			if chebyshev(k, c) <= keep {
				near = true
				break
			}
		}
		if !near {
			w.dropChunkState(k)
			w.chunks.Evict(k.CX, k.CZ)
		}
	}
}

// dropChunkState clears sparse simulation state tied to an evicting chunk.
// Activation flags and edge memory stay: the voxels come back through the
// chunk store's edit overlay, and their flags must come back with them.
func (w *World) dropChunkState(k ChunkKey) {
	for p := range w.signalIndex {
		if inChunk(p, k) {
			delete(w.signalIndex, p)
			w.signalPending = true
		}
	}
	for p := range w.power {
		if inChunk(p, k) {
			delete(w.power, p)
		}
	}
	for p := range w.lampOn {
		if inChunk(p, k) {
			delete(w.lampOn, p)
		}
	}
	for p := range w.fluidQueue {
		if inChunk(p, k) {
			delete(w.fluidQueue, p)
		}
	}
}

func inChunk(p PackedPos, k ChunkKey) bool {
	v := p.Unpack()
	cx, _ := chunkCoord(v.X)
	cz, _ := chunkCoord(v.Z)
	return cx == k.CX && cz == k.CZ
}

// generateRing fills the square ring at Chebyshev radius r, nearest first.
func (w *World) generateRing(c ChunkKey, r, budget int) int {
	for dz := -r; dz <= r && budget > 0; dz++ {
		for dx := -r; dx <= r && budget > 0; dx++ {
			if max(mathx.AbsInt(dx), mathx.AbsInt(dz)) != r {
				continue
			}
			cx, cz := c.CX+dx, c.CZ+dz
			if _, ok := w.chunks.Peek(cx, cz); ok {
				continue
			}
			w.ensureChunkIndexed(cx, cz)
			w.dirty[ChunkKey{CX: cx, CZ: cz}] = struct{}{}
			budget--
		}
	}
	return budget
}

func chebyshev(a, b ChunkKey) int {
	return max(mathx.AbsInt(a.CX-b.CX), mathx.AbsInt(a.CZ-b.CZ))
}
