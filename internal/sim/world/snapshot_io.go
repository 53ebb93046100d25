package world

import (
	"fmt"

	"sandvox.gg/internal/persistence/snapshot"
	"sandvox.gg/internal/sim/blocks"
)

// ExportSnapshot captures the full resumable state: chunk volumes plus the
// sparse state that is not derivable from the grid. Power levels are omitted;
// the import recomputes them.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	s := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: 1,
			WorldID: w.cfg.ID,
			Tick:    w.tick.Load(),
		},
		Seed:       w.cfg.Seed,
		WorldType:  w.cfg.WorldType,
		TickRateHz: w.cfg.TickRateHz,
		EditSeq:    w.editSeq.Load(),
	}

	for _, k := range w.chunks.LoadedChunkKeys() {
		ch, _ := w.chunks.Peek(k.CX, k.CZ)
		raw := make([]byte, chunkVolume)
		for i, b := range ch.Blocks {
			raw[i] = byte(b)
		}
		s.Chunks = append(s.Chunks, snapshot.ChunkV1{CX: k.CX, CZ: k.CZ, Blocks: raw})
	}

	// The overlay covers evicted chunks too; without it their edits would
	// only exist in the store's database.
	for _, ce := range w.chunks.RecordedEdits() {
		s.Edits = append(s.Edits, snapshot.EditV1{X: ce.X, Y: ce.Y, Z: ce.Z, Block: byte(ce.Block)})
	}

	for _, p := range sortedKeys(w.active) {
		if w.active[p] {
			s.Activations = append(s.Activations, snapshot.PackedFlagV1{Pos: int64(p), On: true})
		}
	}
	for _, p := range sortedKeys(w.lampOn) {
		if w.lampOn[p] {
			s.LampsOn = append(s.LampsOn, int64(p))
		}
	}
	for _, p := range sortedKeys(w.prevPowered) {
		if w.prevPowered[p] {
			s.Powered = append(s.Powered, int64(p))
		}
	}

	for _, f := range w.falling {
		s.Falling = append(s.Falling, snapshot.FallingV1{
			ID:    f.ID,
			Pos:   [3]float64{f.Pos.X, f.Pos.Y, f.Pos.Z},
			Vel:   [3]float64{f.Vel.X, f.Vel.Y, f.Vel.Z},
			Block: byte(f.Block),
		})
	}
	for _, it := range w.items {
		s.Items = append(s.Items, snapshot.ItemV1{
			ID:    it.ID,
			Pos:   [3]float64{it.Pos.X, it.Pos.Y, it.Pos.Z},
			Vel:   [3]float64{it.Vel.X, it.Vel.Y, it.Vel.Z},
			Item:  byte(it.Item),
			Count: it.Count,
			Age:   it.Age,
		})
	}
	return s
}

// ImportSnapshot restores a captured state into a fresh world. The snapshot
// must come from the same seed and world type; generation must reproduce
// whatever the snapshot does not carry.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Seed != w.cfg.Seed || s.WorldType != w.cfg.WorldType {
		return fmt.Errorf("snapshot world mismatch: seed=%d type=%s vs config seed=%d type=%s",
			s.Seed, s.WorldType, w.cfg.Seed, w.cfg.WorldType)
	}

	for _, cv := range s.Chunks {
		if len(cv.Blocks) != chunkVolume {
			return fmt.Errorf("chunk (%d,%d): volume %d, want %d", cv.CX, cv.CZ, len(cv.Blocks), chunkVolume)
		}
		ch := &Chunk{CX: cv.CX, CZ: cv.CZ}
		for i, b := range cv.Blocks {
			ch.Blocks[i] = blocks.ID(b)
		}
		w.chunks.chunks[ChunkKey{CX: cv.CX, CZ: cv.CZ}] = ch
		w.indexChunkSignals(ch)
		w.dirty[ChunkKey{CX: cv.CX, CZ: cv.CZ}] = struct{}{}
	}

	for _, ev := range s.Edits {
		w.chunks.restoreEdit(ev.X, ev.Y, ev.Z, blocks.ID(ev.Block))
	}

	for _, a := range s.Activations {
		if a.On {
			w.active[PackedPos(a.Pos)] = true
		}
	}
	for _, p := range s.LampsOn {
		w.lampOn[PackedPos(p)] = true
	}
	for _, p := range s.Powered {
		w.prevPowered[PackedPos(p)] = true
	}

	maxID := uint64(0)
	for _, fv := range s.Falling {
		w.falling = append(w.falling, &FallingBlock{
			ID:    fv.ID,
			Pos:   Vec3f{X: fv.Pos[0], Y: fv.Pos[1], Z: fv.Pos[2]},
			Vel:   Vec3f{X: fv.Vel[0], Y: fv.Vel[1], Z: fv.Vel[2]},
			Block: blocks.ID(fv.Block),
		})
		maxID = max(maxID, fv.ID)
	}
	for _, iv := range s.Items {
		w.items = append(w.items, &DroppedItem{
			ID:    iv.ID,
			Pos:   Vec3f{X: iv.Pos[0], Y: iv.Pos[1], Z: iv.Pos[2]},
			Vel:   Vec3f{X: iv.Vel[0], Y: iv.Vel[1], Z: iv.Vel[2]},
			Item:  blocks.ID(iv.Item),
			Count: iv.Count,
			Age:   iv.Age,
		})
		maxID = max(maxID, iv.ID)
	}
	if maxID > w.nextEntityID {
		w.nextEntityID = maxID
	}

	w.editSeq.Store(s.EditSeq)
	w.tick.Store(s.Header.Tick)
	w.refreshSignals()
	return nil
}
