package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// stateDigest hashes everything the simulation owns: chunk volumes, sparse
// block state, the fluid queue and transient entities. Two runs that agree on
// this string at the same tick are in identical states. All maps are walked
// in sorted key order.
func (w *World) stateDigest() string {
	h := sha256.New()
	var buf [8]byte

	writeU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	writeF64 := func(v float64) { writeU64(math.Float64bits(v)) }

	writeU64(w.editSeq.Load())

	for _, k := range w.chunks.LoadedChunkKeys() {
		ch, _ := w.chunks.Peek(k.CX, k.CZ)
		writeU64(uint64(int64(k.CX)))
		writeU64(uint64(int64(k.CZ)))
		d := ch.Digest()
		h.Write(d[:])
	}

	for _, p := range sortedKeys(w.power) {
		writeU64(uint64(p))
		h.Write([]byte{w.power[p]})
	}
	for _, p := range sortedKeys(w.active) {
		if w.active[p] {
			writeU64(uint64(p))
		}
	}
	for _, p := range sortedKeys(w.lampOn) {
		if w.lampOn[p] {
			writeU64(uint64(p))
		}
	}
	for _, p := range sortedKeys(w.prevPowered) {
		if w.prevPowered[p] {
			writeU64(uint64(p))
		}
	}
	for _, p := range sortedSet(w.fluidQueue) {
		writeU64(uint64(p))
	}

	for _, f := range w.falling {
		writeU64(f.ID)
		writeF64(f.Pos.X)
		writeF64(f.Pos.Y)
		writeF64(f.Pos.Z)
		writeF64(f.Vel.Y)
		h.Write([]byte{byte(f.Block)})
	}
	for _, it := range w.items {
		writeU64(it.ID)
		writeF64(it.Pos.X)
		writeF64(it.Pos.Y)
		writeF64(it.Pos.Z)
		h.Write([]byte{byte(it.Item)})
		writeU64(uint64(it.Count))
		writeU64(uint64(it.Age))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// StateDigest exposes the digest for tests and the replay tool.
func (w *World) StateDigest() string { return w.stateDigest() }
