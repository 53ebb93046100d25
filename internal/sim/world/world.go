package world

import (
	"fmt"
	"log"
	"sync/atomic"

	"sandvox.gg/internal/persistence/snapshot"
	"sandvox.gg/internal/sim/blocks"
)

// WorldConfig configures one simulation session. Seed and WorldType are fixed
// for the session; everything else is operational tuning.
type WorldConfig struct {
	ID        string
	Seed      int32
	WorldType string // "normal" | "flat"

	TickRateHz int

	// Chunk streaming.
	ViewDistance     int // chunks kept loaded around each player
	EvictMargin      int // extra chunks beyond view distance before eviction
	GenBudgetPerTick int // max chunks generated per tick (cooperative slicing)

	// Subsystem throttles.
	SignalEveryTicks   int // debounced signal refresh cadence (~20 Hz)
	FluidEveryTicks    int // fluid cadence by device tier (5-8 Hz)
	FluidBudget        int // active cells drained per fluid tick
	ButtonReleaseTicks int

	SnapshotEveryTicks int

	DeviceTier string // "low" | "mid" | "high"; derives fluid defaults
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.WorldType == "" {
		c.WorldType = WorldTypeNormal
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 30
	}
	if c.ViewDistance <= 0 {
		c.ViewDistance = 4
	}
	if c.EvictMargin <= 0 {
		c.EvictMargin = 2
	}
	if c.GenBudgetPerTick <= 0 {
		c.GenBudgetPerTick = 2
	}
	if c.SignalEveryTicks <= 0 {
		// ~20 Hz at the configured tick rate, at least every other tick.
		c.SignalEveryTicks = c.TickRateHz / 20
		if c.SignalEveryTicks < 1 {
			c.SignalEveryTicks = 1
		}
	}
	if c.DeviceTier == "" {
		c.DeviceTier = "mid"
	}
	if c.FluidEveryTicks <= 0 || c.FluidBudget <= 0 {
		var hz, budget int
		switch c.DeviceTier {
		case "low":
			hz, budget = 5, 64
		case "high":
			hz, budget = 8, 140
		default:
			hz, budget = 6, 96
		}
		if c.FluidEveryTicks <= 0 {
			c.FluidEveryTicks = c.TickRateHz / hz
			if c.FluidEveryTicks < 1 {
				c.FluidEveryTicks = 1
			}
		}
		if c.FluidBudget <= 0 {
			c.FluidBudget = budget
		}
	}
	if c.ButtonReleaseTicks <= 0 {
		c.ButtonReleaseTicks = c.TickRateHz // one second
	}
	if c.SnapshotEveryTicks <= 0 {
		c.SnapshotEveryTicks = 3000
	}
}

// Mesher is the rendering collaborator: it receives one dirty notification per
// affected chunk per flush and owns everything visual.
type Mesher interface {
	ChunkDirty(cx, cz int)
}

// BlockEdit is the change event emitted for every world mutation.
type BlockEdit struct {
	X      int       `json:"x"`
	Y      int       `json:"y"`
	Z      int       `json:"z"`
	Block  blocks.ID `json:"block"`
	Author string    `json:"author,omitempty"`
	Seq    uint64    `json:"seq"`
	Tick   uint64    `json:"tick"`
}

// EditSink receives change events (persistence, multiplayer broadcast).
type EditSink interface {
	BlockEdit(e BlockEdit)
}

// TickLogger records one entry per tick. Implemented in internal/persistence.
type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick   uint64 `json:"tick"`
	Edits  int    `json:"edits"`
	Chunks int    `json:"chunks"`
	Digest string `json:"digest"`
}

// AuthorWorld tags edits produced by the simulation itself (fluids, gravity,
// explosions) as opposed to players or remote peers.
const AuthorWorld = "world"

// PlayerPose is a full player pose snapshot exchanged with collaborators.
type PlayerPose struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Skin  string  `json:"skin,omitempty"`
}

type buttonTimer struct {
	pos PackedPos
	due uint64
}

// World is the single-threaded authoritative simulation. All state is owned by
// the world loop goroutine; collaborators talk to it through channels or the
// Step entry points.
type World struct {
	cfg    WorldConfig
	logger *log.Logger

	tick atomic.Uint64

	gen    *generator
	chunks *ChunkStore

	// Redstone. Power is recomputed from scratch each refresh; activation
	// flags persist. prevPowered carries the edge-trigger memory.
	signalIndex map[PackedPos]struct{}
	power       map[PackedPos]uint8
	active      map[PackedPos]bool
	lampOn      map[PackedPos]bool
	prevPowered map[PackedPos]bool

	signalPending  bool
	lastSignalTick uint64
	buttonTimers   []buttonTimer

	// Fluid active set: membership means "reevaluate", not "is fluid".
	fluidQueue    map[PackedPos]struct{}
	lastFluidTick uint64

	// Transient kinematic entities.
	falling      []*FallingBlock
	items        []*DroppedItem
	nextEntityID uint64

	// Player poses mirrored for chunk streaming anchors.
	players map[string]PlayerPose

	// Remesh coalescing: one request per chunk per flush.
	dirty map[ChunkKey]struct{}

	mesher     Mesher
	sinks      []EditSink
	tickLogger TickLogger

	snapshotSink chan<- snapshot.SnapshotV1

	editSeq atomic.Uint64

	// Loop inboxes.
	inEdits  chan remoteEditBatch
	inPoses  chan PlayerPose
	inLeaves chan string
	inFuncs  chan func(*World)
	stop     chan struct{}

	streamCenters map[string]ChunkKey
}

type remoteEditBatch struct {
	Author string
	Edits  []BlockEdit
}

// New builds a world for the given config. The zero collaborators are valid:
// a world without mesher, sinks or loggers still simulates.
func New(cfg WorldConfig, logger *log.Logger) (*World, error) {
	cfg.applyDefaults()
	if cfg.WorldType != WorldTypeNormal && cfg.WorldType != WorldTypeFlat {
		return nil, fmt.Errorf("unknown world type %q", cfg.WorldType)
	}

	gen := newGenerator(GenConfig{Seed: cfg.Seed, WorldType: cfg.WorldType}, logger)
	w := &World{
		cfg:    cfg,
		logger: logger,
		gen:    gen,
		chunks: newChunkStore(gen),

		signalIndex: map[PackedPos]struct{}{},
		power:       map[PackedPos]uint8{},
		active:      map[PackedPos]bool{},
		lampOn:      map[PackedPos]bool{},
		prevPowered: map[PackedPos]bool{},

		fluidQueue: map[PackedPos]struct{}{},

		players: map[string]PlayerPose{},

		dirty: map[ChunkKey]struct{}{},

		inEdits:  make(chan remoteEditBatch, 256),
		inPoses:  make(chan PlayerPose, 256),
		inLeaves: make(chan string, 64),
		inFuncs:  make(chan func(*World), 64),
		stop:     make(chan struct{}),

		streamCenters: map[string]ChunkKey{},
	}
	return w, nil
}

func (w *World) ID() string { return w.cfg.ID }
func (w *World) Config() WorldConfig { return w.cfg }
func (w *World) CurrentTick() uint64 { return w.tick.Load() }
func (w *World) EditSeq() uint64 { return w.editSeq.Load() }

func (w *World) SetMesher(m Mesher) { w.mesher = m }
func (w *World) AddEditSink(s EditSink) { w.sinks = append(w.sinks, s) }
func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

// BlockAt is the read path shared by every subsystem; it never fails.
func (w *World) BlockAt(x, y, z int) blocks.ID {
	return w.chunks.Block(x, y, z)
}

// ensureChunkIndexed loads or regenerates the chunk at (cx, cz) and folds any
// devices its edit overlay brought back into the signal index.
func (w *World) ensureChunkIndexed(cx, cz int) *Chunk {
	if ch, ok := w.chunks.Peek(cx, cz); ok {
		return ch
	}
	ch := w.chunks.Ensure(cx, cz)
	if w.indexChunkSignals(ch) > 0 {
		w.signalPending = true
	}
	return ch
}

func (w *World) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}
