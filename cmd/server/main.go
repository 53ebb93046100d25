package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"sandvox.gg/internal/persistence/editstore"
	persistlog "sandvox.gg/internal/persistence/log"
	"sandvox.gg/internal/persistence/snapshot"
	"sandvox.gg/internal/sim/blocks"
	"sandvox.gg/internal/sim/tuning"
	"sandvox.gg/internal/sim/world"
	"sandvox.gg/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int("seed", 1337, "world seed (used only when starting a fresh world)")
		worldType  = flag.String("world_type", "", "normal|flat (default from tuning)")
		configDir  = flag.String("configs", "./configs", "config directory")
		schemasDir = flag.String("schemas", "./schemas", "wire schema directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	wt := strings.TrimSpace(*worldType)
	if wt == "" {
		wt = tune.WorldType
	}

	w, err := world.New(world.WorldConfig{
		ID:                 *worldID,
		Seed:               int32(*seed),
		WorldType:          wt,
		TickRateHz:         tune.TickRateHz,
		ViewDistance:       tune.ViewDistance,
		EvictMargin:        tune.EvictMargin,
		GenBudgetPerTick:   tune.GenBudgetPerTick,
		SignalEveryTicks:   tune.SignalEveryTicks,
		FluidEveryTicks:    tune.FluidEveryTicks,
		FluidBudget:        tune.FluidBudget,
		ButtonReleaseTicks: tune.ButtonReleaseTicks,
		SnapshotEveryTicks: tune.SnapshotEveryTicks,
		DeviceTier:         tune.DeviceTier,
	}, logger)
	if err != nil {
		logger.Fatalf("create world: %v", err)
	}

	// Resume from snapshot when one exists.
	snapshotToLoad := strings.TrimSpace(*snapPath)
	snapDir := filepath.Join(worldDir, "snapshots")
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = snapshot.Latest(snapDir)
	}
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if err := w.ImportSnapshot(snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from %s at tick %d", snapshotToLoad, snap.Header.Tick)
	}

	// Persistence: sparse edit map, edit JSONL, tick JSONL.
	store, err := editstore.Open(filepath.Join(worldDir, "edits.db"))
	if err != nil {
		logger.Fatalf("open edit store: %v", err)
	}
	defer store.Close()

	// A fresh boot replays the whole stored edit map over generated terrain;
	// a snapshot resume tops up with the edits that landed after the snapshot
	// was taken. Either way the cells go through the same funnel live edits
	// use, with the world author so the replay batches into one signal
	// refresh.
	minSeq := uint64(0)
	if snapshotToLoad != "" {
		minSeq = w.EditSeq()
	}
	replayed := 0
	if err := store.ReplayAfter(minSeq, func(x, y, z int, b blocks.ID) {
		replayed++
		w.SetBlockAt(x, y, z, b, world.AuthorWorld)
	}); err != nil {
		logger.Fatalf("replay edit store: %v", err)
	}
	if replayed > 0 {
		logger.Printf("replayed %d stored edits", replayed)
	}
	w.AddEditSink(store)

	editLog := persistlog.NewEditLogger(worldDir)
	defer editLog.Close()
	w.AddEditSink(editLog)

	tickLog := persistlog.NewTickLogger(worldDir)
	defer tickLog.Close()
	w.SetTickLogger(tickLog)

	// Snapshot writer drains off the sim goroutine.
	snapCh := make(chan snapshot.SnapshotV1, 1)
	w.SetSnapshotSink(snapCh)
	go func() {
		for s := range snapCh {
			path, err := snapshot.WriteSnapshot(snapDir, s)
			if err != nil {
				logger.Printf("write snapshot: %v", err)
				continue
			}
			logger.Printf("snapshot %s (tick %d, %d chunks)", path, s.Header.Tick, len(s.Chunks))
		}
	}()

	server, err := ws.NewServer(w, *schemasDir, logger)
	if err != nil {
		logger.Fatalf("ws server: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", server.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})

	httpSrv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	w.Run(ctx)

	// Final snapshot on the way out.
	if _, err := snapshot.WriteSnapshot(snapDir, w.ExportSnapshot()); err != nil {
		logger.Printf("final snapshot: %v", err)
	}
	close(snapCh)

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	_ = httpSrv.Shutdown(shutCtx)
}
