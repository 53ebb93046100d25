// Package editstore persists the sparse edit map: the final block value of
// every cell a player or the simulation has ever touched. Replayed over
// freshly generated terrain it reproduces the saved world without storing
// any generated chunk.
package editstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"sandvox.gg/internal/sim/blocks"
	"sandvox.gg/internal/sim/world"
)

type Store struct {
	db *sql.DB

	ch   chan world.BlockEdit
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db: db,
		// High buffer: edit bursts (explosions, floods) must not stall the sim.
		ch: make(chan world.BlockEdit, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS edits (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			block INTEGER NOT NULL,
			author TEXT NOT NULL,
			seq INTEGER NOT NULL,
			PRIMARY KEY (x, z, y)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_edits_seq ON edits(seq);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// BlockEdit implements world.EditSink. Writes are keyed by position, so the
// table always holds the latest value per cell.
func (s *Store) BlockEdit(e world.BlockEdit) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- e:
	default:
		// Drop if the writer falls behind; the JSONL edit log remains the
		// source of truth for full replays.
	}
}

// Replay streams the stored edit map in seq order. Callers apply each cell
// onto generated terrain.
func (s *Store) Replay(apply func(x, y, z int, b blocks.ID)) error {
	return s.ReplayAfter(0, apply)
}

// ReplayAfter streams only cells whose last write has seq > minSeq, for
// topping up a snapshot with edits that landed after it was taken.
func (s *Store) ReplayAfter(minSeq uint64, apply func(x, y, z int, b blocks.ID)) error {
	rows, err := s.db.Query(`SELECT x, y, z, block FROM edits WHERE seq > ? ORDER BY seq ASC`, int64(minSeq))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var x, y, z, block int
		if err := rows.Scan(&x, &y, &z, &block); err != nil {
			return err
		}
		apply(x, y, z, blocks.ID(block))
	}
	return rows.Err()
}

// MaxSeq returns the highest stored edit sequence, 0 for an empty store.
func (s *Store) MaxSeq() (uint64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(seq) FROM edits`).Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

// Count returns the number of edited cells.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM edits`).Scan(&n)
	return n, err
}

func (s *Store) loop() {
	ctx := context.Background()

	insert, _ := s.db.Prepare(`INSERT OR REPLACE INTO edits(x,y,z,block,author,seq) VALUES(?,?,?,?,?,?)`)
	defer func() {
		if insert != nil {
			_ = insert.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 512
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for e := range s.ch {
		begin()
		if tx == nil || insert == nil {
			continue
		}
		if _, err := tx.Stmt(insert).Exec(e.X, e.Y, e.Z, int(e.Block), e.Author, int64(e.Seq)); err != nil {
			rollback()
			continue
		}
		opCount++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
