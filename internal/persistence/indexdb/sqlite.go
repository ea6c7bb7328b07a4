// Package indexdb maintains a local SQLite index of runs: metadata,
// benchmark results, and in-sim warnings. The replay files remain the
// source of truth; the index exists for querying.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Index struct {
	db *sql.DB

	ch   chan warningRow
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type warningRow struct {
	RunID   string
	Tick    uint64
	Message string
}

// RunInfo describes one recorded run.
type RunInfo struct {
	ID            string
	StartedAt     string
	Seed          int64
	TPS           int
	Scenario      string
	ContentDigest string
	ReplayPath    string
	FinalTick     uint64
	FinalDigest   string
}

// BenchmarkResult is one timed benchmark iteration.
type BenchmarkResult struct {
	RunID       string
	Scenario    string
	Ticks       uint64
	WallMillis  int64
	TicksPerSec float64
	CacheHits   uint64
	CacheMisses uint64
}

func Open(path string) (*Index, error) {
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

	idx := &Index{
		db: db,
		ch: make(chan warningRow, 4096),
	}
	idx.wg.Add(1)
	go func() {
		defer idx.wg.Done()
		idx.loop()
	}()
	return idx, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-style workload; NORMAL durability is enough
	// for a secondary index.
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			seed INTEGER NOT NULL,
			tps INTEGER NOT NULL,
			scenario TEXT,
			content_digest TEXT NOT NULL,
			replay_path TEXT,
			final_tick INTEGER,
			final_digest TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS benchmarks (
			run_id TEXT NOT NULL,
			scenario TEXT NOT NULL,
			ticks INTEGER NOT NULL,
			wall_ms INTEGER NOT NULL,
			ticks_per_sec REAL NOT NULL,
			cache_hits INTEGER NOT NULL,
			cache_misses INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_benchmarks_scenario ON benchmarks(scenario);`,
		`CREATE TABLE IF NOT EXISTS warnings (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			message TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_warnings_run_tick ON warnings(run_id, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Index) Close() error {
	var err error
	idx.once.Do(func() {
		idx.closed.Store(true)
		close(idx.ch)
		idx.wg.Wait()
		err = idx.db.Close()
	})
	return err
}

func (idx *Index) loop() {
	for row := range idx.ch {
		_, _ = idx.db.Exec(
			`INSERT INTO warnings (run_id, tick, message) VALUES (?, ?, ?)`,
			row.RunID, row.Tick, row.Message,
		)
	}
}

// StartRun records a new run and returns its id.
func (idx *Index) StartRun(seed int64, tps int, scenario, contentDigest, replayPath string) (string, error) {
	id := uuid.NewString()
	_, err := idx.db.Exec(
		`INSERT INTO runs (id, started_at, seed, tps, scenario, content_digest, replay_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), seed, tps, scenario, contentDigest, replayPath,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// FinishRun stores the final tick and digest of a completed run.
func (idx *Index) FinishRun(id string, finalTick uint64, finalDigest string) error {
	_, err := idx.db.Exec(
		`UPDATE runs SET final_tick = ?, final_digest = ? WHERE id = ?`,
		finalTick, finalDigest, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordWarning queues a warning row. Writes are asynchronous and
// dropped if the indexer falls behind.
func (idx *Index) RecordWarning(runID string, tick uint64, message string) {
	if idx == nil || idx.closed.Load() {
		return
	}
	select {
	case idx.ch <- warningRow{RunID: runID, Tick: tick, Message: message}:
	default:
	}
}

// RecordBenchmark stores one benchmark iteration.
func (idx *Index) RecordBenchmark(r BenchmarkResult) error {
	_, err := idx.db.Exec(
		`INSERT INTO benchmarks (run_id, scenario, ticks, wall_ms, ticks_per_sec, cache_hits, cache_misses)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Scenario, r.Ticks, r.WallMillis, r.TicksPerSec, r.CacheHits, r.CacheMisses,
	)
	if err != nil {
		return fmt.Errorf("record benchmark: %w", err)
	}
	return nil
}

// Runs lists recorded runs, newest first.
func (idx *Index) Runs(limit int) ([]RunInfo, error) {
	rows, err := idx.db.Query(
		`SELECT id, started_at, seed, tps, COALESCE(scenario, ''), content_digest,
		        COALESCE(replay_path, ''), COALESCE(final_tick, 0), COALESCE(final_digest, '')
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunInfo
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Seed, &r.TPS, &r.Scenario,
			&r.ContentDigest, &r.ReplayPath, &r.FinalTick, &r.FinalDigest); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
