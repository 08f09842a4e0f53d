package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voxelcraft.ai/pathsim/internal/sim/simulation"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

// ErrWriteFailed reports rows the writer could not commit.
var ErrWriteFailed = errors.New("index write failed")

// SQLiteIndex is a queryable secondary index of simulation runs. Writes are
// queued and applied by one writer goroutine; the trace files stay the source
// of truth.
type SQLiteIndex struct {
	db        *sql.DB
	insertPos *sql.Stmt
	insertRun *sql.Stmt

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTrace atomic.Uint64
	dropRun   atomic.Uint64
	failed    atomic.Uint64

	errMu   sync.Mutex
	lastErr error
}

type reqKind int

const (
	reqTrace reqKind = iota + 1
	reqRun
	reqFlush
)

type req struct {
	kind reqKind

	trace simulation.TraceEntry
	run   RunRow
	done  chan struct{}
}

// RunRow describes one simulation run.
type RunRow struct {
	RunID         string
	Scenario      string
	TerrainDigest string
	Seed          int64
	Ticks         uint64
	Final         mathx.Vec3
	Failure       string
	RecordedAt    string
}

type Stats struct {
	QueueDepth     int
	QueueCapacity  int
	DropTraceTotal uint64
	DropRunTotal   uint64

	// FailedTotal counts queued rows lost to a failed insert, begin or
	// commit, including rows rolled back with them.
	FailedTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
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

	insertPos, err := db.Prepare(`INSERT OR REPLACE INTO positions(run_id,tick,x,y,z,vx,vy,vz,on_ground) VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	insertRun, err := db.Prepare(`INSERT OR REPLACE INTO runs(run_id,scenario,terrain_digest,seed,ticks,final_x,final_y,final_z,failure,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		_ = insertPos.Close()
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:        db,
		insertPos: insertPos,
		insertRun: insertRun,
		// Planners record long runs; keep a deep queue so the simulation never waits on disk.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
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
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			terrain_digest TEXT NOT NULL,
			seed INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			final_x REAL NOT NULL,
			final_y REAL NOT NULL,
			final_z REAL NOT NULL,
			failure TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS positions (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL,
			vx REAL NOT NULL,
			vy REAL NOT NULL,
			vz REAL NOT NULL,
			on_ground INTEGER NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		_ = s.insertPos.Close()
		_ = s.insertRun.Close()
		err = s.db.Close()
	})
	return err
}

// WriteTrace queues one tick of a run. It never blocks; a full queue drops the
// entry and counts it in Stats.
func (s *SQLiteIndex) WriteTrace(e simulation.TraceEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTrace, trace: e}:
	default:
		s.dropTrace.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordRun(r RunRow) {
	if s == nil || s.closed.Load() || r.RunID == "" {
		return
	}
	if r.RecordedAt == "" {
		r.RecordedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case s.ch <- req{kind: reqRun, run: r}:
	default:
		s.dropRun.Add(1)
	}
}

// Flush waits until everything queued before the call is committed. It
// returns ErrWriteFailed if any row has been lost since the index was opened.
func (s *SQLiteIndex) Flush(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqFlush, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return s.writeErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLiteIndex) writeErr() error {
	n := s.failed.Load()
	if n == 0 {
		return nil
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return fmt.Errorf("%w: %d rows lost: %w", ErrWriteFailed, n, s.lastErr)
}

// fail counts n lost rows and remembers the cause.
func (s *SQLiteIndex) fail(n int, err error) {
	s.failed.Add(uint64(n))
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropTraceTotal: s.dropTrace.Load(),
		DropRunTotal:   s.dropRun.Load(),
		FailedTotal:    s.failed.Load(),
	}
}

// Runs lists recorded runs, oldest first.
func (s *SQLiteIndex) Runs(ctx context.Context) ([]RunRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id,scenario,terrain_digest,seed,ticks,final_x,final_y,final_z,failure,recorded_at
		FROM runs ORDER BY recorded_at, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var ticks int64
		if err := rows.Scan(&r.RunID, &r.Scenario, &r.TerrainDigest, &r.Seed, &ticks,
			&r.Final.X, &r.Final.Y, &r.Final.Z, &r.Failure, &r.RecordedAt); err != nil {
			return nil, err
		}
		r.Ticks = uint64(ticks)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Positions returns the indexed trace of one run in tick order.
func (s *SQLiteIndex) Positions(ctx context.Context, runID string) ([]simulation.TraceEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tick,x,y,z,vx,vy,vz,on_ground FROM positions WHERE run_id=? ORDER BY tick`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []simulation.TraceEntry
	for rows.Next() {
		e := simulation.TraceEntry{RunID: runID}
		var tick int64
		var onGround int
		if err := rows.Scan(&tick, &e.Pos.X, &e.Pos.Y, &e.Pos.Z, &e.Vel.X, &e.Vel.Y, &e.Vel.Z, &onGround); err != nil {
			return nil, err
		}
		e.Tick = uint64(tick)
		e.OnGround = onGround != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// VisitedBlocks counts the distinct block columns a run's trace passed through.
func (s *SQLiteIndex) VisitedBlocks(ctx context.Context, runID string) (int, error) {
	trace, err := s.Positions(ctx, runID)
	if err != nil {
		return 0, err
	}
	seen := map[[2]int]struct{}{}
	for _, e := range trace {
		b := e.Pos.Block()
		seen[[2]int{b.X, b.Z}] = struct{}{}
	}
	return len(seen), nil
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() error {
		if tx != nil {
			return nil
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
		return nil
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.fail(opCount, fmt.Errorf("commit: %w", err))
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	// rollback drops the open transaction; its rows count as lost together
	// with the one that failed.
	rollback := func(cause error) {
		if tx != nil {
			_ = tx.Rollback()
		}
		s.fail(opCount+1, cause)
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		if r.kind == reqFlush {
			commit()
			close(r.done)
			continue
		}
		if err := begin(); err != nil {
			s.fail(1, fmt.Errorf("begin: %w", err))
			continue
		}
		var err error
		switch r.kind {
		case reqTrace:
			e := r.trace
			onGround := 0
			if e.OnGround {
				onGround = 1
			}
			_, err = tx.Stmt(s.insertPos).Exec(e.RunID, int64(e.Tick),
				e.Pos.X, e.Pos.Y, e.Pos.Z, e.Vel.X, e.Vel.Y, e.Vel.Z, onGround)
		case reqRun:
			ru := r.run
			_, err = tx.Stmt(s.insertRun).Exec(ru.RunID, ru.Scenario, ru.TerrainDigest, ru.Seed, int64(ru.Ticks),
				ru.Final.X, ru.Final.Y, ru.Final.Z, ru.Failure, ru.RecordedAt)
		}
		if err != nil {
			rollback(err)
			continue
		}
		opCount++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
