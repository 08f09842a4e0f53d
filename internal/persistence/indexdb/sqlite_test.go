package indexdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcraft.ai/pathsim/internal/sim/simulation"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

func TestSQLiteIndexRecordsRunAndPositions(t *testing.T) {
	ctx := context.Background()
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "runs.sqlite"))
	require.NoError(t, err)
	defer idx.Close()

	trace := []simulation.TraceEntry{
		{RunID: "r1", Tick: 1, Pos: mathx.V(0.5, 2, 0.5), Vel: mathx.V(0, -0.08, 0)},
		{RunID: "r1", Tick: 2, Pos: mathx.V(1.5, 1.9, 0.5), OnGround: true},
		{RunID: "r2", Tick: 1, Pos: mathx.V(9, 9, 9)},
	}
	for _, e := range trace {
		require.NoError(t, idx.WriteTrace(e))
	}
	idx.RecordRun(RunRow{RunID: "r1", Scenario: "walk", TerrainDigest: "abc", Seed: 7, Ticks: 2, Final: mathx.V(1.5, 1.9, 0.5)})
	require.NoError(t, idx.Flush(ctx))

	got, err := idx.Positions(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, trace[:2], got)

	runs, err := idx.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "walk", runs[0].Scenario)
	assert.Equal(t, uint64(2), runs[0].Ticks)
	assert.Equal(t, mathx.V(1.5, 1.9, 0.5), runs[0].Final)
	assert.NotEmpty(t, runs[0].RecordedAt)

	n, err := idx.VisitedBlocks(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLiteIndexQueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTrace}

	require.NoError(t, s.WriteTrace(simulation.TraceEntry{RunID: "r", Tick: 2}))
	s.RecordRun(RunRow{RunID: "r"})

	st := s.Stats()
	assert.Equal(t, Stats{QueueDepth: 1, QueueCapacity: 1, DropTraceTotal: 1, DropRunTotal: 1}, st)
}

func TestSQLiteIndexCountsRolledBackRows(t *testing.T) {
	ctx := context.Background()
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "runs.sqlite"))
	require.NoError(t, err)
	defer idx.Close()
	require.NoError(t, idx.Flush(ctx))

	_, err = idx.db.ExecContext(ctx, `DROP TABLE positions`)
	require.NoError(t, err)

	// The run row shares a transaction with the failing position insert.
	idx.RecordRun(RunRow{RunID: "r1", Scenario: "walk"})
	require.NoError(t, idx.WriteTrace(simulation.TraceEntry{RunID: "r1", Tick: 1}))
	err = idx.Flush(ctx)
	require.ErrorIs(t, err, ErrWriteFailed)
	assert.Equal(t, uint64(2), idx.Stats().FailedTotal)

	runs, err := idx.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSQLiteIndexIgnoresWritesAfterClose(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "runs.sqlite"))
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	assert.NoError(t, idx.WriteTrace(simulation.TraceEntry{RunID: "r"}))
	assert.NoError(t, idx.Flush(context.Background()))
}
