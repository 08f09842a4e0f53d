package simulation_test

import (
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcraft.ai/pathsim/internal/sim/simtest"
	"voxelcraft.ai/pathsim/internal/sim/simulation"
	"voxelcraft.ai/pathsim/internal/sim/tuning"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
	"voxelcraft.ai/pathsim/internal/sim/world/terrain/store"
)

func TestNew_ZeroTicksKeepsTemplate(t *testing.T) {
	snap := simtest.FlatFloor(t)
	tmpl := model.NewTemplate(mathx.V(3.25, 70, -4.75))
	tmpl.Inventory.Add("DIRT", 5, 64)

	h := simtest.NewHarnessFromTemplate(t, snap, tmpl)
	env := h.Env

	assert.Equal(t, tmpl.Position, env.Position())
	assert.Equal(t, uint64(0), env.Ticks())
	a := env.Agent()
	assert.Equal(t, model.SimEntityID, a.ID)
	assert.Equal(t, uuid.Nil, a.UUID)
	assert.True(t, a.Local)
	assert.Equal(t, tmpl.Physics, a.Physics)
	assert.Equal(t, 5, a.Inventory.Count("DIRT"))
	assert.Equal(t, model.DefaultMovementSpeed, a.Attributes.MovementSpeed.Value())
	assert.Equal(t, simulation.InstanceName, a.Holder.Name)
	assert.Same(t, env.Instance(), a.Holder.Instance)
	assert.Empty(t, env.Signals())
	assert.Empty(t, h.Trace.Entries)

	// The agent never aliases the template.
	a.Inventory.Add("DIRT", 1, 64)
	assert.Equal(t, 5, tmpl.Inventory.Count("DIRT"))
}

func TestNewTemplate_IsPure(t *testing.T) {
	p := mathx.V(1, 2, 3)
	assert.Equal(t, model.NewTemplate(p), model.NewTemplate(p))
}

func TestSystems_FixedOrder(t *testing.T) {
	h := simtest.NewHarness(t, simtest.FlatFloor(t), simtest.Standing(0, 0),
		simulation.WithHook(simulation.Hook{Name: "watcher"}))
	assert.Equal(t, []string{
		simulation.StagePhysics,
		simulation.StageLifecycle,
		simulation.StageMovement,
		simulation.StageInventory,
		simulation.StageMining,
		simulation.StageInteraction,
		simulation.StageBehavior,
		simulation.StagePathing,
		"hook:watcher",
	}, h.Env.Systems())
}

func TestTick_Monotonic(t *testing.T) {
	h := simtest.NewHarness(t, simtest.FlatFloor(t), simtest.Standing(0, 0))
	for i := 1; i <= 25; i++ {
		require.NoError(t, h.Env.Tick())
		require.Equal(t, uint64(i), h.Env.Ticks())
	}
	require.Len(t, h.Trace.Entries, 25)
	for i, e := range h.Trace.Entries {
		assert.Equal(t, uint64(i+1), e.Tick)
		assert.Equal(t, h.Env.RunID().String(), e.RunID)
	}
}

func TestTick_RestIsFixedPoint(t *testing.T) {
	start := simtest.Standing(0, 0)
	h := simtest.NewHarness(t, simtest.FlatFloor(t), start)

	h.Step(200)

	want := float64(simtest.GroundY+1) + model.DefaultHeight/2
	for _, p := range h.Positions() {
		require.Equal(t, start, p)
		require.Equal(t, want, p.Y)
	}
	assert.True(t, h.Env.Agent().Physics.OnGround)
}

func TestTick_FallLandsFlush(t *testing.T) {
	h := simtest.NewHarness(t, simtest.FlatFloor(t), mathx.V(0.5, 75.9, 0.5))

	h.Settle(200)

	assert.Equal(t, simtest.Standing(0, 0), h.Env.Position())
	assert.True(t, h.Saw(model.SignalLanded))
	assert.InDelta(t, 10.0, h.Env.Agent().Physics.LastFall, 1e-9)

	// Stays put afterwards.
	assert.Equal(t, simtest.Standing(0, 0), h.Step(50))
}

func TestTick_FastFallDoesNotTunnel(t *testing.T) {
	h := simtest.NewHarness(t, simtest.FlatFloor(t), mathx.V(0.5, 120, 0.5))
	require.NoError(t, h.Env.SetVelocity(mathx.V(0, -200, 0)))

	h.Step(1)

	assert.Equal(t, simtest.Standing(0, 0), h.Env.Position())
	assert.True(t, h.Env.Agent().Physics.OnGround)
}

func TestTick_WallStopsAgent(t *testing.T) {
	snap := simtest.NewTerrain(t, 1).
		Floor(simtest.GroundY, "STONE").
		WallX(3, -4, 4, 3, "STONE").
		Build()
	h := simtest.NewHarness(t, snap, simtest.Standing(0, 0))
	require.NoError(t, h.Env.SetLook(-90, 0)) // face +X
	h.Env.SetIntent(1, 0, true, false)

	h.Step(100)

	limit := 3 - model.DefaultWidth/2
	for _, p := range h.Positions() {
		require.LessOrEqual(t, p.X, limit+mathx.Epsilon)
	}
	assert.InDelta(t, limit, h.Env.Position().X, 1e-9)
	assert.True(t, h.Env.Agent().Physics.HorizontalCollision)
}

func TestTick_FastHorizontalMoveDoesNotTunnel(t *testing.T) {
	snap := simtest.NewTerrain(t, 1).
		Floor(simtest.GroundY, "STONE").
		WallX(3, -4, 4, 3, "STONE").
		Build()
	h := simtest.NewHarness(t, snap, simtest.Standing(0, 0))
	require.NoError(t, h.Env.SetVelocity(mathx.V(40, 0, 0)))

	h.Step(1)

	assert.InDelta(t, 3-model.DefaultWidth/2, h.Env.Position().X, 1e-9)
	assert.Zero(t, h.Env.Agent().Physics.Velocity.X)
}

func TestJump_RequestWhileFallingWaitsForGround(t *testing.T) {
	rest := simtest.Standing(0, 0)
	h := simtest.NewHarness(t, simtest.FlatFloor(t), rest.Add(mathx.V(0, 2, 0)))
	h.Env.Jump()

	h.Step(1)
	require.False(t, h.Env.Agent().Physics.OnGround)
	assert.True(t, h.Env.Agent().Behavior.JumpRequested)

	h.Settle(100)
	assert.False(t, h.Env.Agent().Behavior.JumpRequested)
	assert.Greater(t, h.Env.Agent().Physics.Velocity.Y, 0.0)
	assert.Greater(t, h.Step(1).Y, rest.Y)
}

func TestJump_HeldIntentKeepsJumping(t *testing.T) {
	h := simtest.NewHarness(t, simtest.FlatFloor(t), simtest.Standing(0, 0))
	h.Env.SetIntent(0, 0, false, true)
	h.Env.Jump()

	landings := 0
	for i := 0; i < 60; i++ {
		h.Step(1)
		if h.Saw(model.SignalLanded) {
			landings++
		}
	}
	assert.True(t, h.Env.Agent().State.Jumping)
	assert.GreaterOrEqual(t, landings, 3)
}

func TestIsolation_SteeringOneAgentLeavesOtherAlone(t *testing.T) {
	snap := simtest.FlatFloor(t)
	const ticks = 40
	drive := func(env *simulation.Environment) {
		env.SetLook(-45, 0)
		env.SetIntent(1, 0, false, false)
	}

	control := simtest.NewHarness(t, snap, simtest.Standing(0, 0))
	drive(control.Env)
	control.Step(ticks)

	other := simtest.NewHarness(t, snap, simtest.Standing(0, 0))
	busy := simtest.NewHarness(t, snap, simtest.Standing(0, 0))
	drive(other.Env)
	require.NoError(t, busy.Env.SetVelocity(mathx.V(0.3, 0.4, -0.2)))
	busy.Env.SetIntent(-1, 1, true, true)
	for i := 0; i < ticks; i++ {
		if i == ticks/2 {
			require.NoError(t, busy.Env.Teleport(simtest.Standing(5, 5)))
		}
		busy.Step(1)
		other.Step(1)
	}

	assert.Equal(t, control.Positions(), other.Positions())
	assert.NotEqual(t, other.Positions(), busy.Positions())
}

func TestControl_RejectsNonFiniteInput(t *testing.T) {
	h := simtest.NewHarness(t, simtest.FlatFloor(t), simtest.Standing(0, 0))
	nan := mathx.V(math.NaN(), 65, 0)
	inf := mathx.V(math.Inf(1), 0, 0)

	assert.ErrorIs(t, h.Env.Teleport(nan), simulation.ErrNotFinite)
	assert.ErrorIs(t, h.Env.SetVelocity(inf), simulation.ErrNotFinite)
	assert.ErrorIs(t, h.Env.LookAt(nan), simulation.ErrNotFinite)
	assert.ErrorIs(t, h.Env.SetLook(math.NaN(), 0), simulation.ErrNotFinite)

	assert.Equal(t, simtest.Standing(0, 0), h.Step(5))
	assert.Zero(t, h.Env.Agent().Physics.Velocity)
	assert.Equal(t, model.Look{}, h.Env.Agent().Look)
}

func script(env *simulation.Environment, tick uint64) {
	switch tick {
	case 0:
		env.SetLook(-60, 10)
		env.SetIntent(1, 0.3, true, false)
	case 20:
		env.Jump()
	case 45:
		env.SetIntent(-1, -1, false, false)
	case 80:
		env.SetIntent(0, 0, false, false)
		env.StartMining(mathx.BlockPos{X: 0, Y: simtest.GroundY, Z: 3})
	}
}

func runScript(t *testing.T, snap *store.ChunkStore, runID uuid.UUID, ticks int) []simulation.TraceEntry {
	t.Helper()
	h := simtest.NewHarness(t, snap, simtest.Standing(0, 0), simulation.WithRunID(runID))
	for i := 0; i < ticks; i++ {
		script(h.Env, h.Env.Ticks())
		h.Step(1)
	}
	return h.Trace.Entries
}

func TestTick_Deterministic(t *testing.T) {
	snap := simtest.NewTerrain(t, 1).
		Floor(simtest.GroundY, "GRASS").
		Fill(mathx.BlockPos{X: 4, Y: simtest.GroundY, Z: -3}, mathx.BlockPos{X: 8, Y: simtest.GroundY, Z: 3}, "ICE").
		Pillar(6, -2, 1, "STONE").
		Build()
	id := uuid.New()

	first := runScript(t, snap, id, 150)
	second := runScript(t, snap, id, 150)
	require.Len(t, first, 150)
	assert.Equal(t, first, second)
}

func TestTick_DeterministicAcrossGoroutines(t *testing.T) {
	snap := simtest.FlatFloor(t)
	const runs = 4

	traces := make([][]simulation.TraceEntry, runs)
	errs := make([]error, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var rec simulation.TraceRecorder
			env, err := simulation.New(snap, model.NewTemplate(simtest.Standing(0, 0)),
				simulation.WithRunID(uuid.Nil), simulation.WithTraceSink(&rec))
			if err != nil {
				errs[i] = err
				return
			}
			defer env.Close()
			for tick := 0; tick < 120; tick++ {
				script(env, env.Ticks())
				if err := env.Tick(); err != nil {
					errs[i] = err
					return
				}
			}
			traces[i] = rec.Entries
		}(i)
	}
	wg.Wait()

	for i := 0; i < runs; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, traces[0], traces[i])
	}
}

func TestTick_MiningIsIsolated(t *testing.T) {
	snap := simtest.NewTerrain(t, 1).Floor(simtest.GroundY, "DIRT").Build()
	digest := snap.Digest()
	target := mathx.BlockPos{X: 2, Y: simtest.GroundY, Z: 0}
	dirt := snap.GetBlock(target)

	miner := simtest.NewHarness(t, snap, simtest.Standing(0, 0))
	other := simtest.NewHarness(t, snap, simtest.Standing(0, 0))

	miner.Env.StartMining(target)
	collected := miner.StepUntil(60, func(e *simulation.Environment) bool {
		return e.Agent().Inventory.Count("DIRT") == 1
	})
	require.True(t, collected, "drop was not collected")
	other.Step(int(miner.Env.Ticks()))

	assert.Equal(t, uint16(0), miner.Env.Instance().Block(target))
	assert.Equal(t, dirt, other.Env.Instance().Block(target))
	assert.Equal(t, dirt, snap.GetBlock(target))
	assert.Equal(t, digest, snap.Digest())
	assert.Zero(t, other.Env.Instance().OverlayLen())
}

func TestTick_PlaceBlock(t *testing.T) {
	h := simtest.NewHarness(t, simtest.FlatFloor(t), simtest.Standing(0, 0))
	require.Zero(t, h.Env.GiveItem("DIRT", 2))

	floor := mathx.BlockPos{X: 2, Y: simtest.GroundY, Z: 0}
	h.Env.UseItemOn(floor, mathx.BlockPos{Y: 1})
	h.Step(1)

	placed := floor.Add(mathx.BlockPos{Y: 1})
	assert.True(t, h.Saw(model.SignalBlockPlaced))
	assert.Equal(t, "DIRT", h.Env.Instance().BlockDef(placed).ID)
	assert.Equal(t, 1, h.Env.Agent().Inventory.Count("DIRT"))

	// The spot under the agent's own body is refused.
	h.Env.UseItemOn(mathx.BlockPos{X: 0, Y: simtest.GroundY, Z: 0}, mathx.BlockPos{Y: 1})
	h.Step(1)
	require.Len(t, h.Env.Signals(), 1)
	s := h.Env.Signals()[0]
	assert.Equal(t, model.SignalUseFailed, s.Kind)
	assert.Equal(t, model.CodeBlocked, s.Code)
}

func TestSelectSlot_Invalid(t *testing.T) {
	h := simtest.NewHarness(t, simtest.FlatFloor(t), simtest.Standing(0, 0))
	h.Env.SelectSlot(12)
	h.Step(1)

	require.Len(t, h.Env.Signals(), 1)
	assert.Equal(t, model.CodeBadRequest, h.Env.Signals()[0].Code)
	assert.Equal(t, 0, h.Env.Agent().Inventory.Selected)

	h.Env.SelectSlot(4)
	h.Step(1)
	assert.Equal(t, 4, h.Env.Agent().Inventory.Selected)
}

func TestGoTo_ReachesGoal(t *testing.T) {
	snap := simtest.NewTerrain(t, 1).
		Floor(simtest.GroundY, "STONE").
		WallX(3, -2, 2, 2, "STONE").
		Build()
	h := simtest.NewHarness(t, snap, simtest.Standing(0, 0))
	goal := mathx.BlockPos{X: 6, Y: simtest.GroundY + 1, Z: 0}

	require.NoError(t, h.Env.GoTo(goal))
	done := h.StepUntil(600, func(e *simulation.Environment) bool {
		return !e.Agent().Pathing.Active
	})
	require.True(t, done, "route did not finish")
	assert.True(t, h.Saw(model.SignalPathDone))

	f := h.Env.Agent().Feet()
	assert.InDelta(t, 6.5, f.X, tuning.DefaultNodeTolerance)
	assert.InDelta(t, 0.5, f.Z, tuning.DefaultNodeTolerance)
	assert.False(t, h.Env.Agent().Pathing.Active)
}

func TestGoTo_NoRoute(t *testing.T) {
	h := simtest.NewHarness(t, simtest.FlatFloor(t), simtest.Standing(0, 0))
	err := h.Env.GoTo(mathx.BlockPos{X: 5, Y: simtest.GroundY + 10, Z: 0})
	assert.ErrorIs(t, err, simulation.ErrNoRoute)
}
