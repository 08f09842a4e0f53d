package lifecycle

import (
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
	"voxelcraft.ai/pathsim/internal/sim/world/terrain/store"
)

type Env interface {
	ChunkLoaded(p mathx.BlockPos) bool
}

// Step refreshes the agent's bookkeeping after physics moved it.
func Step(env Env, a *model.Agent, q *model.SignalQueue, tick uint64) {
	lc := &a.Lifecycle
	p := a.Position.Block()
	k := store.KeyOf(p.X, p.Z)
	chunk := [2]int{k.CX, k.CZ}
	if lc.TicksAlive > 0 && chunk != lc.Chunk {
		q.Emit(model.Signal{Tick: tick, Kind: model.SignalChunkChanged, Entity: a.ID, Pos: p})
	}
	lc.Chunk = chunk
	lc.Loaded = env.ChunkLoaded(p)

	if a.Physics.OnGround && !lc.WasOnGround && a.Physics.LastFall > 0 {
		q.Emit(model.Signal{Tick: tick, Kind: model.SignalLanded, Entity: a.ID, Pos: p, Value: a.Physics.LastFall})
	}
	lc.WasOnGround = a.Physics.OnGround
	lc.LastPos = a.Position
	lc.TicksAlive++
}
