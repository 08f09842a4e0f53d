package mining

import (
	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/tuning"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

type Env interface {
	BlockDef(p mathx.BlockPos) catalogs.BlockDef
	ItemDef(item string) (catalogs.ItemDef, bool)
	BreakBlock(p mathx.BlockPos) error
}

// InReach reports whether any part of the block is within reach of the eye.
func InReach(a *model.Agent, p mathx.BlockPos, w tuning.Work) bool {
	return p.Box().NearestDistance(a.Eye(w.EyeHeight)) <= w.Reach
}

// Step advances the current mining target. A finished block is removed from
// the instance and reported with its drop; an invalid target aborts.
func Step(env Env, a *model.Agent, q *model.SignalQueue, tick uint64, w tuning.Work) error {
	m := &a.Mining
	if m.Target == nil {
		return nil
	}
	p := *m.Target
	block := env.BlockDef(p)

	abort := func(code string) error {
		q.Emit(model.Signal{Tick: tick, Kind: model.SignalMiningAborted, Entity: a.ID, Pos: p, Block: block.ID, Code: code})
		*m = model.Mining{}
		return nil
	}
	switch {
	case block.ID == "AIR" || !block.Breakable:
		return abort(model.CodeInvalidTarget)
	case !InReach(a, p, w):
		return abort(model.CodeBlocked)
	}

	held, _ := env.ItemDef(a.Inventory.Held().Item)
	tier := EffectiveTier(block, held)
	m.Progress += ProgressPerTick(block, tier, w.HarvestDivisor, w.NoHarvestDivisor)
	if m.Progress < 1-mathx.Epsilon {
		return nil
	}

	if err := env.BreakBlock(p); err != nil {
		return err
	}
	drop := ""
	if Harvestable(block, tier) {
		drop = block.DropsItem
	}
	q.Emit(model.Signal{Tick: tick, Kind: model.SignalBlockMined, Entity: a.ID, Pos: p, Block: block.ID, Item: drop, Count: 1})
	*m = model.Mining{}
	return nil
}
