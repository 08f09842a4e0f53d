package inventory

import "voxelcraft.ai/pathsim/internal/sim/world/kernel/model"

type Env interface {
	MaxStack(item string) int
}

// Step applies a requested hotbar change, then collects the drops of blocks
// this agent mined during the previous tick.
func Step(env Env, a *model.Agent, q *model.SignalQueue, tick uint64) {
	inv := &a.Inventory
	if inv.PendingSelect != nil {
		slot := *inv.PendingSelect
		inv.PendingSelect = nil
		if slot < 0 || slot >= model.HotbarSlots {
			q.Emit(model.Signal{Tick: tick, Kind: model.SignalUseFailed, Entity: a.ID, Value: float64(slot), Code: model.CodeBadRequest})
		} else {
			inv.Selected = slot
		}
	}

	for _, s := range q.Of(model.SignalBlockMined) {
		if s.Entity != a.ID || s.Item == "" {
			continue
		}
		count := max(s.Count, 1)
		left := inv.Add(s.Item, count, env.MaxStack(s.Item))
		if got := count - left; got > 0 {
			q.Emit(model.Signal{Tick: tick, Kind: model.SignalItemCollected, Entity: a.ID, Pos: s.Pos, Item: s.Item, Count: got})
		}
		if left > 0 {
			q.Emit(model.Signal{Tick: tick, Kind: model.SignalInventoryFull, Entity: a.ID, Pos: s.Pos, Item: s.Item, Count: left, Code: model.CodeNoResource})
		}
	}
}
