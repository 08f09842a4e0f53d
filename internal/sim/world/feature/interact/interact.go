// Package interact keeps the agent's look-at hit result current and places
// held blocks.
package interact

import (
	"math"

	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/tuning"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

type Env interface {
	BlockDef(p mathx.BlockPos) catalogs.BlockDef
	ItemDef(item string) (catalogs.ItemDef, bool)
	PlaceBlock(p mathx.BlockPos, block string) error
}

// LookVector is the unit view direction for yaw and pitch in degrees.
func LookVector(l model.Look) mathx.Vec3 {
	ys, yc := math.Sincos(l.Yaw * math.Pi / 180)
	ps, pc := math.Sincos(l.Pitch * math.Pi / 180)
	return mathx.V(-ys*pc, -ps, yc*pc)
}

// Raycast walks the voxels along dir from origin and returns the first
// non-air block within maxDist.
func Raycast(env Env, origin, dir mathx.Vec3, maxDist float64) model.HitResult {
	if !origin.Finite() || !dir.Finite() {
		return model.HitResult{}
	}
	cur := origin.Block()
	if env.BlockDef(cur).ID != "AIR" {
		return model.HitResult{Kind: model.HitBlock, Pos: cur}
	}

	var (
		step   [3]int
		tMax   [3]float64
		tDelta [3]float64
	)
	axes := [...]mathx.Axis{mathx.AxisX, mathx.AxisY, mathx.AxisZ}
	for i, ax := range axes {
		d := dir.Axis(ax)
		o := origin.Axis(ax)
		c := float64(blockAxis(cur, ax))
		switch {
		case d > 0:
			step[i] = 1
			tMax[i] = (c + 1 - o) / d
			tDelta[i] = 1 / d
		case d < 0:
			step[i] = -1
			tMax[i] = (c - o) / d
			tDelta[i] = -1 / d
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	for {
		i := 0
		if tMax[1] < tMax[i] {
			i = 1
		}
		if tMax[2] < tMax[i] {
			i = 2
		}
		t := tMax[i]
		if t > maxDist {
			return model.HitResult{Kind: model.HitMiss}
		}
		var face mathx.BlockPos
		switch axes[i] {
		case mathx.AxisX:
			cur.X += step[i]
			face.X = -step[i]
		case mathx.AxisY:
			cur.Y += step[i]
			face.Y = -step[i]
		default:
			cur.Z += step[i]
			face.Z = -step[i]
		}
		tMax[i] += tDelta[i]
		if env.BlockDef(cur).ID != "AIR" {
			return model.HitResult{Kind: model.HitBlock, Pos: cur, Face: face, Distance: t}
		}
	}
}

func blockAxis(p mathx.BlockPos, a mathx.Axis) int {
	switch a {
	case mathx.AxisX:
		return p.X
	case mathx.AxisY:
		return p.Y
	default:
		return p.Z
	}
}

func unitFace(f mathx.BlockPos) bool {
	return mathx.ManhattanLen(f) == 1
}

// Step refreshes the hit result and handles a pending use request.
func Step(env Env, a *model.Agent, q *model.SignalQueue, tick uint64, w tuning.Work) {
	eye := a.Eye(w.EyeHeight)
	a.Interaction.Hit = Raycast(env, eye, LookVector(a.Look), w.Reach)

	req := a.Interaction.Pending
	if req == nil {
		return
	}
	a.Interaction.Pending = nil

	fail := func(p mathx.BlockPos, code string) {
		q.Emit(model.Signal{Tick: tick, Kind: model.SignalUseFailed, Entity: a.ID, Pos: p, Code: code})
	}
	if !unitFace(req.Face) {
		fail(req.Target, model.CodeBadRequest)
		return
	}
	if env.BlockDef(req.Target).ID == "AIR" {
		fail(req.Target, model.CodeInvalidTarget)
		return
	}
	if req.Target.Box().NearestDistance(eye) > w.Reach {
		fail(req.Target, model.CodeBlocked)
		return
	}
	held := a.Inventory.Held()
	def, ok := env.ItemDef(held.Item)
	if held.Empty() || !ok || def.PlaceAs == "" {
		fail(req.Target, model.CodeNoResource)
		return
	}
	place := req.Target.Add(req.Face)
	if env.BlockDef(place).Solid || place.Box().Intersects(a.Box()) {
		fail(place, model.CodeBlocked)
		return
	}
	if err := env.PlaceBlock(place, def.PlaceAs); err != nil {
		fail(place, model.CodeInvalidTarget)
		return
	}
	a.Inventory.TakeSelected()
	q.Emit(model.Signal{Tick: tick, Kind: model.SignalBlockPlaced, Entity: a.ID, Pos: place, Block: def.PlaceAs, Item: held.Item})
}
