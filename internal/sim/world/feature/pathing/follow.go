// Package pathing drives the agent along a route of block waypoints and
// plans such routes over terrain.
package pathing

import (
	"math"

	"voxelcraft.ai/pathsim/internal/sim/tuning"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

// Start replaces the agent's route.
func Start(a *model.Agent, nodes []mathx.BlockPos) {
	a.Pathing = model.Pathing{
		Nodes:   append([]mathx.BlockPos(nil), nodes...),
		Active:  len(nodes) > 0,
		LastPos: a.Position,
	}
}

// Reached reports whether the agent's feet are at node.
func Reached(a *model.Agent, node mathx.BlockPos, tolerance float64) bool {
	f := a.Feet()
	c := node.Center()
	if math.Abs(f.X-c.X) > tolerance || math.Abs(f.Z-c.Z) > tolerance {
		return false
	}
	return mathx.FloorInt(f.Y+mathx.Epsilon) == node.Y
}

// Step consumes reached waypoints and steers toward the next one. It reports
// PathDone after the last node and PathStuck when the agent stops making
// progress.
func Step(a *model.Agent, q *model.SignalQueue, tick uint64, p tuning.Pathing) {
	pa := &a.Pathing
	if !pa.Active {
		return
	}
	for pa.Index < len(pa.Nodes) && Reached(a, pa.Nodes[pa.Index], p.NodeTolerance) {
		pa.Index++
	}
	if pa.Index >= len(pa.Nodes) {
		stop(a, q, tick, model.SignalPathDone, "")
		return
	}

	if a.Position.Sub(pa.LastPos).Len() < p.StuckEpsilon {
		pa.StuckTicks++
	} else {
		pa.StuckTicks = 0
	}
	pa.LastPos = a.Position
	if pa.StuckTicks >= p.StuckTicks {
		stop(a, q, tick, model.SignalPathStuck, model.CodeBlocked)
		return
	}

	node := pa.Nodes[pa.Index]
	c := node.Center()
	dx, dz := c.X-a.Position.X, c.Z-a.Position.Z
	if dx*dx+dz*dz > p.NodeTolerance*p.NodeTolerance {
		a.Look.Yaw = mathx.WrapDegrees(-math.Atan2(dx, dz) * 180 / math.Pi)
		a.State.Forward = 1
	} else {
		a.State.Forward = 0
	}
	a.State.Strafe = 0
	feetBlock := mathx.FloorInt(a.Feet().Y + mathx.Epsilon)
	a.State.Jumping = node.Y > feetBlock && a.Physics.OnGround
}

func stop(a *model.Agent, q *model.SignalQueue, tick uint64, kind model.SignalKind, code string) {
	pa := &a.Pathing
	var last mathx.BlockPos
	if n := len(pa.Nodes); n > 0 {
		last = pa.Nodes[min(pa.Index, n-1)]
	}
	q.Emit(model.Signal{Tick: tick, Kind: kind, Entity: a.ID, Pos: last, Value: float64(pa.Index), Code: code})
	pa.Active = false
	a.State = model.PhysicsState{}
}
