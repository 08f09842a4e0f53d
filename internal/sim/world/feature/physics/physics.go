// Package physics integrates agent motion against solid blocks.
//
// Position is the center of the body. Motion is swept one axis at a time in
// Y, X, Z order; a blocked axis snaps the body flush against the face that
// stopped it, so an agent resting on a surface returns to the exact same
// coordinate every tick.
package physics

import (
	"math"

	"voxelcraft.ai/pathsim/internal/sim/tuning"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

type Env interface {
	Solid(p mathx.BlockPos) bool
	Slipperiness(p mathx.BlockPos) float64
	ChunkLoaded(p mathx.BlockPos) bool
}

// Friction is the horizontal velocity factor for the block under the agent.
func Friction(env Env, a *model.Agent, air float64) float64 {
	if !a.Physics.OnGround {
		return air
	}
	return env.Slipperiness(BlockBelow(a)) * air
}

// BlockBelow is the block the agent stands on.
func BlockBelow(a *model.Agent) mathx.BlockPos {
	f := a.Feet()
	return mathx.BlockPos{X: mathx.FloorInt(f.X), Y: mathx.FloorInt(f.Y - 0.5), Z: mathx.FloorInt(f.Z)}
}

// Step advances one agent by one tick. Agents in chunks missing from the
// terrain stay frozen in place.
func Step(env Env, a *model.Agent, t tuning.Physics) {
	if !env.ChunkLoaded(a.Position.Block()) {
		return
	}
	ph := &a.Physics
	friction := Friction(env, a, t.AirFriction)

	v := ph.Velocity
	v.X = cutoff(v.X, t.VelocityCutoff)
	v.Y = cutoff(v.Y, t.VelocityCutoff)
	v.Z = cutoff(v.Z, t.VelocityCutoff)

	res := Move(env, a.Position, ph.Dimensions, v)
	a.Position = res.Pos

	ph.HorizontalCollision = res.Blocked[mathx.AxisX] || res.Blocked[mathx.AxisZ]
	ph.VerticalCollision = res.Blocked[mathx.AxisY]
	ph.OnGround = res.Blocked[mathx.AxisY] && v.Y < 0

	if res.Blocked[mathx.AxisX] {
		v.X = 0
	}
	if res.Blocked[mathx.AxisY] {
		v.Y = 0
	}
	if res.Blocked[mathx.AxisZ] {
		v.Z = 0
	}

	switch {
	case ph.OnGround:
		ph.LastFall = 0
		if ph.FallDistance > 0 {
			ph.LastFall = ph.FallDistance - res.Moved.Y
		}
		ph.FallDistance = 0
	case res.Moved.Y < 0:
		ph.FallDistance -= res.Moved.Y
	}

	v.Y = (v.Y - t.Gravity) * t.VerticalDrag
	v.X *= friction
	v.Z *= friction
	ph.Velocity = v
}

func cutoff(v, min float64) float64 {
	if math.Abs(v) < min {
		return 0
	}
	return v
}

// MoveResult is the outcome of sweeping a body through the world.
type MoveResult struct {
	Pos     mathx.Vec3
	Moved   mathx.Vec3
	Blocked [3]bool
}

// Move sweeps a body of the given dimensions centered at pos by d.
func Move(env Env, pos mathx.Vec3, dim model.Dimensions, d mathx.Vec3) MoveResult {
	half := mathx.V(dim.Width/2, dim.Height/2, dim.Width/2)
	box := mathx.BoxAround(pos, dim.Width, dim.Height)

	var solids []mathx.AABB
	for _, p := range box.Stretch(d).Blocks() {
		if env.Solid(p) {
			solids = append(solids, p.Box())
		}
	}

	start := pos
	var blocked [3]bool
	for _, axis := range [...]mathx.Axis{mathx.AxisY, mathx.AxisX, mathx.AxisZ} {
		delta := d.Axis(axis)
		if delta == 0 {
			continue
		}
		face, hit := sweepAxis(box, solids, axis, delta)
		if hit {
			blocked[axis] = true
			if delta > 0 {
				pos = pos.WithAxis(axis, face-half.Axis(axis))
			} else {
				pos = pos.WithAxis(axis, face+half.Axis(axis))
			}
		} else {
			pos = pos.WithAxis(axis, pos.Axis(axis)+delta)
		}
		box = mathx.BoxAround(pos, dim.Width, dim.Height)
	}
	return MoveResult{Pos: pos, Moved: pos.Sub(start), Blocked: blocked}
}

// sweepAxis finds the nearest face that stops box moving delta along axis.
// Boxes already overlapping the body are ignored so a stuck agent can move
// out of them.
func sweepAxis(box mathx.AABB, solids []mathx.AABB, axis mathx.Axis, delta float64) (float64, bool) {
	var (
		face float64
		hit  bool
	)
	for _, s := range solids {
		if !box.OverlapsExcept(s, axis) {
			continue
		}
		if delta > 0 {
			f := s.Min.Axis(axis)
			lead := box.Max.Axis(axis)
			if f < lead-mathx.Epsilon || f > lead+delta {
				continue
			}
			if !hit || f < face {
				face, hit = f, true
			}
		} else {
			f := s.Max.Axis(axis)
			lead := box.Min.Axis(axis)
			if f > lead+mathx.Epsilon || f < lead+delta {
				continue
			}
			if !hit || f > face {
				face, hit = f, true
			}
		}
	}
	return face, hit
}
