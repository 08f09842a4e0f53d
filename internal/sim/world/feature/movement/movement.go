// Package movement turns the agent's intent into velocity for the next
// physics step.
package movement

import (
	"math"

	"voxelcraft.ai/pathsim/internal/sim/tuning"
	"voxelcraft.ai/pathsim/internal/sim/world/feature/physics"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

// SprintModifier is the movement speed modifier active while sprinting.
const SprintModifier = "sprinting"

type Env interface {
	physics.Env
}

// Step applies walking, sprinting and jumping. A jump happens while the jump
// intent is held or a one-shot request is pending, and only from the ground.
// airFriction is the physics
// air friction used to derive ground acceleration from block slipperiness.
func Step(env Env, a *model.Agent, m tuning.Movement, airFriction float64) {
	st := &a.State
	speed := &a.Attributes.MovementSpeed
	if st.Sprinting && st.Forward > 0 {
		speed.SetModifier(SprintModifier, m.SprintMultiplier-1)
	} else {
		speed.RemoveModifier(SprintModifier)
	}
	sprinting := speed.Modifiers[SprintModifier] != 0

	if a.Physics.OnGround && (st.Jumping || a.Behavior.JumpRequested) {
		jump(a, m, sprinting)
		a.Behavior.JumpRequested = false
	}

	var accel float64
	if a.Physics.OnGround {
		f := physics.Friction(env, a, airFriction)
		accel = speed.Value() * m.GroundAccelFactor / (f * f * f)
	} else if sprinting {
		accel = m.SprintAirAcceleration
	} else {
		accel = m.AirAcceleration
	}

	dv := Relative(st.Strafe, st.Forward, accel, a.Look.Yaw)
	a.Physics.Velocity = a.Physics.Velocity.Add(dv)
}

// Relative converts strafe/forward input into a world-space velocity change
// for an entity facing yaw degrees. Input longer than 1 is normalized.
func Relative(strafe, forward, accel, yaw float64) mathx.Vec3 {
	strafe = mathx.Clamp(strafe, -1, 1)
	forward = mathx.Clamp(forward, -1, 1)
	l := strafe*strafe + forward*forward
	if l < 1e-7 {
		return mathx.Vec3{}
	}
	l = math.Sqrt(l)
	if l < 1 {
		l = 1
	}
	strafe *= accel / l
	forward *= accel / l
	sin, cos := math.Sincos(yaw * math.Pi / 180)
	return mathx.V(strafe*cos-forward*sin, 0, forward*cos+strafe*sin)
}

func jump(a *model.Agent, m tuning.Movement, sprinting bool) {
	v := &a.Physics.Velocity
	v.Y = m.JumpPower
	if sprinting {
		sin, cos := math.Sincos(a.Look.Yaw * math.Pi / 180)
		v.X -= sin * m.SprintJumpBoost
		v.Z += cos * m.SprintJumpBoost
	}
}
