package movement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"voxelcraft.ai/pathsim/internal/sim/tuning"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

type flatEnv struct{}

func (flatEnv) Solid(p mathx.BlockPos) bool         { return p.Y < 0 }
func (flatEnv) Slipperiness(mathx.BlockPos) float64 { return 0.6 }
func (flatEnv) ChunkLoaded(mathx.BlockPos) bool     { return true }

func onGround() *model.Agent {
	a := &model.Agent{}
	model.NewTemplate(mathx.V(0.5, 0.9, 0.5)).MergeInto(a)
	a.Physics.OnGround = true
	return a
}

func TestRelativeFollowsYaw(t *testing.T) {
	d := Relative(0, 1, 1, 0)
	assert.InDelta(t, 0, d.X, 1e-12)
	assert.InDelta(t, 1, d.Z, 1e-12)

	d = Relative(0, 1, 1, -90)
	assert.InDelta(t, 1, d.X, 1e-12)
	assert.InDelta(t, 0, d.Z, 1e-12)

	// Diagonal input is normalized.
	d = Relative(1, 1, 1, 0)
	assert.InDelta(t, 1, d.HorizontalLen(), 1e-12)
	assert.Equal(t, mathx.Vec3{}, Relative(0, 0, 1, 0))
}

func TestGroundAccelerationEqualsSpeedOnDefaultBlock(t *testing.T) {
	a := onGround()
	a.State.Forward = 1
	Step(flatEnv{}, a, tuning.Defaults().Movement, tuning.DefaultAirFriction)
	assert.InDelta(t, 0.1, a.Physics.Velocity.Z, 1e-6)
}

func TestSprintJump(t *testing.T) {
	a := onGround()
	a.Look.Yaw = -90
	a.State = model.PhysicsState{Forward: 1, Sprinting: true, Jumping: true}
	m := tuning.Defaults().Movement
	Step(flatEnv{}, a, m, tuning.DefaultAirFriction)

	assert.Equal(t, m.JumpPower, a.Physics.Velocity.Y)
	assert.InDelta(t, m.SprintJumpBoost+0.13, a.Physics.Velocity.X, 1e-6)
	assert.Contains(t, a.Attributes.MovementSpeed.Modifiers, SprintModifier)

	a.State.Sprinting = false
	a.State.Jumping = false
	Step(flatEnv{}, a, m, tuning.DefaultAirFriction)
	assert.NotContains(t, a.Attributes.MovementSpeed.Modifiers, SprintModifier)
}

func TestJumpRequestWaitsForGround(t *testing.T) {
	m := tuning.Defaults().Movement
	a := onGround()
	a.Physics.OnGround = false
	a.Behavior.JumpRequested = true

	Step(flatEnv{}, a, m, tuning.DefaultAirFriction)
	assert.Zero(t, a.Physics.Velocity.Y)
	assert.True(t, a.Behavior.JumpRequested)

	a.Physics.OnGround = true
	Step(flatEnv{}, a, m, tuning.DefaultAirFriction)
	assert.Equal(t, m.JumpPower, a.Physics.Velocity.Y)
	assert.False(t, a.Behavior.JumpRequested)
	assert.False(t, a.State.Jumping)
}

func TestNoJumpInAir(t *testing.T) {
	a := onGround()
	a.Physics.OnGround = false
	a.State.Jumping = true
	Step(flatEnv{}, a, tuning.Defaults().Movement, tuning.DefaultAirFriction)
	assert.Zero(t, a.Physics.Velocity.Y)
}
