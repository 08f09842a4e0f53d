package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

func TestLookAngles(t *testing.T) {
	eye := mathx.V(0, 0, 0)
	l := LookAngles(eye, mathx.V(1, 0, 0))
	assert.InDelta(t, -90, l.Yaw, 1e-9)
	assert.InDelta(t, 0, l.Pitch, 1e-9)

	l = LookAngles(eye, mathx.V(0, 0, 5))
	assert.InDelta(t, 0, l.Yaw, 1e-9)

	l = LookAngles(eye, mathx.V(0, -1, 1))
	assert.InDelta(t, 45, l.Pitch, 1e-9)
}

func TestStepLookIsOneShot(t *testing.T) {
	a := &model.Agent{}
	model.NewTemplate(mathx.V(0.5, 0.9, 0.5)).MergeInto(a)
	target := mathx.V(10.5, 1.62, 0.5)
	a.Behavior.LookTarget = &target

	Step(a, 1.62)
	assert.InDelta(t, -90, a.Look.Yaw, 1e-9)
	assert.Nil(t, a.Behavior.LookTarget)
}

func TestStepLeavesJumpStateAlone(t *testing.T) {
	a := &model.Agent{}
	a.Behavior.JumpRequested = true
	a.State.Jumping = true

	Step(a, 1.62)
	Step(a, 1.62)
	assert.True(t, a.Behavior.JumpRequested)
	assert.True(t, a.State.Jumping)
}
