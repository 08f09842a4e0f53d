package behavior

import (
	"math"

	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

// LookAngles returns the yaw and pitch in degrees that point from eye to target.
func LookAngles(eye, target mathx.Vec3) model.Look {
	d := target.Sub(eye)
	yaw := -math.Atan2(d.X, d.Z) * 180 / math.Pi
	pitch := -math.Atan2(d.Y, d.HorizontalLen()) * 180 / math.Pi
	return model.Look{Yaw: mathx.WrapDegrees(yaw), Pitch: mathx.Clamp(pitch, -90, 90)}
}

// Step applies a pending look request.
func Step(a *model.Agent, eyeHeight float64) {
	b := &a.Behavior
	if b.LookTarget != nil {
		a.Look = LookAngles(a.Eye(eyeHeight), *b.LookTarget)
		b.LookTarget = nil
	}
}
