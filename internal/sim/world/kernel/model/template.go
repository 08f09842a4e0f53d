package model

import "voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"

// Template is the starting state of a simulated player. It is a plain value:
// the simulation copies it onto a freshly spawned agent.
type Template struct {
	Position   mathx.Vec3
	Physics    Physics
	State      PhysicsState
	Attributes Attributes
	Inventory  Inventory
}

// NewTemplate returns a standard player body at pos: 0.6 x 1.8, zero velocity
// and intent, movement speed 0.1, attack speed 4.0, empty inventory.
func NewTemplate(pos mathx.Vec3) Template {
	return Template{
		Position:   pos,
		Physics:    NewPhysics(Dimensions{Width: DefaultWidth, Height: DefaultHeight}),
		Attributes: DefaultAttributes(),
	}
}

// MergeInto overwrites the template's components on a. Maps and pointers are
// copied so the agent never aliases the template.
func (t Template) MergeInto(a *Agent) {
	a.Position = t.Position
	a.Physics = t.Physics
	a.State = t.State
	a.Attributes = t.Attributes.Clone()
	a.Inventory = t.Inventory.Clone()
}
