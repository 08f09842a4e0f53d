package model

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"voxelcraft.ai/pathsim/internal/sim/world"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

// Body defaults for a simulated player.
const (
	DefaultWidth         = 0.6
	DefaultHeight        = 1.8
	DefaultMovementSpeed = 0.1
	DefaultAttackSpeed   = 4.0
)

// EntityID numbers entities inside one environment. Simulated agents use
// SimEntityID; live entity ids start at 1 so the two never collide.
type EntityID int32

const SimEntityID EntityID = 0

type EntityKind string

const KindPlayer EntityKind = "player"

// Agent is the full component set of the simulated player.
type Agent struct {
	ID    EntityID
	UUID  uuid.UUID
	Kind  EntityKind
	Local bool

	Metadata Metadata
	Holder   InstanceHolder

	Position   mathx.Vec3
	Look       Look
	Physics    Physics
	State      PhysicsState
	Attributes Attributes
	Inventory  Inventory

	Mining      Mining
	Interaction Interaction
	Behavior    Behavior
	Pathing     Pathing
	Lifecycle   Lifecycle
}

// Box is the agent's current collision box.
func (a *Agent) Box() mathx.AABB {
	return mathx.BoxAround(a.Position, a.Physics.Dimensions.Width, a.Physics.Dimensions.Height)
}

// Feet is the point under the center of the body.
func (a *Agent) Feet() mathx.Vec3 {
	return a.Position.Sub(mathx.V(0, a.Physics.Dimensions.Height/2, 0))
}

// Eye is the viewpoint eyeHeight above the feet.
func (a *Agent) Eye(eyeHeight float64) mathx.Vec3 {
	return a.Feet().Add(mathx.V(0, eyeHeight, 0))
}

type Metadata struct {
	Name string
	Tags []string
}

// InstanceHolder ties the agent to the world it lives in. Partial is the
// client-side view slot; the simulation fills it but no system reads it.
type InstanceHolder struct {
	Name     string
	Instance *world.Instance
	Partial  *world.PartialInstance
}

type Dimensions struct {
	Width  float64
	Height float64
}

// Look angles in degrees. Yaw 0 faces +Z, yaw -90 faces +X; positive pitch looks down.
type Look struct {
	Yaw   float64
	Pitch float64
}

type Physics struct {
	Dimensions Dimensions
	Velocity   mathx.Vec3

	OnGround            bool
	HorizontalCollision bool
	VerticalCollision   bool

	FallDistance float64
	// LastFall is the fall distance of the most recent landing.
	LastFall float64
}

func NewPhysics(d Dimensions) Physics {
	return Physics{Dimensions: d}
}

// PhysicsState is the movement intent for the next ticks. Forward and Strafe
// are in [-1, 1]; positive Strafe moves left.
type PhysicsState struct {
	Forward   float64
	Strafe    float64
	Sprinting bool
	Jumping   bool
}

// Attribute is a base value with named multiplicative modifiers. The final
// value is Base * (1+m) over modifiers in key order.
type Attribute struct {
	Base      float64
	Modifiers map[string]float64
}

func NewAttribute(base float64) Attribute { return Attribute{Base: base} }

func (a Attribute) Value() float64 {
	v := a.Base
	for _, k := range slices.Sorted(maps.Keys(a.Modifiers)) {
		v *= 1 + a.Modifiers[k]
	}
	return v
}

func (a *Attribute) SetModifier(name string, amount float64) {
	if a.Modifiers == nil {
		a.Modifiers = map[string]float64{}
	}
	a.Modifiers[name] = amount
}

func (a *Attribute) RemoveModifier(name string) { delete(a.Modifiers, name) }

func (a Attribute) Clone() Attribute {
	out := Attribute{Base: a.Base}
	if len(a.Modifiers) > 0 {
		out.Modifiers = maps.Clone(a.Modifiers)
	}
	return out
}

type Attributes struct {
	MovementSpeed Attribute
	AttackSpeed   Attribute
}

func DefaultAttributes() Attributes {
	return Attributes{
		MovementSpeed: NewAttribute(DefaultMovementSpeed),
		AttackSpeed:   NewAttribute(DefaultAttackSpeed),
	}
}

func (a Attributes) Clone() Attributes {
	return Attributes{MovementSpeed: a.MovementSpeed.Clone(), AttackSpeed: a.AttackSpeed.Clone()}
}

// Mining is the block the agent is currently breaking.
type Mining struct {
	Target    *mathx.BlockPos
	Progress  float64
	StartTick uint64
}

type HitKind int

const (
	HitMiss HitKind = iota
	HitBlock
)

// HitResult is what the agent is looking at.
type HitResult struct {
	Kind     HitKind
	Pos      mathx.BlockPos
	Face     mathx.BlockPos // unit normal of the face that was hit
	Distance float64
}

// UseRequest asks the interaction system to use the held item against Face of Target.
type UseRequest struct {
	Target mathx.BlockPos
	Face   mathx.BlockPos
}

type Interaction struct {
	Hit     HitResult
	Pending *UseRequest
}

// Behavior holds one-shot requests. LookTarget is consumed by the behavior
// system; JumpRequested stays set until movement jumps off the ground.
type Behavior struct {
	LookTarget    *mathx.Vec3
	JumpRequested bool
}

// Pathing is the waypoint route being followed. Nodes are the blocks the feet
// should pass through.
type Pathing struct {
	Nodes  []mathx.BlockPos
	Index  int
	Active bool

	StuckTicks int
	LastPos    mathx.Vec3
}

// Lifecycle is bookkeeping updated once per tick.
type Lifecycle struct {
	Chunk       [2]int
	Loaded      bool
	TicksAlive  uint64
	LastPos     mathx.Vec3
	WasOnGround bool
}
