package simulation

import (
	"errors"
	"fmt"

	"voxelcraft.ai/pathsim/internal/sim/world/feature/pathing"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

// ErrNoRoute is returned by GoTo when no walking route reaches the goal.
var ErrNoRoute = errors.New("no route")

// ErrNotFinite rejects NaN or infinite positions, velocities and angles.
var ErrNotFinite = errors.New("not a finite value")

// DefaultPlanNodes bounds the search of GoTo.
const DefaultPlanNodes = 4096

// SetIntent replaces the agent's movement intent. forward and strafe are
// clamped to [-1, 1] by the movement system.
func (e *Environment) SetIntent(forward, strafe float64, sprint, jump bool) {
	a := e.mustAgent()
	a.State = model.PhysicsState{Forward: forward, Strafe: strafe, Sprinting: sprint, Jumping: jump}
}

// SetLook sets yaw and pitch in degrees.
func (e *Environment) SetLook(yaw, pitch float64) error {
	a := e.mustAgent()
	if !mathx.V(yaw, pitch, 0).Finite() {
		return fmt.Errorf("look %g/%g: %w", yaw, pitch, ErrNotFinite)
	}
	a.Look = model.Look{Yaw: mathx.WrapDegrees(yaw), Pitch: mathx.Clamp(pitch, -90, 90)}
	return nil
}

// LookAt turns the agent's eye toward target during the next tick.
func (e *Environment) LookAt(target mathx.Vec3) error {
	a := e.mustAgent()
	if !target.Finite() {
		return fmt.Errorf("look at %s: %w", target, ErrNotFinite)
	}
	a.Behavior.LookTarget = &target
	return nil
}

// Jump requests a single jump on the next tick the agent stands on ground.
func (e *Environment) Jump() {
	e.mustAgent().Behavior.JumpRequested = true
}

// StartMining begins breaking p. Progress restarts when the target changes.
func (e *Environment) StartMining(p mathx.BlockPos) {
	a := e.mustAgent()
	if a.Mining.Target != nil && *a.Mining.Target == p {
		return
	}
	a.Mining = model.Mining{Target: &p, StartTick: e.ticks}
}

func (e *Environment) StopMining() {
	e.mustAgent().Mining = model.Mining{}
}

// UseItemOn places the held block against face of target on the next tick.
func (e *Environment) UseItemOn(target, face mathx.BlockPos) {
	a := e.mustAgent()
	a.Interaction.Pending = &model.UseRequest{Target: target, Face: face}
}

// SelectSlot requests a hotbar change; invalid slots are reported as a
// USE_FAILED signal by the inventory system.
func (e *Environment) SelectSlot(slot int) {
	a := e.mustAgent()
	a.Inventory.PendingSelect = &slot
}

// FollowPath makes the agent walk through nodes in order.
func (e *Environment) FollowPath(nodes []mathx.BlockPos) {
	pathing.Start(e.mustAgent(), nodes)
}

// PlanPath searches a walking route from the block at the agent's feet to goal
// over this environment's terrain.
func (e *Environment) PlanPath(goal mathx.BlockPos, maxNodes int) ([]mathx.BlockPos, bool) {
	a := e.mustAgent()
	f := a.Feet()
	start := mathx.BlockPos{X: mathx.FloorInt(f.X), Y: mathx.FloorInt(f.Y + mathx.Epsilon), Z: mathx.FloorInt(f.Z)}
	return pathing.Plan(instanceEnv{Instance: e.instance}, start, goal, maxNodes)
}

// GoTo plans a route to goal and starts following it.
func (e *Environment) GoTo(goal mathx.BlockPos) error {
	nodes, ok := e.PlanPath(goal, DefaultPlanNodes)
	if !ok {
		return fmt.Errorf("%w to %s", ErrNoRoute, goal)
	}
	e.FollowPath(nodes)
	return nil
}

func (e *Environment) SetVelocity(v mathx.Vec3) error {
	a := e.mustAgent()
	if !v.Finite() {
		return fmt.Errorf("velocity %s: %w", v, ErrNotFinite)
	}
	a.Physics.Velocity = v
	return nil
}

// Teleport moves the agent without a sweep. Fall distance and route progress
// tracking restart from the new position.
func (e *Environment) Teleport(pos mathx.Vec3) error {
	a := e.mustAgent()
	if !pos.Finite() {
		return fmt.Errorf("teleport to %s: %w", pos, ErrNotFinite)
	}
	a.Position = pos
	a.Physics.FallDistance = 0
	a.Physics.OnGround = false
	a.Pathing.LastPos = pos
	a.Pathing.StuckTicks = 0
	return nil
}

// GiveItem adds items to the inventory and returns how many did not fit.
func (e *Environment) GiveItem(item string, count int) int {
	a := e.mustAgent()
	return a.Inventory.Add(item, count, e.cfg.cats.Items.MaxStack(item))
}
