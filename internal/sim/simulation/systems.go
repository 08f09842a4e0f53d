package simulation

import (
	"fmt"

	"voxelcraft.ai/pathsim/internal/sim/world/feature/behavior"
	"voxelcraft.ai/pathsim/internal/sim/world/feature/interact"
	"voxelcraft.ai/pathsim/internal/sim/world/feature/inventory"
	"voxelcraft.ai/pathsim/internal/sim/world/feature/lifecycle"
	"voxelcraft.ai/pathsim/internal/sim/world/feature/mining"
	"voxelcraft.ai/pathsim/internal/sim/world/feature/movement"
	"voxelcraft.ai/pathsim/internal/sim/world/feature/pathing"
	"voxelcraft.ai/pathsim/internal/sim/world/feature/physics"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/schedule"
)

// Stage names in run order.
const (
	StagePhysics     = "physics"
	StageLifecycle   = "entity-lifecycle"
	StageMovement    = "movement"
	StageInventory   = "inventory"
	StageMining      = "mining"
	StageInteraction = "interaction"
	StageBehavior    = "behavior"
	StagePathing     = "path-planning"
)

// HookStage is the stage name of a caller hook.
func HookStage(name string) string { return "hook:" + name }

func (e *Environment) buildSchedule() (*schedule.Schedule, error) {
	s := schedule.New(schedule.SingleThreaded)
	t := e.cfg.tuning

	systems := []schedule.System{
		{Name: StagePhysics, Run: e.withWorld(func(env instanceEnv, a *model.Agent, _ uint64) error {
			physics.Step(env, a, t.Physics)
			return nil
		})},
		{Name: StageLifecycle, Run: e.withWorld(func(env instanceEnv, a *model.Agent, tick uint64) error {
			lifecycle.Step(env, a, &e.signals, tick)
			return nil
		})},
		{Name: StageMovement, Run: e.withWorld(func(env instanceEnv, a *model.Agent, _ uint64) error {
			movement.Step(env, a, t.Movement, t.Physics.AirFriction)
			return nil
		})},
		{Name: StageInventory, Run: e.withWorld(func(env instanceEnv, a *model.Agent, tick uint64) error {
			inventory.Step(env, a, &e.signals, tick)
			return nil
		})},
		{Name: StageMining, Run: e.withWorld(func(env instanceEnv, a *model.Agent, tick uint64) error {
			return mining.Step(env, a, &e.signals, tick, t.Work)
		})},
		{Name: StageInteraction, Run: e.withWorld(func(env instanceEnv, a *model.Agent, tick uint64) error {
			interact.Step(env, a, &e.signals, tick, t.Work)
			return nil
		})},
		{Name: StageBehavior, Run: e.withWorld(func(_ instanceEnv, a *model.Agent, _ uint64) error {
			behavior.Step(a, t.Work.EyeHeight)
			return nil
		})},
		{Name: StagePathing, Run: e.withWorld(func(_ instanceEnv, a *model.Agent, tick uint64) error {
			pathing.Step(a, &e.signals, tick, t.Pathing)
			return nil
		})},
	}
	for _, h := range e.cfg.hooks {
		systems = append(systems, e.hookSystem(h))
	}

	for _, sys := range systems {
		if err := s.Add(sys); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// withWorld resolves the instance and the agent for a system run.
func (e *Environment) withWorld(run func(env instanceEnv, a *model.Agent, tick uint64) error) func(uint64) error {
	return func(tick uint64) error {
		inst, err := e.resolve()
		if err != nil {
			return err
		}
		a, ok := e.entities.Get(model.SimEntityID)
		if !ok {
			return fmt.Errorf("agent %d not found", model.SimEntityID)
		}
		return run(instanceEnv{Instance: inst}, a, tick)
	}
}

func (e *Environment) hookSystem(h Hook) schedule.System {
	sys := schedule.System{Name: HookStage(h.Name)}
	if h.Setup != nil {
		sys.Setup = func() error { return h.Setup(e) }
	}
	run := h.Run
	if run == nil {
		run = func(*Environment) error { return nil }
	}
	sys.Run = func(uint64) error { return run(e) }
	return sys
}
