package scenario

import (
	"errors"
	"fmt"
	"math"
	"sort"

	goerrors "github.com/pixil98/go-errors"

	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/simulation"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
	"voxelcraft.ai/pathsim/internal/sim/world/terrain/store"
)

// ErrExpectation marks a run whose outcome differs from the scenario's expect block.
var ErrExpectation = errors.New("scenario expectation not met")

// Result summarizes a finished run.
type Result struct {
	Ticks    uint64
	Final    mathx.Vec3
	OnGround bool
	Signals  map[model.SignalKind]int
}

// Template is the agent template the scenario starts from.
func (sc *Scenario) Template(maxStack func(item string) int) model.Template {
	tmpl := model.NewTemplate(sc.Start)
	for _, st := range sc.Inventory {
		tmpl.Inventory.Add(st.Item, st.Count, maxStack(st.Item))
	}
	return tmpl
}

// Run validates sc, builds an environment over snapshot, plays every step and
// ticks the scenario's full length. The environment is closed before Run
// returns.
func Run(snapshot *store.ChunkStore, cats *catalogs.Catalogs, sc *Scenario, opts ...simulation.Option) (Result, error) {
	if err := sc.Validate(cats); err != nil {
		return Result{}, err
	}
	opts = append(opts, simulation.WithCatalogs(cats))
	env, err := simulation.New(snapshot, sc.Template(cats.Items.MaxStack), opts...)
	if err != nil {
		return Result{}, err
	}
	defer env.Close()
	return Play(env, sc)
}

// Play drives an existing environment through the scenario.
func Play(env *simulation.Environment, sc *Scenario) (Result, error) {
	res := Result{Signals: map[model.SignalKind]int{}}
	next := 0
	for i := 0; i < sc.Ticks; i++ {
		for next < len(sc.Steps) && sc.Steps[next].Tick <= env.Ticks() {
			if err := Apply(env, sc.Steps[next]); err != nil {
				return res, fmt.Errorf("step %d (%s): %w", next, sc.Steps[next].Op, err)
			}
			next++
		}
		if err := env.Tick(); err != nil {
			return res, err
		}
		for _, s := range env.Signals() {
			res.Signals[s.Kind]++
		}
	}
	a := env.Agent()
	res.Ticks = env.Ticks()
	res.Final = a.Position
	res.OnGround = a.Physics.OnGround
	return res, nil
}

// Apply performs one step on env.
func Apply(env *simulation.Environment, st Step) error {
	switch st.Op {
	case OpIntent:
		env.SetIntent(st.Forward, st.Strafe, st.Sprint, st.Jump)
	case OpLook:
		return env.SetLook(st.Yaw, st.Pitch)
	case OpLookAt:
		return env.LookAt(*st.Vec)
	case OpJump:
		env.Jump()
	case OpMine:
		env.StartMining(*st.Block)
	case OpStopMining:
		env.StopMining()
	case OpUse:
		env.UseItemOn(*st.Block, *st.Face)
	case OpSelect:
		env.SelectSlot(st.Slot)
	case OpGoTo:
		return env.GoTo(*st.Block)
	case OpPath:
		env.FollowPath(st.Nodes)
	case OpVelocity:
		return env.SetVelocity(*st.Vec)
	case OpTeleport:
		return env.Teleport(*st.Vec)
	case OpGive:
		if left := env.GiveItem(st.Item, st.Count); left > 0 {
			return fmt.Errorf("inventory full: %d %s left over", left, st.Item)
		}
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

// Check compares res with the expect block. A scenario without one always passes.
func (sc *Scenario) Check(res Result) error {
	exp := sc.Expect
	if exp == nil {
		return nil
	}
	el := goerrors.NewErrorList()
	if exp.Final != nil {
		tol := exp.Tolerance
		d := res.Final.Sub(*exp.Final)
		if math.Abs(d.X) > tol || math.Abs(d.Y) > tol || math.Abs(d.Z) > tol {
			el.Add(fmt.Errorf("final position %s, want %s ± %g", res.Final, *exp.Final, tol))
		}
	}
	if exp.OnGround != nil && res.OnGround != *exp.OnGround {
		el.Add(fmt.Errorf("on_ground %v, want %v", res.OnGround, *exp.OnGround))
	}
	kinds := make([]string, 0, len(exp.Signals))
	for kind := range exp.Signals {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		if got, want := res.Signals[model.SignalKind(kind)], exp.Signals[kind]; got != want {
			el.Add(fmt.Errorf("%s signals %d, want %d", kind, got, want))
		}
	}
	if err := el.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrExpectation, err)
	}
	return nil
}
