// Package simulation hosts one controllable agent in an isolated copy of a
// terrain snapshot and advances it one tick at a time.
//
// An Environment is not safe for concurrent use; callers serialize Tick and
// the mutation helpers. Separate environments may share one frozen snapshot
// and run on different goroutines.
package simulation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"voxelcraft.ai/pathsim/internal/logging"
	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/tuning"
	"voxelcraft.ai/pathsim/internal/sim/world"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/schedule"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
	"voxelcraft.ai/pathsim/internal/sim/world/terrain/store"
)

// InstanceName is the registry name of every simulation's world instance.
const InstanceName = "pathsim:simulation"

// Environment owns the world instance, the component table, the schedule and
// the single simulated agent.
type Environment struct {
	cfg config
	log logging.Logger

	instance *world.Instance
	registry *world.Registry
	entities *schedule.Entities
	schedule *schedule.Schedule
	signals  model.SignalQueue

	ticks   uint64
	failure error
	closed  bool
}

// New builds an environment over snapshot with one agent created from tmpl.
// Either everything is built or nothing is: a failure returns a
// *ConstructionError and leaves no registration behind.
func New(snapshot *store.ChunkStore, tmpl model.Template, opts ...Option) (*Environment, error) {
	cfg := config{
		tuning: tuning.Defaults(),
		logger: logging.Nop{},
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.runID == uuid.Nil {
		cfg.runID = uuid.New()
	}
	if cfg.registry == nil {
		cfg.registry = world.NewRegistry()
	}

	if err := checkInputs(snapshot, tmpl); err != nil {
		return nil, constructionErr("input", err)
	}
	if err := cfg.tuning.Validate(); err != nil {
		return nil, constructionErr("tuning", err)
	}
	if cfg.cats == nil {
		cats, err := catalogs.Default()
		if err != nil {
			return nil, constructionErr("catalogs", err)
		}
		cfg.cats = cats
	}

	e := &Environment{
		cfg:      cfg,
		log:      logging.With(cfg.logger, "run_id", cfg.runID.String()),
		registry: cfg.registry,
		entities: schedule.NewEntities(),
	}

	inst, err := world.Wrap(snapshot, cfg.cats)
	if err != nil {
		return nil, constructionErr("input", err)
	}
	e.instance = inst
	if err := e.registry.Register(InstanceName, e.instance); err != nil {
		return nil, constructionErr("register", err)
	}

	// From here on a failure has to undo the registration.
	fail := func(stage string, err error) (*Environment, error) {
		e.registry.Unregister(InstanceName)
		e.instance = nil
		e.log.Debug("simulation construction failed", "stage", stage, "error", err)
		return nil, constructionErr(stage, err)
	}

	sched, err := e.buildSchedule()
	if err != nil {
		return fail("schedule", err)
	}
	e.schedule = sched
	if err := e.schedule.Init(); err != nil {
		return fail("setup", err)
	}

	if err := e.entities.Spawn(e.assembleAgent(tmpl)); err != nil {
		return fail("spawn", err)
	}

	e.log.Debug("simulation created",
		"pos", tmpl.Position.String(),
		"systems", len(e.schedule.Names()),
		"chunks", len(snapshot.Chunks))
	return e, nil
}

func checkInputs(snapshot *store.ChunkStore, tmpl model.Template) error {
	if snapshot == nil {
		return errors.New("nil terrain snapshot")
	}
	if !snapshot.Frozen() {
		return fmt.Errorf("terrain snapshot: %w", store.ErrNotFrozen)
	}
	if p := tmpl.Position; !p.Finite() {
		return fmt.Errorf("template position %v: %w", p, ErrNotFinite)
	}
	d := tmpl.Physics.Dimensions
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("template dimensions %gx%g must be positive", d.Width, d.Height)
	}
	return nil
}

// assembleAgent builds the complete agent off to the side so that spawning
// installs it in one step.
func (e *Environment) assembleAgent(tmpl model.Template) *model.Agent {
	a := &model.Agent{
		ID:    model.SimEntityID,
		UUID:  uuid.Nil,
		Kind:  model.KindPlayer,
		Local: true,
		Metadata: model.Metadata{
			Name: "simulated-player",
			Tags: []string{"simulated"},
		},
		Holder: model.InstanceHolder{
			Name:     InstanceName,
			Instance: e.instance,
			Partial:  &world.PartialInstance{},
		},
	}
	model.NewTemplate(mathx.Vec3{}).MergeInto(a)
	tmpl.MergeInto(a)

	p := a.Position.Block()
	k := store.KeyOf(p.X, p.Z)
	a.Lifecycle = model.Lifecycle{
		Chunk:       [2]int{k.CX, k.CZ},
		Loaded:      e.instance.ChunkLoaded(p),
		LastPos:     a.Position,
		WasOnGround: a.Physics.OnGround,
	}
	a.Holder.Partial.Center = p
	return a
}

// Tick advances the simulation by one step. It runs every system once in
// order, then publishes the signals emitted during the step.
func (e *Environment) Tick() error {
	if e.closed {
		return ErrClosed
	}
	if e.failure != nil {
		return fmt.Errorf("%w: %w", ErrBroken, e.failure)
	}
	e.mustAgent()

	next := e.ticks + 1
	if err := e.schedule.Run(next); err != nil {
		var se *schedule.StageError
		name := "unknown"
		cause := err
		if errors.As(err, &se) {
			name, cause = se.System, se.Err
		}
		e.failure = &SubsystemError{System: name, Tick: next, Err: cause}
		e.log.Error("simulation subsystem failed", "system", name, "tick", next, "error", cause)
		return e.failure
	}
	e.signals.Update()
	e.ticks = next
	e.emitTrace()
	return nil
}

func (e *Environment) emitTrace() {
	if len(e.cfg.sinks) == 0 {
		return
	}
	a := e.mustAgent()
	entry := TraceEntry{
		RunID:    e.cfg.runID.String(),
		Tick:     e.ticks,
		Pos:      a.Position,
		Vel:      a.Physics.Velocity,
		OnGround: a.Physics.OnGround,
	}
	for _, s := range e.cfg.sinks {
		if err := s.WriteTrace(entry); err != nil {
			e.log.Warn("trace sink failed", "tick", e.ticks, "error", err)
		}
	}
}

// Position is the center of the agent's body. A missing agent or world
// instance panics with *InvariantError.
func (e *Environment) Position() mathx.Vec3 {
	return e.mustAgent().Position
}

// Agent gives direct access to every component of the agent between ticks.
func (e *Environment) Agent() *model.Agent { return e.mustAgent() }

func (e *Environment) mustAgent() *model.Agent {
	if e.entities == nil {
		panic(&InvariantError{What: "environment has no entity table"})
	}
	a, ok := e.entities.Get(model.SimEntityID)
	if !ok {
		panic(&InvariantError{What: "simulated agent is missing"})
	}
	if e.instance == nil || a.Holder.Instance == nil {
		panic(&InvariantError{What: "world instance is missing"})
	}
	return a
}

// resolve fetches the instance through the registry as systems do.
func (e *Environment) resolve() (*world.Instance, error) {
	inst, ok := e.registry.Resolve(InstanceName)
	if !ok {
		return nil, fmt.Errorf("world %q is not registered", InstanceName)
	}
	return inst, nil
}

// Ticks is the number of completed ticks.
func (e *Environment) Ticks() uint64 { return e.ticks }

func (e *Environment) RunID() uuid.UUID { return e.cfg.runID }

func (e *Environment) Tuning() tuning.Tuning { return e.cfg.tuning }

func (e *Environment) Catalogs() *catalogs.Catalogs { return e.cfg.cats }

// Instance is this environment's world instance.
func (e *Environment) Instance() *world.Instance { return e.instance }

// Systems lists the tick stages in run order.
func (e *Environment) Systems() []string { return e.schedule.Names() }

// Signals returns the signals emitted during the last completed tick.
func (e *Environment) Signals() []model.Signal { return slices.Clone(e.signals.Readable()) }

// Err is the subsystem failure that broke the environment, if any.
func (e *Environment) Err() error { return e.failure }

// Close unregisters the instance and drops the agent. Later ticks return
// ErrClosed. Close is idempotent.
func (e *Environment) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.registry.Unregister(InstanceName)
	e.entities.Despawn(model.SimEntityID)
	e.instance = nil
	e.log.Debug("simulation closed", "ticks", e.ticks)
	return nil
}
