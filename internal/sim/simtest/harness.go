package simtest

import (
	"testing"

	"voxelcraft.ai/pathsim/internal/sim/simulation"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
	"voxelcraft.ai/pathsim/internal/sim/world/terrain/store"
)

// Harness owns one environment for the duration of a test and closes it on
// cleanup.
type Harness struct {
	T   testing.TB
	Env *simulation.Environment

	Trace simulation.TraceRecorder
}

func NewHarness(t testing.TB, snapshot *store.ChunkStore, pos mathx.Vec3, opts ...simulation.Option) *Harness {
	t.Helper()
	return NewHarnessFromTemplate(t, snapshot, model.NewTemplate(pos), opts...)
}

func NewHarnessFromTemplate(t testing.TB, snapshot *store.ChunkStore, tmpl model.Template, opts ...simulation.Option) *Harness {
	t.Helper()
	h := &Harness{T: t}
	opts = append([]simulation.Option{simulation.WithTraceSink(&h.Trace)}, opts...)
	env, err := simulation.New(snapshot, tmpl, opts...)
	if err != nil {
		t.Fatalf("simulation.New: %v", err)
	}
	h.Env = env
	t.Cleanup(func() { _ = env.Close() })
	return h
}

// Step runs n ticks and returns the final position.
func (h *Harness) Step(n int) mathx.Vec3 {
	h.T.Helper()
	for i := 0; i < n; i++ {
		if err := h.Env.Tick(); err != nil {
			h.T.Fatalf("tick %d: %v", h.Env.Ticks()+1, err)
		}
	}
	return h.Env.Position()
}

// StepUntil ticks until done reports true, at most limit times. It returns
// whether done was reached.
func (h *Harness) StepUntil(limit int, done func(*simulation.Environment) bool) bool {
	h.T.Helper()
	for i := 0; i < limit; i++ {
		if err := h.Env.Tick(); err != nil {
			h.T.Fatalf("tick %d: %v", h.Env.Ticks()+1, err)
		}
		if done(h.Env) {
			return true
		}
	}
	return false
}

// Settle ticks until the agent stands on ground, failing after limit ticks.
func (h *Harness) Settle(limit int) mathx.Vec3 {
	h.T.Helper()
	if !h.StepUntil(limit, func(e *simulation.Environment) bool { return e.Agent().Physics.OnGround }) {
		h.T.Fatalf("agent did not land within %d ticks, at %s", limit, h.Env.Position())
	}
	return h.Env.Position()
}

// Positions is the recorded position after every tick.
func (h *Harness) Positions() []mathx.Vec3 {
	out := make([]mathx.Vec3, len(h.Trace.Entries))
	for i, e := range h.Trace.Entries {
		out[i] = e.Pos
	}
	return out
}

// Saw reports whether the last tick published a signal of kind.
func (h *Harness) Saw(kind model.SignalKind) bool {
	for _, s := range h.Env.Signals() {
		if s.Kind == kind {
			return true
		}
	}
	return false
}
