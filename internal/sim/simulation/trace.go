package simulation

import "voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"

// TraceEntry is the agent state after one tick.
type TraceEntry struct {
	RunID    string     `json:"run_id"`
	Tick     uint64     `json:"tick"`
	Pos      mathx.Vec3 `json:"pos"`
	Vel      mathx.Vec3 `json:"vel"`
	OnGround bool       `json:"on_ground"`
}

// TraceSink receives one entry per completed tick. A failing sink is logged
// and never fails the tick.
type TraceSink interface {
	WriteTrace(e TraceEntry) error
}

// TraceRecorder keeps entries in memory.
type TraceRecorder struct {
	Entries []TraceEntry
}

func (r *TraceRecorder) WriteTrace(e TraceEntry) error {
	r.Entries = append(r.Entries, e)
	return nil
}
