package model

import "voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"

type SignalKind string

const (
	SignalBlockMined    SignalKind = "BLOCK_MINED"
	SignalMiningAborted SignalKind = "MINING_ABORTED"
	SignalBlockPlaced   SignalKind = "BLOCK_PLACED"
	SignalUseFailed     SignalKind = "USE_FAILED"
	SignalItemCollected SignalKind = "ITEM_COLLECTED"
	SignalInventoryFull SignalKind = "INVENTORY_FULL"
	SignalLanded        SignalKind = "LANDED"
	SignalChunkChanged  SignalKind = "CHUNK_CHANGED"
	SignalPathDone      SignalKind = "PATH_DONE"
	SignalPathStuck     SignalKind = "PATH_STUCK"
)

// Failure reason codes carried by abort/failure signals.
const (
	CodeBadRequest    = "E_BAD_REQUEST"
	CodeInvalidTarget = "E_INVALID_TARGET"
	CodeBlocked       = "E_BLOCKED"
	CodeNoResource    = "E_NO_RESOURCE"
)

// Signal is an event one system emits for the others (and for the caller).
type Signal struct {
	Tick   uint64         `json:"tick"`
	Kind   SignalKind     `json:"kind"`
	Entity EntityID       `json:"entity"`
	Pos    mathx.BlockPos `json:"pos"`
	Block  string         `json:"block,omitempty"`
	Item   string         `json:"item,omitempty"`
	Count  int            `json:"count,omitempty"`
	Value  float64        `json:"value,omitempty"`
	Code   string         `json:"code,omitempty"`
}

// SignalQueue is double buffered: signals emitted during a tick become
// readable after the tick's update pass and stay readable for one tick.
type SignalQueue struct {
	pending  []Signal
	readable []Signal
}

func (q *SignalQueue) Emit(s Signal) { q.pending = append(q.pending, s) }

// Readable lists the signals emitted during the previous tick.
func (q *SignalQueue) Readable() []Signal { return q.readable }

// Of filters readable signals by kind.
func (q *SignalQueue) Of(kind SignalKind) []Signal {
	var out []Signal
	for _, s := range q.readable {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Update swaps the buffers and drops the signals that were readable.
func (q *SignalQueue) Update() {
	q.readable, q.pending = q.pending, q.readable[:0]
}

