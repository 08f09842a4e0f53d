package world

import (
	"fmt"
	"sync"

	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
	"voxelcraft.ai/pathsim/internal/sim/world/terrain/store"
)

// Instance is one simulation's view of the world: a shared read-only terrain
// snapshot plus the blocks this simulation changed. Changes never reach the
// snapshot.
type Instance struct {
	mu sync.RWMutex

	terrain *store.ChunkStore
	overlay map[mathx.BlockPos]uint16
	cats    *catalogs.Catalogs
}

// Wrap builds an instance over a frozen snapshot. The snapshot is only read,
// so any number of instances may share it.
func Wrap(terrain *store.ChunkStore, cats *catalogs.Catalogs) (*Instance, error) {
	if !terrain.Frozen() {
		return nil, store.ErrNotFrozen
	}
	return &Instance{
		terrain: terrain,
		overlay: map[mathx.BlockPos]uint16{},
		cats:    cats,
	}, nil
}

func (in *Instance) Catalogs() *catalogs.Catalogs { return in.cats }

func (in *Instance) Block(p mathx.BlockPos) uint16 {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.blockLocked(p)
}

func (in *Instance) blockLocked(p mathx.BlockPos) uint16 {
	if b, ok := in.overlay[p]; ok {
		return b
	}
	return in.terrain.GetBlock(p)
}

func (in *Instance) BlockDef(p mathx.BlockPos) catalogs.BlockDef {
	return in.cats.Blocks.Block(in.Block(p))
}

func (in *Instance) Solid(p mathx.BlockPos) bool {
	return in.cats.Blocks.Solid(in.Block(p))
}

func (in *Instance) Slipperiness(p mathx.BlockPos) float64 {
	return in.cats.Blocks.Slipperiness(in.Block(p))
}

func (in *Instance) ChunkLoaded(p mathx.BlockPos) bool {
	return in.terrain.ChunkLoaded(p)
}

// SetBlock records a change local to this instance. Only loaded chunks inside
// the terrain height can change.
func (in *Instance) SetBlock(p mathx.BlockPos, b uint16) error {
	if !in.terrain.InHeight(p.Y) {
		return fmt.Errorf("set block %s: outside terrain height", p)
	}
	if !in.terrain.ChunkLoaded(p) {
		return fmt.Errorf("set block %s: chunk not loaded", p)
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.terrain.GetBlock(p) == b {
		delete(in.overlay, p)
		return nil
	}
	in.overlay[p] = b
	return nil
}

// OverlayLen is the number of blocks that differ from the snapshot.
func (in *Instance) OverlayLen() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.overlay)
}
