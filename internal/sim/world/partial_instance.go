package world

import "voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"

// PartialInstance is a client's limited view of an instance: the chunks
// around its own position. Simulated agents get an empty one.
type PartialInstance struct {
	Center mathx.BlockPos
}
