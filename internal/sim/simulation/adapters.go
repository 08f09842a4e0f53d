package simulation

import (
	"fmt"

	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/world"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

// instanceEnv binds a world instance to the feature system environments.
type instanceEnv struct {
	*world.Instance
}

func (env instanceEnv) ItemDef(item string) (catalogs.ItemDef, bool) {
	d, ok := env.Catalogs().Items.Defs[item]
	return d, ok
}

func (env instanceEnv) MaxStack(item string) int {
	return env.Catalogs().Items.MaxStack(item)
}

func (env instanceEnv) BreakBlock(p mathx.BlockPos) error {
	return env.SetBlock(p, catalogs.AirID)
}

func (env instanceEnv) PlaceBlock(p mathx.BlockPos, block string) error {
	id, ok := env.Catalogs().Blocks.Index[block]
	if !ok {
		return fmt.Errorf("place %s: unknown block %q", p, block)
	}
	return env.SetBlock(p, id)
}
