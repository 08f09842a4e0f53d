package mining

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/tuning"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

type fakeEnv struct {
	cats   *catalogs.Catalogs
	blocks map[mathx.BlockPos]string
}

func (f *fakeEnv) BlockDef(p mathx.BlockPos) catalogs.BlockDef {
	if id, ok := f.blocks[p]; ok {
		return f.cats.Blocks.Defs[id]
	}
	return f.cats.Blocks.Defs["AIR"]
}

func (f *fakeEnv) ItemDef(item string) (catalogs.ItemDef, bool) {
	d, ok := f.cats.Items.Defs[item]
	return d, ok
}

func (f *fakeEnv) BreakBlock(p mathx.BlockPos) error {
	delete(f.blocks, p)
	return nil
}

func TestParseToolFamily(t *testing.T) {
	if got := ParseToolFamily("SHOVEL"); got != ToolFamilyShovel {
		t.Fatalf("expected shovel family, got %v", got)
	}
	if got := ParseToolFamily("AXE"); got != ToolFamilyAxe {
		t.Fatalf("expected axe family, got %v", got)
	}
	if got := ParseToolFamily(""); got != ToolFamilyNone {
		t.Fatalf("expected no family, got %v", got)
	}
}

func TestEffectiveTierAndHarvest(t *testing.T) {
	cats := catalogs.MustDefault()
	stone := cats.Blocks.Defs["STONE"]
	iron := cats.Blocks.Defs["IRON_ORE"]

	assert.Equal(t, 2, EffectiveTier(stone, cats.Items.Defs["STONE_PICKAXE"]))
	assert.Zero(t, EffectiveTier(stone, cats.Items.Defs["IRON_AXE"]))
	assert.Zero(t, EffectiveTier(stone, catalogs.ItemDef{}))

	assert.False(t, Harvestable(stone, 0))
	assert.True(t, Harvestable(stone, 1))
	assert.False(t, Harvestable(iron, 1))
	assert.True(t, Harvestable(cats.Blocks.Defs["DIRT"], 0))

	assert.Equal(t, 1.0, ProgressPerTick(cats.Blocks.Defs["TALL_GRASS"], 0, 30, 100))
	assert.InDelta(t, 1/0.5/30.0, ProgressPerTick(cats.Blocks.Defs["DIRT"], 0, 30, 100), 1e-12)
	assert.InDelta(t, 4/1.5/30.0, ProgressPerTick(stone, 2, 30, 100), 1e-12)
	assert.InDelta(t, 1/1.5/100.0, ProgressPerTick(stone, 0, 30, 100), 1e-12)
}

func newAgent() *model.Agent {
	a := &model.Agent{}
	model.NewTemplate(mathx.V(0.5, 1.9, 0.5)).MergeInto(a)
	return a
}

func TestStepBreaksDirtByHand(t *testing.T) {
	cats := catalogs.MustDefault()
	target := mathx.BlockPos{X: 1, Y: 0, Z: 0}
	env := &fakeEnv{cats: cats, blocks: map[mathx.BlockPos]string{target: "DIRT"}}
	a := newAgent()
	a.Mining.Target = &target
	var q model.SignalQueue
	w := tuning.Defaults().Work

	ticks := 0
	for a.Mining.Target != nil && ticks < 100 {
		ticks++
		require.NoError(t, Step(env, a, &q, uint64(ticks), w))
	}
	// 1/0.5/30 per tick.
	assert.Equal(t, 15, ticks)
	assert.NotContains(t, env.blocks, target)

	q.Update()
	mined := q.Of(model.SignalBlockMined)
	require.Len(t, mined, 1)
	assert.Equal(t, "DIRT", mined[0].Item)
	assert.Equal(t, "DIRT", mined[0].Block)
}

func TestStepWithoutToolDropsNothing(t *testing.T) {
	cats := catalogs.MustDefault()
	target := mathx.BlockPos{X: 1, Y: 0, Z: 0}
	env := &fakeEnv{cats: cats, blocks: map[mathx.BlockPos]string{target: "STONE"}}
	a := newAgent()
	a.Mining.Target = &target
	a.Mining.Progress = 0.999
	var q model.SignalQueue

	require.NoError(t, Step(env, a, &q, 1, tuning.Defaults().Work))
	q.Update()
	mined := q.Of(model.SignalBlockMined)
	require.Len(t, mined, 1)
	assert.Empty(t, mined[0].Item)
}

func TestStepAbortsInvalidTargets(t *testing.T) {
	cats := catalogs.MustDefault()
	far := mathx.BlockPos{X: 20, Y: 0, Z: 0}
	bedrock := mathx.BlockPos{X: 0, Y: 0, Z: 0}
	env := &fakeEnv{cats: cats, blocks: map[mathx.BlockPos]string{far: "DIRT", bedrock: "BEDROCK"}}
	w := tuning.Defaults().Work

	cases := []struct {
		target mathx.BlockPos
		code   string
	}{
		{far, model.CodeBlocked},
		{bedrock, model.CodeInvalidTarget},
		{mathx.BlockPos{X: 1, Y: 1}, model.CodeInvalidTarget},
	}
	for _, tc := range cases {
		var q model.SignalQueue
		a := newAgent()
		target := tc.target
		a.Mining.Target = &target
		require.NoError(t, Step(env, a, &q, 1, w))
		q.Update()
		got := q.Of(model.SignalMiningAborted)
		require.Len(t, got, 1, tc.target.String())
		assert.Equal(t, tc.code, got[0].Code, tc.target.String())
		assert.Nil(t, a.Mining.Target)
	}
}
