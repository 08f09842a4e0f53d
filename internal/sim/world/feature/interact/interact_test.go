package interact

import (
	"errors"
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

func newEnv() *fakeEnv {
	env := &fakeEnv{cats: catalogs.MustDefault(), blocks: map[mathx.BlockPos]string{}}
	for x := -5; x <= 5; x++ {
		for z := -5; z <= 5; z++ {
			env.blocks[mathx.BlockPos{X: x, Z: z}] = "STONE"
		}
	}
	return env
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

func (f *fakeEnv) PlaceBlock(p mathx.BlockPos, block string) error {
	if p.Y > 10 {
		return errors.New("too high")
	}
	f.blocks[p] = block
	return nil
}

func standing() *model.Agent {
	a := &model.Agent{}
	model.NewTemplate(mathx.V(0.5, 1+model.DefaultHeight/2, 0.5)).MergeInto(a)
	return a
}

func TestLookVector(t *testing.T) {
	v := LookVector(model.Look{Yaw: -90})
	assert.InDelta(t, 1, v.X, 1e-12)
	v = LookVector(model.Look{Pitch: 90})
	assert.InDelta(t, -1, v.Y, 1e-12)
}

func TestRaycastHitsFloorTopFace(t *testing.T) {
	env := newEnv()
	hit := Raycast(env, mathx.V(0.5, 2.62, 0.5), mathx.V(0, -1, 0), 4.5)
	require.Equal(t, model.HitBlock, hit.Kind)
	assert.Equal(t, mathx.BlockPos{X: 0, Y: 0, Z: 0}, hit.Pos)
	assert.Equal(t, mathx.BlockPos{Y: 1}, hit.Face)
	assert.InDelta(t, 1.62, hit.Distance, 1e-12)

	miss := Raycast(env, mathx.V(0.5, 2.62, 0.5), mathx.V(0, 1, 0), 4.5)
	assert.Equal(t, model.HitMiss, miss.Kind)
}

func TestStepUpdatesHitFromLook(t *testing.T) {
	env := newEnv()
	a := standing()
	a.Look.Pitch = 90
	var q model.SignalQueue
	Step(env, a, &q, 1, tuning.Defaults().Work)
	assert.Equal(t, model.HitBlock, a.Interaction.Hit.Kind)
	assert.Equal(t, mathx.BlockPos{}, a.Interaction.Hit.Pos)
}

func TestStepPlacesHeldBlock(t *testing.T) {
	env := newEnv()
	a := standing()
	a.Inventory.Slots[0] = model.ItemStack{Item: "DIRT", Count: 2}
	a.Interaction.Pending = &model.UseRequest{Target: mathx.BlockPos{X: 2}, Face: mathx.BlockPos{Y: 1}}
	var q model.SignalQueue

	Step(env, a, &q, 1, tuning.Defaults().Work)
	q.Update()
	placed := q.Of(model.SignalBlockPlaced)
	require.Len(t, placed, 1)
	assert.Equal(t, mathx.BlockPos{X: 2, Y: 1}, placed[0].Pos)
	assert.Equal(t, "DIRT", env.blocks[mathx.BlockPos{X: 2, Y: 1}])
	assert.Equal(t, 1, a.Inventory.Count("DIRT"))
	assert.Nil(t, a.Interaction.Pending)
}

func TestStepRejectsBadUse(t *testing.T) {
	w := tuning.Defaults().Work
	cases := []struct {
		name string
		req  model.UseRequest
		item string
		code string
	}{
		{"inside agent", model.UseRequest{Target: mathx.BlockPos{}, Face: mathx.BlockPos{Y: 1}}, "DIRT", model.CodeBlocked},
		{"air target", model.UseRequest{Target: mathx.BlockPos{X: 2, Y: 3}, Face: mathx.BlockPos{Y: 1}}, "DIRT", model.CodeInvalidTarget},
		{"diagonal face", model.UseRequest{Target: mathx.BlockPos{X: 2}, Face: mathx.BlockPos{X: 1, Y: 1}}, "DIRT", model.CodeBadRequest},
		{"empty hand", model.UseRequest{Target: mathx.BlockPos{X: 2}, Face: mathx.BlockPos{Y: 1}}, "", model.CodeNoResource},
		{"tool in hand", model.UseRequest{Target: mathx.BlockPos{X: 2}, Face: mathx.BlockPos{Y: 1}}, "WOOD_AXE", model.CodeNoResource},
		{"out of reach", model.UseRequest{Target: mathx.BlockPos{X: 5, Z: 5}, Face: mathx.BlockPos{Y: 1}}, "DIRT", model.CodeBlocked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newEnv()
			a := standing()
			if tc.item != "" {
				a.Inventory.Slots[0] = model.ItemStack{Item: tc.item, Count: 1}
			}
			req := tc.req
			a.Interaction.Pending = &req
			var q model.SignalQueue
			Step(env, a, &q, 1, w)
			q.Update()
			got := q.Of(model.SignalUseFailed)
			require.Len(t, got, 1)
			assert.Equal(t, tc.code, got[0].Code)
			assert.Empty(t, q.Of(model.SignalBlockPlaced))
		})
	}
}
