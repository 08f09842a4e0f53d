package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

type loadedEnv bool

func (e loadedEnv) ChunkLoaded(mathx.BlockPos) bool { return bool(e) }

func TestStepTracksChunkAndLanding(t *testing.T) {
	var q model.SignalQueue
	a := &model.Agent{Position: mathx.V(15.5, 5, 0.5)}

	Step(loadedEnv(true), a, &q, 1)
	assert.Equal(t, [2]int{0, 0}, a.Lifecycle.Chunk)
	assert.True(t, a.Lifecycle.Loaded)
	assert.Equal(t, uint64(1), a.Lifecycle.TicksAlive)

	a.Position = mathx.V(16.5, 2, 0.5)
	a.Physics.OnGround = true
	a.Physics.LastFall = 3
	Step(loadedEnv(false), a, &q, 2)
	q.Update()

	require.Len(t, q.Readable(), 2)
	assert.Equal(t, model.SignalChunkChanged, q.Readable()[0].Kind)
	landed := q.Of(model.SignalLanded)
	require.Len(t, landed, 1)
	assert.Equal(t, 3.0, landed[0].Value)
	assert.False(t, a.Lifecycle.Loaded)
	assert.Equal(t, a.Position, a.Lifecycle.LastPos)

	// Staying on the ground does not land again.
	Step(loadedEnv(true), a, &q, 3)
	q.Update()
	assert.Empty(t, q.Readable())
}
