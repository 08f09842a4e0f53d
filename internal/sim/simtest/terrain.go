// Package simtest builds small terrains and drives simulations from tests
// through exported APIs only.
package simtest

import (
	"testing"

	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
	"voxelcraft.ai/pathsim/internal/sim/world/terrain/store"
)

const (
	MinY   = 0
	Height = 128

	// GroundY is the top block of FlatFloor; standing feet rest at GroundY+1.
	GroundY = 64
)

// Terrain is a fluent terrain builder for tests. Every write failure fails
// the test.
type Terrain struct {
	t    testing.TB
	cats *catalogs.Catalogs
	s    *store.ChunkStore
}

// NewTerrain starts an empty store with every chunk within radius chunks of
// the origin loaded as air.
func NewTerrain(t testing.TB, radius int) *Terrain {
	t.Helper()
	s := store.NewChunkStore(MinY, Height)
	for cz := -radius; cz <= radius; cz++ {
		for cx := -radius; cx <= radius; cx++ {
			if err := s.EnsureChunk(store.ChunkKey{CX: cx, CZ: cz}); err != nil {
				t.Fatalf("ensure chunk: %v", err)
			}
		}
	}
	return &Terrain{t: t, cats: catalogs.MustDefault(), s: s}
}

// FlatFloor is a one-layer stone floor at GroundY over three chunks in each
// direction.
func FlatFloor(t testing.TB) *store.ChunkStore {
	t.Helper()
	return NewTerrain(t, 1).Floor(GroundY, "STONE").Build()
}

// Floor covers every loaded column with block at y.
func (tr *Terrain) Floor(y int, block string) *Terrain {
	tr.t.Helper()
	for _, k := range tr.s.LoadedChunkKeys() {
		from := mathx.BlockPos{X: k.CX * store.ChunkSize, Y: y, Z: k.CZ * store.ChunkSize}
		to := mathx.BlockPos{X: from.X + store.ChunkSize - 1, Y: y, Z: from.Z + store.ChunkSize - 1}
		tr.Fill(from, to, block)
	}
	return tr
}

// Fill sets the inclusive box [from, to].
func (tr *Terrain) Fill(from, to mathx.BlockPos, block string) *Terrain {
	tr.t.Helper()
	if err := tr.s.Fill(from, to, tr.id(block)); err != nil {
		tr.t.Fatalf("fill %s..%s: %v", from, to, err)
	}
	return tr
}

func (tr *Terrain) Set(p mathx.BlockPos, block string) *Terrain {
	tr.t.Helper()
	if err := tr.s.SetBlock(p, tr.id(block)); err != nil {
		tr.t.Fatalf("set %s: %v", p, err)
	}
	return tr
}

// WallX is a wall in the plane x = x, covering z in [z0, z1] and height
// blocks above the floor at GroundY.
func (tr *Terrain) WallX(x, z0, z1, height int, block string) *Terrain {
	tr.t.Helper()
	return tr.Fill(mathx.BlockPos{X: x, Y: GroundY + 1, Z: z0}, mathx.BlockPos{X: x, Y: GroundY + height, Z: z1}, block)
}

// Pillar stacks height blocks on top of the floor at column (x, z).
func (tr *Terrain) Pillar(x, z, height int, block string) *Terrain {
	tr.t.Helper()
	return tr.Fill(mathx.BlockPos{X: x, Y: GroundY + 1, Z: z}, mathx.BlockPos{X: x, Y: GroundY + height, Z: z}, block)
}

// Build freezes and returns the store.
func (tr *Terrain) Build() *store.ChunkStore {
	tr.s.Freeze()
	return tr.s
}

func (tr *Terrain) id(block string) uint16 {
	id, ok := tr.cats.Blocks.Index[block]
	if !ok {
		tr.t.Fatalf("unknown block %q", block)
	}
	return id
}

// Standing is the body center of a default-sized agent whose feet rest on the
// block column (x, z) at GroundY.
func Standing(x, z int) mathx.Vec3 {
	return mathx.V(float64(x)+0.5, GroundY+1+0.9, float64(z)+0.5)
}
