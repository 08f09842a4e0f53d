package scenario

import (
	"fmt"

	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/tuning"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
	"voxelcraft.ai/pathsim/internal/sim/world/terrain/store"
)

// Default flat terrain used when no terrain file is given.
const (
	FlatHeight  = 128
	FlatSurface = 64
	FlatRadius  = 2
)

// Inputs is everything a run needs besides the caller's options.
type Inputs struct {
	Scenario *Scenario
	Catalogs *catalogs.Catalogs
	Tuning   tuning.Tuning

	Terrain       *store.ChunkStore
	TerrainName   string
	TerrainDigest string
	Seed          int64
}

// LoadInputs reads a scenario and its world. Empty configDir uses the
// embedded catalogs, empty tuningPath the default tuning and empty
// terrainPath a flat stone floor at FlatSurface.
func LoadInputs(scenarioPath, terrainPath, configDir, tuningPath string) (*Inputs, error) {
	cats, err := catalogs.LoadDir(configDir)
	if err != nil {
		return nil, fmt.Errorf("load catalogs: %w", err)
	}
	tune := tuning.Defaults()
	if tuningPath != "" {
		if tune, err = tuning.Load(tuningPath); err != nil {
			return nil, fmt.Errorf("load tuning: %w", err)
		}
	}
	sc, err := Load(scenarioPath)
	if err != nil {
		return nil, err
	}
	if err := sc.Validate(cats); err != nil {
		return nil, fmt.Errorf("%s: %w", scenarioPath, err)
	}

	in := &Inputs{Scenario: sc, Catalogs: cats, Tuning: tune}
	if terrainPath == "" {
		s, err := FlatTerrain(cats, FlatSurface, FlatRadius)
		if err != nil {
			return nil, err
		}
		in.Terrain, in.TerrainName = s, "flat"
	} else {
		s, hdr, err := store.LoadTerrain(terrainPath, cats.Blocks.Index)
		if err != nil {
			return nil, err
		}
		in.Terrain, in.TerrainName, in.Seed = s, hdr.Name, hdr.Seed
	}
	d := in.Terrain.Digest()
	in.TerrainDigest = fmt.Sprintf("%x", d[:])
	return in, nil
}

// FlatTerrain is a frozen single stone layer at surfaceY covering radius
// chunks around the origin.
func FlatTerrain(cats *catalogs.Catalogs, surfaceY, radius int) (*store.ChunkStore, error) {
	s := store.NewChunkStore(0, FlatHeight)
	lo := -radius * store.ChunkSize
	hi := (radius+1)*store.ChunkSize - 1
	from := mathx.BlockPos{X: lo, Y: surfaceY, Z: lo}
	to := mathx.BlockPos{X: hi, Y: surfaceY, Z: hi}
	if err := s.Fill(from, to, cats.Blocks.MustID("STONE")); err != nil {
		return nil, err
	}
	s.Freeze()
	return s, nil
}
