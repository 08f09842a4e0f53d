package store

import (
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
	genpkg "voxelcraft.ai/pathsim/internal/sim/world/terrain/gen"
)

// WorldGen parameterizes the deterministic heightmap generator. Block ids come
// from the block catalog palette.
type WorldGen struct {
	Seed   int64
	MinY   int
	Height int

	SurfaceY        int // top solid block of flat ground
	BiomeRegionSize int
	HillGrid        int
	HillRadius      int
	HillPermille    int
	TreePermille    int
	OrePermille     int

	Air     uint16
	Bedrock uint16
	Stone   uint16
	Dirt    uint16
	Grass   uint16
	Sand    uint16
	Log     uint16
	CoalOre uint16
	IronOre uint16
}

func (g *WorldGen) applyDefaults() {
	if g.Height <= 0 {
		g.Height = 64
	}
	if g.BiomeRegionSize <= 0 {
		g.BiomeRegionSize = 64
	}
	if g.HillGrid <= 0 {
		g.HillGrid = 32
	}
	if g.HillRadius <= 0 {
		g.HillRadius = 6
	}
}

// SurfaceAt is the y of the top solid block of column (x, z).
func (g WorldGen) SurfaceAt(x, z int) int {
	g.applyDefaults()
	hills := genpkg.Hills{Seed: g.Seed + 11, Grid: g.HillGrid, Radius: g.HillRadius, Permille: genpkg.ClampPermille(g.HillPermille)}
	y := g.SurfaceY + hills.Height(x, z)
	if top := g.MinY + g.Height - 8; y > top {
		y = top
	}
	return y
}

// Generate fills every chunk with |cx|,|cz| <= radius.
func Generate(g WorldGen, radius int) (*ChunkStore, error) {
	g.applyDefaults()
	s := NewChunkStore(g.MinY, g.Height)
	for cz := -radius; cz <= radius; cz++ {
		for cx := -radius; cx <= radius; cx++ {
			if err := s.GenerateChunk(g, ChunkKey{CX: cx, CZ: cz}); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *ChunkStore) GenerateChunk(g WorldGen, k ChunkKey) error {
	g.applyDefaults()
	if err := s.EnsureChunk(k); err != nil {
		return err
	}
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			wx := k.CX*ChunkSize + x
			wz := k.CZ*ChunkSize + z
			if err := s.generateColumn(g, wx, wz); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ChunkStore) generateColumn(g WorldGen, wx, wz int) error {
	surface := g.SurfaceAt(wx, wz)
	biome := genpkg.BiomeAt(g.Seed, wx, wz, g.BiomeRegionSize)

	top, filler := g.Grass, g.Dirt
	if biome == genpkg.Desert {
		top, filler = g.Sand, g.Sand
	}

	for y := g.MinY; y <= surface; y++ {
		b := g.Stone
		switch {
		case y == g.MinY:
			b = g.Bedrock
		case y == surface:
			b = top
		case y >= surface-3:
			b = filler
		default:
			ore := genpkg.ClampPermille(g.OrePermille)
			switch {
			case genpkg.Chance3(g.Seed+101, wx, y, wz, ore/2):
				b = g.IronOre
			case genpkg.Chance3(g.Seed+101, wx, y, wz, ore):
				b = g.CoalOre
			}
		}
		if err := s.SetBlock(mathx.BlockPos{X: wx, Y: y, Z: wz}, b); err != nil {
			return err
		}
	}

	if biome == genpkg.Forest && genpkg.Chance2(g.Seed+202, wx, wz, genpkg.ClampPermille(g.TreePermille)) {
		for y := surface + 1; y <= surface+4 && s.InHeight(y); y++ {
			if err := s.SetBlock(mathx.BlockPos{X: wx, Y: y, Z: wz}, g.Log); err != nil {
				return err
			}
		}
	}
	return nil
}
