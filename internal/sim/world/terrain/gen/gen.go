// Package gen holds the integer noise used to shape generated terrain. Every
// function is a pure function of its seed and coordinates.
package gen

import "voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"

type Biome uint8

const (
	Plains Biome = iota
	Forest
	Desert
)

func (b Biome) String() string {
	switch b {
	case Forest:
		return "FOREST"
	case Desert:
		return "DESERT"
	default:
		return "PLAINS"
	}
}

// BiomeAt picks one biome per regionSize x regionSize square.
func BiomeAt(seed int64, x, z, regionSize int) Biome {
	if regionSize <= 0 {
		regionSize = 1
	}
	h := mathx.Hash2(seed, mathx.FloorDiv(x, regionSize), mathx.FloorDiv(z, regionSize))
	return Biome(h % 3)
}

func ClampPermille(v int) uint64 {
	if v <= 0 {
		return 0
	}
	if v > 1000 {
		return 1000
	}
	return uint64(v)
}

// Chance2 and Chance3 roll a permille probability for a column or a cell.
func Chance2(seed int64, x, z int, permille uint64) bool {
	return permille > 0 && mathx.Hash2(seed, x, z)%1000 < permille
}

func Chance3(seed int64, x, y, z int, permille uint64) bool {
	return permille > 0 && mathx.Hash3(seed, x, y, z)%1000 < permille
}

// Hills are cones around points scattered on a grid: each grid cell holds at
// most one center, present with probability permille.
type Hills struct {
	Seed     int64
	Grid     int
	Radius   int
	Permille uint64
}

// nearest returns the squared distance to the closest center within Radius,
// or -1.
func (h Hills) nearest(x, z int) int {
	if h.Grid <= 0 || h.Radius <= 0 || h.Permille == 0 {
		return -1
	}
	gx, gz := mathx.FloorDiv(x, h.Grid), mathx.FloorDiv(z, h.Grid)
	best := -1
	for cgz := gz - 1; cgz <= gz+1; cgz++ {
		for cgx := gx - 1; cgx <= gx+1; cgx++ {
			c := mathx.Hash2(h.Seed, cgx, cgz)
			if c%1000 >= h.Permille {
				continue
			}
			dx := x - (cgx*h.Grid + int((c>>10)%uint64(h.Grid)))
			dz := z - (cgz*h.Grid + int((c>>20)%uint64(h.Grid)))
			d2 := dx*dx + dz*dz
			if d2 <= h.Radius*h.Radius && (best < 0 || d2 < best) {
				best = d2
			}
		}
	}
	return best
}

// Height is the extra surface height at (x, z). Adjacent columns differ by at
// most one block, so generated slopes are always climbable with a jump.
func (h Hills) Height(x, z int) int {
	d2 := h.nearest(x, z)
	if d2 < 0 {
		return 0
	}
	r := 0
	for (r+1)*(r+1) <= d2 {
		r++
	}
	return h.Radius - r
}
