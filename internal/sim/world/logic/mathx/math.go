package mathx

import "math"

// Epsilon is the tolerance used when comparing box faces. Faces closer than
// this are treated as touching, not overlapping.
const Epsilon = 1e-7

// DivMod is floored division for b > 0: the remainder is always in [0, b).
func DivMod(a, b int) (q, m int) {
	q, m = a/b, a%b
	if m < 0 {
		q--
		m += b
	}
	return q, m
}

func FloorDiv(a, b int) int {
	q, _ := DivMod(a, b)
	return q
}

func Mod(a, b int) int {
	_, m := DivMod(a, b)
	return m
}

// ManhattanLen is |x|+|y|+|z| of a block offset.
func ManhattanLen(p BlockPos) int {
	n := 0
	for _, v := range [3]int{p.X, p.Y, p.Z} {
		if v < 0 {
			v = -v
		}
		n += v
	}
	return n
}

// FloorInt floors a world coordinate to its block coordinate.
func FloorInt(v float64) int {
	return int(math.Floor(v))
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WrapDegrees maps an angle into [-180, 180).
func WrapDegrees(deg float64) float64 {
	d := math.Mod(deg+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

// Multipliers spreading each axis before the splitmix64 finalizer.
const (
	mulX uint64 = 0x9e3779b97f4a7c15
	mulY uint64 = 0xc2b2ae3d27d4eb4f
	mulZ uint64 = 0xbf58476d1ce4e5b9
)

func splitmix(z uint64) uint64 {
	z += mulX
	z = (z ^ (z >> 30)) * mulZ
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// axis truncates a coordinate to 32 bits so hashes agree across int sizes.
func axis(v int, mul uint64) uint64 { return uint64(uint32(int32(v))) * mul }

// Hash2 and Hash3 are stable per-cell hashes for terrain generation.
func Hash2(seed int64, x, z int) uint64 {
	return splitmix(uint64(seed) ^ axis(x, mulX) ^ axis(z, mulZ))
}

func Hash3(seed int64, x, y, z int) uint64 {
	return splitmix(uint64(seed) ^ axis(x, mulX) ^ axis(y, mulY) ^ axis(z, mulZ))
}
