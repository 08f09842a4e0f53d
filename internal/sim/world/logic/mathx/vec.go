package mathx

import (
	"fmt"
	"math"
)

// Vec3 is a world-space position or displacement.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// HorizontalLen ignores the vertical component.
func (v Vec3) HorizontalLen() float64 { return math.Sqrt(v.X*v.X + v.Z*v.Z) }

func (v Vec3) Axis(a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

func (v Vec3) WithAxis(a Axis, val float64) Vec3 {
	switch a {
	case AxisX:
		v.X = val
	case AxisY:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

func (v Vec3) Block() BlockPos {
	return BlockPos{X: FloorInt(v.X), Y: FloorInt(v.Y), Z: FloorInt(v.Z)}
}

// Finite reports whether no component is NaN or infinite.
func (v Vec3) Finite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vec3) String() string { return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z) }

// Axis names one of the three world axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// BlockPos addresses one voxel; the block occupies [X, X+1) on each axis.
type BlockPos struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (p BlockPos) Add(o BlockPos) BlockPos {
	return BlockPos{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

func (p BlockPos) Center() Vec3 {
	return Vec3{X: float64(p.X) + 0.5, Y: float64(p.Y) + 0.5, Z: float64(p.Z) + 0.5}
}

// Box is the unit cube of the block.
func (p BlockPos) Box() AABB {
	min := Vec3{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
	return AABB{Min: min, Max: min.Add(Vec3{X: 1, Y: 1, Z: 1})}
}

func (p BlockPos) String() string { return fmt.Sprintf("[%d %d %d]", p.X, p.Y, p.Z) }
