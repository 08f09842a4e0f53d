package mathx

import "math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// BoxAround builds the body box of an entity whose position is the body center.
func BoxAround(center Vec3, width, height float64) AABB {
	hw := width / 2
	hh := height / 2
	return AABB{
		Min: Vec3{X: center.X - hw, Y: center.Y - hh, Z: center.Z - hw},
		Max: Vec3{X: center.X + hw, Y: center.Y + hh, Z: center.Z + hw},
	}
}

// Stretch grows the box in the direction of d only, covering the swept volume.
func (b AABB) Stretch(d Vec3) AABB {
	out := b
	if d.X < 0 {
		out.Min.X += d.X
	} else {
		out.Max.X += d.X
	}
	if d.Y < 0 {
		out.Min.Y += d.Y
	} else {
		out.Max.Y += d.Y
	}
	if d.Z < 0 {
		out.Min.Z += d.Z
	} else {
		out.Max.Z += d.Z
	}
	return out
}

// Intersects reports a strict overlap; boxes that only touch do not intersect.
func (b AABB) Intersects(o AABB) bool {
	return b.overlapsOn(o, AxisX) && b.overlapsOn(o, AxisY) && b.overlapsOn(o, AxisZ)
}

func (b AABB) overlapsOn(o AABB, a Axis) bool {
	return o.Min.Axis(a) < b.Max.Axis(a)-Epsilon && o.Max.Axis(a) > b.Min.Axis(a)+Epsilon
}

// OverlapsExcept reports a strict overlap on the two axes other than a.
func (b AABB) OverlapsExcept(o AABB, a Axis) bool {
	for _, other := range [...]Axis{AxisX, AxisY, AxisZ} {
		if other == a {
			continue
		}
		if !b.overlapsOn(o, other) {
			return false
		}
	}
	return true
}

// Blocks lists every block position the box touches, in x, then z, then y order.
func (b AABB) Blocks() []BlockPos {
	x0, x1 := FloorInt(b.Min.X+Epsilon), FloorInt(b.Max.X-Epsilon)
	y0, y1 := FloorInt(b.Min.Y+Epsilon), FloorInt(b.Max.Y-Epsilon)
	z0, z1 := FloorInt(b.Min.Z+Epsilon), FloorInt(b.Max.Z-Epsilon)
	out := make([]BlockPos, 0, (x1-x0+1)*(y1-y0+1)*(z1-z0+1))
	for y := y0; y <= y1; y++ {
		for z := z0; z <= z1; z++ {
			for x := x0; x <= x1; x++ {
				out = append(out, BlockPos{X: x, Y: y, Z: z})
			}
		}
	}
	return out
}

// NearestDistance is the distance from p to the closest point of the box.
func (b AABB) NearestDistance(p Vec3) float64 {
	q := Vec3{
		X: Clamp(p.X, b.Min.X, b.Max.X),
		Y: Clamp(p.Y, b.Min.Y, b.Max.Y),
		Z: Clamp(p.Z, b.Min.Z, b.Max.Z),
	}
	return math.Sqrt(q.Sub(p).Dot(q.Sub(p)))
}
