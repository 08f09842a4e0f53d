package pathing

import "voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"

// MaxDrop is the deepest ledge a planned route steps off.
const MaxDrop = 3

type PlanEnv interface {
	Solid(p mathx.BlockPos) bool
	ChunkLoaded(p mathx.BlockPos) bool
}

// Standable reports whether feet can occupy p: two free blocks over a solid one.
func Standable(env PlanEnv, p mathx.BlockPos) bool {
	if !env.ChunkLoaded(p) {
		return false
	}
	return !env.Solid(p) && !env.Solid(p.Add(mathx.BlockPos{Y: 1})) && env.Solid(p.Add(mathx.BlockPos{Y: -1}))
}

// Plan finds a walking route from start to goal with a breadth-first search
// over 4-neighbors. Each step may climb one block or drop up to MaxDrop.
// Neighbor order is fixed so equal inputs always give the same route. The
// route excludes start and ends at goal.
func Plan(env PlanEnv, start, goal mathx.BlockPos, maxNodes int) ([]mathx.BlockPos, bool) {
	if maxNodes <= 0 || !Standable(env, goal) {
		return nil, false
	}
	if start == goal {
		return nil, true
	}

	dirs := []mathx.BlockPos{{X: 1}, {X: -1}, {Z: 1}, {Z: -1}}
	parent := map[mathx.BlockPos]mathx.BlockPos{start: start}
	queue := []mathx.BlockPos{start}

	for head := 0; head < len(queue) && len(parent) <= maxNodes; head++ {
		cur := queue[head]
		for _, d := range dirs {
			next, ok := stepTo(env, cur, d)
			if !ok {
				continue
			}
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur
			if next == goal {
				return unwind(parent, start, goal), true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

func stepTo(env PlanEnv, cur, d mathx.BlockPos) (mathx.BlockPos, bool) {
	flat := cur.Add(d)
	if Standable(env, flat) {
		return flat, true
	}
	up := flat.Add(mathx.BlockPos{Y: 1})
	if !env.Solid(cur.Add(mathx.BlockPos{Y: 2})) && Standable(env, up) {
		return up, true
	}
	if env.Solid(flat) || env.Solid(flat.Add(mathx.BlockPos{Y: 1})) {
		return mathx.BlockPos{}, false
	}
	for drop := 1; drop <= MaxDrop; drop++ {
		p := flat.Add(mathx.BlockPos{Y: -drop})
		if env.Solid(p) {
			return mathx.BlockPos{}, false
		}
		if Standable(env, p) {
			return p, true
		}
	}
	return mathx.BlockPos{}, false
}

func unwind(parent map[mathx.BlockPos]mathx.BlockPos, start, goal mathx.BlockPos) []mathx.BlockPos {
	var out []mathx.BlockPos
	for p := goal; p != start; p = parent[p] {
		out = append(out, p)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
