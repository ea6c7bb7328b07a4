// Package path implements A* over the spatial grid with a profile-keyed
// result cache. NoPath is a normal typed outcome, never an error.
package path

import (
	"container/heap"

	"hamletworks/internal/sim/grid"
)

// Path is an ordered tile sequence from origin to destination inclusive,
// with its total profile-adjusted cost.
type Path struct {
	Tiles     []grid.Pos
	CostMilli int
}

type node struct {
	pos   grid.Pos
	f     int    // g + heuristic
	seq   uint64 // insertion order, breaks f ties deterministically
	index int
}

// openQueue orders by (f, insertion sequence): among equal-cost
// candidates the first discovered wins, so optimal-path ties resolve
// identically on every run.
type openQueue []*node

func (q openQueue) Len() int { return len(q) }
func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *openQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *openQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

var neighborOffsets = [4]grid.Pos{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// Find runs A* from origin to dest under the profile. Occupied tiles
// block movement except the destination itself, so movers can walk up to
// the building they are headed for. The second return is false when no
// path exists.
func Find(g *grid.Grid, origin, dest grid.Pos, pr Profile) (Path, bool) {
	if !g.InBounds(origin) || !g.InBounds(dest) {
		return Path{}, false
	}
	if origin == dest {
		return Path{Tiles: []grid.Pos{origin}}, true
	}
	if pr.EntryCostMilli(g, dest) == 0 {
		return Path{}, false
	}

	hScale := pr.minCostMilli()
	h := func(p grid.Pos) int { return p.ManhattanTo(dest) * hScale }

	var seq uint64
	open := &openQueue{}
	heap.Init(open)

	gScore := map[grid.Pos]int{origin: 0}
	cameFrom := map[grid.Pos]grid.Pos{}
	inOpen := map[grid.Pos]*node{}
	closed := map[grid.Pos]bool{}

	start := &node{pos: origin, f: h(origin), seq: seq}
	seq++
	heap.Push(open, start)
	inOpen[origin] = start

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		delete(inOpen, cur.pos)
		if cur.pos == dest {
			return reconstruct(cameFrom, origin, dest, gScore[dest]), true
		}
		closed[cur.pos] = true

		for _, off := range neighborOffsets {
			next := grid.Pos{X: cur.pos.X + off.X, Y: cur.pos.Y + off.Y}
			if closed[next] || !g.InBounds(next) {
				continue
			}
			step := pr.EntryCostMilli(g, next)
			if step == 0 {
				continue
			}
			if g.At(next).Occupant != 0 && next != dest {
				continue
			}
			tentative := gScore[cur.pos] + step
			if old, seen := gScore[next]; seen && tentative >= old {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = cur.pos
			f := tentative + h(next)
			if n, ok := inOpen[next]; ok {
				n.f = f
				heap.Fix(open, n.index)
				continue
			}
			n := &node{pos: next, f: f, seq: seq}
			seq++
			heap.Push(open, n)
			inOpen[next] = n
		}
	}
	return Path{}, false
}

func reconstruct(cameFrom map[grid.Pos]grid.Pos, origin, dest grid.Pos, cost int) Path {
	var rev []grid.Pos
	for p := dest; ; {
		rev = append(rev, p)
		if p == origin {
			break
		}
		p = cameFrom[p]
	}
	tiles := make([]grid.Pos, len(rev))
	for i, p := range rev {
		tiles[len(rev)-1-i] = p
	}
	return Path{Tiles: tiles, CostMilli: cost}
}
