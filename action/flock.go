package action

import (
	"github.com/murmuration/engine/math3"
)

// Align sums accepted-neighbor directions, normalizes, and scales by W —
// the classic flocking "alignment" contribution.
type Align struct {
	Base
	Sensing
}

func (a *Align) Operate(ctx *Context) {
	row := ctx.OwnNeighbors()
	accepted := a.WhileTopo(ctx.Self.Dir, ctx.Self.Pos, row)
	if len(accepted) == 0 {
		return
	}
	var sum math3.Vec3
	for _, n := range accepted {
		other := ctx.Agent(ctx.Species, n.Idx)
		sum = sum.Add(other.Dir)
	}
	dir := sum.Normalize(math3.Vec3{})
	if dir.Zero() {
		return
	}
	ctx.Self.AddSteering(dir.Scale(a.W))
}

// CohereCentroid sums offsets to accepted neighbors, normalizes, and scales
// by W — steering toward the local flock centroid.
type CohereCentroid struct {
	Base
	Sensing
}

func (a *CohereCentroid) Operate(ctx *Context) {
	row := ctx.OwnNeighbors()
	accepted := a.WhileTopo(ctx.Self.Dir, ctx.Self.Pos, row)
	if len(accepted) == 0 {
		return
	}
	var sum math3.Vec3
	for _, n := range accepted {
		sum = sum.Add(n.Pos.Sub(ctx.Self.Pos))
	}
	dir := sum.Normalize(math3.Vec3{})
	if dir.Zero() {
		return
	}
	ctx.Self.AddSteering(dir.Scale(a.W))
}

// CohereCentroidDistance is CohereCentroid with W modulated by a
// smootherstep over the mean offset distance to the accepted set, so the
// cohesion pull ramps in between MinWDist and MaxWDist rather than
// switching on abruptly.
type CohereCentroidDistance struct {
	Base
	Sensing
	MinWDist, MaxWDist float32
}

func (a *CohereCentroidDistance) Operate(ctx *Context) {
	row := ctx.OwnNeighbors()
	accepted := a.WhileTopo(ctx.Self.Dir, ctx.Self.Pos, row)
	if len(accepted) == 0 {
		return
	}
	var sum math3.Vec3
	var meanDist float32
	for _, n := range accepted {
		off := n.Pos.Sub(ctx.Self.Pos)
		sum = sum.Add(off)
		meanDist += off.Len()
	}
	meanDist /= float32(len(accepted))
	dir := sum.Normalize(math3.Vec3{})
	if dir.Zero() {
		return
	}
	w := a.W * math3.Smootherstep(a.MinWDist, a.MaxWDist, meanDist)
	ctx.Self.AddSteering(dir.Scale(w))
}

// AvoidPosition sums reverse offsets for neighbors closer than the
// configured minimum separation — short-range repulsion.
type AvoidPosition struct {
	Base
	Sensing
}

func (a *AvoidPosition) Operate(ctx *Context) {
	row := ctx.OwnNeighbors()
	var sum math3.Vec3
	var n int
	for _, nb := range row {
		if nb.DistSq == 0 || nb.DistSq >= a.MinSepSq {
			continue
		}
		off := ctx.Self.Pos.Sub(nb.Pos)
		sum = sum.Add(off)
		n++
	}
	if n == 0 {
		return
	}
	dir := sum.Normalize(math3.Vec3{})
	if dir.Zero() {
		return
	}
	ctx.Self.AddSteering(dir.Scale(a.W))
}

// AvoidDirection combines position-based repulsion with a ray-ray
// collision check: if self's and a neighbor's velocity rays would
// intersect within ColDist, an additional "almost-parallel" correction is
// added perpendicular to the closing direction.
type AvoidDirection struct {
	Base
	Sensing
	ColDist float32
}

func (a *AvoidDirection) Operate(ctx *Context) {
	row := ctx.OwnNeighbors()
	var sum math3.Vec3
	var n int
	for _, nb := range row {
		if nb.DistSq == 0 || nb.DistSq >= a.MinSepSq {
			continue
		}
		off := ctx.Self.Pos.Sub(nb.Pos)
		sum = sum.Add(off)
		n++

		other := ctx.Agent(ctx.Species, nb.Idx)
		if closePoint, ok := rayIntersection(ctx.Self.Pos, ctx.Self.Dir, other.Pos, other.Dir, a.ColDist); ok {
			perp := ctx.Self.Pos.Sub(closePoint).Normalize(ctx.Self.Dir)
			sum = sum.Add(perp.Scale(a.MinSepSq))
		}
	}
	if n == 0 {
		return
	}
	dir := sum.Normalize(math3.Vec3{})
	if dir.Zero() {
		return
	}
	ctx.Self.AddSteering(dir.Scale(a.W))
}

// rayIntersection estimates the closest approach of two rays (p1,d1) and
// (p2,d2); ok is true when that approach falls within colDist.
func rayIntersection(p1, d1, p2, d2 math3.Vec3, colDist float32) (math3.Vec3, bool) {
	w0 := p1.Sub(p2)
	a := d1.Dot(d1)
	b := d1.Dot(d2)
	c := d2.Dot(d2)
	d := d1.Dot(w0)
	e := d2.Dot(w0)
	denom := a*c - b*b
	if denom < 1e-6 {
		// Nearly parallel: fall back to the midpoint between origins.
		mid := p1.Add(p2).Scale(0.5)
		if mid.Sub(p1).Len() < colDist {
			return mid, true
		}
		return math3.Vec3{}, false
	}
	s := (b*e - c*d) / denom
	t := (a*e - b*d) / denom
	closest1 := p1.Add(d1.Scale(s))
	closest2 := p2.Add(d2.Scale(t))
	mid := closest1.Add(closest2).Scale(0.5)
	if closest1.Sub(closest2).Len() < colDist {
		return mid, true
	}
	return math3.Vec3{}, false
}

// AvoidPredatorPosition turns perpendicular away from the nearest predator
// within MinSep, using the body frame's hemisphere query to pick a turn
// sign that is invariant to exact bearing (§4.1 rationale).
type AvoidPredatorPosition struct {
	Base
	Sensing
}

func (a *AvoidPredatorPosition) Operate(ctx *Context) {
	row := ctx.OtherNeighbors()
	nb, ok := a.Nearest(row)
	if !ok {
		return
	}
	hemi := ctx.Self.H.HemisphereOf(nb.Pos)
	side := ctx.Self.H.Side
	if hemi.Right {
		side = side.Neg()
	}
	ctx.Self.AddSteering(side.Scale(a.W))
}
