package action

import (
	"github.com/murmuration/engine/math3"
	"github.com/murmuration/engine/neighbor"
)

// Sensing holds the public fields every action exposes for the sensing
// loop: topological neighbor count, field-of-view cosine, squared max
// sensing distance, squared minimum separation, and a steering weight.
// Cfov is the cosine of the half field-of-view; a negative Cfov widens the
// cone past 90°, and Cfov near -1 approximates a full 360° "rear-look"
// sensor (§8 boundary behavior).
type Sensing struct {
	Topo     uint32
	Cfov     float32
	MaxDistSq float32
	MinSepSq  float32
	W         float32
}

// InFOV implements the in_fov predicate from §4.3: the candidate is not
// self (d²≠0), within MaxDistSq, and within the forward cone defined by
// Cfov.
func (s Sensing) InFOV(dir math3.Vec3, selfPos math3.Vec3, n neighbor.Info) bool {
	if n.DistSq == 0 || n.DistSq >= s.MaxDistSq {
		return false
	}
	toNeighbor := n.Pos.Sub(selfPos).Normalize(dir)
	return dir.Dot(toNeighbor) > s.Cfov
}

// WhileTopo walks row in sorted order (nearest first) and returns up to
// s.Topo accepted candidates, i.e. it implements the "while_topo" idiom:
// keep scanning until Topo candidates have passed InFOV, or the row is
// exhausted. The returned slice's length is the realized topo count, which
// may be less than s.Topo (§8 boundary behavior).
func (s Sensing) WhileTopo(dir, selfPos math3.Vec3, row neighbor.Row) []neighbor.Info {
	if s.Topo == 0 {
		return nil
	}
	out := make([]neighbor.Info, 0, s.Topo)
	for _, n := range row {
		if uint32(len(out)) >= s.Topo {
			break
		}
		if s.InFOV(dir, selfPos, n) {
			out = append(out, n)
		}
	}
	return out
}

// Nearest returns the first row entry within MinSepSq (the nearest
// neighbor, since row is sorted), or ok=false if none qualifies.
func (s Sensing) Nearest(row neighbor.Row) (neighbor.Info, bool) {
	for _, n := range row {
		if n.DistSq == 0 {
			continue
		}
		if n.DistSq < s.MinSepSq {
			return n, true
		}
		break // sorted ascending: first entry failing MinSepSq means none qualify
	}
	return neighbor.Info{}, false
}
