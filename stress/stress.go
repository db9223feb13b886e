// Package stress implements prey stress dynamics: exponential decay plus an
// ordered set of additive sources evaluated every tick (not gated by a
// state's reaction period), grounded on the source's stress-source set
// (predator proximity, crowded/stressed neighbors).
package stress

import (
	"math"

	"github.com/murmuration/engine/action"
	"github.com/murmuration/engine/math3"
)

// Source contributes one additive term to an agent's stress each tick.
type Source interface {
	Apply(ctx *action.Context) float32
}

// PredatorDistance adds w·exp(−d/shape) where d is the distance to the
// nearest predator at any range; zero if there is no predator, or if shape
// is not positive.
type PredatorDistance struct {
	W     float32
	Shape float32
}

func (s *PredatorDistance) Apply(ctx *action.Context) float32 {
	row := ctx.OtherNeighbors()
	if len(row) == 0 || s.Shape <= 0 {
		return 0
	}
	d := float64(math.Sqrt(float64(row[0].DistSq)))
	return s.W * float32(math.Exp(-d/float64(s.Shape)))
}

// NeighborsStress adds w·mean(smootherstep(0,1,neighbor.stress)) over the
// accepted own-species neighbor set — crowding into already-stressed
// neighbors raises one's own stress.
type NeighborsStress struct {
	action.Sensing
}

func (s *NeighborsStress) Apply(ctx *action.Context) float32 {
	row := ctx.OwnNeighbors()
	accepted := s.WhileTopo(ctx.Self.Dir, ctx.Self.Pos, row)
	if len(accepted) == 0 {
		return 0
	}
	var sum float32
	for _, n := range accepted {
		sum += math3.Smootherstep(0, 1, n.Stress)
	}
	return s.W * sum / float32(len(accepted))
}

// Evaluator runs one species' full stress update for one agent: exponential
// decay toward zero, then every source's contribution, clamped at zero
// (§8 invariant 3).
type Evaluator struct {
	Decay   float32
	Sources []Source
}

// Step advances ctx.Self.Stress by one tick.
func (e *Evaluator) Step(ctx *action.Context) {
	self := ctx.Self
	self.Stress -= e.Decay * self.Stress * ctx.DT
	for _, src := range e.Sources {
		self.Stress += src.Apply(ctx)
	}
	if self.Stress < 0 {
		self.Stress = 0
	}
}
