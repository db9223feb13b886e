package sim

import (
	"golang.org/x/exp/rand"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/group"
	"github.com/murmuration/engine/neighbor"
	"github.com/murmuration/engine/state"
	"github.com/murmuration/engine/stress"
)

// speciesRuntime bundles one species' compiled machine and live state: the
// population itself, its neighbor index against both species, its group
// tracker, and the per-worker RNGs its state steps draw from.
type speciesRuntime struct {
	tag agent.Species

	pop       *agent.Population
	aero      agent.AeroParams
	machine   *state.Machine
	stress    *stress.Evaluator
	neighbors *neighbor.Index
	groups    *group.Tracker

	// updateTime[i] is the tick at which agent i's state machine is next
	// due to step, staggered uniformly over [0, 1/dt) at construction so
	// the whole population doesn't re-evaluate on the same tick (§4.8).
	updateTime []agent.Tick

	// rngs is one generator per scheduler worker, seeded deterministically
	// at construction so a given worker/tick/agent triple always draws the
	// same sequence (§5).
	rngs []*rand.Rand
}

func newSpeciesRuntime(tag agent.Species, pop *agent.Population, aero agent.AeroParams, m *state.Machine, ev *stress.Evaluator, numWorkers int, seed uint64) *speciesRuntime {
	rngs := make([]*rand.Rand, numWorkers)
	for i := range rngs {
		rngs[i] = rand.New(rand.NewSource(seed + uint64(i)*0x9E3779B97F4A7C15 + uint64(tag)*0xD1B54A32D192ED03))
	}
	return &speciesRuntime{
		tag:        tag,
		pop:        pop,
		aero:       aero,
		machine:    m,
		stress:     ev,
		groups:     group.NewTracker(),
		updateTime: make([]agent.Tick, pop.Len()),
		rngs:       rngs,
	}
}

// stagger draws each agent's first NextUpdate uniformly from [0, period)
// ticks so the population's state steps don't all land on tick 0.
func (r *speciesRuntime) stagger(period agent.Tick, rng *rand.Rand) {
	for i := range r.pop.Agents {
		a := &r.pop.Agents[i]
		if period > 0 {
			a.NextUpdate = agent.Tick(rng.Int63n(int64(period)))
		}
		a.NeedsEntry = true
		r.updateTime[i] = a.NextUpdate
	}
}
