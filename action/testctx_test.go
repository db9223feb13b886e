package action

import (
	"golang.org/x/exp/rand"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/group"
	"github.com/murmuration/engine/math3"
	"github.com/murmuration/engine/neighbor"
)

// testWorld wires two populations, a refreshed neighbor index, and empty
// group trackers into a Context, the way sim.Simulation does per tick but
// without the scheduler around it.
type testWorld struct {
	pops    Populations
	indices [agent.NumSpecies]*neighbor.Index
	rng     *rand.Rand
}

func newTestWorld(preyPos, predPos []math3.Vec3) *testWorld {
	prey := agent.NewPopulation(agent.Prey, len(preyPos))
	for i, p := range preyPos {
		prey.Agents[i].Pos = p
		prey.Agents[i].Dir = math3.Vec3{X: 1}
		prey.Agents[i].H.Initialize(p, math3.Vec3{X: 1}, 1)
	}
	pred := agent.NewPopulation(agent.Predator, len(predPos))
	for i, p := range predPos {
		pred.Agents[i].Pos = p
		pred.Agents[i].Dir = math3.Vec3{X: 1}
		pred.Agents[i].H.Initialize(p, math3.Vec3{X: 1}, 1)
	}

	pops := Populations{agent.Prey: prey, agent.Predator: pred}

	preyIdx := neighbor.NewIndex(prey, [2]*agent.Population{prey, pred})
	for i := range prey.Agents {
		preyIdx.RefreshAgent(agent.Index(i), &prey.Agents[i], [2]*agent.Population{prey, pred}, agent.Prey)
	}
	predIdx := neighbor.NewIndex(pred, [2]*agent.Population{prey, pred})
	for i := range pred.Agents {
		predIdx.RefreshAgent(agent.Index(i), &pred.Agents[i], [2]*agent.Population{prey, pred}, agent.Predator)
	}

	return &testWorld{
		pops:    pops,
		indices: [agent.NumSpecies]*neighbor.Index{agent.Prey: preyIdx, agent.Predator: predIdx},
		rng:     rand.New(rand.NewSource(1)),
	}
}

func (w *testWorld) ctxFor(sp agent.Species, i agent.Index, tick agent.Tick) *Context {
	return &Context{
		Self:      w.pops[sp].Get(i),
		SelfIdx:   i,
		Species:   sp,
		Tick:      tick,
		DT:        0.02,
		Neighbors: w.indices[sp],
		Pops:      w.pops,
		Groups:    Groups{group.NewTracker(), group.NewTracker()},
		Rng:       w.rng,
	}
}
