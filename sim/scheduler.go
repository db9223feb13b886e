package sim

import (
	"golang.org/x/exp/rand"

	"github.com/murmuration/engine/action"
	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/math3"
)

// tickOne advances the whole simulation by one tick, following the §4.8
// algorithm exactly: PreTick notify, per-species neighbor refresh for due
// agents, per-species state step for due agents, per-species integration
// and group tracking, optional re-cluster, tick increment, Tick notify.
// Callers must already hold sim.mu.
func (s *Simulation) tickOne() {
	if s.perf != nil {
		s.perf.StartTick()
	}
	s.notify(observerPreTick)

	for sp := range s.species {
		r := s.species[sp]
		if s.perf != nil {
			s.perf.StartPhase(phaseRefreshNeighbors)
		}
		s.refreshNeighbors(r)

		if s.perf != nil {
			s.perf.StartPhase(phaseStateStep)
		}
		s.stepStates(r)
	}

	for sp := range s.species {
		r := s.species[sp]
		if s.perf != nil {
			s.perf.StartPhase(phaseIntegrate)
		}
		s.integrate(r)

		if s.perf != nil {
			s.perf.StartPhase(phaseGroupTrack)
		}
		r.groups.Track(s.dt)
	}

	if s.tick >= s.groupNextUpdate {
		if s.perf != nil {
			s.perf.StartPhase(phaseGroupCluster)
		}
		for sp := range s.species {
			r := s.species[sp]
			r.groups.Cluster(r.pop, s.groupThresholdSq)
		}
		s.groupNextUpdate += s.groupInterval
	}

	s.tick++
	if s.perf != nil {
		s.perf.StartPhase(phaseObservers)
	}
	s.notify(observerTick)
	if s.perf != nil {
		s.perf.EndTick()
	}
}

// refreshNeighbors recomputes the sorted neighbor rows of every agent whose
// update_times entry is due, or whose ForceNI flag is set (§4.8). The loop
// is data-parallel across disjoint agent indices: each agent writes only
// its own row.
func (s *Simulation) refreshNeighbors(r *speciesRuntime) {
	n := r.pop.Len()
	parallelFor(n, s.numWorkers, func(_, start, end int) {
		for i := start; i < end; i++ {
			a := &r.pop.Agents[i]
			if r.updateTime[i] > s.tick && !s.forceNIUpdate {
				continue
			}
			r.neighbors.RefreshAgent(agent.Index(i), a, s.populations(), r.tag)
		}
	})
}

// stepStates runs one reaction period for every agent whose update_times
// entry is due, then advances its schedule to tick + its state's reaction
// period. Stress is updated first (every tick, not gated by reaction
// period) so the sampled transition sees the current value.
func (s *Simulation) stepStates(r *speciesRuntime) {
	n := r.pop.Len()
	parallelFor(n, s.numWorkers, func(worker, start, end int) {
		rng := r.rngs[worker]
		for i := start; i < end; i++ {
			a := &r.pop.Agents[i]

			ctx := s.contextFor(r, agent.Index(i), a, rng)
			if r.stress != nil {
				r.stress.Step(&ctx)
			}

			if r.updateTime[i] > s.tick {
				continue
			}
			next := r.machine.Step(&ctx)
			a.LastUpdate = s.tick
			a.NextUpdate = next
			r.updateTime[i] = next
		}
	})
}

// integrate advances flight motion and the body frame for every agent whose
// schedule is not NEVER (§4.8 — in this engine agents are never retired, so
// this is effectively every agent, but the guard is kept for parity).
func (s *Simulation) integrate(r *speciesRuntime) {
	n := r.pop.Len()
	parallelFor(n, s.numWorkers, func(_, start, end int) {
		for i := start; i < end; i++ {
			a := &r.pop.Agents[i]
			if r.updateTime[i] == agent.NeverScheduled {
				continue
			}
			newPos, newDir, newSpeed, newAccel := agent.Integrate(a.Pos, a.Dir, a.Speed, a.Steering, s.dt, r.aero)
			a.H.Update(newPos, newDir, newSpeed, s.dt, math3.BankRateConfig{
				BetaIn:      r.aero.BetaIn,
				BodyMass:    r.aero.BodyMass,
				Gravity:     r.aero.Gravity,
				CruiseSpeed: r.aero.CruiseSpeed,
			})
			a.Pos, a.Dir, a.Speed, a.Accel = newPos, newDir, newSpeed, newAccel
		}
	})
}

// contextFor builds the read-only Context an action/stress/state call sees
// for agent i of species r this tick.
func (s *Simulation) contextFor(r *speciesRuntime, idx agent.Index, self *agent.Agent, rng *rand.Rand) action.Context {
	return action.Context{
		Self:      self,
		SelfIdx:   idx,
		Species:   r.tag,
		Tick:      s.tick,
		DT:        s.dt,
		Neighbors: r.neighbors,
		Pops:      s.populations(),
		Groups:    s.groupTrackers(),
		Rng:       rng,
	}
}
