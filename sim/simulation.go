// Package sim implements the tick-driven scheduler and the thread-safe
// Simulation facade that hosts it: species populations, neighbor matrices,
// group trackers, and the observer chain (§4.8, §4.10).
package sim

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/rand"

	"github.com/murmuration/engine/action"
	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/group"
	"github.com/murmuration/engine/math3"
	"github.com/murmuration/engine/neighbor"
	"github.com/murmuration/engine/observer"
	"github.com/murmuration/engine/state"
	"github.com/murmuration/engine/stress"
	"github.com/murmuration/engine/telemetry"
)

const (
	phaseRefreshNeighbors = telemetry.PhaseNeighbors
	phaseStateStep        = telemetry.PhaseStateStep
	phaseIntegrate        = telemetry.PhaseIntegrate
	phaseGroupTrack       = telemetry.PhaseGroupTrack
	phaseGroupCluster     = telemetry.PhaseGroupScan
	phaseObservers        = telemetry.PhaseObservers

	observerPreTick = observer.PreTick
	observerTick    = observer.Tick
)

// Instances is a bulk position/direction snapshot for one species, the
// payload of set_instances/get_instances (§4.10, §8's round-trip law).
type Instances struct {
	Pos []math3.Vec3
	Dir []math3.Vec3
}

// Simulation is the facade every external caller (headless driver, GUI,
// tests) goes through: it owns both species' populations, drives the tick
// algorithm, and serializes external reads/snapshots behind a sync.Mutex.
// The mutex is not re-entrant: a facade method that takes it, called from
// inside a Visit/VisitAll callback, deadlocks. Per-tick parallel loops run
// under that same lock held by update,
// so they never contend with it directly (§5).
type Simulation struct {
	mu sync.Mutex

	dt               float32
	tick             agent.Tick
	groupThresholdSq float32
	groupInterval    agent.Tick
	groupNextUpdate  agent.Tick
	numWorkers       int

	species [agent.NumSpecies]*speciesRuntime
	chain   observer.Chain

	forceNIUpdate bool
	forceNICount  int32 // atomic reference count backing forceNIUpdate

	terminated atomic.Bool

	perf *telemetry.PerfCollector
}

// Config bundles everything New needs to assemble a Simulation from
// build-package output, keeping this package free of any dependency on the
// config schema itself.
type Config struct {
	DT               float32
	GroupThresholdSq float32
	GroupInterval    agent.Tick // ticks between re-clusters
	NumWorkers       int
	Seed             uint64

	Prey, Pred SpeciesInput
}

// SpeciesInput is one species' compiled runtime objects plus its initial
// population size — exactly what BuildMachine/BuildAero/BuildStressEvaluator
// produce.
type SpeciesInput struct {
	N       int
	Aero    agent.AeroParams
	Machine *state.Machine
	Stress  *stress.Evaluator
}

// New constructs a Simulation with both populations allocated (zero-valued
// agents — callers set initial positions/directions via Initialize) and
// schedules are staggered per §4.8.
func New(cfg Config) *Simulation {
	s := &Simulation{
		dt:               cfg.DT,
		groupThresholdSq: cfg.GroupThresholdSq,
		groupInterval:    cfg.GroupInterval,
		groupNextUpdate:  cfg.GroupInterval,
		numWorkers:       workerCount(cfg.NumWorkers),
	}

	preyPop := agent.NewPopulation(agent.Prey, cfg.Prey.N)
	predPop := agent.NewPopulation(agent.Predator, cfg.Pred.N)

	s.species[agent.Prey] = newSpeciesRuntime(agent.Prey, preyPop, cfg.Prey.Aero, cfg.Prey.Machine, cfg.Prey.Stress, s.numWorkers, cfg.Seed)
	s.species[agent.Predator] = newSpeciesRuntime(agent.Predator, predPop, cfg.Pred.Aero, cfg.Pred.Machine, cfg.Pred.Stress, s.numWorkers, cfg.Seed^0xA5A5A5A5A5A5A5A5)

	s.species[agent.Prey].neighbors = neighbor.NewIndex(preyPop, s.populations())
	s.species[agent.Predator].neighbors = neighbor.NewIndex(predPop, s.populations())

	seedRng := rand.New(rand.NewSource(cfg.Seed))
	for sp := range s.species {
		period := agent.Tick(0)
		if s.dt > 0 {
			period = agent.Tick(1 / s.dt)
		}
		s.species[sp].stagger(period, seedRng)
	}

	return s
}

// AttachPerf turns on phase timing, recorded under the phase name constants
// in package telemetry.
func (s *Simulation) AttachPerf(p *telemetry.PerfCollector) { s.perf = p }

// AppendObserver adds o to the observer chain.
func (s *Simulation) AppendObserver(o observer.Observer) { s.chain.Append(o) }

func (s *Simulation) notify(msg observer.Msg) { s.chain.Notify(msg, s) }

// CurrentTick and DT satisfy observer.Sim.
func (s *Simulation) CurrentTick() int64 { return int64(s.tick) }
func (s *Simulation) DT() float32        { return s.dt }

// Initialize sets both species' initial positions/directions and notifies
// Initialized (§4.10).
func (s *Simulation) Initialize(prey, pred Instances) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := applyInstances(s.species[agent.Prey].pop, prey, s.species[agent.Prey].aero.CruiseSpeed); err != nil {
		return fmt.Errorf("prey initial instances: %w", err)
	}
	if err := applyInstances(s.species[agent.Predator].pop, pred, s.species[agent.Predator].aero.CruiseSpeed); err != nil {
		return fmt.Errorf("predator initial instances: %w", err)
	}
	for sp := range s.species {
		r := s.species[sp]
		for i := range r.pop.Agents {
			a := &r.pop.Agents[i]
			a.H.Initialize(a.Pos, a.Dir, a.Speed)
		}
	}
	s.notify(observer.Initialized)
	return nil
}

// applyInstances overwrites pop's positions/directions from a snapshot. A
// fresh population (Speed still zero) seeds Speed at defaultSpeed — callers
// resetting an already-running population via SetInstances keep whatever
// speed each agent already had.
func applyInstances(pop *agent.Population, in Instances, defaultSpeed float32) error {
	if len(in.Pos) != pop.Len() || len(in.Dir) != pop.Len() {
		return fmt.Errorf("got %d/%d pos/dir, want %d", len(in.Pos), len(in.Dir), pop.Len())
	}
	for i := range pop.Agents {
		a := &pop.Agents[i]
		a.Pos = in.Pos[i]
		a.Dir = in.Dir[i].Normalize(math3.Vec3{X: 1})
		if a.Speed == 0 {
			a.Speed = defaultSpeed
		}
	}
	return nil
}

// Update advances the simulation by exactly one tick, holding the facade
// lock for the whole phase sequence (§4.10, §5).
func (s *Simulation) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forceNIUpdate = atomic.LoadInt32(&s.forceNICount) > 0
	s.tickOne()
}

// Run advances the simulation until tick reaches maxTick or Terminate is
// called, whichever comes first.
func (s *Simulation) Run(maxTick agent.Tick) {
	for s.CurrentTick() < int64(maxTick) && !s.Terminated() {
		s.Update()
	}
	s.mu.Lock()
	s.notify(observer.Finished)
	s.mu.Unlock()
}

// ForceNeighborUpdate increments the reference count that forces every
// agent's neighbor row to refresh regardless of schedule, for the duration
// release() is not called — used by callers (e.g. a GUI inspector) that
// need up-to-date neighbor data outside the normal cadence.
func (s *Simulation) ForceNeighborUpdate() (release func()) {
	atomic.AddInt32(&s.forceNICount, 1)
	return func() { atomic.AddInt32(&s.forceNICount, -1) }
}

// Terminate sets the cooperative termination flag; a tick already in
// progress always completes (§5).
func (s *Simulation) Terminate() { s.terminated.Store(true) }

// Terminated reports the termination flag.
func (s *Simulation) Terminated() bool { return s.terminated.Load() }

// GetInstances returns a snapshot of species sp's positions/directions.
func (s *Simulation) GetInstances(sp agent.Species) Instances {
	s.mu.Lock()
	defer s.mu.Unlock()
	pop := s.species[sp].pop
	out := Instances{Pos: make([]math3.Vec3, pop.Len()), Dir: make([]math3.Vec3, pop.Len())}
	for i, a := range pop.Agents {
		out.Pos[i], out.Dir[i] = a.Pos, a.Dir
	}
	return out
}

// SetInstances overwrites species sp's positions/directions from a
// previously captured snapshot (§8's get/set round-trip law).
func (s *Simulation) SetInstances(sp agent.Species, in Instances) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return applyInstances(s.species[sp].pop, in, s.species[sp].aero.CruiseSpeed)
}

// Pop returns species sp's population. The returned pointer is valid only
// while the caller holds the lock via Visit/VisitAll, or briefly between
// calls in a single-threaded driver (§4.10).
func (s *Simulation) Pop(sp agent.Species) *agent.Population { return s.species[sp].pop }

// SortedView returns agent idx's sorted (self-excluded) neighbor row of
// species other, as seen by species self's runtime index.
func (s *Simulation) SortedView(self agent.Species, idx agent.Index, other agent.Species) neighbor.Row {
	return s.species[self].neighbors.View(idx, other)
}

// RawView is SortedView including the self entry when self == other.
func (s *Simulation) RawView(self agent.Species, idx agent.Index, other agent.Species) neighbor.Row {
	return s.species[self].neighbors.RawView(idx, other)
}

// Groups returns species sp's most recently published group descriptors.
func (s *Simulation) Groups(sp agent.Species) []group.Descr { return s.species[sp].groups.Groups() }

// GroupOf returns the group agent idx of species sp belongs to, or
// group.NoGroup.
func (s *Simulation) GroupOf(sp agent.Species, idx agent.Index) group.ID {
	return s.species[sp].groups.GroupOf(idx)
}

// GroupMates returns every member of gid within species sp.
func (s *Simulation) GroupMates(sp agent.Species, gid group.ID) []agent.Index {
	return s.species[sp].groups.GroupMates(gid)
}

// Visit calls fn once per agent of species sp under the facade lock. The
// lock is not re-entrant: a nested Visit/VisitAll call from within fn
// deadlocks.
func (s *Simulation) Visit(sp agent.Species, fn func(agent.Index, *agent.Agent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pop := s.species[sp].pop
	for i := range pop.Agents {
		fn(agent.Index(i), &pop.Agents[i])
	}
}

// VisitAll calls fn once per agent across both species.
func (s *Simulation) VisitAll(fn func(agent.Species, agent.Index, *agent.Agent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sp := range s.species {
		pop := s.species[sp].pop
		for i := range pop.Agents {
			fn(agent.Species(sp), agent.Index(i), &pop.Agents[i])
		}
	}
}

func (s *Simulation) populations() action.Populations {
	return action.Populations{s.species[agent.Prey].pop, s.species[agent.Predator].pop}
}

func (s *Simulation) groupTrackers() action.Groups {
	return action.Groups{s.species[agent.Prey].groups, s.species[agent.Predator].groups}
}
