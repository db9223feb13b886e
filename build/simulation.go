package build

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/config"
	"github.com/murmuration/engine/initcond"
	"github.com/murmuration/engine/sim"
	"github.com/murmuration/engine/state"
)

// Species compiles one species' config block into the aero/machine/stress
// triple sim.New needs, plus its initial instances drawn from its
// InitCondit strategy.
func Species(sc config.SpeciesConfig, copyEscape bool, rng *rand.Rand) (sim.SpeciesInput, sim.Instances, error) {
	aero := BuildAero(sc.Aero)

	stressEval, err := BuildStressEvaluator(sc.Stress)
	if err != nil {
		return sim.SpeciesInput{}, sim.Instances{}, fmt.Errorf("stress: %w", err)
	}

	// The transition interpolator is evaluated at stress for prey, a
	// constant 0 for predators (§4.4) — copyEscape is likewise a
	// prey-only channel, so the two flags travel together.
	var stressFn state.StressFunc
	if copyEscape {
		stressFn = func(a *agent.Agent) float32 { return a.Stress }
	}

	machine, _, err := BuildMachine(sc, copyEscape, stressFn, aero.BodyMass)
	if err != nil {
		return sim.SpeciesInput{}, sim.Instances{}, fmt.Errorf("machine: %w", err)
	}

	pos, dir, err := initcond.Build(sc.InitCondit, sc.N, rng)
	if err != nil {
		return sim.SpeciesInput{}, sim.Instances{}, fmt.Errorf("initial conditions: %w", err)
	}

	return sim.SpeciesInput{N: sc.N, Aero: aero, Machine: machine, Stress: stressEval},
		sim.Instances{Pos: pos, Dir: dir},
		nil
}

// Simulation compiles a full config.Config into a ready-to-Initialize
// sim.Simulation plus both species' initial instances.
func Simulation(cfg *config.Config, seed uint64) (*sim.Simulation, sim.Instances, sim.Instances, error) {
	rng := rand.New(rand.NewSource(seed))

	preyInput, preyInstances, err := Species(cfg.Prey, true, rng)
	if err != nil {
		return nil, sim.Instances{}, sim.Instances{}, fmt.Errorf("Prey: %w", err)
	}
	predInput, predInstances, err := Species(cfg.Pred, false, rng)
	if err != nil {
		return nil, sim.Instances{}, sim.Instances{}, fmt.Errorf("Pred: %w", err)
	}

	dt := float32(cfg.Simulation.DT)
	groupInterval := agent.Tick(1)
	if cfg.Simulation.GroupDetection.Interval > 0 && dt > 0 {
		groupInterval = agent.Tick(cfg.Simulation.GroupDetection.Interval / float64(dt))
		if groupInterval < 1 {
			groupInterval = 1
		}
	}
	threshold := float32(cfg.Simulation.GroupDetection.Threshold)

	s := sim.New(sim.Config{
		DT:               dt,
		GroupThresholdSq: threshold * threshold,
		GroupInterval:    groupInterval,
		NumWorkers:       cfg.Simulation.NumThreads,
		Seed:             seed,
		Prey:             preyInput,
		Pred:             predInput,
	})
	return s, preyInstances, predInstances, nil
}
