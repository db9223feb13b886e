package build

import (
	"fmt"

	"github.com/murmuration/engine/config"
	"github.com/murmuration/engine/stress"
)

// BuildStressEvaluator compiles a species' stress config into an evaluator.
// A species with no sources still gets a valid (no-op) evaluator, so
// predators — whose stress is always read as constant 0 by the transition
// interpolator — can share the same per-tick call site as prey.
func BuildStressEvaluator(cfg config.StressConfig) (*stress.Evaluator, error) {
	sources := make([]stress.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		src, err := buildStressSource(sc)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return &stress.Evaluator{Decay: float32(cfg.Decay), Sources: sources}, nil
}

func buildStressSource(cfg config.StressSourceConfig) (stress.Source, error) {
	p := cfg.Params
	switch cfg.Type {
	case "predator_distance":
		return &stress.PredatorDistance{W: f32(p, "w", 0), Shape: f32(p, "distr_shape", 1)}, nil
	case "neighbors_stress":
		return &stress.NeighborsStress{Sensing: sensingFrom(p)}, nil
	default:
		return nil, &config.InitError{Reason: fmt.Sprintf("unknown stress source type %q", cfg.Type)}
	}
}
