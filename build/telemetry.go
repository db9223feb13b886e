package build

import (
	"fmt"
	"strings"

	"github.com/murmuration/engine/config"
	"github.com/murmuration/engine/sim"
	"github.com/murmuration/engine/telemetry"
)

// Analysis compiles Simulation.Analysis.Observers[] into attached
// AnalysisObservers, rooted at a fresh run directory under cfg's
// data_folder, and returns that directory (empty if analysis is disabled).
// A Type prefixed with "~" is parsed but skipped (§6).
func Analysis(s *sim.Simulation, cfg *config.Config) (string, error) {
	root := cfg.Simulation.Analysis.DataFolder
	if root == "" {
		return "", nil
	}
	dir, err := telemetry.NewRunDir(root, cfg)
	if err != nil {
		return "", fmt.Errorf("analysis: %w", err)
	}
	for _, spec := range cfg.Simulation.Analysis.Observers {
		name := spec.Type
		if strings.HasPrefix(name, "~") {
			continue
		}
		smp, err := telemetry.NewSampler(name, spec.Params)
		if err != nil {
			return "", fmt.Errorf("analysis: %w", err)
		}
		obs, err := telemetry.NewAnalysisObserver(dir, name, smp, spec.Params)
		if err != nil {
			return "", fmt.Errorf("analysis: %w", err)
		}
		s.AppendObserver(obs)
	}
	return dir, nil
}
