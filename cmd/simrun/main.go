// Command simrun drives the engine headlessly: load config, compile it into
// a sim.Simulation, run it to Tmax (or until terminated), and exit.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/build"
	"github.com/murmuration/engine/config"
	"github.com/murmuration/engine/telemetry"
)

var (
	configPath  = flag.String("config", "", "path to a YAML config document (merged over embedded defaults)")
	seed        = flag.Uint64("seed", 1, "deterministic RNG seed")
	logInterval = flag.Int("log", 0, "log progress every N ticks (0 = only start/finish)")
	perfLog     = flag.Bool("perf", false, "log rolling performance stats alongside progress")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		slog.Error("simrun failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, preyInstances, predInstances, err := build.Simulation(cfg, *seed)
	if err != nil {
		return fmt.Errorf("compiling simulation: %w", err)
	}

	perf := telemetry.NewPerfCollector(60)
	if *perfLog {
		s.AttachPerf(perf)
	}

	dir, err := build.Analysis(s, cfg)
	if err != nil {
		return fmt.Errorf("compiling analysis observers: %w", err)
	}
	if dir != "" {
		slog.Info("analysis output", "dir", dir)
	}

	if err := s.Initialize(preyInstances, predInstances); err != nil {
		return fmt.Errorf("initializing simulation: %w", err)
	}

	maxTick := agent.Tick(0)
	if cfg.Simulation.DT > 0 {
		maxTick = agent.Tick(float64(cfg.Simulation.Tmax) / cfg.Simulation.DT)
	}
	if cfg.GUI.Headless && maxTick <= 0 {
		return fmt.Errorf("headless run requires a finite Simulation.Tmax")
	}

	slog.Info("starting simulation", "prey", cfg.Prey.N, "pred", cfg.Pred.N, "max_tick", maxTick, "seed", *seed)
	start := time.Now()

	for s.CurrentTick() < int64(maxTick) && !s.Terminated() {
		s.Update()
		if *logInterval > 0 && s.CurrentTick()%int64(*logInterval) == 0 {
			if *perfLog {
				perf.Stats().LogStats()
			}
			elapsed := time.Since(start)
			ticksPerSec := float64(s.CurrentTick()) / elapsed.Seconds()
			slog.Info("progress", "tick", s.CurrentTick(), "ticks_per_sec", int(ticksPerSec), "elapsed", elapsed.Round(time.Second))
		}
	}
	s.Run(maxTick) // ticks are already exhausted; this call only delivers Finished

	elapsed := time.Since(start)
	slog.Info("simulation complete", "ticks", s.CurrentTick(), "elapsed", elapsed.Round(time.Millisecond))
	return nil
}
