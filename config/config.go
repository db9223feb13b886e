// Package config loads the hierarchical simulation document: tick length,
// worker pool size, per-species population/aero/stress/state/transition
// definitions, initial-condition strategies, analysis output, and the
// headless/GUI switch (§6).
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the full resolved document.
type Config struct {
	Simulation SimulationConfig `yaml:"Simulation"`
	Prey       SpeciesConfig    `yaml:"Prey"`
	Pred       SpeciesConfig    `yaml:"Pred"`
	GUI        GUIConfig        `yaml:"gui"`
}

// SimulationConfig holds the engine-wide knobs.
type SimulationConfig struct {
	DT             float64              `yaml:"dt"`
	Tmax           int64                `yaml:"Tmax"`
	GroupDetection GroupDetectionConfig `yaml:"groupDetection"`
	NumThreads     int                  `yaml:"numThreads"`
	Analysis       AnalysisConfig       `yaml:"Analysis"`
}

// GroupDetectionConfig parameterizes the group tracker's cadence and the
// squared-distance clustering relation.
type GroupDetectionConfig struct {
	Threshold float64 `yaml:"threshold"`
	Interval  float64 `yaml:"interval"` // seconds between re-clusters
}

// AnalysisConfig names the output directory and the ordered observer specs
// attached to the simulation. An empty DataFolder disables analysis output
// entirely.
type AnalysisConfig struct {
	DataFolder string         `yaml:"data_folder"`
	Observers  []ObserverSpec `yaml:"Observers"`
}

// ObserverSpec is one entry of Simulation.Analysis.Observers[]. A Type
// prefixed with "~" is parsed but not attached (§6).
type ObserverSpec struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params"`
}

// GUIConfig holds the render/headless switch. The renderer itself is out of
// scope; this flag only tells the driver whether to skip it.
type GUIConfig struct {
	Headless bool `yaml:"headless"`
}

// global holds the process-wide loaded configuration, set once by Init.
var global *Config

// Init loads configuration from path, merged over embedded defaults, and
// installs it as the package-global document. Must be called before Cfg.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error, for use at program startup
// before any recover-capable boundary exists.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load reads a YAML document from path and merges it over the embedded
// defaults (fields absent from the file keep their default value). If path
// is empty, only the embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports, as an *InitError, the startup defects: a headless run
// with no tick ceiling, and a non-positive tick length.
func (c *Config) Validate() error {
	if c.Simulation.DT <= 0 {
		return &InitError{Reason: "Simulation.dt must be > 0"}
	}
	if c.GUI.Headless && c.Simulation.Tmax <= 0 {
		return &InitError{Reason: "headless run requires a finite Simulation.Tmax"}
	}
	return nil
}

// InitError reports a startup configuration defect that is not a
// schema/type error (caught by yaml.Unmarshal): the Validate checks, and the
// defects found while building runtime objects from a species config
// (unknown action, stress-source, transition or initial-condition types,
// and the like).
type InitError struct {
	Reason string
}

func (e *InitError) Error() string { return "config: " + e.Reason }
