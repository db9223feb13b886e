package config

// SpeciesConfig is one species' full definition: population size,
// aerodynamic constants, stress dynamics (prey only — left zero-valued and
// unused for predators), state machine, and initial-condition strategy.
type SpeciesConfig struct {
	N           int             `yaml:"N"`
	Aero        AeroConfig      `yaml:"aero"`
	Stress      StressConfig    `yaml:"stress"`
	States      []StateConfig   `yaml:"states"`
	Transitions TransitionConfig `yaml:"transitions"`
	InitCondit  InitConditConfig `yaml:"InitCondit"`
}

// AeroConfig is the species-wide aerodynamic constant set read by the
// flight integrator and body frame (§4.1, §4.2).
type AeroConfig struct {
	BetaIn      float64 `yaml:"betaIn"` // degrees/second; converted to radians/second at build time
	BodyMass    float64 `yaml:"bodyMass"`
	CruiseSpeed float64 `yaml:"cruiseSpeed"`
	MinSpeed    float64 `yaml:"minSpeed"`
	MaxSpeed    float64 `yaml:"maxSpeed"`
	W           float64 `yaml:"w"` // cruise-speed drag weight
}

// AeroOverride is a state-local override of the cruise-speed drag target,
// e.g. a dive state that cruises faster than the species baseline (§4.3's
// `sai`/aeroState).
type AeroOverride struct {
	CruiseSpeed float64 `yaml:"cruiseSpeed"`
	W           float64 `yaml:"w"`
}

// StressConfig configures prey stress dynamics: exponential decay plus an
// ordered list of additive sources (§8 invariant 3).
type StressConfig struct {
	Decay   float64              `yaml:"decay"`
	Sources []StressSourceConfig `yaml:"sources"`
}

// StressSourceConfig names one stress contributor and its parameters.
// Recognized Types: "predator_distance" ({w, distr_shape}), "neighbors_stress"
// ({w, topo, fov}) — grounded on the source's stress source set.
type StressSourceConfig struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params"`
}

// StateConfig defines one state (or sub-state) of a species' machine.
// Exactly one of Duration (Persistent) being unset vs. set, and SubStates
// being empty vs. populated, determines which State kind StateConfig builds
// (§4.4): no sub_states and Duration==0 ⇒ Transient; no sub_states and
// Duration>0 ⇒ Persistent; sub_states present ⇒ MultiState.
type StateConfig struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Copyable    bool            `yaml:"copyable"`
	Tr          int64           `yaml:"tr"`       // reaction period, ticks
	Duration    int64           `yaml:"duration"` // ticks; 0 for Transient
	AeroState   *AeroOverride   `yaml:"aeroState,omitempty"`
	Actions     []ActionConfig  `yaml:"actions"`
	SubStates   []StateConfig   `yaml:"sub_states,omitempty"`
	Selector    *SelectorConfig `yaml:"selector,omitempty"`
}

// SelectorConfig overrides a MultiState's sub-state selection with fixed
// priors instead of each sub-state's assess_entry score.
type SelectorConfig struct {
	Priors []float32 `yaml:"priors"`
}

// ActionConfig names one action in a state's declared tuple and its
// parameters. Recognized Types are listed in the build package doc.
type ActionConfig struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params"`
}

// TransitionConfig is the `transitions` block: a named interpolator kind
// ("constant" or "piecewise_linear_interpolator") plus its matrices and, for
// the piecewise kind, strictly ascending edges (§4.5).
type TransitionConfig struct {
	Name  string        `yaml:"name"`
	TM    [][][]float32 `yaml:"TM"`
	Edges []float32     `yaml:"edges"`
}

// InitConditConfig selects an initial-conditions strategy and carries its
// type-specific subkeys (§3, §6).
type InitConditConfig struct {
	Type   string            `yaml:"type"` // none | random | flock | csv
	Random *RandomInitConfig `yaml:"random,omitempty"`
	Flock  *FlockInitConfig  `yaml:"flock,omitempty"`
	CSV    *CSVInitConfig    `yaml:"csv,omitempty"`
}

// RandomInitConfig scatters agents uniformly in a cube of side Radius at
// the origin, with a uniformly random direction (grounded on the source's
// `random` strategy).
type RandomInitConfig struct {
	Radius float64 `yaml:"radius"`
}

// FlockInitConfig scatters agents uniformly in a cube of side Radius offset
// to a target altitude, with direction Dir0 perturbed by a normally
// distributed heading deviation of standard deviation DegDev degrees
// (grounded on the source's `in_flock` strategy).
type FlockInitConfig struct {
	Altitude float64    `yaml:"altitude"`
	Dir0     [3]float64 `yaml:"dir"`
	Radius   float64    `yaml:"radius"`
	DegDev   float64    `yaml:"degdev"`
}

// CSVInitConfig reads initial positions/directions from a file: one row per
// agent, header line skipped (§6).
type CSVInitConfig struct {
	File string `yaml:"file"`
}
