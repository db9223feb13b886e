package build

import (
	"fmt"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/config"
	"github.com/murmuration/engine/math3"
	"github.com/murmuration/engine/state"
)

// BuildAero converts a species' aero config block into the flight
// integrator's runtime parameter set (§4.1, §4.2). Gravity is not
// configurable — see agent.StandardGravity.
func BuildAero(cfg config.AeroConfig) agent.AeroParams {
	return agent.AeroParams{
		BetaIn:      float32(cfg.BetaIn) * math3.Deg2Rad,
		BodyMass:    float32(cfg.BodyMass),
		Gravity:     agent.StandardGravity,
		CruiseSpeed: float32(cfg.CruiseSpeed),
		MinSpeed:    float32(cfg.MinSpeed),
		MaxSpeed:    float32(cfg.MaxSpeed),
		CruiseDragW: float32(cfg.W),
	}
}

// BuildMachine compiles a species' states[] and transitions block into a
// Machine, and returns a name→index lookup for the initial state (the
// source always starts every agent in its first declared state, so the
// lookup is mostly useful for tests and tooling).
func BuildMachine(sc config.SpeciesConfig, copyEscape bool, stressFn state.StressFunc, mass float32) (*state.Machine, map[string]int, error) {
	states := make([]state.State, len(sc.States))
	names := make(map[string]int, len(sc.States))
	for i, s := range sc.States {
		st, err := buildState(uint16(i), s, mass)
		if err != nil {
			return nil, nil, fmt.Errorf("state %q: %w", s.Name, err)
		}
		states[i] = st
		names[s.Name] = i
	}

	interp, err := buildInterpolator(sc.Transitions, len(sc.States))
	if err != nil {
		return nil, nil, err
	}

	m, err := state.NewMachine(states, interp, stressFn, copyEscape)
	if err != nil {
		return nil, nil, err
	}
	return m, names, nil
}

func buildState(id uint16, cfg config.StateConfig, mass float32) (state.State, error) {
	if len(cfg.SubStates) > 0 {
		subs := make([]state.State, len(cfg.SubStates))
		for i, sc := range cfg.SubStates {
			st, err := buildState(uint16(i), sc, mass)
			if err != nil {
				return nil, fmt.Errorf("sub_state %q: %w", sc.Name, err)
			}
			subs[i] = st
		}
		var priors []float32
		if cfg.Selector != nil {
			priors = cfg.Selector.Priors
		}
		return state.NewMultiState(id, agent.Tick(cfg.Tr), subs, priors), nil
	}

	actions, err := BuildActions(cfg.Actions, mass)
	if err != nil {
		return nil, err
	}
	if cfg.Duration > 0 {
		return state.NewPersistent(id, agent.Tick(cfg.Tr), agent.Tick(cfg.Duration), actions), nil
	}
	return state.NewTransient(id, agent.Tick(cfg.Tr), actions), nil
}

func buildInterpolator(cfg config.TransitionConfig, numStates int) (*state.Interpolator, error) {
	matrices := make([]state.Matrix, len(cfg.TM))
	for i, tm := range cfg.TM {
		rows := make(state.Matrix, len(tm))
		for r, row := range tm {
			rows[r] = state.Row(row)
		}
		matrices[i] = rows
	}

	switch cfg.Name {
	case "constant":
		if len(matrices) == 0 {
			return nil, &config.InitError{Reason: "constant transitions require at least one TM entry (only the first is used)"}
		}
		return state.NewConstant(matrices[0], numStates)
	case "piecewise_linear_interpolator", "":
		return state.NewPiecewiseLinear(cfg.Edges, matrices, numStates)
	default:
		return nil, &config.InitError{Reason: fmt.Sprintf("unknown transitions.name %q", cfg.Name)}
	}
}
