// Package build compiles a loaded config.Config into the runtime objects
// the engine actually steps: per-species AeroParams, action tuples, state
// machines, and stress functions. It is the one place that knows both the
// config schema and the concrete action/state types, so neither package
// needs to depend on the other.
package build

import (
	"fmt"
	"math"

	"github.com/murmuration/engine/action"
	"github.com/murmuration/engine/config"
	"github.com/murmuration/engine/math3"
)

func f32(params map[string]any, key string, def float32) float32 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return float32(n)
		case int:
			return float32(n)
		}
	}
	return def
}

func u32(params map[string]any, key string, def uint32) uint32 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return uint32(n)
		case int:
			return uint32(n)
		}
	}
	return def
}

// fovToCfov converts a configured full field-of-view in degrees to the
// cosine-of-half-angle Sensing.Cfov actions compare against (§4.3).
func fovToCfov(fovDeg float32) float32 {
	half := (fovDeg * 0.5) * math3.Deg2Rad
	return float32(math.Cos(float64(half)))
}

// unboundedDist is used as the maxdist default when a config entry omits
// the key (minsep defaults to 0): large enough that the squared-distance
// comparisons it feeds never spuriously reject a candidate.
const unboundedDist = 1e6

func sensingFrom(params map[string]any) action.Sensing {
	return action.Sensing{
		Topo:      u32(params, "topo", 0),
		Cfov:      fovToCfov(f32(params, "fov", 360)),
		MaxDistSq: sq(f32(params, "maxdist", unboundedDist)),
		MinSepSq:  sq(f32(params, "minsep", 0)),
		W:         f32(params, "w", 0),
	}
}

func sq(v float32) float32 { return v * v }

// BuildAction constructs one action from its config entry. Unknown types
// report a *config.InitError rather than being silently skipped; there is
// no separate config-level ConfigError type.
func BuildAction(cfg config.ActionConfig, mass float32) (action.Action, error) {
	p := cfg.Params
	switch cfg.Type {
	case "align_n":
		return &action.Align{Sensing: sensingFrom(p)}, nil
	case "cohere_centroid":
		return &action.CohereCentroid{Sensing: sensingFrom(p)}, nil
	case "cohere_centroid_distance":
		return &action.CohereCentroidDistance{
			Sensing:  sensingFrom(p),
			MinWDist: f32(p, "min_w_dist", 0),
			MaxWDist: f32(p, "max_w_dist", 0),
		}, nil
	case "avoid_n_position":
		return &action.AvoidPosition{Sensing: sensingFrom(p)}, nil
	case "avoid_n_direction":
		return &action.AvoidDirection{Sensing: sensingFrom(p), ColDist: f32(p, "col_dist", 0)}, nil
	case "avoid_p_position":
		return &action.AvoidPredatorPosition{Sensing: sensingFrom(p)}, nil
	case "random_t_turn_gamma_pred":
		return &action.RandomTTurnGammaPred{
			AngleAlpha: f32(p, "angle_alpha", 1),
			AngleBeta:  f32(p, "angle_beta", 1),
			DurAlpha:   f32(p, "dur_alpha", 1),
			DurBeta:    f32(p, "dur_beta", 1),
			Mass:       mass,
		}, nil
	case "dive":
		return &action.Dive{W: f32(p, "w", 0), MaxDive: f32(p, "max_dive", 0)}, nil
	case "copy_escape":
		return &action.CopyEscape{Sensing: sensingFrom(p)}, nil
	case "roost_attraction":
		return &action.RoostAttraction{
			Target: math3.Vec3{X: f32(p, "x", 0), Y: f32(p, "y", 0), Z: f32(p, "z", 0)},
			W:      f32(p, "w", 0),
		}, nil
	case "altitude_attraction":
		return &action.AltitudeAttraction{TargetY: f32(p, "target_y", 0), W: f32(p, "w", 0)}, nil
	case "level_attraction":
		return &action.LevelAttraction{
			W:        f32(p, "w", 0),
			MaxPitch: f32(p, "max_pitch_deg", 30) * math3.Deg2Rad,
		}, nil
	case "wiggle":
		return &action.Wiggle{W: f32(p, "w", 0)}, nil
	case "chase_closest_prey":
		return &action.ChaseClosestPrey{Sensing: sensingFrom(p)}, nil
	case "lock_on_closest_prey":
		return &action.LockOnClosestPrey{Sensing: sensingFrom(p), CatchDistSq: sq(f32(p, "catch_dist", 0))}, nil
	case "select_group":
		return &action.SelectGroup{Mode: selectModeFrom(p)}, nil
	default:
		return nil, &config.InitError{Reason: fmt.Sprintf("unknown action type %q", cfg.Type)}
	}
}

func selectModeFrom(p map[string]any) action.GroupSelectMode {
	mode, _ := p["mode"].(string)
	switch mode {
	case "biggest":
		return action.SelectBiggest
	case "smallest":
		return action.SelectSmallest
	case "random":
		return action.SelectRandom
	default:
		return action.SelectNearest
	}
}

// BuildActions builds an ordered action tuple, preserving declared order
// (§4.3's ordering guarantee).
func BuildActions(cfgs []config.ActionConfig, mass float32) ([]action.Action, error) {
	out := make([]action.Action, 0, len(cfgs))
	for _, c := range cfgs {
		a, err := BuildAction(c, mass)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
