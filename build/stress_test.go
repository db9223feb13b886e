package build

import (
	"testing"

	"github.com/murmuration/engine/config"
	"github.com/murmuration/engine/stress"
)

func TestBuildStressEvaluatorNoSourcesIsNoOp(t *testing.T) {
	ev, err := BuildStressEvaluator(config.StressConfig{Decay: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if ev.Decay != 0.5 {
		t.Errorf("Decay = %v, want 0.5", ev.Decay)
	}
	if len(ev.Sources) != 0 {
		t.Errorf("len(Sources) = %v, want 0", len(ev.Sources))
	}
}

func TestBuildStressEvaluatorKnownSourceTypes(t *testing.T) {
	cfg := config.StressConfig{
		Decay: 0.1,
		Sources: []config.StressSourceConfig{
			{Type: "predator_distance", Params: map[string]any{"w": float64(2), "distr_shape": float64(1)}},
			{Type: "neighbors_stress", Params: map[string]any{"w": float64(1), "topo": 3}},
		},
	}
	ev, err := BuildStressEvaluator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(ev.Sources) != 2 {
		t.Fatalf("len(Sources) = %v, want 2", len(ev.Sources))
	}
	if _, ok := ev.Sources[0].(*stress.PredatorDistance); !ok {
		t.Errorf("Sources[0] type = %T, want *stress.PredatorDistance", ev.Sources[0])
	}
	if _, ok := ev.Sources[1].(*stress.NeighborsStress); !ok {
		t.Errorf("Sources[1] type = %T, want *stress.NeighborsStress", ev.Sources[1])
	}
}

func TestBuildStressEvaluatorUnknownSourceTypeIsAnError(t *testing.T) {
	cfg := config.StressConfig{Sources: []config.StressSourceConfig{{Type: "bogus"}}}
	_, err := BuildStressEvaluator(cfg)
	if err == nil {
		t.Fatal("expected an error for an unknown stress source type")
	}
}
