package agent

import (
	"testing"

	"github.com/murmuration/engine/math3"
)

func TestTargetIDAbsentByDefault(t *testing.T) {
	if _, ok := NoTarget.Get(); ok {
		t.Error("NoTarget should report absent")
	}
	var zero TargetID
	if _, ok := zero.Get(); ok {
		t.Error("zero-value TargetID should report absent, not index 0")
	}
}

func TestTargetIDPresentAtIndexZero(t *testing.T) {
	tg := NewTarget(0)
	idx, ok := tg.Get()
	if !ok || idx != 0 {
		t.Errorf("NewTarget(0).Get() = (%v, %v), want (0, true)", idx, ok)
	}
}

func TestZeroSteeringResetsAccumulator(t *testing.T) {
	a := Agent{Steering: math3.Vec3{X: 1, Y: 2, Z: 3}}
	a.ZeroSteering()
	if !a.Steering.Zero() {
		t.Errorf("Steering after ZeroSteering = %v, want zero", a.Steering)
	}
}

func TestAddSteeringAccumulates(t *testing.T) {
	var a Agent
	a.AddSteering(math3.Vec3{X: 1})
	a.AddSteering(math3.Vec3{X: 2})
	want := math3.Vec3{X: 3}
	if a.Steering != want {
		t.Errorf("Steering = %v, want %v", a.Steering, want)
	}
}

func TestSpeciesOther(t *testing.T) {
	if Prey.Other() != Predator {
		t.Error("Prey.Other() should be Predator")
	}
	if Predator.Other() != Prey {
		t.Error("Predator.Other() should be Prey")
	}
}

func TestSpeciesString(t *testing.T) {
	if Prey.String() != "prey" {
		t.Errorf("Prey.String() = %q, want \"prey\"", Prey.String())
	}
	if Predator.String() != "predator" {
		t.Errorf("Predator.String() = %q, want \"predator\"", Predator.String())
	}
}
