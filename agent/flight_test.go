package agent

import (
	"testing"

	"github.com/murmuration/engine/math3"
)

func testAero() AeroParams {
	return AeroParams{
		BetaIn:      1,
		BodyMass:    1,
		Gravity:     StandardGravity,
		CruiseSpeed: 10,
		MinSpeed:    5,
		MaxSpeed:    15,
		CruiseDragW: 0.5,
	}
}

func TestIntegrateSpeedClampedToRange(t *testing.T) {
	p := testAero()
	pos := math3.Vec3{}
	dir := math3.Vec3{X: 1}

	// A huge forward steering force should still clamp at MaxSpeed.
	_, _, speed, _ := Integrate(pos, dir, 10, math3.Vec3{X: 1000}, 0.1, p)
	if speed > p.MaxSpeed {
		t.Errorf("speed = %v, want <= MaxSpeed %v", speed, p.MaxSpeed)
	}

	// A huge backward steering force should still clamp at MinSpeed.
	_, _, speed, _ = Integrate(pos, dir, 10, math3.Vec3{X: -1000}, 0.1, p)
	if speed < p.MinSpeed {
		t.Errorf("speed = %v, want >= MinSpeed %v", speed, p.MinSpeed)
	}
}

func TestIntegrateNoSteeringDecaysTowardCruiseSpeed(t *testing.T) {
	p := testAero()
	pos := math3.Vec3{}
	dir := math3.Vec3{X: 1}
	speed := float32(5) // below cruise speed

	for i := 0; i < 200; i++ {
		pos, dir, speed, _ = Integrate(pos, dir, speed, math3.Vec3{}, 0.05, p)
	}
	if speed < 9 || speed > 11 {
		t.Errorf("speed did not converge near cruise speed: got %v", speed)
	}
}

func TestIntegrateZeroVelocityFallsBackToPreviousDirection(t *testing.T) {
	p := testAero()
	p.CruiseDragW = 0 // disable drag so the only force is the (zero) steering
	pos := math3.Vec3{}
	dir := math3.Vec3{X: 0, Y: 1, Z: 0}

	_, newDir, _, _ := Integrate(pos, dir, 0, math3.Vec3{}, 0.1, p)
	if newDir != dir {
		t.Errorf("newDir = %v, want fallback to previous dir %v", newDir, dir)
	}
}

func TestIntegratePositionAdvancesForward(t *testing.T) {
	p := testAero()
	pos := math3.Vec3{}
	dir := math3.Vec3{X: 1}

	newPos, _, _, _ := Integrate(pos, dir, 10, math3.Vec3{}, 0.1, p)
	if newPos.X <= pos.X {
		t.Errorf("position did not advance forward: %v -> %v", pos, newPos)
	}
}

func TestAccelFromForceZeroMassIsZero(t *testing.T) {
	got := accelFromForce(math3.Vec3{X: 10}, 0)
	if !got.Zero() {
		t.Errorf("accelFromForce with zero mass = %v, want zero", got)
	}
}
