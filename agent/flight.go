package agent

import "github.com/murmuration/engine/math3"

// StandardGravity is the fixed gravitational acceleration (m/s²) used by
// the body frame's banking computation and the cruise-speed lift envelope
// (§4.1). The source hardcodes this constant rather than exposing it as a
// config key, so it is not configurable here either.
const StandardGravity = 9.81

// AeroParams are the per-species aerodynamic constants read by the flight
// integrator and body frame: {betaIn, bodyMass, cruiseSpeed, minSpeed,
// maxSpeed, w} from the species config's `aero` block.
type AeroParams struct {
	BetaIn      float32
	BodyMass    float32
	Gravity     float32
	CruiseSpeed float32
	MinSpeed    float32
	MaxSpeed    float32
	CruiseDragW float32 // w: weight of the cruise-speed drag term
}

// Integrate advances one tick of flight motion with the midpoint (modified
// Euler) integrator: steering plus cruise-speed drag produces a force,
// which is applied as two half-step accelerations bracketing the position
// update. Speed is clamped to [MinSpeed,MaxSpeed]; direction falls back to
// the previous direction if the resulting velocity is (near) zero.
func Integrate(pos, dir math3.Vec3, speed float32, steering math3.Vec3, dt float32, p AeroParams) (newPos, newDir math3.Vec3, newSpeed float32, accel math3.Vec3) {
	drag := dir.Scale((p.CruiseSpeed - speed) * p.CruiseDragW * p.BodyMass)
	f := steering.Add(drag)

	v := dir.Scale(speed)
	v = v.Add(accelFromForce(f, p.BodyMass).Scale(dt / 2))
	pos = pos.Add(v.Scale(dt))

	accel = accelFromForce(f, p.BodyMass)
	v = v.Add(accel.Scale(dt / 2))

	newSpeed = math3.Clamp(v.Len(), p.MinSpeed, p.MaxSpeed)
	newDir = v.Normalize(dir)
	newPos = pos
	return
}

func accelFromForce(f math3.Vec3, mass float32) math3.Vec3 {
	if mass <= 0 {
		return math3.Vec3{}
	}
	return f.Scale(1 / mass)
}
