package math3

import "math"

// BodyFrame is the per-agent orthonormal "head system" H: forward/up/side
// axes plus world position, used for local/global transforms and the
// hemisphere queries steering actions rely on to pick a turn sign.
//
// forward and dir are the same axis; side and up are regenerated from
// (pos, dir) every Update call so the frame never drifts out of
// orthonormality.
type BodyFrame struct {
	Forward Vec3
	Up      Vec3
	Side    Vec3
	Pos     Vec3

	v0    Vec3    // velocity at the previous Update, used for the lateral-force estimate
	Bank  float32 // banking angle β in (-π/2, π/2), presentation-only
	prevPos Vec3
}

// BankRateConfig carries the aero constants Update needs to advance β and
// to size the lift envelope that clamps lateral force.
type BankRateConfig struct {
	BetaIn      float32 // bank angle rate, radians/second
	BodyMass    float32 // m
	Gravity     float32 // g
	CruiseSpeed float32 // s used to size lift
}

// Initialize seeds the frame from an initial position/direction/speed.
func (h *BodyFrame) Initialize(pos, dir Vec3, speed float32) {
	dir = dir.Normalize(Vec3{1, 0, 0})
	h.Side = WorldUp.Cross(dir).Normalize(Vec3{0, 0, 1})
	h.Up = dir.Cross(h.Side)
	h.Forward = dir
	h.Pos = pos
	h.prevPos = pos
	h.Bank = 0
	h.v0 = dir.Scale(speed)
}

// Update advances the banking angle from the lateral force implied by the
// change in velocity over dt, then regenerates the frame from the new
// pos/dir. dt must be > 0.
func (h *BodyFrame) Update(pos, dir Vec3, speed float32, dt float32, cfg BankRateConfig) {
	v := pos.Sub(h.prevPos).Scale(1 / dt)
	a := v.Sub(h.v0).Scale(1 / dt)

	gravity := Vec3{0, -cfg.Gravity, 0}
	f := a.Add(gravity).Scale(cfg.BodyMass)

	fLat := h.Side.Dot(f)

	ratio := speed / cfg.CruiseSpeed
	lift := cfg.BodyMass * cfg.Gravity * ratio * ratio
	maxLat := lift / 1.1
	fLat = Clamp(fLat, -maxLat, maxLat)

	target := lift * h.Side.Dot(h.Up)
	if fLat-target > 0 {
		h.Bank += dt * cfg.BetaIn
	} else {
		h.Bank -= dt * cfg.BetaIn
	}
	const halfPi = math.Pi / 2
	h.Bank = Clamp(h.Bank, -halfPi+1e-3, halfPi-1e-3)

	h.v0 = v
	h.prevPos = pos

	dir = dir.Normalize(h.Forward)
	h.Side = WorldUp.Cross(dir).Normalize(h.Side)
	h.Up = dir.Cross(h.Side)
	h.Forward = dir
	h.Pos = pos
}

// GlobalPos transforms a point from local (forward,up,side) space to world
// space.
func (h *BodyFrame) GlobalPos(local Vec3) Vec3 {
	return h.Pos.
		Add(h.Forward.Scale(local.X)).
		Add(h.Up.Scale(local.Y)).
		Add(h.Side.Scale(local.Z))
}

// LocalPos transforms a world-space point into local (forward,up,side)
// space. It is the exact inverse of GlobalPos for any orthonormal frame.
func (h *BodyFrame) LocalPos(global Vec3) Vec3 {
	rel := global.Sub(h.Pos)
	return Vec3{
		X: rel.Dot(h.Forward),
		Y: rel.Dot(h.Up),
		Z: rel.Dot(h.Side),
	}
}

// GlobalVec transforms a direction (no translation) to world space.
func (h *BodyFrame) GlobalVec(local Vec3) Vec3 {
	return h.Forward.Scale(local.X).Add(h.Up.Scale(local.Y)).Add(h.Side.Scale(local.Z))
}

// LocalVec transforms a world-space direction into local space.
func (h *BodyFrame) LocalVec(global Vec3) Vec3 {
	return Vec3{
		X: global.Dot(h.Forward),
		Y: global.Dot(h.Up),
		Z: global.Dot(h.Side),
	}
}

// Hemisphere reports, for a world-space point p, which side of each local
// axis it falls on: positive means p is ahead/above/right of the agent on
// that axis. Actions use this to pick a turn sign away from a threat
// without needing the exact bearing.
type Hemisphere struct {
	Front, Above, Right bool
}

// HemisphereOf returns the hemisphere of p relative to h.
func (h *BodyFrame) HemisphereOf(p Vec3) Hemisphere {
	local := h.LocalPos(p)
	return Hemisphere{
		Front: local.X > 0,
		Above: local.Y > 0,
		Right: local.Z > 0,
	}
}
