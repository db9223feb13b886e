package action

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/math3"
)

// RandomTTurnGammaPred samples a turn angle and a duration from Γ(α,β)
// distributions at state entry, derives a fixed turn radius from the
// agent's entry speed and the sampled duration, and for that duration adds
// a centripetal force m·s²/r directed to the side opposite the triggering
// predator. The sampled angle/end-tick/turn-side/radius live on the agent
// (Turn*), not on this action instance, since one action tuple is shared
// read-only across every agent in its owning state.
type RandomTTurnGammaPred struct {
	Base
	AngleAlpha, AngleBeta float32
	DurAlpha, DurBeta     float32
	Mass                  float32
}

func (a *RandomTTurnGammaPred) OnEntry(ctx *Context) {
	angleDist := distuv.Gamma{Alpha: float64(a.AngleAlpha), Beta: float64(a.AngleBeta), Src: ctx.Rng}
	durDist := distuv.Gamma{Alpha: float64(a.DurAlpha), Beta: float64(a.DurBeta), Src: ctx.Rng}

	ctx.Self.TurnAngle = float32(angleDist.Rand())
	durationTicks := agent.Tick(durDist.Rand())
	if durationTicks < 1 {
		durationTicks = 1
	}
	ctx.Self.TurnEndTick = ctx.Tick + durationTicks

	ctx.Self.TurnRadius = 0
	if ctx.Self.TurnAngle != 0 {
		ctx.Self.TurnRadius = ctx.Self.Speed * float32(durationTicks) / ctx.Self.TurnAngle
	}

	row := ctx.OtherNeighbors()
	if len(row) > 0 {
		hemi := ctx.Self.H.HemisphereOf(row[0].Pos)
		ctx.Self.TurnAwayRight = !hemi.Right
	}
}

func (a *RandomTTurnGammaPred) Operate(ctx *Context) {
	if ctx.Tick >= ctx.Self.TurnEndTick {
		return
	}
	if ctx.Self.TurnAngle == 0 {
		return
	}
	r := ctx.Self.TurnRadius
	if r <= 0 {
		return
	}
	side := ctx.Self.H.Side
	if !ctx.Self.TurnAwayRight {
		side = side.Neg()
	}
	centripetal := a.Mass * ctx.Self.Speed * ctx.Self.Speed / r
	ctx.Self.AddSteering(side.Scale(centripetal))
}

// Dive steers the agent straight down (world −Y) while the vertical offset
// from the entry altitude stays under MaxDive; the predator's position is
// not read, so the dive is not aimed at it. Once the offset is exceeded it
// instead rotates a half-plus-quarter turn (1.5π) around the side axis —
// a sharp recovery maneuver rather than continuing to dive into the floor.
// The entry altitude lives on the agent (DiveEntryY), not on this action
// instance, since one action tuple is shared read-only across every agent
// in its owning state.
type Dive struct {
	Base
	W       float32
	MaxDive float32
}

func (a *Dive) OnEntry(ctx *Context) {
	ctx.Self.DiveEntryY = ctx.Self.Pos.Y
}

func (a *Dive) Operate(ctx *Context) {
	offset := ctx.Self.Pos.Y - ctx.Self.DiveEntryY
	if math3.Clamp(offset, -a.MaxDive, a.MaxDive) == offset {
		ctx.Self.AddSteering(math3.Vec3{Y: -1}.Scale(a.W))
		return
	}
	const oneAndHalfPi = 1.5 * math.Pi
	rotated := rotateAroundAxis(ctx.Self.Dir, ctx.Self.H.Side, float32(oneAndHalfPi))
	ctx.Self.AddSteering(rotated.Scale(a.W))
}

// rotateAroundAxis rotates v by angle radians around unit axis, via
// Rodrigues' formula.
func rotateAroundAxis(v, axis math3.Vec3, angle float32) math3.Vec3 {
	cosA := float32(math.Cos(float64(angle)))
	sinA := float32(math.Sin(float64(angle)))
	term1 := v.Scale(cosA)
	term2 := axis.Cross(v).Scale(sinA)
	term3 := axis.Scale(axis.Dot(v) * (1 - cosA))
	return term1.Add(term2).Add(term3)
}

// ChaseClosestPrey steers toward the nearest prey every reaction period (no
// latching — re-evaluated each call, unlike LockOnClosestPrey). No
// field-of-view test is applied: the nearest prey within MinSepSq is used,
// else the nearest prey overall.
type ChaseClosestPrey struct {
	Base
	Sensing
}

func (a *ChaseClosestPrey) Operate(ctx *Context) {
	row := ctx.OtherNeighbors()
	nb, ok := a.Nearest(row)
	if !ok {
		row = ctx.OtherNeighbors()
		if len(row) == 0 {
			return
		}
		nb = row[0]
	}
	dir := nb.Pos.Sub(ctx.Self.Pos).Normalize(ctx.Self.Dir)
	ctx.Self.AddSteering(dir.Scale(a.W))
}

// LockOnClosestPrey latches a target index at state entry and keeps
// chasing it until caught (‖offset‖² < CatchDistSq), at which point it
// performs a "victory" side-turn instead of continuing to chase.
type LockOnClosestPrey struct {
	Base
	Sensing
	CatchDistSq float32
}

func (a *LockOnClosestPrey) OnEntry(ctx *Context) {
	row := ctx.OtherNeighbors()
	if len(row) == 0 {
		ctx.Self.Target = agent.NoTarget
		return
	}
	ctx.Self.Target = agent.NewTarget(int(row[0].Idx))
}

func (a *LockOnClosestPrey) Operate(ctx *Context) {
	idx, ok := ctx.Self.Target.Get()
	if !ok {
		return
	}
	prey := ctx.Agent(ctx.Species.Other(), agent.Index(idx))
	offset := prey.Pos.Sub(ctx.Self.Pos)
	if offset.LenSq() < a.CatchDistSq {
		ctx.Self.AddSteering(ctx.Self.H.Side.Scale(a.W))
		ctx.Self.Target = agent.NoTarget
		return
	}
	dir := offset.Normalize(ctx.Self.Dir)
	ctx.Self.AddSteering(dir.Scale(a.W))
}
