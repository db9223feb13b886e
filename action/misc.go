package action

import (
	"math"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/group"
	"github.com/murmuration/engine/math3"
)

// CopyEscape scans own-species neighbors in FOV order and, on the first
// one whose state is flagged copyable, records it as self's CopiedState.
//
// Per the source (preserved literally, not a guessed fix): this stops at
// the first copyable candidate regardless of how much longer that
// candidate's own state has left to run — it does not filter by remaining
// duration.
type CopyEscape struct {
	Base
	Sensing
}

func (a *CopyEscape) Operate(ctx *Context) {
	row := ctx.OwnNeighbors()
	for _, n := range row {
		if !a.InFOV(ctx.Self.Dir, ctx.Self.Pos, n) {
			continue
		}
		if n.StateInfo.Copyable {
			ctx.Self.CopiedState = n.StateInfo
			return
		}
	}
}

// RoostAttraction steers toward a fixed homing point, e.g. a roost or
// nesting site.
type RoostAttraction struct {
	Base
	Target math3.Vec3
	W      float32
}

func (a *RoostAttraction) Operate(ctx *Context) {
	dir := a.Target.Sub(ctx.Self.Pos).Normalize(math3.Vec3{})
	if dir.Zero() {
		return
	}
	ctx.Self.AddSteering(dir.Scale(a.W))
}

// AltitudeAttraction steers toward a target altitude (world Y).
type AltitudeAttraction struct {
	Base
	TargetY float32
	W       float32
}

func (a *AltitudeAttraction) Operate(ctx *Context) {
	delta := a.TargetY - ctx.Self.Pos.Y
	ctx.Self.AddSteering(math3.Vec3{Y: delta}.Scale(a.W))
}

// LevelAttraction pulls the agent's pitch back toward level flight
// whenever it exceeds MaxPitch above/below the horizontal.
type LevelAttraction struct {
	Base
	W        float32
	MaxPitch float32 // radians
}

func (a *LevelAttraction) Operate(ctx *Context) {
	pitch := float32(math.Asin(float64(math3.Clamp(ctx.Self.Dir.Y, -1, 1))))
	if math3.Clamp(pitch, -a.MaxPitch, a.MaxPitch) == pitch {
		return
	}
	ctx.Self.AddSteering(math3.Vec3{Y: -pitch}.Scale(a.W))
}

// Wiggle adds small pseudo-random noise to steering, evaluated from the
// per-worker thread-local Rng so results stay reproducible per-thread
// given the same call sequence.
type Wiggle struct {
	Base
	W float32
}

func (a *Wiggle) Operate(ctx *Context) {
	noise := math3.Vec3{
		X: ctx.Rng.Float32()*2 - 1,
		Y: ctx.Rng.Float32()*2 - 1,
		Z: ctx.Rng.Float32()*2 - 1,
	}
	ctx.Self.AddSteering(noise.Scale(a.W))
}

// GroupSelectMode picks which group SelectGroup targets.
type GroupSelectMode int

const (
	SelectNearest GroupSelectMode = iota
	SelectBiggest
	SelectSmallest
	SelectRandom
)

// SelectGroup picks a target group by the configured mode and writes the
// first member's index into self.Target, for a following action (e.g.
// ChaseClosestPrey-style homing) to chase. RuntimeLogic errors (no groups
// present) are masked by leaving Target absent (§7), not propagated.
type SelectGroup struct {
	Base
	Mode GroupSelectMode
}

func (a *SelectGroup) OnEntry(ctx *Context) {
	tracker := ctx.Groups[ctx.Species.Other()]
	groups := tracker.Groups()
	if len(groups) == 0 {
		ctx.Self.Target = agent.NoTarget
		return
	}

	var chosen int
	switch a.Mode {
	case SelectNearest:
		bestDistSq := float32(math.MaxFloat32)
		for i, g := range groups {
			d := g.Centroid().Sub(ctx.Self.Pos).LenSq()
			if d < bestDistSq {
				bestDistSq = d
				chosen = i
			}
		}
	case SelectBiggest:
		best := uint32(0)
		for i, g := range groups {
			if g.Size > best {
				best = g.Size
				chosen = i
			}
		}
	case SelectSmallest:
		best := uint32(math.MaxUint32)
		for i, g := range groups {
			if g.Size < best {
				best = g.Size
				chosen = i
			}
		}
	case SelectRandom:
		chosen = ctx.Rng.Intn(len(groups))
	}

	mates := tracker.GroupMates(group.ID(chosen))
	if len(mates) == 0 {
		ctx.Self.Target = agent.NoTarget
		return
	}
	ctx.Self.Target = agent.NewTarget(int(mates[0]))
}
