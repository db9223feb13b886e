package action

import (
	"math"
	"testing"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/math3"
)

func TestCopyEscapeCopiesFirstCopyableNeighborInFOV(t *testing.T) {
	w := newTestWorld([]math3.Vec3{{X: 0}, {X: 1}}, nil)
	w.pops[agent.Prey].Agents[1].CurrentState = agent.StateInfo{State: 3, Copyable: true, ExitTick: 42}
	w.indices[agent.Prey].RefreshAgent(0, &w.pops[agent.Prey].Agents[0], w.pops, agent.Prey)

	a := &CopyEscape{Sensing: Sensing{Cfov: -1, MaxDistSq: 1e6}}
	ctx := w.ctxFor(agent.Prey, 0, 0)
	a.Operate(ctx)

	if ctx.Self.CopiedState.State != 3 || ctx.Self.CopiedState.ExitTick != 42 {
		t.Errorf("CopiedState = %+v, want the copyable neighbor's state", ctx.Self.CopiedState)
	}
}

func TestCopyEscapeSkipsNonCopyableNeighbors(t *testing.T) {
	w := newTestWorld([]math3.Vec3{{X: 0}, {X: 1}}, nil)
	// default CurrentState has Copyable: false.
	a := &CopyEscape{Sensing: Sensing{Cfov: -1, MaxDistSq: 1e6}}
	ctx := w.ctxFor(agent.Prey, 0, 0)
	a.Operate(ctx)

	if ctx.Self.CopiedState != (agent.StateInfo{}) {
		t.Errorf("CopiedState = %+v, want zero value (no copyable neighbor)", ctx.Self.CopiedState)
	}
}

func TestRoostAttractionSteersTowardTarget(t *testing.T) {
	w := newTestWorld([]math3.Vec3{{X: 0}}, nil)
	a := &RoostAttraction{Target: math3.Vec3{X: 10}, W: 1}
	ctx := w.ctxFor(agent.Prey, 0, 0)
	a.Operate(ctx)
	if ctx.Self.Steering.X <= 0 {
		t.Errorf("Steering.X = %v, want positive toward the roost at +X", ctx.Self.Steering.X)
	}
}

func TestAltitudeAttractionSteersTowardTargetY(t *testing.T) {
	w := newTestWorld([]math3.Vec3{{X: 0, Y: 0}}, nil)
	a := &AltitudeAttraction{TargetY: 50, W: 2}
	ctx := w.ctxFor(agent.Prey, 0, 0)
	a.Operate(ctx)
	want := float32(100) // (50-0)*2
	if ctx.Self.Steering.Y != want {
		t.Errorf("Steering.Y = %v, want %v", ctx.Self.Steering.Y, want)
	}
}

func TestLevelAttractionNoOpWithinMaxPitch(t *testing.T) {
	w := newTestWorld([]math3.Vec3{{X: 0}}, nil)
	w.pops[agent.Prey].Agents[0].Dir = math3.Vec3{X: 1, Y: 0}
	a := &LevelAttraction{W: 1, MaxPitch: 0.1}
	ctx := w.ctxFor(agent.Prey, 0, 0)
	a.Operate(ctx)
	if !ctx.Self.Steering.Zero() {
		t.Errorf("Steering = %v, want zero for level flight", ctx.Self.Steering)
	}
}

func TestLevelAttractionCorrectsExcessivePitch(t *testing.T) {
	w := newTestWorld([]math3.Vec3{{X: 0}}, nil)
	w.pops[agent.Prey].Agents[0].Dir = math3.Vec3{X: 0.866, Y: 0.5}
	a := &LevelAttraction{W: 1, MaxPitch: 0.1}
	ctx := w.ctxFor(agent.Prey, 0, 0)
	a.Operate(ctx)

	pitch := math.Asin(0.5)
	want := float32(-pitch)
	if math.Abs(float64(ctx.Self.Steering.Y-want)) > 1e-4 {
		t.Errorf("Steering.Y = %v, want %v", ctx.Self.Steering.Y, want)
	}
}

func TestWiggleAddsSomeNoise(t *testing.T) {
	w := newTestWorld([]math3.Vec3{{X: 0}}, nil)
	a := &Wiggle{W: 1}
	ctx := w.ctxFor(agent.Prey, 0, 0)
	a.Operate(ctx)
	if ctx.Self.Steering.Zero() {
		t.Error("Wiggle should add non-zero pseudo-random noise to steering")
	}
}

func TestSelectGroupNearestPicksClosestGroupMember(t *testing.T) {
	w := newTestWorld(
		[]math3.Vec3{{X: 0}},
		[]math3.Vec3{{X: 1}, {X: 1.5}, {X: 1000}},
	)
	// Cluster the predator population (self is prey, Other() is predator):
	// the two close predators form one group, the far one forms another.
	w.indices[agent.Prey].RefreshAgent(0, &w.pops[agent.Prey].Agents[0], w.pops, agent.Prey)
	ctx := w.ctxFor(agent.Prey, 0, 0)
	ctx.Groups[agent.Predator].Cluster(w.pops[agent.Predator], 4)

	a := &SelectGroup{Mode: SelectNearest}
	a.OnEntry(ctx)

	idx, ok := ctx.Self.Target.Get()
	if !ok {
		t.Fatal("expected Target to be set")
	}
	if idx != 0 && idx != 1 {
		t.Errorf("Target = %v, want a member of the near group (0 or 1)", idx)
	}
}

func TestSelectGroupNoGroupsSetsNoTarget(t *testing.T) {
	w := newTestWorld([]math3.Vec3{{X: 0}}, nil)
	ctx := w.ctxFor(agent.Prey, 0, 0)
	ctx.Groups[agent.Predator].Cluster(w.pops[agent.Predator], 4) // empty predator population

	a := &SelectGroup{Mode: SelectNearest}
	a.OnEntry(ctx)

	if _, ok := ctx.Self.Target.Get(); ok {
		t.Error("expected Target to remain absent with no groups present")
	}
}
