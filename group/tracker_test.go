package group

import (
	"testing"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/math3"
)

func popAt(positions ...math3.Vec3) *agent.Population {
	p := agent.NewPopulation(agent.Prey, len(positions))
	for i, pos := range positions {
		a := p.Get(agent.Index(i))
		a.Pos = pos
		a.Dir = math3.Vec3{X: 1}
		a.Speed = 1
	}
	return p
}

func TestClusterTwoCloseAgentsFormOneGroup(t *testing.T) {
	pop := popAt(math3.Vec3{}, math3.Vec3{X: 0.5})
	tr := NewTracker()
	tr.Cluster(pop, 4) // threshold² = 4, distance² = 0.25

	if len(tr.Groups()) != 1 {
		t.Fatalf("len(Groups()) = %v, want 1", len(tr.Groups()))
	}
	if tr.Groups()[0].Size != 2 {
		t.Errorf("group size = %v, want 2", tr.Groups()[0].Size)
	}
}

func TestClusterFarAgentsFormSeparateGroups(t *testing.T) {
	pop := popAt(math3.Vec3{}, math3.Vec3{X: 100})
	tr := NewTracker()
	tr.Cluster(pop, 4)

	if len(tr.Groups()) != 2 {
		t.Fatalf("len(Groups()) = %v, want 2", len(tr.Groups()))
	}
}

func TestClusterEmptyPopulationYieldsNoGroups(t *testing.T) {
	pop := agent.NewPopulation(agent.Prey, 0)
	tr := NewTracker()
	tr.Cluster(pop, 4)

	if len(tr.Groups()) != 0 {
		t.Errorf("len(Groups()) = %v, want 0", len(tr.Groups()))
	}
	if tr.GroupOf(0) != NoGroup {
		t.Error("GroupOf on an empty population should return NoGroup")
	}
}

func TestGroupOfAndGroupMatesConsistent(t *testing.T) {
	pop := popAt(math3.Vec3{}, math3.Vec3{X: 0.1}, math3.Vec3{X: 100})
	tr := NewTracker()
	tr.Cluster(pop, 4)

	g0 := tr.GroupOf(0)
	g1 := tr.GroupOf(1)
	g2 := tr.GroupOf(2)
	if g0 != g1 {
		t.Error("agents 0 and 1 should share a group")
	}
	if g2 == g0 {
		t.Error("agent 2 should be in a different group from 0/1")
	}

	mates := tr.GroupMates(g0)
	if len(mates) != 2 {
		t.Errorf("GroupMates(g0) length = %v, want 2", len(mates))
	}
}

func TestTrackDeadReckonsCentroid(t *testing.T) {
	pop := popAt(math3.Vec3{}, math3.Vec3{X: 0.1})
	tr := NewTracker()
	tr.Cluster(pop, 4)

	before := tr.Groups()[0].Centroid()
	tr.Track(1.0)
	after := tr.Groups()[0].Centroid()

	vel := tr.Groups()[0].Vel
	want := before.Add(vel.Scale(1.0))
	if !almostEqualVec(after, want) {
		t.Errorf("Track dead-reckoned centroid = %v, want %v", after, want)
	}
}

func TestPrincipalAxesDegenerateSingleMemberReturnsUnitAxes(t *testing.T) {
	pop := popAt(math3.Vec3{})
	tr := NewTracker()
	tr.Cluster(pop, 4)

	if len(tr.Groups()) != 1 {
		t.Fatalf("len(Groups()) = %v, want 1", len(tr.Groups()))
	}
	ext := tr.Groups()[0].Ext
	if ext.X != 0 || ext.Y != 0 || ext.Z != 0 {
		t.Errorf("single-member group Ext = %v, want zero extents", ext)
	}
	h := tr.Groups()[0].H
	if h[0] != (math3.Vec3{X: 1}) || h[1] != (math3.Vec3{Y: 1}) {
		t.Errorf("single-member group axes = %v, %v, want unit X and unit Y", h[0], h[1])
	}
}

func almostEqualVec(a, b math3.Vec3) bool {
	const eps = 1e-4
	d := a.Sub(b)
	return d.X < eps && d.X > -eps && d.Y < eps && d.Y > -eps && d.Z < eps && d.Z > -eps
}
