package neighbor

import (
	"testing"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/math3"
)

func makePop(positions ...math3.Vec3) *agent.Population {
	p := agent.NewPopulation(agent.Prey, len(positions))
	for i, pos := range positions {
		p.Get(agent.Index(i)).Pos = pos
	}
	return p
}

func TestMatrixRefreshSortsAscendingByDistSq(t *testing.T) {
	b := makePop(
		math3.Vec3{X: 10},
		math3.Vec3{X: 1},
		math3.Vec3{X: 5},
	)
	self := &agent.Agent{Pos: math3.Vec3{}}
	m := NewMatrix(1, 3)
	m.Refresh(0, self, b, false)

	row := m.RawRow(0)
	for i := 1; i < len(row); i++ {
		if row[i].DistSq < row[i-1].DistSq {
			t.Fatalf("row not sorted ascending at %d: %v < %v", i, row[i].DistSq, row[i-1].DistSq)
		}
	}
	if row[0].Idx != 1 { // x=1 is closest
		t.Errorf("closest neighbor Idx = %v, want 1", row[0].Idx)
	}
}

func TestMatrixRefreshSelfSortsFirstAndIsHidden(t *testing.T) {
	b := makePop(math3.Vec3{}, math3.Vec3{X: 1}, math3.Vec3{X: 2})
	self := b.Get(0)
	m := NewMatrix(1, 3)
	m.Refresh(0, self, b, true)

	raw := m.RawRow(0)
	if raw[0].DistSq != 0 || raw[0].Idx != 0 {
		t.Errorf("raw row[0] = %+v, want the self entry at DistSq 0", raw[0])
	}

	sorted := m.Row(0)
	if len(sorted) != len(raw)-1 {
		t.Errorf("SortedView length = %v, want %v (self excluded)", len(sorted), len(raw)-1)
	}
	for _, info := range sorted {
		if info.Idx == 0 {
			t.Error("SortedView should not contain the self entry")
		}
	}
}

func TestMatrixRefreshOverwritesInPlace(t *testing.T) {
	b := makePop(math3.Vec3{X: 1})
	self := &agent.Agent{}
	m := NewMatrix(1, 1)
	m.Refresh(0, self, b, false)
	first := m.RawRow(0)[0].DistSq

	b.Get(0).Pos = math3.Vec3{X: 100}
	m.Refresh(0, self, b, false)
	second := m.RawRow(0)[0].DistSq

	if first == second {
		t.Error("Refresh should recompute DistSq against the updated population")
	}
}

func TestIndexRefreshAgentAcrossSpecies(t *testing.T) {
	prey := makePop(math3.Vec3{}, math3.Vec3{X: 1})
	pred := agent.NewPopulation(agent.Predator, 2)
	pred.Get(0).Pos = math3.Vec3{X: 3}
	pred.Get(1).Pos = math3.Vec3{X: 5}

	pops := [agent.NumSpecies]*agent.Population{agent.Prey: prey, agent.Predator: pred}
	idx := NewIndex(prey, pops)
	idx.RefreshAgent(0, prey.Get(0), pops, agent.Prey)

	preyView := idx.View(0, agent.Prey)
	if len(preyView) != 1 { // prey pop has 2 agents, self excluded
		t.Errorf("own-species view length = %v, want 1", len(preyView))
	}
	predView := idx.View(0, agent.Predator)
	if len(predView) != 2 {
		t.Errorf("other-species view length = %v, want 2", len(predView))
	}
	if predView[0].Idx != 0 { // pred at x=3 closer than x=5
		t.Errorf("closest predator Idx = %v, want 0", predView[0].Idx)
	}
}
