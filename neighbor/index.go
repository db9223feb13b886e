// Package neighbor computes, per tick, the sorted cross-species distance
// matrices actions sense through: for every agent of species A and every
// other species B, a row of all |B| inter-agent records sorted ascending by
// squared distance.
package neighbor

import (
	"sort"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/math3"
)

// Info is one row entry: everything an action needs about a candidate
// neighbor without dereferencing back into the owning population.
type Info struct {
	DistSq      float32
	Pos         math3.Vec3
	Idx         agent.Index
	Stress      float32
	StateInfo   agent.StateInfo
}

// Row is one agent's full, sorted neighbor list against one other species.
// Row[0] is self when the row is against the agent's own species (DistSq
// == 0); RawView exposes it, SortedView hides it.
type Row []Info

// SortedView returns the neighbor view with self excluded — the range an
// action's sensing loop walks.
func (r Row) SortedView() Row {
	if len(r) == 0 {
		return r
	}
	if r[0].DistSq == 0 {
		return r[1:]
	}
	return r
}

// RawView returns the full row including a same-species self entry.
func (r Row) RawView() Row { return r }

// Matrix holds, for one (species A, species B) pair, one Row per agent of
// A. Resized once at initialization and overwritten in place each tick —
// it never reallocates once sized for the populations it serves.
type Matrix struct {
	rows [][]Info
}

// NewMatrix allocates a matrix with na rows, each capacity nb.
func NewMatrix(na, nb int) *Matrix {
	m := &Matrix{rows: make([][]Info, na)}
	for i := range m.rows {
		m.rows[i] = make([]Info, 0, nb)
	}
	return m
}

// Row returns the row for agent index i, re-sliced to exclude self.
func (m *Matrix) Row(i agent.Index) Row { return Row(m.rows[i]).SortedView() }

// RawRow returns the row for agent index i including the self entry.
func (m *Matrix) RawRow(i agent.Index) Row { return Row(m.rows[i]) }

// Refresh recomputes agent i's row against population b, in place, then
// sorts it ascending by DistSq. same reports whether b is i's own
// population (so the self entry sorts first at DistSq==0 and is hidden by
// SortedView rather than omitted, per §4.6).
func (m *Matrix) Refresh(i agent.Index, self *agent.Agent, b *agent.Population, same bool) {
	row := m.rows[i][:0]
	for j := range b.Agents {
		if same && agent.Index(j) == i {
			// Self entry: DistSq==0 sorts first and is hidden by SortedView.
			row = append(row, Info{
				DistSq:    0,
				Pos:       self.Pos,
				Idx:       i,
				Stress:    self.Stress,
				StateInfo: self.CurrentState,
			})
			continue
		}
		other := &b.Agents[j]
		d := other.Pos.Sub(self.Pos)
		row = append(row, Info{
			DistSq:    d.LenSq(),
			Pos:       other.Pos,
			Idx:       agent.Index(j),
			Stress:    other.Stress,
			StateInfo: other.CurrentState,
		})
	}
	sort.SliceStable(row, func(x, y int) bool { return row[x].DistSq < row[y].DistSq })
	m.rows[i] = row
}

// Index holds, per agent of species A, one Matrix for every other species
// it can sense. The source keys this by species tag; here it is a small
// fixed array sized by agent.NumSpecies since the engine is two-species.
type Index struct {
	matrices [agent.NumSpecies]*Matrix
}

// NewIndex allocates matrices of a against every species population in
// pops (including a's own population, for same-species sensing).
func NewIndex(a *agent.Population, pops [agent.NumSpecies]*agent.Population) *Index {
	idx := &Index{}
	for b := agent.Species(0); b < agent.NumSpecies; b++ {
		idx.matrices[b] = NewMatrix(a.Len(), pops[b].Len())
	}
	return idx
}

// RefreshAgent recomputes agent i's rows against every species.
func (idx *Index) RefreshAgent(i agent.Index, self *agent.Agent, pops [agent.NumSpecies]*agent.Population, own agent.Species) {
	for b := agent.Species(0); b < agent.NumSpecies; b++ {
		idx.matrices[b].Refresh(i, self, pops[b], b == own)
	}
}

// View returns agent i's sorted (self-excluded) view against species b.
func (idx *Index) View(i agent.Index, b agent.Species) Row { return idx.matrices[b].Row(i) }

// RawView returns agent i's full row (including self) against species b.
func (idx *Index) RawView(i agent.Index, b agent.Species) Row { return idx.matrices[b].RawRow(i) }
