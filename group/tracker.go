// Package group implements periodic spatial clustering of a population into
// connected components, publishing per-group centroid, velocity, and
// oriented bounding box, and dead-reckoning those centroids between
// re-clusters.
package group

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/math3"
)

// ID identifies a group within one Tracker's most recent Cluster call.
// Group identity may change at every re-cluster.
type ID uint32

// NoGroup is the sentinel returned for an unassigned agent.
const NoGroup ID = math.MaxUint32

// Descr is one published group: member count, mean velocity, and an
// oriented bounding box expressed as an orthonormal frame H (H[0], H[1] are
// the in-plane principal axes, H[2] is the centroid) plus half-extents.
type Descr struct {
	Size uint32
	Vel  math3.Vec3
	H    [3]math3.Vec3 // H[2] is the centroid
	Ext  math3.Vec3
}

// Centroid returns the group's current centroid (H[2]).
func (d *Descr) Centroid() math3.Vec3 { return d.H[2] }

type proxy struct {
	idx agent.Index
	pos math3.Vec3
	vel math3.Vec3
}

// Tracker clusters one population's positions under the relation
// d(pᵢ,pⱼ)² < threshold every Cluster call, and dead-reckons the resulting
// centroids between calls via Track.
type Tracker struct {
	proxies   []proxy
	groups    []Descr
	groupOf   []ID
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Groups returns the most recently published group descriptors.
func (t *Tracker) Groups() []Descr { return t.groups }

// GroupOf returns the group a population index belongs to, or NoGroup.
func (t *Tracker) GroupOf(idx agent.Index) ID {
	if int(idx) >= len(t.groupOf) {
		return NoGroup
	}
	return t.groupOf[idx]
}

// GroupMates returns the population indices sharing gid with idx, idx
// excluded is not assumed by callers — they filter it themselves if
// needed; this simply returns every member of gid.
func (t *Tracker) GroupMates(gid ID) []agent.Index {
	if gid == NoGroup {
		return nil
	}
	var mates []agent.Index
	for i, g := range t.groupOf {
		if g == gid {
			mates = append(mates, agent.Index(i))
		}
	}
	return mates
}

// Cluster rebuilds proxies from pop and recomputes connected components
// under d² < thresholdSq. An empty population yields an empty descriptor
// set and GroupOf always returning NoGroup.
func (t *Tracker) Cluster(pop *agent.Population, thresholdSq float32) {
	n := pop.Len()
	t.proxies = t.proxies[:0]
	for i := range pop.Agents {
		a := &pop.Agents[i]
		t.proxies = append(t.proxies, proxy{
			idx: agent.Index(i),
			pos: a.Pos,
			vel: a.Dir.Scale(a.Speed),
		})
	}

	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if t.proxies[i].pos.Sub(t.proxies[j].pos).LenSq() < thresholdSq {
				uf.union(i, j)
			}
		}
	}

	members := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		members[root] = append(members[root], i)
	}

	t.groups = t.groups[:0]
	t.groupOf = make([]ID, n)
	for i := range t.groupOf {
		t.groupOf[i] = NoGroup
	}

	for _, idxs := range members {
		gid := ID(len(t.groups))
		descr := buildDescr(t.proxies, idxs)
		t.groups = append(t.groups, descr)
		for _, i := range idxs {
			t.groupOf[i] = gid
		}
	}
}

// Track dead-reckons each group's centroid between Cluster calls:
// H[2] += dt·vel.
func (t *Tracker) Track(dt float32) {
	for i := range t.groups {
		t.groups[i].H[2] = t.groups[i].H[2].Add(t.groups[i].Vel.Scale(dt))
	}
}

// buildDescr computes centroid (offset from the first member, per §4.7),
// mean velocity, and a principal-axis oriented bounding box over member
// offsets.
func buildDescr(proxies []proxy, idxs []int) Descr {
	origin := proxies[idxs[0]].pos

	var centroidOffset, meanVel math3.Vec3
	for _, i := range idxs {
		centroidOffset = centroidOffset.Add(proxies[i].pos.Sub(origin))
		meanVel = meanVel.Add(proxies[i].vel)
	}
	n := float32(len(idxs))
	centroidOffset = centroidOffset.Scale(1 / n)
	meanVel = meanVel.Scale(1 / n)
	centroid := origin.Add(centroidOffset)

	axisX, axisY, axisZ := principalAxes(proxies, idxs, centroid)

	var ext math3.Vec3
	for _, i := range idxs {
		off := proxies[i].pos.Sub(centroid)
		ext.X = max32(ext.X, absf(off.Dot(axisX)))
		ext.Y = max32(ext.Y, absf(off.Dot(axisY)))
		ext.Z = max32(ext.Z, absf(off.Dot(axisZ)))
	}

	return Descr{
		Size: uint32(len(idxs)),
		Vel:  meanVel,
		H:    [3]math3.Vec3{axisX, axisY, centroid},
		Ext:  ext,
	}
}

// principalAxes computes the principal axes of the member offsets via
// eigendecomposition of the 3×3 covariance matrix. The third axis
// (axisZ, unused as an explicit H row but needed to size Ext.Z) is derived
// as the cross product to guarantee an orthonormal right-handed triple even
// when the covariance is degenerate (e.g. a single member, or a perfectly
// planar cluster).
func principalAxes(proxies []proxy, idxs []int, centroid math3.Vec3) (math3.Vec3, math3.Vec3, math3.Vec3) {
	if len(idxs) < 2 {
		return math3.Vec3{X: 1}, math3.Vec3{Y: 1}, math3.Vec3{Z: 1}
	}

	var sums [3][3]float64
	for _, i := range idxs {
		off := proxies[i].pos.Sub(centroid)
		v := [3]float64{float64(off.X), float64(off.Y), float64(off.Z)}
		for r := 0; r < 3; r++ {
			for c := r; c < 3; c++ {
				sums[r][c] += v[r] * v[c]
			}
		}
	}
	n := float64(len(idxs))
	data := make([]float64, 9)
	for r := 0; r < 3; r++ {
		for c := r; c < 3; c++ {
			data[r*3+c] = sums[r][c] / n
			data[c*3+r] = sums[r][c] / n
		}
	}
	symCov := mat.NewSymDense(3, data)

	var eig mat.EigenSym
	ok := eig.Factorize(symCov, true)
	if !ok {
		return math3.Vec3{X: 1}, math3.Vec3{Y: 1}, math3.Vec3{Z: 1}
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	values := eig.Values(nil)

	// gonum returns eigenpairs ascending; the last column is the dominant axis.
	order := []int{2, 1, 0}
	_ = values
	axisFrom := func(col int) math3.Vec3 {
		return math3.Vec3{
			X: float32(vecs.At(0, col)),
			Y: float32(vecs.At(1, col)),
			Z: float32(vecs.At(2, col)),
		}
	}
	axisX := axisFrom(order[0]).Normalize(math3.Vec3{X: 1})
	axisY := axisFrom(order[1]).Normalize(math3.Vec3{Y: 1})
	axisZ := axisX.Cross(axisY)
	return axisX, axisY, axisZ
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// unionFind is a small disjoint-set structure for connected-component
// clustering over the "within threshold" relation.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}
