package telemetry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/group"
	"github.com/murmuration/engine/neighbor"
	"github.com/murmuration/engine/observer"
)

// ObservableSim is the read surface an AnalysisObserver needs beyond
// observer.Sim's tick/dt pair — population, neighbor, and group snapshots.
// Declared here rather than imported from sim to avoid a cycle; satisfied
// structurally by *sim.Simulation.
type ObservableSim interface {
	CurrentTick() int64
	DT() float32
	Visit(sp agent.Species, fn func(agent.Index, *agent.Agent))
	SortedView(self agent.Species, idx agent.Index, other agent.Species) neighbor.Row
	Groups(sp agent.Species) []group.Descr
	GroupOf(sp agent.Species, idx agent.Index) group.ID
	GroupMates(sp agent.Species, gid group.ID) []agent.Index
	Pop(sp agent.Species) *agent.Population
}

// Sampler produces this tick's analysis rows from the simulation's current
// state — zero, one, or many rows per call (a GroupData sampler emits one
// row per group, a TimeSeries sampler one per agent). Implementations must
// not retain s beyond the call.
type Sampler interface {
	header() []string
	sample(s ObservableSim) [][]float32
}

// speciesOf reads the "species" param ("prey"/"pred", default "prey") — the
// per-species scoping the source's TimeSeriesObserver/GroupObserver take as
// a template tag.
func speciesOf(params map[string]any) agent.Species {
	if v, ok := params["species"]; ok {
		if s, ok := v.(string); ok && s == "pred" {
			return agent.Predator
		}
	}
	return agent.Prey
}

// NewSampler builds the sampler named by an ObserverSpec.Type (with any "~"
// disabled-prefix already stripped by the caller). Names follow the
// source's analysis_obs.hpp observer names; "population" and "stress" are
// supplements this port adds. Unknown names are a config error, not a
// silent no-op, since a misspelled observer name would otherwise disappear
// without a trace.
func NewSampler(name string, params map[string]any) (Sampler, error) {
	switch name {
	case "TimeSeries":
		return &timeSeriesSampler{sp: speciesOf(params)}, nil
	case "GroupData":
		return &groupDataSampler{sp: speciesOf(params)}, nil
	case "population":
		return &populationSampler{}, nil
	case "stress":
		return &stressSampler{}, nil
	default:
		return nil, fmt.Errorf("telemetry: unknown observer type %q", name)
	}
}

// timeSeriesSampler emits one row per agent of its species each tick:
// position, direction, speed, state/sub-state, distance to its group's
// centroid, and squared distance to its nearest same-species neighbor —
// the source's TimeSeriesObserver (model/analysis/analysis_obs.hpp),
// trimmed of the GPU-instance-specific acceleration columns.
type timeSeriesSampler struct{ sp agent.Species }

func (timeSeriesSampler) header() []string {
	return []string{"tick", "idx", "pos[3]", "dir[3]", "speed", "state", "sub_state", "dist_to_group_centroid", "nnd2"}
}

func (t *timeSeriesSampler) sample(s ObservableSim) [][]float32 {
	var rows [][]float32
	s.Visit(t.sp, func(idx agent.Index, a *agent.Agent) {
		gid := s.GroupOf(t.sp, idx)
		var distToCentroid float32
		if groups := s.Groups(t.sp); gid != group.NoGroup && uint32(gid) < uint32(len(groups)) {
			distToCentroid = a.Pos.Sub(groups[gid].Centroid()).Len()
		}
		var nnd2 float32
		if row := s.SortedView(t.sp, idx, t.sp); len(row) > 0 {
			nnd2 = row[0].DistSq
		}
		rows = append(rows, []float32{
			float32(s.CurrentTick()), float32(idx),
			a.Pos.X, a.Pos.Y, a.Pos.Z,
			a.Dir.X, a.Dir.Y, a.Dir.Z,
			a.Speed,
			float32(a.CurrentState.State), float32(a.CurrentState.SubState),
			distToCentroid, nnd2,
		})
	})
	return rows
}

// groupDataSampler emits one row per published group of its species: size,
// mean velocity, polarization (mean alignment of members with the group's
// velocity), volume, and extents — the source's GroupObserver
// (model/analysis/analysis_obs.hpp), trimmed of the raw orientation frame.
type groupDataSampler struct{ sp agent.Species }

func (groupDataSampler) header() []string {
	return []string{"tick", "idx", "size", "vel[3]", "polarization", "volume", "ext[3]"}
}

func (g *groupDataSampler) sample(s ObservableSim) [][]float32 {
	groups := s.Groups(g.sp)
	pop := s.Pop(g.sp)
	rows := make([][]float32, 0, len(groups))
	for i, gr := range groups {
		gid := group.ID(i)
		fwd := gr.Vel.Normalize(gr.Vel)
		var pol float32
		mates := s.GroupMates(g.sp, gid)
		for _, idx := range mates {
			pol += pop.Get(idx).Dir.Dot(fwd)
		}
		if len(mates) > 0 {
			pol /= float32(len(mates))
		}
		volume := gr.Ext.X * gr.Ext.Y * gr.Ext.Z
		rows = append(rows, []float32{
			float32(s.CurrentTick()), float32(gid), float32(gr.Size),
			gr.Vel.X, gr.Vel.Y, gr.Vel.Z,
			pol, volume, gr.Ext.X, gr.Ext.Y, gr.Ext.Z,
		})
	}
	return rows
}

// populationSampler emits per-species population size each row.
type populationSampler struct{}

func (populationSampler) header() []string { return []string{"tick", "prey", "pred"} }

func (populationSampler) sample(s ObservableSim) [][]float32 {
	var preyN, predN int
	s.Visit(agent.Prey, func(agent.Index, *agent.Agent) { preyN++ })
	s.Visit(agent.Predator, func(agent.Index, *agent.Agent) { predN++ })
	return [][]float32{{float32(s.CurrentTick()), float32(preyN), float32(predN)}}
}

// stressSampler emits prey stress distribution (mean, p10, p50, p90) — zero
// for predators since they carry no stress dynamics (§4.4).
type stressSampler struct{}

func (stressSampler) header() []string {
	return []string{"tick", "stress_mean", "stress_p10", "stress_p50", "stress_p90"}
}

func (stressSampler) sample(s ObservableSim) [][]float32 {
	var values []float64
	s.Visit(agent.Prey, func(_ agent.Index, a *agent.Agent) {
		values = append(values, float64(a.Stress))
	})
	mean, p10, p50, p90 := distributionStats(values)
	return [][]float32{{float32(s.CurrentTick()), float32(mean), float32(p10), float32(p50), float32(p90)}}
}

// distributionStats computes mean and p10/p50/p90 of values, 0 for an empty
// slice.
func distributionStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	return mean, percentile(sorted, 0.10), percentile(sorted, 0.50), percentile(sorted, 0.90)
}

// percentile linearly interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// AnalysisObserver caches sampled rows and flushes to a BinCSVWriter when
// the row count exceeds cacheRows or on Finished (§4.9). One observer
// writes exactly one named output file.
type AnalysisObserver struct {
	name    string
	smp     Sampler
	writer  *BinCSVWriter
	every   int64 // sample every N ticks; 0 and 1 both mean every tick
	cache   [][]float32
	cacheAt int
}

// NewAnalysisObserver builds an AnalysisObserver for spec against dir,
// opening its .bin/.csv pair immediately. params recognizes "every"
// (sample stride in ticks) and "cache_rows" (flush threshold, default 256).
func NewAnalysisObserver(dir, name string, spec Sampler, params map[string]any) (*AnalysisObserver, error) {
	w, err := NewBinCSVWriter(dir, name, spec.header())
	if err != nil {
		return nil, fmt.Errorf("analysis observer %q: %w", name, err)
	}
	cacheRows := 256
	if v, ok := params["cache_rows"]; ok {
		if n, ok := v.(int); ok && n > 0 {
			cacheRows = n
		}
	}
	every := int64(1)
	if v, ok := params["every"]; ok {
		if n, ok := v.(int); ok && n > 0 {
			every = int64(n)
		}
	}
	return &AnalysisObserver{name: name, smp: spec, writer: w, every: every, cacheAt: cacheRows}, nil
}

// Notify implements observer.Observer: it samples on Tick (subject to the
// "every" stride) and flushes+closes on Finished (§4.9). Any other message,
// or a Sim that doesn't carry the richer ObservableSim surface, is ignored.
func (o *AnalysisObserver) Notify(msg observer.Msg, s observer.Sim) {
	obs, ok := s.(ObservableSim)
	if !ok {
		return
	}

	switch msg {
	case observer.Tick:
		if o.every > 1 && obs.CurrentTick()%o.every != 0 {
			return
		}
		o.cache = append(o.cache, o.smp.sample(obs)...)
		if len(o.cache) >= o.cacheAt {
			o.flush()
		}
	case observer.Finished:
		o.flush()
		if err := o.writer.Close(); err != nil {
			slog.Error("analysis observer close failed", "name", o.name, "err", err)
		}
	}
}

func (o *AnalysisObserver) flush() {
	for _, row := range o.cache {
		if err := o.writer.WriteRow(row); err != nil {
			slog.Error("analysis observer write failed", "name", o.name, "err", err)
			break
		}
	}
	o.cache = o.cache[:0]
}
