// Package state implements the per-agent state machine: transient,
// persistent, and multi-state behaviors, and the transition model that
// samples the next state at exit.
package state

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
)

// Row is one row of a transition matrix: the probability of moving from
// the owning state to each state index. Rows need not be normalized by the
// caller — SampleRow treats an all-zero row as uniform (§4.5, §8 property 7).
type Row []float32

// Matrix is a K×K row-stochastic transition matrix, one row per state.
type Matrix []Row

// Interpolator evaluates a transition matrix as a function of a scalar
// (stress, for prey; a constant 0 for predators). It piecewise-linearly
// interpolates between configured edges, per §4.5.
type Interpolator struct {
	edges      []float32
	matrices   []Matrix
	numStates  int
}

// ConfigError reports a malformed transition configuration, raised at
// construction rather than during the per-tick hot path (§7).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "transition config: " + e.Reason }

// NewConstant returns an interpolator that always evaluates to m,
// regardless of x (the "constant" transition kind).
func NewConstant(m Matrix, numStates int) (*Interpolator, error) {
	if err := validateMatrix(m, numStates); err != nil {
		return nil, err
	}
	return &Interpolator{edges: []float32{0}, matrices: []Matrix{m}, numStates: numStates}, nil
}

// NewPiecewiseLinear builds a piecewise_linear_interpolator over strictly
// ascending edges, one matrix per edge.
func NewPiecewiseLinear(edges []float32, matrices []Matrix, numStates int) (*Interpolator, error) {
	if len(edges) == 0 {
		return nil, &ConfigError{Reason: "edges array is empty"}
	}
	if len(edges) != len(matrices) {
		return nil, &ConfigError{Reason: fmt.Sprintf("edges length %d does not match matrices length %d", len(edges), len(matrices))}
	}
	if !sort.SliceIsSorted(edges, func(i, j int) bool { return edges[i] < edges[j] }) {
		return nil, &ConfigError{Reason: "edges must be strictly increasing"}
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, &ConfigError{Reason: "edges must be strictly increasing"}
		}
	}
	for _, m := range matrices {
		if err := validateMatrix(m, numStates); err != nil {
			return nil, err
		}
	}
	return &Interpolator{edges: edges, matrices: matrices, numStates: numStates}, nil
}

func validateMatrix(m Matrix, numStates int) error {
	if len(m) != numStates {
		return &ConfigError{Reason: fmt.Sprintf("matrix has %d rows, want %d states", len(m), numStates)}
	}
	for _, row := range m {
		if len(row) != numStates {
			return &ConfigError{Reason: fmt.Sprintf("matrix row has %d columns, want %d states", len(row), numStates)}
		}
	}
	return nil
}

// At evaluates the interpolated matrix at x. Before the first edge, TM[0]
// is returned; past the last edge, TM[len-1]; at an exact edge, the
// matching matrix is returned exactly (§8 property 6).
func (in *Interpolator) At(x float32) Matrix {
	if x <= in.edges[0] {
		return in.matrices[0]
	}
	last := len(in.edges) - 1
	if x >= in.edges[last] {
		return in.matrices[last]
	}

	// Binary search for the first edge >= x.
	b := sort.Search(len(in.edges), func(i int) bool { return in.edges[i] >= x })
	a := b - 1
	if in.edges[b] == x {
		return in.matrices[b]
	}

	t := (x - in.edges[a]) / (in.edges[b] - in.edges[a])
	out := make(Matrix, in.numStates)
	for r := 0; r < in.numStates; r++ {
		out[r] = make(Row, in.numStates)
		for c := 0; c < in.numStates; c++ {
			out[r][c] = lerp(in.matrices[a][r][c], in.matrices[b][r][c], t)
		}
	}
	return out
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// SampleRow draws a state index from row using rng, normalizing on the
// fly. An all-zero row samples uniformly over its columns (§8 property 7).
func SampleRow(row Row, rng *rand.Rand) int {
	var sum float32
	for _, w := range row {
		sum += w
	}
	if sum <= 0 {
		return rng.Intn(len(row))
	}
	target := rng.Float32() * sum
	var acc float32
	for i, w := range row {
		acc += w
		if target < acc {
			return i
		}
	}
	return len(row) - 1
}
