package state

import (
	"github.com/murmuration/engine/action"
	"github.com/murmuration/engine/agent"
)

// maxCascade bounds how many zero-duration state transitions may chain
// within a single Step call (e.g. a transient whose sampled successor is
// itself a transient). The source has no such bound since its transient
// chains are assumed short; this guards against a misconfigured
// all-transient cycle spinning forever in one tick.
const maxCascade = 64

// StressFunc returns the scalar the transition interpolator is evaluated
// at for an agent: stress for prey, a constant 0 for predators (§4.4).
type StressFunc func(*agent.Agent) float32

// Machine is one species' compiled state-machine package: the homogeneous
// array of state objects plus the transition interpolator sampled at exit.
// Package-level per the source's compile-time packaging (§4.4): one Machine
// is shared read-only across every agent of a species; only agent.Agent's
// CurrentState/CopiedState/NeedsEntry carry per-agent position.
type Machine struct {
	States []State
	Interp *Interpolator
	X      StressFunc
	// CopyEscape enables the copy-escape priority channel at exit (§4.4
	// step 1). Only prey use it; predators sample the transition matrix
	// unconditionally.
	CopyEscape bool
}

// NewMachine validates that every state's ID matches its slice position
// (K < 16383 states, the source's packed-field limit) and that the
// interpolator's matrix rank matches len(states).
func NewMachine(states []State, interp *Interpolator, x StressFunc, copyEscape bool) (*Machine, error) {
	const maxStates = 16383
	if len(states) >= maxStates {
		return nil, &ConfigError{Reason: "too many states for a packed 15-bit state index"}
	}
	for i, s := range states {
		if int(s.ID()) != i {
			return nil, &ConfigError{Reason: "state ID does not match its declared position"}
		}
	}
	return &Machine{States: states, Interp: interp, X: x, CopyEscape: copyEscape}, nil
}

// Step runs one reaction period for ctx.Self: resumes (or enters, on first
// call) the current state, cascades through any transitions that happen
// within this tick, and returns the tick at which the agent should next be
// scheduled (T + reaction_time of whatever state it ends the tick in).
func (m *Machine) Step(ctx *action.Context) agent.Tick {
	self := ctx.Self

	// Only an entry through the copy-escape channel adopts a copied exit
	// tick or sub-state; every other entry is handed noCopy.
	noCopy := agent.StateInfo{ExitTick: agent.ExitNever}

	var exited bool
	st := m.States[self.CurrentState.State]
	self.ZeroSteering()
	if self.NeedsEntry {
		exited = st.Enter(ctx, &noCopy)
		self.NeedsEntry = false
	} else {
		exited = st.Resume(ctx)
	}

	for i := 0; exited && i < maxCascade; i++ {
		copying := m.CopyEscape && self.CopiedState.State != self.CurrentState.State
		m.transitionAtExit(ctx)
		st = m.States[self.CurrentState.State]
		self.ZeroSteering()
		entry := &noCopy
		if copying {
			entry = &self.CopiedState
		}
		exited = st.Enter(ctx, entry)
		self.NeedsEntry = false
	}

	return ctx.Tick + st.Tr()
}

// transitionAtExit implements the §4.4 exit algorithm: the copy-escape
// channel takes priority over sampling, then stress-modulated sampling of
// the interpolated transition matrix, then bookkeeping resets.
func (m *Machine) transitionAtExit(ctx *action.Context) {
	self := ctx.Self

	if m.CopyEscape && self.CopiedState.State != self.CurrentState.State {
		self.CurrentState = self.CopiedState
	} else {
		x := float32(0)
		if m.X != nil {
			x = m.X(self)
		}
		row := m.Interp.At(x)[self.CurrentState.State]
		next := SampleRow(row, ctx.Rng)
		self.CurrentState = agent.StateInfo{State: uint16(next)}
	}

	self.PrevExitDir = self.Dir
	self.CopiedState = self.CurrentState
}
