package state

import (
	"github.com/murmuration/engine/action"
	"github.com/murmuration/engine/agent"
)

// State is one node of an agent's state machine: an ordered tuple of
// actions plus an exit policy. Concrete kinds are Transient, Persistent,
// and MultiState (§4.4).
type State interface {
	// ID is this state's index within its owning Machine's States slice.
	ID() uint16
	// Tr returns the reaction period: the minimum tick spacing between
	// re-evaluations of this state's action chain.
	Tr() agent.Tick
	// AssessEntry scores how strongly this state wants to run, consumed by
	// a MultiState selector choosing among sub-states.
	AssessEntry(ctx *action.Context) float32
	// Enter runs one-shot entry behavior (on_entry for every action, then
	// the first Operate pass) and reports whether the state already wants
	// to exit this same tick (true for Transient, for a zero-duration
	// Persistent, or when a MultiState's chosen sub-state itself exits
	// immediately). copied is consulted by Persistent/MultiState entry to
	// decide whether to adopt a copy-escape exit tick or sub-state instead
	// of sampling fresh ones; Machine passes the agent's CopiedState only
	// for an entry through the copy-escape channel, and otherwise a
	// StateInfo with ExitTick ExitNever and Copyable false.
	Enter(ctx *action.Context, copied *agent.StateInfo) (exited bool)
	// Resume re-evaluates the state on a later reaction tick and reports
	// whether it now wants to exit.
	Resume(ctx *action.Context) (exited bool)
}

// runActionsEntry runs OnEntry then Operate for every action in order —
// the declared tuple order, since actions that write pos/dir/speed/target
// must run before actions reading them within the same tick (§4.3).
func runActionsEntry(ctx *action.Context, actions []action.Action) {
	for _, a := range actions {
		a.OnEntry(ctx)
	}
	for _, a := range actions {
		a.Operate(ctx)
	}
}

func runActions(ctx *action.Context, actions []action.Action) {
	for _, a := range actions {
		a.Operate(ctx)
	}
}

func maxAssess(ctx *action.Context, actions []action.Action) float32 {
	var best float32
	for i, a := range actions {
		score := a.AssessEntry(ctx)
		if i == 0 || score > best {
			best = score
		}
	}
	return best
}

// Transient is a one-shot state: its action tuple runs once at entry, then
// it immediately exits (§4.4).
type Transient struct {
	id      uint16
	tr      agent.Tick
	actions []action.Action
}

// NewTransient constructs a transient state with reaction period tr
// (ticks, ≥1) and the given ordered action tuple.
func NewTransient(id uint16, tr agent.Tick, actions []action.Action) *Transient {
	return &Transient{id: id, tr: tr, actions: actions}
}

func (s *Transient) ID() uint16 { return s.id }
func (s *Transient) Tr() agent.Tick { return s.tr }

func (s *Transient) AssessEntry(ctx *action.Context) float32 { return maxAssess(ctx, s.actions) }

func (s *Transient) Enter(ctx *action.Context, copied *agent.StateInfo) (exited bool) {
	runActionsEntry(ctx, s.actions)
	return true
}

func (s *Transient) Resume(ctx *action.Context) (exited bool) {
	// A transient always exits at Enter; Resume is never scheduled for
	// one, but returns exited defensively if ever called.
	return true
}

// Persistent runs its actions for a configured duration (in ticks) or
// until some other condition set by an action calls for exit; here we model
// "until exit" purely via the fixed duration, per the configured
// `duration` field — actions signal early exit by driving their own
// AssessEntry/state outside this package is not part of the source's
// contract, so Persistent exits strictly at T ≥ t_exit.
//
// The exit tick is per-agent state (ctx.Self.CurrentState.ExitTick), never a
// field on Persistent itself: a Machine's States are shared read-only across
// every agent of a species and stepped concurrently (§5), so a field here
// would be a data race between two agents both in this state.
type Persistent struct {
	id       uint16
	tr       agent.Tick
	duration agent.Tick
	actions  []action.Action
}

// NewPersistent constructs a persistent state with reaction period tr,
// nominal duration (ticks), and ordered action tuple.
func NewPersistent(id uint16, tr, duration agent.Tick, actions []action.Action) *Persistent {
	return &Persistent{id: id, tr: tr, duration: duration, actions: actions}
}

func (s *Persistent) ID() uint16     { return s.id }
func (s *Persistent) Tr() agent.Tick { return s.tr }

func (s *Persistent) AssessEntry(ctx *action.Context) float32 { return maxAssess(ctx, s.actions) }

func (s *Persistent) Enter(ctx *action.Context, copied *agent.StateInfo) (exited bool) {
	var exitTick agent.Tick
	if copied.State == s.id && copied.ExitTick != agent.ExitNever {
		exitTick = copied.ExitTick
	} else {
		exitTick = ctx.Tick + s.duration
	}
	ctx.Self.CurrentState.ExitTick = exitTick
	runActionsEntry(ctx, s.actions)
	return ctx.Tick >= exitTick
}

func (s *Persistent) Resume(ctx *action.Context) (exited bool) {
	runActions(ctx, s.actions)
	return ctx.Tick >= ctx.Self.CurrentState.ExitTick
}
