package state

import (
	"github.com/murmuration/engine/action"
	"github.com/murmuration/engine/agent"
)

// MultiState switches among sub-states chosen at entry, then forwards
// Resume to whichever sub-state was picked until it exits — at which point
// the whole MultiState exits (§4.4).
//
// The chosen sub-state index lives in the agent's own
// CurrentState.SubState, never a field on MultiState itself: a Machine's
// States are shared read-only across every agent of a species and stepped
// concurrently (§5), so a field here would be a data race between two
// agents both occupying this state.
type MultiState struct {
	id     uint16
	tr     agent.Tick
	subs   []State
	priors []float32 // optional configured priors overriding assess_entry scores
}

// NewMultiState constructs a multi-state switching among subs. priors may
// be nil to use each sub-state's AssessEntry score instead of a configured
// prior.
func NewMultiState(id uint16, tr agent.Tick, subs []State, priors []float32) *MultiState {
	return &MultiState{id: id, tr: tr, subs: subs, priors: priors}
}

func (s *MultiState) ID() uint16     { return s.id }
func (s *MultiState) Tr() agent.Tick { return s.tr }

func (s *MultiState) AssessEntry(ctx *action.Context) float32 {
	var best float32
	for i, sub := range s.subs {
		score := sub.AssessEntry(ctx)
		if i == 0 || score > best {
			best = score
		}
	}
	return best
}

// subStateSelector samples a discrete distribution over per-sub-state
// scores (assess_entry, or the configured priors when set).
func (s *MultiState) subStateSelector(ctx *action.Context) int {
	scores := s.priors
	if scores == nil {
		scores = make([]float32, len(s.subs))
		for i, sub := range s.subs {
			scores[i] = sub.AssessEntry(ctx)
		}
	}
	return SampleRow(scores, ctx.Rng)
}

func (s *MultiState) Enter(ctx *action.Context, copied *agent.StateInfo) (exited bool) {
	adopting := copied.State == s.id && copied.Copyable && int(copied.SubState) < len(s.subs)
	var active int
	if adopting {
		active = int(copied.SubState)
	} else {
		active = s.subStateSelector(ctx)
	}
	ctx.Self.CurrentState.SubState = uint16(active)

	sub := s.subs[active]
	// Re-key the copied StateInfo to the chosen sub-state's own ID so a
	// Persistent sub-state's "copied.State == s.id" exit-tick adoption
	// check (§4.4) lines up with the sub-state, not the owning MultiState.
	subCopied := agent.StateInfo{ExitTick: agent.ExitNever}
	if adopting {
		subCopied = agent.StateInfo{State: uint16(active), SubState: copied.SubState, Copyable: copied.Copyable, ExitTick: copied.ExitTick}
	}
	exited = sub.Enter(ctx, &subCopied)
	return exited
}

func (s *MultiState) Resume(ctx *action.Context) (exited bool) {
	active := int(ctx.Self.CurrentState.SubState)
	return s.subs[active].Resume(ctx)
}
