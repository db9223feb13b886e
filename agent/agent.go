// Package agent defines the per-agent data model: flight state, body frame,
// state-machine bookkeeping, and the species population that owns it.
package agent

import (
	"math"

	"github.com/murmuration/engine/math3"
)

// Tick counts fixed-dt simulation steps since initialization.
type Tick int64

// NeverScheduled marks an agent that will not be revisited by the scheduler
// (used only for agents removed from the simulation; the core never retires
// a live agent this way, but the sentinel keeps scheduling code total).
const NeverScheduled Tick = math.MaxInt64

// StateInfo packs the fields carried by a state-machine position: which
// state (and, for multi-states, which sub-state) an agent occupies, whether
// that state is copyable via the social copy-escape channel, and the tick
// at which an open-ended/persistent state should exit.
type StateInfo struct {
	State      uint16
	SubState   uint16
	Copyable   bool
	ExitTick   Tick
}

// ExitNever marks a transient or open-ended persistent state that exits
// only when its action chain calls for exit, not at a scheduled tick.
const ExitNever Tick = math.MaxInt64

// TargetID is an optional index into a species population. The zero value
// is not a sentinel — Valid distinguishes "absent" from index 0, avoiding
// the source's bug-prone convention of stuffing -1 into an unsigned field.
type TargetID struct {
	idx   int
	valid bool
}

// NoTarget is the absent target.
var NoTarget = TargetID{}

// NewTarget returns a present target referring to idx.
func NewTarget(idx int) TargetID { return TargetID{idx: idx, valid: true} }

// Get returns the index and whether a target is present.
func (t TargetID) Get() (int, bool) { return t.idx, t.valid }

// Index represents an agent's position within a species population: a
// stable slot cleared and refilled as the population churns, but here
// treated as permanent since agents are never destroyed except at teardown.
type Index int

// Agent is the per-individual simulation state shared by prey and
// predators. Species-specific fields (Target, CopiedState, PrevExitDir) are
// always present but only meaningful for the species that uses them — this
// mirrors the source's single concrete agent struct reused across species
// rather than a sealed per-species type, since the state machine and
// integrator are identical code paths for both.
type Agent struct {
	Pos      math3.Vec3
	Dir      math3.Vec3 // unit vector
	Speed    float32
	Accel    math3.Vec3
	Steering math3.Vec3 // zeroed each tick before the action chain runs
	H        math3.BodyFrame

	ReactionTime Tick // minimum tick spacing between state re-evaluations
	LastUpdate   Tick
	NextUpdate   Tick

	CurrentState StateInfo
	Stress       float32 // ≥ 0

	// NeedsEntry is true when the next Machine.Step call for this agent must
	// run the current state's Enter (one-shot, first reaction period) rather
	// than Resume. Set whenever CurrentState changes (initialization, or a
	// transition at exit) and cleared once Enter has run.
	NeedsEntry bool

	// Predator-only.
	Target TargetID

	// Prey-only.
	CopiedState StateInfo
	PrevExitDir math3.Vec3

	// Action-private per-agent scratch, valid only while the owning
	// action's state is active. These live on Agent rather than on the
	// action instance itself because a state's action tuple is built once
	// and shared read-only across every agent occupying that state (like
	// Machine.States); a field on the action would be a data race between
	// two agents in the same state stepped concurrently (§5).
	TurnAngle    float32 // random_t_turn_gamma_pred: sampled turn angle
	TurnEndTick  Tick    // random_t_turn_gamma_pred: tick the turn maneuver ends
	TurnAwayRight bool   // random_t_turn_gamma_pred: which side the turn banks away to
	TurnRadius   float32 // random_t_turn_gamma_pred: turn radius fixed at entry speed/duration
	DiveEntryY   float32 // dive: altitude at state entry
}

// ZeroSteering resets the per-tick force accumulator. Called once per agent
// before its state's action chain runs.
func (a *Agent) ZeroSteering() { a.Steering = math3.Vec3{} }

// AddSteering accumulates a steering contribution. All action contributions
// commute under vector addition, so the declared action order only matters
// for actions that read pos/dir/speed/target written earlier in the same
// tick, not for the steering sum itself.
func (a *Agent) AddSteering(v math3.Vec3) { a.Steering = a.Steering.Add(v) }
