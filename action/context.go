// Package action implements the composable steering primitives that make up
// a state's action tuple. Every action satisfies the uniform
// (OnEntry, AssessEntry, Operate) contract and mutates only the agent it
// was called for — never a neighbor — reading neighbors through the
// read-only Context.
package action

import (
	"golang.org/x/exp/rand"

	"github.com/murmuration/engine/agent"
	"github.com/murmuration/engine/group"
	"github.com/murmuration/engine/neighbor"
)

// Populations exposes the two species populations an action may read (to
// resolve a neighbor.Info.Idx back to a full agent, e.g. for targeting).
type Populations [agent.NumSpecies]*agent.Population

// Groups exposes the group trackers an action may query (select_group).
type Groups [agent.NumSpecies]*group.Tracker

// Context is the read-only view the simulation passes into every action
// call. Actions hold no references to neighbors or populations between
// calls — everything flows through Context each time.
type Context struct {
	Self     *agent.Agent
	SelfIdx  agent.Index
	Species  agent.Species
	Tick     agent.Tick
	DT       float32

	Neighbors *neighbor.Index
	Pops      Populations
	Groups    Groups

	// Rng is a thread-local generator: one per worker, seeded
	// deterministically at worker init so results are reproducible per
	// thread given the same call sequence (§5).
	Rng *rand.Rand
}

// OwnNeighbors returns self's sorted, self-excluded view against its own
// species.
func (c *Context) OwnNeighbors() neighbor.Row { return c.Neighbors.View(c.SelfIdx, c.Species) }

// OtherNeighbors returns self's sorted view against the other species.
func (c *Context) OtherNeighbors() neighbor.Row { return c.Neighbors.View(c.SelfIdx, c.Species.Other()) }

// Agent resolves a neighbor index within species sp back to the live agent.
func (c *Context) Agent(sp agent.Species, idx agent.Index) *agent.Agent { return c.Pops[sp].Get(idx) }

// Action is the uniform contract every steering primitive implements.
// AssessEntry scores how strongly the action's owning state wants to run
// (used by a MultiState selector); OnEntry runs once when the owning state
// is entered; Operate runs every reaction period and is the only method
// most actions need to do real work in.
type Action interface {
	AssessEntry(ctx *Context) float32
	OnEntry(ctx *Context)
	Operate(ctx *Context)
}

// Base provides no-op defaults for AssessEntry/OnEntry so concrete actions
// only implement Operate unless they need the others — mirroring how most
// of the source's action types leave on_entry/assess_entry at their base
// implementation.
type Base struct{}

func (Base) AssessEntry(ctx *Context) float32 { return 0 }
func (Base) OnEntry(ctx *Context)             {}
