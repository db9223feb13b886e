package agent

// Species identifies one of the two populations the engine schedules.
// Update order within a tick is fixed: Prey before Predator (§4.8).
type Species uint8

const (
	Prey Species = iota
	Predator
	NumSpecies
)

func (s Species) String() string {
	if s == Prey {
		return "prey"
	}
	return "predator"
}

// Other returns the species' sole counterpart in a two-species world.
func (s Species) Other() Species {
	if s == Prey {
		return Predator
	}
	return Prey
}

// Population holds one species' agents. Agents are created once at
// construction and never destroyed except at simulation teardown: slots are
// stable for an agent's lifetime, so an Index from one tick remains valid
// (and refers to the same individual) on the next.
type Population struct {
	Species Species
	Agents  []Agent
}

// NewPopulation allocates n zero-valued agents for species s. Callers
// initialize Pos/Dir/Speed/state via an initial-conditions strategy before
// the first tick.
func NewPopulation(s Species, n int) *Population {
	return &Population{Species: s, Agents: make([]Agent, n)}
}

// Len returns the population size.
func (p *Population) Len() int { return len(p.Agents) }

// Get returns a pointer to the agent at idx for in-place mutation.
func (p *Population) Get(idx Index) *Agent { return &p.Agents[idx] }
