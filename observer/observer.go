// Package observer implements the lifecycle notification chain: a singly
// linked list of sinks the simulation notifies at phase boundaries (§4.9).
// Observer never imports the simulation package — the Sim interface here is
// satisfied structurally, avoiding the cyclic dependency the source has
// between Observer and Simulation (§9 design note).
package observer

// Msg is a lifecycle notification tag (§6's integer wire values).
type Msg int

const (
	Tick        Msg = 0
	PreTick     Msg = 1
	Initialized Msg = 2
	Finished    Msg = 3
	GUI         Msg = 4
)

func (m Msg) String() string {
	switch m {
	case Tick:
		return "Tick"
	case PreTick:
		return "PreTick"
	case Initialized:
		return "Initialized"
	case Finished:
		return "Finished"
	case GUI:
		return "GUI"
	default:
		return "Unknown"
	}
}

// Sim is the minimal read surface a notification carries — just enough for
// an observer to query tick/time without the observer package depending on
// the simulation package. Concrete observers that need richer access type
// -assert s to a package-local interface their own package declares (e.g.
// telemetry.ObservableSim), satisfied structurally by *sim.Simulation.
type Sim interface {
	CurrentTick() int64
	DT() float32
}

// Observer receives lifecycle messages. Notify must return promptly —
// there is no back-pressure and no timeout; a slow observer stalls every
// subsequent phase (§4.9, §5).
type Observer interface {
	Notify(msg Msg, s Sim)
}

// Chain is a singly linked list of observers notified head-first, in
// append order.
type Chain struct {
	head *node
	tail *node
}

type node struct {
	obs  Observer
	next *node
}

// Append adds o to the tail of the chain.
func (c *Chain) Append(o Observer) {
	n := &node{obs: o}
	if c.tail == nil {
		c.head, c.tail = n, n
		return
	}
	c.tail.next = n
	c.tail = n
}

// Notify delivers msg to every observer in append order. An observer that
// errors internally is expected to handle it itself — per §7, observer-
// raised errors propagate to the tick driver. Chain does not recover a
// panic from an observer's Notify, and neither does cmd/simrun, so such a
// panic ends the process with a non-zero exit code.
func (c *Chain) Notify(msg Msg, s Sim) {
	for n := c.head; n != nil; n = n.next {
		n.obs.Notify(msg, s)
	}
}
