package observer

import "testing"

type fakeSim struct {
	tick int64
	dt   float32
}

func (f fakeSim) CurrentTick() int64 { return f.tick }
func (f fakeSim) DT() float32        { return f.dt }

type recordingObserver struct {
	received []Msg
}

func (r *recordingObserver) Notify(msg Msg, s Sim) { r.received = append(r.received, msg) }

func TestChainNotifiesInAppendOrder(t *testing.T) {
	var chain Chain
	var order []int
	chain.Append(&orderObserver{id: 1, order: &order})
	chain.Append(&orderObserver{id: 2, order: &order})
	chain.Append(&orderObserver{id: 3, order: &order})

	chain.Notify(Tick, fakeSim{})

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("notified %d observers, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("notify order[%d] = %v, want %v", i, order[i], want[i])
		}
	}
}

type orderObserver struct {
	id    int
	order *[]int
}

func (o *orderObserver) Notify(msg Msg, s Sim) { *o.order = append(*o.order, o.id) }

func TestChainDeliversMessageAndSim(t *testing.T) {
	var chain Chain
	rec := &recordingObserver{}
	chain.Append(rec)

	chain.Notify(PreTick, fakeSim{tick: 5, dt: 0.1})
	chain.Notify(Finished, fakeSim{tick: 5, dt: 0.1})

	if len(rec.received) != 2 || rec.received[0] != PreTick || rec.received[1] != Finished {
		t.Errorf("received = %v, want [PreTick Finished]", rec.received)
	}
}

func TestChainEmptyNotifyIsNoOp(t *testing.T) {
	var chain Chain
	chain.Notify(Tick, fakeSim{}) // must not panic on an empty chain
}

func TestMsgString(t *testing.T) {
	tests := []struct {
		msg  Msg
		want string
	}{
		{Tick, "Tick"},
		{PreTick, "PreTick"},
		{Initialized, "Initialized"},
		{Finished, "Finished"},
		{GUI, "GUI"},
		{Msg(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.msg.String(); got != tt.want {
			t.Errorf("Msg(%d).String() = %q, want %q", tt.msg, got, tt.want)
		}
	}
}
