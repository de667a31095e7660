package blackboard

import "testing"

func TestSetGet(t *testing.T) {
	b := New()
	if _, ok := b.Get("missing"); ok {
		t.Error("missing key reported present")
	}
	b.Set("cash", 5000)
	v, ok := b.Get("cash")
	if !ok || v.(int) != 5000 {
		t.Errorf("got %v, %v", v, ok)
	}
	b.Set("cash", 4000)
	v, _ = b.Get("cash")
	if v.(int) != 4000 {
		t.Errorf("overwrite lost: %v", v)
	}
}

func TestGetIntTolerantOfJSONNumbers(t *testing.T) {
	b := New()
	b.Set("map_width", float64(128))
	b.Set("map_height", 96)
	b.Set("name", "allies")
	if n, ok := b.GetInt("map_width"); !ok || n != 128 {
		t.Errorf("float64 read: %d, %v", n, ok)
	}
	if n, ok := b.GetInt("map_height"); !ok || n != 96 {
		t.Errorf("int read: %d, %v", n, ok)
	}
	if _, ok := b.GetInt("name"); ok {
		t.Error("string coerced to int")
	}
}

func TestConsumeDoesNotRemove(t *testing.T) {
	b := New()
	b.PublishSignal(Signal{Sender: "intel", Receiver: "strategy", Type: "enemy_spotted", TTL: 3})
	b.PublishSignal(Signal{Sender: "intel", Receiver: ReceiverAll, Type: "low_power", TTL: 3})
	b.PublishSignal(Signal{Sender: "intel", Receiver: "tactic", Type: "base_threat", TTL: 3})

	got := b.ConsumeSignals("strategy")
	if len(got) != 2 {
		t.Fatalf("strategy sees %d signals, want 2 (direct + broadcast)", len(got))
	}
	// A second consume of the same receiver sees the same signals.
	if again := b.ConsumeSignals("strategy"); len(again) != 2 {
		t.Errorf("re-consume sees %d, want 2", len(again))
	}
	if got := b.ConsumeSignals("tactic"); len(got) != 2 {
		t.Errorf("tactic sees %d, want 2", len(got))
	}
}

func TestSignalExpiresAfterTTLSweeps(t *testing.T) {
	b := New()
	b.PublishSignal(Signal{Sender: "a", Receiver: ReceiverAll, Type: "ping", TTL: 2})

	b.ClearExpiredSignals()
	if len(b.ConsumeSignals("x")) != 1 {
		t.Fatal("signal gone after first sweep")
	}
	b.ClearExpiredSignals()
	if len(b.ConsumeSignals("x")) != 1 {
		t.Fatal("signal gone after second sweep")
	}
	b.ClearExpiredSignals()
	if len(b.ConsumeSignals("x")) != 0 {
		t.Fatal("signal survived ttl+1 sweeps")
	}
}

func TestZeroTTLDroppedImmediately(t *testing.T) {
	b := New()
	b.PublishSignal(Signal{Sender: "a", Receiver: ReceiverAll, Type: "ping", TTL: 0})
	b.ClearExpiredSignals()
	if len(b.ConsumeSignals("x")) != 0 {
		t.Error("ttl 0 signal survived a sweep")
	}
}

func TestAgentRegistry(t *testing.T) {
	b := New()
	if _, ok := b.AgentStatus("tactic"); ok {
		t.Error("unknown agent reported")
	}
	b.RegisterAgent("tactic", "running")
	b.RegisterAgent("tactic", "stopped")
	s, ok := b.AgentStatus("tactic")
	if !ok || s != "stopped" {
		t.Errorf("status = %q, %v", s, ok)
	}
}
