// Package blackboard is the shared intelligence store. Agents publish what
// they know under string keys and trade short-lived signals with each other;
// nothing in here touches the game connection.
package blackboard

import (
	"log/slog"
	"sync"
	"time"
)

// Signal is a one-to-one or broadcast message between agents. Receiver "all"
// addresses every consumer. TTL counts garbage collection sweeps, not time.
type Signal struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Type     string `json:"type"`
	Payload  any    `json:"payload"`
	TTL      int    `json:"ttl"`
}

// ReceiverAll addresses a signal to every consumer.
const ReceiverAll = "all"

// Board holds the key-value store, the signal market and the agent registry.
// All methods are safe for concurrent use.
type Board struct {
	mu      sync.Mutex
	data    map[string]any
	signals []Signal
	agents  map[string]string
}

func New() *Board {
	return &Board{
		data:   make(map[string]any),
		agents: make(map[string]string),
	}
}

// Set stores a value under key, replacing any previous value.
func (b *Board) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
}

// Get returns the stored value for key. Callers assert the concrete type.
func (b *Board) Get(key string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	return v, ok
}

// GetInt reads key as an int, tolerating the float64 that JSON decoding
// leaves behind.
func (b *Board) GetInt(key string) (int, bool) {
	v, ok := b.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

// SetLastUpdated stamps the store with the current wall-clock time.
func (b *Board) SetLastUpdated(t time.Time) {
	b.Set("last_updated", t)
}

// PublishSignal appends a signal to the market.
func (b *Board) PublishSignal(s Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signals = append(b.signals, s)
	slog.Debug("signal published", "sender", s.Sender, "receiver", s.Receiver, "type", s.Type, "ttl", s.TTL)
}

// ConsumeSignals returns the signals addressed to receiver or to everyone.
// Signals stay on the market; only TTL expiry removes them, so multiple
// consumers can observe the same broadcast.
func (b *Board) ConsumeSignals(receiver string) []Signal {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Signal
	for _, s := range b.signals {
		if s.Receiver == receiver || s.Receiver == ReceiverAll {
			out = append(out, s)
		}
	}
	return out
}

// ClearExpiredSignals drops signals whose TTL has run out, then ages the
// survivors by one sweep.
func (b *Board) ClearExpiredSignals() {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.signals[:0]
	for _, s := range b.signals {
		if s.TTL <= 0 {
			continue
		}
		s.TTL--
		kept = append(kept, s)
	}
	b.signals = kept
}

// RegisterAgent records an agent's presence and current status line.
func (b *Board) RegisterAgent(name, status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.agents[name] = status
}

// AgentStatus returns the last reported status for an agent.
func (b *Board) AgentStatus(name string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.agents[name]
	return s, ok
}
