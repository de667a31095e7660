package tactic

import (
	"log/slog"
	"sync"

	"juno/streamparse"
)

// Overlay observes validated attack pair batches before they are executed,
// for visualization or command enhancement. Execution proceeds regardless.
type Overlay interface {
	Enabled() bool
	ObservePairs(companyID string, pairs []streamparse.Pair)
}

// LogOverlay is the default overlay: when enabled and shown it logs each
// intercepted batch. There is no graphical surface behind it.
type LogOverlay struct {
	mu      sync.Mutex
	enabled bool
	visible bool
}

func (o *LogOverlay) Enable() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enabled = true
}

func (o *LogOverlay) Disable() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enabled = false
}

func (o *LogOverlay) Show() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = true
}

func (o *LogOverlay) Hide() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = false
}

func (o *LogOverlay) Enabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.enabled
}

func (o *LogOverlay) ObservePairs(companyID string, pairs []streamparse.Pair) {
	o.mu.Lock()
	visible := o.visible
	o.mu.Unlock()
	if !visible {
		return
	}
	for _, p := range pairs {
		slog.Info("attack order", "company", companyID, "attacker", p.Attacker, "target", p.Target)
	}
}
