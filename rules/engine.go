package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine runs compiled rules against the strategic picture each tick.
// Rules fire in priority order; exclusive rules block lower-priority rules
// in the same category, preventing conflicting orders to the same companies.
type Engine struct {
	mu     sync.RWMutex
	rules  []*Rule
	Memory map[string]any
	memMu  sync.Mutex // guards all reads/writes to Memory
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{
		rules:  compiled,
		Memory: make(map[string]any),
	}, nil
}

// Evaluate runs all rules against the current strategic picture, issuing
// orders through the sink.
func (e *Engine) Evaluate(env Env, sink OrderSink) error {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	e.memMu.Lock()
	defer e.memMu.Unlock()
	env.Memory = e.Memory

	fired := make(map[string]bool) // category → exclusive rule already fired

	for _, r := range rules {
		if fired[r.Category] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}

		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "category", r.Category)

		if err := r.Action(env, sink); err != nil {
			slog.Error("rule action error", "rule", r.Name, "error", err)
		}

		if r.Exclusive {
			fired[r.Category] = true
		}
	}

	return nil
}

// Swap atomically replaces the rule set. Compiles first; if compilation
// fails the old rules remain active. Memory is cleared because the new
// rules may key it differently.
func (e *Engine) Swap(newRules []*Rule) error {
	compiled, err := compileRules(newRules)
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()

	e.memMu.Lock()
	e.Memory = make(map[string]any)
	e.memMu.Unlock()
	slog.Info("rule set swapped", "count", len(compiled), "rules", names)
	return nil
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
