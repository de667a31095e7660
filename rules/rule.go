package rules

import (
	"github.com/expr-lang/expr/vm"

	"juno/gameapi"
)

// OrderSink receives the orders a fired rule issues. The strategist backs it
// with the squad manager and the tactical order buffer.
type OrderSink interface {
	EnableCompany(id string, weight float64) error
	SetCompanyWeight(id string, weight float64)
	Relocate(companyID string, target gameapi.Location, attackMove bool) error
}

// ActionFunc issues orders when a rule's condition is true.
type ActionFunc func(env Env, sink OrderSink) error

// Rule is the atomic unit of doctrine: a condition → action pair.
// The engine evaluates rules by priority and uses Category + Exclusive
// to prevent conflicting orders to the same companies.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	Category     string      // grouping for exclusive semantics
	Exclusive    bool        // if true, blocks lower-priority rules in same category
	ConditionSrc string      // expr source (preserved for serialization)
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}
