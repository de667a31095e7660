package rules

import (
	"fmt"

	"juno/gameapi"
)

// FallbackDoctrine is the conservative rule set the strategist runs when no
// language model is configured or a call fails: keep two companies in the
// field, hold the main base, push toward the richest unclaimed resource
// zone and pull outnumbered companies home.
func FallbackDoctrine() []*Rule {
	return []*Rule{
		musterRule(),
		{
			Name:         "retreat outnumbered companies",
			Priority:     95,
			Category:     "maneuver",
			Exclusive:    true,
			ConditionSrc: `HasMainBase() && len(OutnumberedCompanies()) > 0`,
			Action: func(env Env, sink OrderSink) error {
				base, _ := env.mainBase()
				for _, c := range env.OutnumberedCompanies() {
					// Stop feeding a losing fight while it pulls back.
					if c.Weight > 1.0 {
						sink.SetCompanyWeight(c.ID, 1.0)
					}
					// Normal move: disengage at full speed.
					if err := issueRelocate(env, sink, c.ID, base.Center, false, "retreat:"+c.ID); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:         "garrison main base",
			Priority:     90,
			Category:     "defense",
			Exclusive:    true,
			ConditionSrc: `HasMainBase() && HasCompany("1")`,
			Action: func(env Env, sink OrderSink) error {
				base, _ := env.mainBase()
				return issueRelocate(env, sink, "1", base.Center, true, "post:1")
			},
		},
		{
			Name:         "expand to richest free resource zone",
			Priority:     80,
			Category:     "maneuver",
			ConditionSrc: `HasCompany("2") && HasExpansionTarget()`,
			Action: func(env Env, sink OrderSink) error {
				target, _ := env.richestFreeResource()
				return issueRelocate(env, sink, "2", target.Center, true, "post:2")
			},
		},
	}
}

// HoldDoctrine recalls every company to the main base and stops expanding.
// Swapped in from the console when the offline fallback should turtle
// instead of pushing out.
func HoldDoctrine() []*Rule {
	return []*Rule{
		musterRule(),
		{
			Name:         "recall companies to main base",
			Priority:     90,
			Category:     "maneuver",
			Exclusive:    true,
			ConditionSrc: `HasMainBase() && CompanyCount() > 0`,
			Action: func(env Env, sink OrderSink) error {
				base, _ := env.mainBase()
				for _, c := range env.Companies {
					if err := issueRelocate(env, sink, c.ID, base.Center, false, "recall:"+c.ID); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

func musterRule() *Rule {
	return &Rule{
		Name:         "activate initial companies",
		Priority:     100,
		Category:     "muster",
		ConditionSrc: `CompanyCount() < 2`,
		Action: func(env Env, sink OrderSink) error {
			for _, id := range []string{"1", "2"} {
				if env.HasCompany(id) {
					continue
				}
				if err := sink.EnableCompany(id, 1.0); err != nil {
					return fmt.Errorf("enable company %s: %w", id, err)
				}
			}
			return nil
		},
	}
}

// issueRelocate sends a relocation order unless the same destination was
// already ordered under this memory key, so a rule firing every tick does
// not spam identical moves.
func issueRelocate(env Env, sink OrderSink, companyID string, target gameapi.Location, attackMove bool, key string) error {
	if prev, ok := env.Memory[key].(gameapi.Location); ok && prev == target {
		return nil
	}
	if err := sink.Relocate(companyID, target, attackMove); err != nil {
		return fmt.Errorf("relocate company %s: %w", companyID, err)
	}
	env.Memory[key] = target
	return nil
}
