package rules

import (
	"testing"
)

func fallbackEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(FallbackDoctrine())
	if err != nil {
		t.Fatalf("fallback doctrine does not compile: %v", err)
	}
	return e
}

func baseZone(id int, at, owner string, x, y int) ZoneView {
	return ZoneView{ID: id, Type: at, Owner: owner, Center: loc(x, y), Visible: true, Explored: true}
}

func TestFallbackEnablesTwoCompanies(t *testing.T) {
	e := fallbackEngine(t)
	sink := newRecordingSink()
	if err := e.Evaluate(Env{}, sink); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(sink.enabled) != 2 || sink.enabled[0] != "1" || sink.enabled[1] != "2" {
		t.Errorf("enabled = %v, want [1 2]", sink.enabled)
	}
}

func TestFallbackEnablesOnlyMissingCompany(t *testing.T) {
	e := fallbackEngine(t)
	sink := newRecordingSink()
	env := Env{Companies: []CompanyView{company("1", 10, loc(5, 5))}}
	if err := e.Evaluate(env, sink); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(sink.enabled) != 1 || sink.enabled[0] != "2" {
		t.Errorf("enabled = %v, want [2]", sink.enabled)
	}
}

func TestFallbackGarrisonsAndExpands(t *testing.T) {
	e := fallbackEngine(t)
	sink := newRecordingSink()
	env := Env{
		Companies: []CompanyView{
			company("1", 10, loc(5, 5)),
			company("2", 8, loc(6, 5)),
		},
		Zones: []ZoneView{
			baseZone(1, "MAIN_BASE", "own", 5, 5),
			func() ZoneView {
				z := baseZone(2, "RESOURCE", "", 40, 40)
				z.ResourceValue = 30
				return z
			}(),
			func() ZoneView {
				z := baseZone(3, "RESOURCE", "", 60, 20)
				z.ResourceValue = 75
				return z
			}(),
		},
	}
	if err := e.Evaluate(env, sink); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(sink.relocates) != 2 {
		t.Fatalf("relocates = %+v, want garrison + expansion", sink.relocates)
	}
	garrison, expand := sink.relocates[0], sink.relocates[1]
	if garrison.company != "1" || garrison.target != loc(5, 5) || !garrison.attackMove {
		t.Errorf("garrison order = %+v", garrison)
	}
	// Expansion picks the richest free resource zone.
	if expand.company != "2" || expand.target != loc(60, 20) || !expand.attackMove {
		t.Errorf("expansion order = %+v", expand)
	}

	// A second tick with the same picture must not reissue the same moves.
	if err := e.Evaluate(env, sink); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(sink.relocates) != 2 {
		t.Errorf("identical orders reissued: %+v", sink.relocates)
	}
}

func TestFallbackRetreatsOutnumberedBeforeExpanding(t *testing.T) {
	e := fallbackEngine(t)
	sink := newRecordingSink()
	hotZone := baseZone(2, "RESOURCE", "enemy", 50, 50)
	hotZone.EnemyStrength = 40
	hotZone.ResourceValue = 90
	exposed := company("2", 8, loc(50, 50)) // power 8 against strength 40
	exposed.Weight = 3.0
	env := Env{
		Companies: []CompanyView{
			company("1", 10, loc(5, 5)),
			exposed,
		},
		Zones: []ZoneView{
			baseZone(1, "MAIN_BASE", "own", 5, 5),
			hotZone,
		},
	}
	if err := e.Evaluate(env, sink); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	var retreats, expands int
	for _, r := range sink.relocates {
		if r.company == "2" {
			if r.attackMove {
				expands++
			} else {
				retreats++
				if r.target != loc(5, 5) {
					t.Errorf("retreat target = %+v, want main base", r.target)
				}
			}
		}
	}
	if retreats != 1 {
		t.Errorf("retreats = %d, want 1", retreats)
	}
	if sink.weights["2"] != 1.0 {
		t.Errorf("retreating company weight = %v, want capped at 1.0", sink.weights["2"])
	}
	// The exclusive maneuver category must suppress expansion this tick.
	if expands != 0 {
		t.Errorf("company 2 ordered to expand while outnumbered")
	}
}

func TestHoldDoctrineRecallsEveryCompany(t *testing.T) {
	e, err := NewEngine(HoldDoctrine())
	if err != nil {
		t.Fatalf("hold doctrine does not compile: %v", err)
	}
	sink := newRecordingSink()
	env := Env{
		Companies: []CompanyView{
			company("1", 10, loc(40, 40)),
			company("2", 8, loc(60, 20)),
		},
		Zones: []ZoneView{
			baseZone(1, "MAIN_BASE", "own", 5, 5),
			func() ZoneView {
				z := baseZone(2, "RESOURCE", "", 60, 20)
				z.ResourceValue = 75
				return z
			}(),
		},
	}
	if err := e.Evaluate(env, sink); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(sink.relocates) != 2 {
		t.Fatalf("relocates = %+v, want both companies recalled", sink.relocates)
	}
	for _, r := range sink.relocates {
		if r.target != loc(5, 5) {
			t.Errorf("company %s recalled to %+v, want main base", r.company, r.target)
		}
		if r.attackMove {
			t.Errorf("company %s recalled with attack-move", r.company)
		}
	}

	// Holding posture never expands, and the recall is not reissued.
	if err := e.Evaluate(env, sink); err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	if len(sink.relocates) != 2 {
		t.Errorf("relocates = %+v after second tick, want no reissue", sink.relocates)
	}
}

func TestSwapBetweenDoctrinesResetsMemory(t *testing.T) {
	e := fallbackEngine(t)
	sink := newRecordingSink()
	env := Env{
		Companies: []CompanyView{
			company("1", 10, loc(5, 5)),
			company("2", 8, loc(6, 5)),
		},
		Zones: []ZoneView{baseZone(1, "MAIN_BASE", "own", 5, 5)},
	}
	if err := e.Evaluate(env, sink); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	garrisons := len(sink.relocates)
	if garrisons == 0 {
		t.Fatal("default doctrine issued no garrison order")
	}

	if err := e.Swap(HoldDoctrine()); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if err := e.Evaluate(env, sink); err != nil {
		t.Fatalf("Evaluate after swap: %v", err)
	}
	recalls := len(sink.relocates) - garrisons
	if recalls != 2 {
		t.Errorf("recalls after swap = %d, want 2 (memory cleared, both companies ordered home)", recalls)
	}
}
