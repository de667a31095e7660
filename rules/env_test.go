package rules

import "testing"

func TestEnemySightedIgnoresFoggedZones(t *testing.T) {
	fogged := baseZone(1, "RESOURCE", "enemy", 10, 10)
	fogged.Visible = false
	fogged.EnemyStrength = 30

	env := Env{Zones: []ZoneView{fogged}}
	if env.EnemySighted() {
		t.Error("stale fogged strength counted as a sighting")
	}

	seen := fogged
	seen.Visible = true
	env.Zones = append(env.Zones, seen)
	if !env.EnemySighted() {
		t.Error("visible enemy strength not sighted")
	}
}

func TestMainBasePrefersStrongestOwned(t *testing.T) {
	weak := baseZone(1, "MAIN_BASE", "own", 5, 5)
	weak.MyStrength = 3
	strong := baseZone(2, "MAIN_BASE", "own", 40, 40)
	strong.MyStrength = 12
	hostile := baseZone(3, "MAIN_BASE", "enemy", 80, 80)
	hostile.MyStrength = 99

	env := Env{Zones: []ZoneView{weak, strong, hostile}}
	base, ok := env.mainBase()
	if !ok || base.ID != 2 {
		t.Errorf("main base = %+v, want zone 2", base)
	}
}

func TestRichestFreeResourceSkipsOwnZones(t *testing.T) {
	mine := baseZone(1, "RESOURCE", "own", 5, 5)
	mine.ResourceValue = 100
	free := baseZone(2, "RESOURCE", "", 40, 40)
	free.ResourceValue = 20

	env := Env{Zones: []ZoneView{mine, free}}
	z, ok := env.richestFreeResource()
	if !ok || z.ID != 2 {
		t.Errorf("expansion target = %+v, want zone 2", z)
	}

	env.Zones = []ZoneView{mine}
	if _, ok := env.richestFreeResource(); ok {
		t.Error("own zone offered as expansion target")
	}
}

func TestOutnumberedThreshold(t *testing.T) {
	zone := baseZone(1, "RESOURCE", "enemy", 10, 10)
	zone.EnemyStrength = 15

	at := loc(10, 10)
	even := CompanyView{ID: "1", Count: 2, Power: 10, Location: &at}
	weak := CompanyView{ID: "2", Count: 2, Power: 9, Location: &at}
	homeless := CompanyView{ID: "3", Count: 2, Power: 1}

	env := Env{Zones: []ZoneView{zone}, Companies: []CompanyView{even, weak, homeless}}
	out := env.OutnumberedCompanies()
	if len(out) != 1 || out[0].ID != "2" {
		t.Errorf("outnumbered = %+v, want company 2 only", out)
	}
}
