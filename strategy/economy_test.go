package strategy

import (
	"context"
	"testing"

	"juno/gameapi"
)

type fakeEconomyAPI struct {
	actors   []gameapi.Actor
	queries  int
	deployed [][]int
}

func (f *fakeEconomyAPI) QueryActors(ctx context.Context, q gameapi.TargetsQuery, includeFrozen bool) ([]gameapi.Actor, error) {
	f.queries++
	return f.actors, nil
}

func (f *fakeEconomyAPI) DeployActors(ctx context.Context, ids []int) error {
	f.deployed = append(f.deployed, ids)
	return nil
}

func ownActor(id int, typ string) gameapi.Actor {
	return gameapi.Actor{ID: id, Type: typ, Faction: "己方", HP: 100, MaxHP: 100}
}

func TestMCVDeployerIdleWhileInactive(t *testing.T) {
	api := &fakeEconomyAPI{actors: []gameapi.Actor{ownActor(1, "mcv")}}
	d := NewMCVDeployer(api)
	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if api.queries != 0 || len(api.deployed) != 0 {
		t.Error("inactive sidekick touched the game")
	}
}

func TestMCVDeployerDeploysOnlyMCVs(t *testing.T) {
	api := &fakeEconomyAPI{actors: []gameapi.Actor{
		ownActor(1, "mcv"),
		ownActor(2, "harv"),
		ownActor(3, "MCV"),
	}}
	d := NewMCVDeployer(api)
	d.SetActive(true)

	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(api.deployed) != 1 {
		t.Fatalf("deploy calls = %d", len(api.deployed))
	}
	got := api.deployed[0]
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("deployed ids = %v, want [1 3]", got)
	}

	d.SetActive(false)
	if d.Active() {
		t.Error("Active() true after SetActive(false)")
	}
}

func TestMCVDeployerNoMCVNoCall(t *testing.T) {
	api := &fakeEconomyAPI{actors: []gameapi.Actor{ownActor(2, "harv")}}
	d := NewMCVDeployer(api)
	d.SetActive(true)
	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(api.deployed) != 0 {
		t.Error("deploy issued with no construction vehicle")
	}
}
