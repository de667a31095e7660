package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"juno/gameapi"
)

// Economy is the narrow contract for the base-management sidekick. It runs
// on its own loop and is toggled from the console.
type Economy interface {
	Active() bool
	SetActive(active bool)
	Tick(ctx context.Context) error
}

// RunEconomy drives an economy sidekick until ctx is cancelled. Tick
// failures are logged and the loop continues.
func RunEconomy(ctx context.Context, eco Economy) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := eco.Tick(ctx); err != nil {
				slog.Error("economy tick failed", "error", err)
			}
		}
	}
}

// EconomyAPI is the slice of the game client the sidekick needs.
type EconomyAPI interface {
	QueryActors(ctx context.Context, q gameapi.TargetsQuery, includeFrozen bool) ([]gameapi.Actor, error)
	DeployActors(ctx context.Context, ids []int) error
}

// MCVDeployer is the default sidekick: it keeps construction vehicles
// deployed so the base can grow. Starts inactive.
type MCVDeployer struct {
	api    EconomyAPI
	active atomic.Bool
}

func NewMCVDeployer(api EconomyAPI) *MCVDeployer {
	return &MCVDeployer{api: api}
}

func (d *MCVDeployer) Active() bool { return d.active.Load() }

func (d *MCVDeployer) SetActive(active bool) {
	d.active.Store(active)
	slog.Info("economy sidekick toggled", "active", active)
}

// Tick deploys every idle construction vehicle it can find.
func (d *MCVDeployer) Tick(ctx context.Context) error {
	if !d.active.Load() {
		return nil
	}
	actors, err := d.api.QueryActors(ctx, gameapi.TargetsQuery{Range: "all", Side: gameapi.SideOwn}, false)
	if err != nil {
		return fmt.Errorf("query own actors: %w", err)
	}
	var ids []int
	for _, a := range actors {
		if strings.EqualFold(a.Type, "mcv") {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	slog.Info("deploying construction vehicles", "count", len(ids))
	if err := d.api.DeployActors(ctx, ids); err != nil {
		return fmt.Errorf("deploy mcv: %w", err)
	}
	return nil
}
