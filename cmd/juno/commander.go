package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"juno/blackboard"
	"juno/config"
	"juno/gameapi"
	"juno/intel"
	"juno/llm"
	"juno/strategy"
	"juno/tactic"
	"juno/units"
)

// Commander wires the full agent stack together and owns its lifecycle:
// game client → unit tracker → squad manager → tactical agent on the combat
// side, game client → intelligence service → blackboard → strategic agent on
// the planning side, plus the economy sidekick.
type Commander struct {
	cfg        config.Config
	client     *gameapi.Client
	board      *blackboard.Board
	tracker    *units.Tracker
	manager    *units.Manager
	overlay    *tactic.LogOverlay
	tactics    *tactic.Agent
	intelSvc   *intel.Service
	economy    *strategy.MCVDeployer
	strategist *strategy.Agent
	commands   *strategy.CommandSource

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCommander(cfg config.Config) (*Commander, error) {
	lang := gameapi.NewLanguage(cfg.Language)
	client := gameapi.NewClient(cfg.GameHost, cfg.GamePort, lang)
	board := blackboard.New()

	tracker := units.NewTracker(client)
	manager := units.NewManager(tracker)

	var model llm.Client
	if cfg.HasLLM() {
		model = llm.NewOpenAI(llm.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
		})
	} else {
		slog.Warn("no model configured, strategist will run the fallback doctrine")
	}

	overlay := &tactic.LogOverlay{}
	tactics := tactic.NewAgent(client, model, manager)
	tactics.SetOverlay(overlay)

	intelSvc := intel.NewService(client, board)
	commands := strategy.NewCommandSource(cfg.CommandFile)
	strategist, err := strategy.NewAgent(model, intelSvc, board, manager, tactics, lang, commands)
	if err != nil {
		return nil, err
	}

	return &Commander{
		cfg:        cfg,
		client:     client,
		board:      board,
		tracker:    tracker,
		manager:    manager,
		overlay:    overlay,
		tactics:    tactics,
		intelSvc:   intelSvc,
		economy:    strategy.NewMCVDeployer(client),
		strategist: strategist,
		commands:   commands,
	}, nil
}

// Start launches every agent loop. It is an error to start a running
// commander.
func (c *Commander) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("commander already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	if err := c.commands.Watch(ctx); err != nil {
		slog.Warn("command file watcher unavailable, falling back to re-reads", "error", err)
	}

	loops := []func(context.Context){
		c.tracker.Run,
		c.tactics.Run,
		c.strategist.Run,
		func(ctx context.Context) { strategy.RunEconomy(ctx, c.economy) },
	}
	c.wg.Add(len(loops))
	for _, loop := range loops {
		go func(run func(context.Context)) {
			defer c.wg.Done()
			run(ctx)
		}(loop)
	}
	slog.Info("commander started", "host", c.cfg.GameHost, "port", c.cfg.GamePort, "faction", c.cfg.Faction)
	return nil
}

// Stop cancels every loop and waits for them to drain.
func (c *Commander) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	c.wg.Wait()
	slog.Info("commander stopped")
}

func (c *Commander) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Status reports company status and the tactical order state per company.
func (c *Commander) Status() ([]units.CompanyStatus, map[string]string) {
	return c.manager.Status(), c.tactics.Status()
}

func (c *Commander) Economy() *strategy.MCVDeployer { return c.economy }
func (c *Commander) Overlay() *tactic.LogOverlay    { return c.overlay }
func (c *Commander) Strategist() *strategy.Agent    { return c.strategist }
func (c *Commander) CommandFile() string            { return c.cfg.CommandFile }
