package tactic

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"juno/gameapi"
	"juno/llm"
	"juno/units"
)

type moveCall struct {
	ids        []int
	target     gameapi.Location
	attackMove bool
}

type fakeGame struct {
	mu      sync.Mutex
	enemies []gameapi.Actor
	scanErr error
	moves   []moveCall
	attacks [][2]int
}

func (f *fakeGame) QueryActors(ctx context.Context, q gameapi.TargetsQuery, includeFrozen bool) ([]gameapi.Actor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enemies, f.scanErr
}

func (f *fakeGame) MoveActors(ctx context.Context, ids []int, target gameapi.Location, attackMove bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, moveCall{ids: ids, target: target, attackMove: attackMove})
	return nil
}

func (f *fakeGame) Attack(ctx context.Context, attackerIDs, targetIDs []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attacks = append(f.attacks, [2]int{attackerIDs[0], targetIDs[0]})
	return nil
}

func (f *fakeGame) attackLog() [][2]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]int(nil), f.attacks...)
}

type scriptedModel struct {
	mu       sync.Mutex
	chunks   []string
	calls    int
	messages []llm.Message
	gate     chan struct{}
}

func (m *scriptedModel) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return strings.Join(m.chunks, ""), nil
}

func (m *scriptedModel) ChatStream(ctx context.Context, messages []llm.Message, onChunk func(string)) error {
	m.mu.Lock()
	m.calls++
	m.messages = messages
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	for _, c := range m.chunks {
		onChunk(c)
	}
	return nil
}

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakeSquads struct {
	companies map[string][]units.CombatUnit
}

func (f *fakeSquads) HasCompany(id string) bool {
	_, ok := f.companies[id]
	return ok
}

func (f *fakeSquads) CompanyIDs() []string {
	ids := make([]string, 0, len(f.companies))
	for id := range f.companies {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeSquads) Members(id string) []units.CombatUnit {
	return f.companies[id]
}

func combatUnit(id int, typ string, x, y int) units.CombatUnit {
	return units.CombatUnit{ID: id, Type: typ, HPRatio: 1.0, Position: gameapi.Location{X: x, Y: y}}
}

func enemyActor(id int, typ string, x, y int) gameapi.Actor {
	return gameapi.Actor{
		ID: id, Type: typ, Faction: "敌方",
		Position: &gameapi.Location{X: x, Y: y},
		HP:       50, MaxHP: 100,
	}
}

func newTestAgent(enemies ...gameapi.Actor) (*Agent, *fakeGame, *scriptedModel, *fakeSquads) {
	game := &fakeGame{enemies: enemies}
	model := &scriptedModel{}
	squads := &fakeSquads{companies: map[string][]units.CombatUnit{
		"1": {combatUnit(101, "3tnk", 10, 10), combatUnit(102, "e1", 11, 10)},
	}}
	a := NewAgent(game, model, squads)
	a.backoff = func(ctx context.Context, d time.Duration) {}
	return a, game, model, squads
}

func TestOrdersAreTurnBuffered(t *testing.T) {
	a, game, _, _ := newTestAgent()
	target := &gameapi.Location{X: 30, Y: 30}
	if err := a.SetCompanyOrder("1", Order{Kind: OrderRelocate, Target: target, MoveMode: MoveNormal}); err != nil {
		t.Fatalf("set order: %v", err)
	}

	// Nothing moves until the next cycle applies the pending order.
	if len(game.moves) != 0 {
		t.Fatal("order executed before cycle start")
	}
	a.applyPendingOrders(context.Background())
	if len(game.moves) != 1 {
		t.Fatalf("moves = %d, want 1", len(game.moves))
	}
	if game.moves[0].attackMove {
		t.Error("normal relocate used attack-move")
	}
}

func TestLatestPendingOrderWins(t *testing.T) {
	a, game, _, _ := newTestAgent()
	first := &gameapi.Location{X: 5, Y: 5}
	second := &gameapi.Location{X: 40, Y: 40}
	a.SetCompanyOrder("1", Order{Kind: OrderRelocate, Target: first, MoveMode: MoveNormal})
	a.SetCompanyOrder("1", Order{Kind: OrderRelocate, Target: second, MoveMode: MoveNormal})

	a.applyPendingOrders(context.Background())
	if len(game.moves) != 1 {
		t.Fatalf("moves = %d, want 1 (only the latest order)", len(game.moves))
	}
	if game.moves[0].target != *second {
		t.Errorf("moved to %+v, want %+v", game.moves[0].target, *second)
	}
}

func TestOrderForUnknownCompanyRejected(t *testing.T) {
	a, _, _, _ := newTestAgent()
	if err := a.SetCompanyOrder("9", Order{Kind: OrderCombat}); err == nil {
		t.Error("unknown company accepted")
	}
}

func TestRelocateAttackAutoSwitchesToCombat(t *testing.T) {
	a, game, _, _ := newTestAgent()
	target := &gameapi.Location{X: 30, Y: 30}
	a.SetCompanyOrder("1", Order{Kind: OrderRelocate, Target: target, MoveMode: MoveAttack})
	a.applyPendingOrders(context.Background())

	if len(game.moves) != 1 || !game.moves[0].attackMove {
		t.Fatalf("moves = %+v, want one attack-move", game.moves)
	}
	if st := a.Status()["1"]; st != OrderCombat {
		t.Errorf("status = %q, want combat", st)
	}
	a.mu.Lock()
	center := a.states["1"].scanCenter
	a.mu.Unlock()
	if center == nil || *center != *target {
		t.Errorf("scan center = %v, want the relocation target", center)
	}
}

func TestNormalRelocateHoldsCombatLoop(t *testing.T) {
	a, _, model, _ := newTestAgent(enemyActor(201, "2tnk", 31, 30))
	a.SetCompanyOrder("1", Order{Kind: OrderRelocate, Target: &gameapi.Location{X: 30, Y: 30}, MoveMode: MoveNormal})
	a.applyPendingOrders(context.Background())
	a.processCompanies(context.Background())
	time.Sleep(50 * time.Millisecond)
	if model.callCount() != 0 {
		t.Error("combat loop ran during a normal relocation hold")
	}
}

func TestCombatCycleExecutesValidPairsOnly(t *testing.T) {
	a, game, model, _ := newTestAgent(
		enemyActor(201, "2tnk", 12, 10),
		enemyActor(202, "mcv", 14, 10),
	)
	// 999 is no ally, 555 no enemy, 101 ordered twice.
	model.chunks = []string{`[[101,202],`, `[999,201],[101,201],`, `[555,202],[102,201]]`}

	center := gameapi.Location{X: 10, Y: 10}
	if err := a.runCombatCycle(context.Background(), "1", &center); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	want := [][2]int{{101, 202}, {102, 201}}
	got := game.attackLog()
	if len(got) != len(want) {
		t.Fatalf("attacks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attack %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCombatPromptPayload(t *testing.T) {
	a, _, model, _ := newTestAgent(enemyActor(202, "mcv", 14, 10))
	model.chunks = []string{"[]"}

	center := gameapi.Location{X: 10, Y: 10}
	if err := a.runCombatCycle(context.Background(), "1", &center); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	if len(model.messages) != 2 {
		t.Fatalf("messages = %d", len(model.messages))
	}
	if model.messages[0].Role != llm.RoleSystem || !strings.Contains(model.messages[0].Content, "连长") {
		t.Error("system doctrine missing")
	}
	if !strings.Contains(model.messages[0].Content, "斩首行动") {
		t.Error("system doctrine missing the decapitation rule")
	}
	user := model.messages[1].Content
	for _, want := range []string{
		"Enemy:\n", "Ally:\n",
		`"type":"mcv"`, `"id":202`, `"hp":0.5`,
		`"id":101`, `"type":"3tnk"`,
		"输出格式提醒",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user payload missing %q:\n%s", want, user)
		}
	}
}

func TestEmptyScanBacksOffWithoutModelCall(t *testing.T) {
	a, _, model, _ := newTestAgent()
	backedOff := false
	a.backoff = func(ctx context.Context, d time.Duration) {
		backedOff = true
		if d != emptyScanBackoff {
			t.Errorf("backoff = %v", d)
		}
	}
	center := gameapi.Location{X: 10, Y: 10}
	if err := a.runCombatCycle(context.Background(), "1", &center); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if !backedOff {
		t.Error("no backoff on empty scan")
	}
	if model.callCount() != 0 {
		t.Error("model called with no enemies in range")
	}
}

func TestScanDropsWreckageAndMarkers(t *testing.T) {
	a, _, _, _ := newTestAgent(
		enemyActor(1, "2tnk", 11, 10),
		enemyActor(2, "1tnk.husk", 12, 10),
		enemyActor(3, "mpspawn", 13, 10),
		enemyActor(4, "camera", 14, 10),
	)
	got, err := a.scanEnemies(context.Background(), gameapi.Location{X: 10, Y: 10}, CombatRadius)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("scan = %+v, want only the tank", got)
	}
}

func TestProcessingLatchPreventsOverlap(t *testing.T) {
	a, _, model, _ := newTestAgent(enemyActor(201, "2tnk", 11, 10))
	model.chunks = []string{"[]"}
	model.gate = make(chan struct{})

	a.SetCompanyOrder("1", Order{Kind: OrderCombat, Target: &gameapi.Location{X: 10, Y: 10}})
	a.applyPendingOrders(context.Background())

	a.processCompanies(context.Background())
	waitFor(t, func() bool { return model.callCount() == 1 })

	// While the first cycle is still streaming the latch must hold.
	a.processCompanies(context.Background())
	a.processCompanies(context.Background())
	time.Sleep(50 * time.Millisecond)
	if n := model.callCount(); n != 1 {
		t.Fatalf("model calls = %d while latched, want 1", n)
	}

	close(model.gate)
	waitFor(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return !a.states["1"].processing
	})

	model.mu.Lock()
	model.gate = nil
	model.mu.Unlock()
	a.processCompanies(context.Background())
	waitFor(t, func() bool { return model.callCount() == 2 })
}

func TestMidStreamOrderKeepsLatch(t *testing.T) {
	a, _, model, _ := newTestAgent(enemyActor(201, "2tnk", 11, 10))
	model.chunks = []string{"[]"}
	model.gate = make(chan struct{})

	a.SetCompanyOrder("1", Order{Kind: OrderCombat, Target: &gameapi.Location{X: 10, Y: 10}})
	a.applyPendingOrders(context.Background())
	a.processCompanies(context.Background())
	waitFor(t, func() bool { return model.callCount() == 1 })

	// A strategic order lands while the stream is held open. Applying it
	// must not clear the latch, so the next cycles spawn no second worker.
	a.SetCompanyOrder("1", Order{Kind: OrderRelocate, Target: &gameapi.Location{X: 40, Y: 40}, MoveMode: MoveAttack})
	a.applyPendingOrders(context.Background())
	a.processCompanies(context.Background())
	a.processCompanies(context.Background())
	time.Sleep(50 * time.Millisecond)
	if n := model.callCount(); n != 1 {
		t.Fatalf("model calls = %d while first stream still open, want 1", n)
	}

	close(model.gate)
	waitFor(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return !a.states["1"].processing
	})

	// Once the stale worker returns the company fights from the new center.
	model.mu.Lock()
	model.gate = nil
	model.mu.Unlock()
	a.processCompanies(context.Background())
	waitFor(t, func() bool { return model.callCount() == 2 })
	a.mu.Lock()
	center := a.states["1"].scanCenter
	a.mu.Unlock()
	if center == nil {
		t.Fatal("scan center lost")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
