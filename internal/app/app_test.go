package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat_economy/internal/audit"
	"chat_economy/internal/catalog"
	"chat_economy/internal/config"
	"chat_economy/internal/cooldown"
	"chat_economy/internal/models"
	"chat_economy/internal/pkg/logger"
	"chat_economy/internal/progression"
	"chat_economy/internal/storage"
)

// scriptedRoller replays fixed draws; an exhausted script draws 0.
type scriptedRoller struct {
	mu     sync.Mutex
	ints   []int64
	floats []float64
}

func (r *scriptedRoller) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRoller) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

type harness struct {
	t      *testing.T
	app    *App
	store  *storage.Memory
	roller *scriptedRoller
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log, err := logger.CreateLogger("fatal")
	require.NoError(t, err)

	store := storage.NewMemory()
	items, err := catalog.Load("../../assets/catalog.yaml")
	require.NoError(t, err)
	require.NoError(t, store.UpsertItems(context.Background(), items))

	h := &harness{
		t:      t,
		store:  store,
		roller: &scriptedRoller{},
		now:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	h.app = NewApp(store, cooldown.NewStoreTracker(store, log), audit.NewLogger(store, nil, log), log,
		WithRoller(h.roller),
		WithClock(func() time.Time { return h.now }),
		WithDefaultSettings(config.DefaultSettings()),
		WithStrictInvariants(true),
	)
	return h
}

func (h *harness) invoke(accountID string, action models.Action, p models.Params) *models.Outcome {
	h.t.Helper()
	out, err := h.app.Invoke(context.Background(), accountID, action, p)
	require.NoError(h.t, err)
	require.NotNil(h.t, out)
	return out
}

func (h *harness) ok(accountID string, action models.Action, p models.Params) *models.Outcome {
	h.t.Helper()
	out := h.invoke(accountID, action, p)
	require.Equal(h.t, models.StatusOK, out.Status, "rejection: %+v", out.Rejection)
	return out
}

func (h *harness) rejected(accountID string, action models.Action, p models.Params, reason models.RejectionReason) *models.Outcome {
	h.t.Helper()
	out := h.invoke(accountID, action, p)
	require.True(h.t, out.Rejected(), "expected %s, got %s", reason, out.Status)
	require.Equal(h.t, reason, out.Rejection.Reason)
	return out
}

func (h *harness) account(id string) *models.Account {
	h.t.Helper()
	a, err := h.store.GetAccount(context.Background(), id)
	require.NoError(h.t, err)
	return a
}

func (h *harness) grant(id string, coins int64) {
	h.t.Helper()
	_, err := h.app.EnsureAccount(context.Background(), id, "")
	require.NoError(h.t, err)
	_, err = h.store.ApplyDeltas(context.Background(), models.AccountDelta{AccountID: id, Coins: coins})
	require.NoError(h.t, err)
}

func (h *harness) records(id string) []models.Transaction {
	h.t.Helper()
	records, err := h.store.ListTransactions(context.Background(), id, storage.MaxLimit)
	require.NoError(h.t, err)
	return records
}

func item(name string) models.Params {
	return models.Params{Item: name}
}

func target(id string) models.Params {
	return models.Params{TargetID: id}
}

func TestHandlersCoverEveryAction(t *testing.T) {
	for _, a := range models.Actions() {
		assert.Contains(t, handlers, a)
	}
	assert.Len(t, handlers, len(models.Actions()))
}

func TestInvoke_UnknownActionAndMissingAccount(t *testing.T) {
	h := newHarness(t)

	_, err := h.app.Invoke(context.Background(), "alice", models.Action("gamble"), models.Params{})
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = h.app.Invoke(context.Background(), "", models.ActionDaily, models.Params{})
	assert.ErrorIs(t, err, ErrMissingAccount)
}

func TestScenario_DailyBuyWork(t *testing.T) {
	h := newHarness(t)

	out := h.ok("alice", models.ActionDaily, models.Params{})
	assert.Equal(t, int64(1500), out.Account.Coins)
	assert.Equal(t, int64(10), out.Account.XP)
	assert.Equal(t, 1, out.Account.Level)
	assert.Equal(t, 0, out.Account.DailyStreak)

	out = h.rejected("alice", models.ActionBuy, item("Coffee Machine"), models.ReasonInsufficientFunds)
	assert.Equal(t, int64(2500), out.Rejection.Required)
	assert.Equal(t, int64(1500), out.Rejection.Available)

	out = h.ok("alice", models.ActionBuy, item("pickaxe"))
	assert.Equal(t, int64(0), out.Account.Coins)

	// Base 300 from the [100, 500] range.
	h.roller.ints = []int64{200}
	out = h.ok("alice", models.ActionWork, models.Params{})
	assert.Equal(t, int64(375), out.CoinsDelta)
	assert.Equal(t, int64(37), out.XPDelta)
	assert.Equal(t, int64(375), out.Account.Coins)
	assert.Equal(t, int64(47), out.Account.XP)
	assert.Equal(t, "Pickaxe", out.Details["tool"])

	// daily, buy, work; the rejected buy is not audited.
	assert.Len(t, h.records("alice"), 3)
}

func TestDaily_Streak(t *testing.T) {
	h := newHarness(t)
	start := h.now

	out := h.ok("alice", models.ActionDaily, models.Params{})
	assert.Equal(t, int64(500), out.CoinsDelta)

	h.now = start.Add(time.Hour)
	out = h.rejected("alice", models.ActionDaily, models.Params{}, models.ReasonOnCooldown)
	assert.Equal(t, 23*time.Hour, out.Rejection.Remaining)

	h.now = start.Add(24 * time.Hour)
	out = h.ok("alice", models.ActionDaily, models.Params{})
	assert.Equal(t, 1, out.Account.DailyStreak)
	assert.Equal(t, int64(550), out.CoinsDelta)

	// Exactly 48h later still continues the streak.
	h.now = h.now.Add(48 * time.Hour)
	out = h.ok("alice", models.ActionDaily, models.Params{})
	assert.Equal(t, 2, out.Account.DailyStreak)
	assert.Equal(t, int64(600), out.CoinsDelta)

	h.now = h.now.Add(48*time.Hour + 36*time.Second)
	out = h.ok("alice", models.ActionDaily, models.Params{})
	assert.Equal(t, 0, out.Account.DailyStreak)
	assert.Equal(t, int64(500), out.CoinsDelta)
}

func TestWork_BoostNeverStacks(t *testing.T) {
	h := newHarness(t)
	h.grant("alice", 5000)
	h.ok("alice", models.ActionBuy, item("Fishing Rod"))
	h.ok("alice", models.ActionBuy, item("Pickaxe"))

	h.roller.ints = []int64{200}
	out := h.ok("alice", models.ActionWork, models.Params{})
	assert.Equal(t, int64(300), out.Details["base"])
	assert.Equal(t, int64(75), out.Details["boost"])
	assert.Equal(t, 0.25, out.Details["boost_rate"])
}

func TestWork_CooldownReductions(t *testing.T) {
	h := newHarness(t)
	start := h.now
	h.grant("alice", 8000)

	h.ok("alice", models.ActionWork, models.Params{})
	h.now = start.Add(2 * time.Hour)
	out := h.rejected("alice", models.ActionWork, models.Params{}, models.ReasonOnCooldown)
	assert.Equal(t, 2*time.Hour, out.Rejection.Remaining)

	h.now = start.Add(4 * time.Hour)
	h.ok("alice", models.ActionBuy, item("Coffee Machine"))
	h.ok("alice", models.ActionBuy, item("Alarm Clock"))
	out = h.ok("alice", models.ActionWork, models.Params{})
	// 4h minus 3h of reductions.
	assert.Equal(t, int64(3600), out.Details["cooldown_seconds"])

	h.now = h.now.Add(time.Hour)
	h.ok("alice", models.ActionWork, models.Params{})
}

func TestPay(t *testing.T) {
	h := newHarness(t)
	h.grant("alice", 0)

	h.rejected("alice", models.ActionPay, models.Params{TargetID: "alice", Amount: 10}, models.ReasonInvalidTarget)
	h.rejected("alice", models.ActionPay, models.Params{TargetID: "bob", Amount: 0}, models.ReasonInvalidAmount)
	h.rejected("alice", models.ActionPay, models.Params{TargetID: "bob", Amount: -5}, models.ReasonInvalidAmount)
	h.rejected("alice", models.ActionPay, models.Params{TargetID: "helper-bot", TargetIsBot: true, Amount: 10}, models.ReasonInvalidTarget)

	out := h.rejected("alice", models.ActionPay, models.Params{TargetID: "bob", Amount: 1001}, models.ReasonInsufficientFunds)
	assert.Equal(t, int64(1001), out.Rejection.Required)
	assert.Equal(t, int64(1000), out.Rejection.Available)
	assert.Equal(t, int64(1000), h.account("alice").Coins)
	assert.Empty(t, h.records("alice"))

	out = h.ok("alice", models.ActionPay, models.Params{TargetID: "bob", TargetName: "Bob", Amount: 250})
	assert.Equal(t, int64(750), out.Account.Coins)
	assert.Equal(t, int64(1250), out.Target.Coins)
	assert.Equal(t, "Bob", out.Target.DisplayName)

	sent := h.records("alice")
	received := h.records("bob")
	require.Len(t, sent, 1)
	require.Len(t, received, 1)
	assert.Equal(t, models.TxPaySent, sent[0].Action)
	assert.Equal(t, int64(-250), *sent[0].Amount)
	assert.Equal(t, "bob", *sent[0].TargetID)
	assert.Equal(t, models.TxPayRecv, received[0].Action)
	assert.Equal(t, int64(250), *received[0].Amount)
	assert.Equal(t, "alice", *received[0].TargetID)
	assert.Equal(t, sent[0].Metadata["correlation_id"], received[0].Metadata["correlation_id"])
}

func TestRob_Thresholds(t *testing.T) {
	h := newHarness(t)
	h.grant("alice", 0)
	h.grant("bob", -600)

	h.rejected("alice", models.ActionRob, target("alice"), models.ReasonInvalidTarget)
	h.rejected("alice", models.ActionRob, models.Params{TargetID: "bot", TargetIsBot: true}, models.ReasonInvalidTarget)
	h.rejected("alice", models.ActionRob, target("bob"), models.ReasonInvalidTarget)

	h.grant("bob", 600)
	h.grant("alice", -950)
	out := h.rejected("alice", models.ActionRob, target("bob"), models.ReasonInsufficientFunds)
	assert.Equal(t, int64(100), out.Rejection.Required)

	assert.Equal(t, int64(50), h.account("alice").Coins)
	assert.Equal(t, int64(1000), h.account("bob").Coins)
	assert.Zero(t, h.account("alice").RobAttempts)
	assert.Empty(t, h.records("alice"))
	assert.Empty(t, h.records("bob"))

	// Rejections never arm the cooldown.
	h.grant("alice", 950)
	h.ok("alice", models.ActionRob, target("bob"))
}

func TestRob_LowBalanceLeavesTargetUncreated(t *testing.T) {
	h := newHarness(t)
	h.grant("alice", -950)

	out := h.rejected("alice", models.ActionRob, target("carol"), models.ReasonInsufficientFunds)
	assert.Equal(t, int64(50), out.Rejection.Available)

	_, err := h.store.GetAccount(context.Background(), "carol")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestRob_Success(t *testing.T) {
	h := newHarness(t)
	h.grant("alice", 0)
	h.grant("bob", 0)

	h.roller.floats = []float64{0.05, 0.5}
	out := h.ok("alice", models.ActionRob, target("bob"))
	assert.Equal(t, true, out.Details["success"])
	assert.Equal(t, int64(200), out.CoinsDelta)
	assert.Equal(t, int64(1200), out.Account.Coins)
	assert.Equal(t, 1, out.Account.RobAttempts)
	assert.Equal(t, int64(800), out.Target.Coins)

	robber := h.records("alice")
	victim := h.records("bob")
	require.Len(t, robber, 1)
	require.Len(t, victim, 1)
	assert.Equal(t, models.TxRobbed, victim[0].Action)
	assert.Equal(t, int64(-200), *victim[0].Amount)

	out = h.rejected("alice", models.ActionRob, target("bob"), models.ReasonOnCooldown)
	assert.Equal(t, 2*time.Hour, out.Rejection.Remaining)
}

func TestRob_FailureAndDefenseFloor(t *testing.T) {
	h := newHarness(t)
	h.grant("alice", 0)
	h.grant("bob", 9000)
	h.ok("bob", models.ActionBuy, item("Safe"))

	// 0.40 base minus the Safe's 0.30 leaves the 10% floor; 0.15 misses.
	h.roller.floats = []float64{0.15}
	out := h.ok("alice", models.ActionRob, target("bob"))
	assert.Equal(t, false, out.Details["success"])
	assert.InDelta(t, 0.10, out.Details["chance"], 1e-9)
	assert.Equal(t, "Safe", out.Details["defense_item"])
	assert.Equal(t, int64(-100), out.CoinsDelta)
	assert.Equal(t, int64(900), out.Account.Coins)
	assert.Equal(t, 1, out.Account.RobAttempts)
	assert.Equal(t, int64(1000), h.account("bob").Coins)

	victim := h.records("bob")
	require.Len(t, victim, 1)
	assert.Equal(t, models.TxBuy, victim[0].Action)
}

func TestRobChance_Floor(t *testing.T) {
	assert.Equal(t, 0.10, RobChance(0.40, 0.90))
	assert.InDelta(t, 0.20, RobChance(0.40, 0.20), 1e-9)
	assert.Equal(t, 0.40, RobChance(0.40, 0))
}

func TestBuySell_RoundTripLoses(t *testing.T) {
	h := newHarness(t)
	h.grant("alice", 1000)

	h.ok("alice", models.ActionBuy, item("Pickaxe"))
	out := h.ok("alice", models.ActionSell, item("PICKAXE"))
	assert.Equal(t, int64(900), out.CoinsDelta)
	assert.Equal(t, int64(2000-1500+900), out.Account.Coins)
	assert.Equal(t, 0, out.Details["quantity"])

	inv, err := h.app.Inventory(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, inv)

	h.rejected("alice", models.ActionSell, item("Pickaxe"), models.ReasonNotOwned)
	h.rejected("alice", models.ActionSell, item("Flux Capacitor"), models.ReasonItemNotFound)
	h.rejected("alice", models.ActionBuy, item("Flux Capacitor"), models.ReasonItemNotFound)
	h.rejected("alice", models.ActionBuy, item(""), models.ReasonItemNotFound)
}

func TestSellPrice(t *testing.T) {
	for price, want := range map[int64]int64{100: 60, 250: 150, 1: 0, 5: 3, 1499: 899} {
		assert.Equal(t, want, SellPrice(price))
		assert.Greater(t, price-SellPrice(price), int64(0))
	}
}

func TestUse_Consumables(t *testing.T) {
	h := newHarness(t)
	h.grant("alice", 5000)
	h.ok("alice", models.ActionBuy, item("Energy Drink"))
	h.ok("alice", models.ActionBuy, item("Lucky Envelope"))
	h.ok("alice", models.ActionBuy, item("Time Turner"))
	h.ok("alice", models.ActionBuy, item("Pickaxe"))

	out := h.ok("alice", models.ActionUse, item("energy drink"))
	assert.Equal(t, int64(250), out.XPDelta)
	assert.Equal(t, int64(250), out.Account.XP)

	out = h.ok("alice", models.ActionUse, item("Lucky Envelope"))
	assert.Equal(t, int64(300), out.CoinsDelta)

	h.ok("alice", models.ActionWork, models.Params{})
	h.rejected("alice", models.ActionWork, models.Params{}, models.ReasonOnCooldown)
	out = h.ok("alice", models.ActionUse, item("Time Turner"))
	assert.Equal(t, "work", out.Details["cooldown_cleared"])
	h.ok("alice", models.ActionWork, models.Params{})

	h.rejected("alice", models.ActionUse, item("Pickaxe"), models.ReasonNotUsable)
	h.rejected("alice", models.ActionUse, item("Energy Drink"), models.ReasonNotOwned)

	inv, err := h.app.Inventory(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Equal(t, "Pickaxe", inv[0].Item.Name)

	var uses int
	for _, r := range h.records("alice") {
		if r.Action == models.TxUse {
			uses++
			assert.NotNil(t, r.Metadata["effect"])
		}
	}
	assert.Equal(t, 3, uses)
}

func TestWork_ConcurrentSubmissionsGrantOnce(t *testing.T) {
	h := newHarness(t)
	h.grant("alice", 0)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := h.app.Invoke(context.Background(), "alice", models.ActionWork, models.Params{})
			if err == nil && !out.Rejected() {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, int64(1100), h.account("alice").Coins)
}

func TestInvoke_SurvivesCallerCancellation(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := h.app.Invoke(ctx, "alice", models.ActionDaily, models.Params{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, out.Status)
	assert.Len(t, h.records("alice"), 1)
}

func TestLevelInvariantAfterEveryAction(t *testing.T) {
	h := newHarness(t)
	h.grant("alice", 20000)
	h.grant("bob", 0)

	h.roller.floats = []float64{0.05, 0.3}
	steps := []struct {
		action models.Action
		params models.Params
	}{
		{models.ActionDaily, models.Params{}},
		{models.ActionBuy, item("Energy Drink")},
		{models.ActionBuy, item("Energy Drink")},
		{models.ActionBuy, item("Energy Drink")},
		{models.ActionBuy, item("Energy Drink")},
		{models.ActionUse, item("Energy Drink")},
		{models.ActionUse, item("Energy Drink")},
		{models.ActionUse, item("Energy Drink")},
		{models.ActionUse, item("Energy Drink")},
		{models.ActionWork, models.Params{}},
		{models.ActionPay, models.Params{TargetID: "bob", Amount: 10}},
		{models.ActionRob, target("bob")},
	}
	for _, s := range steps {
		h.ok("alice", s.action, s.params)
		for _, id := range []string{"alice", "bob"} {
			require.NoError(t, progression.CheckLevel(h.account(id)))
		}
	}
	assert.Equal(t, 2, h.account("alice").Level)
}

func TestQueries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.grant("alice", 500)
	h.grant("bob", 100)
	h.ok("alice", models.ActionDaily, models.Params{})

	items, err := h.app.Catalog(ctx, models.CategoryTool)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for i, it := range items {
		assert.Equal(t, models.CategoryTool, it.Category)
		if i > 0 {
			assert.LessOrEqual(t, items[i-1].Price, it.Price)
		}
	}
	_, err = h.app.Catalog(ctx, models.Category("vehicle"))
	assert.ErrorIs(t, err, ErrUnknownCategory)

	board, err := h.app.Leaderboard(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "alice", board[0].AccountID)

	_, err = h.app.Leaderboard(ctx, models.Metric("karma"), 10)
	assert.ErrorIs(t, err, ErrUnknownMetric)

	info, err := h.app.ProcessInfo(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), info.Account.Coins)
	assert.NotNil(t, info.Inventory)
	assert.Len(t, info.Transactions, 1)
}
