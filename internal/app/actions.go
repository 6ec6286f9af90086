package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"chat_economy/internal/audit"
	"chat_economy/internal/effects"
	"chat_economy/internal/metrics"
	"chat_economy/internal/models"
	"chat_economy/internal/progression"
	"chat_economy/internal/storage"

	"go.uber.org/zap"
)

const (
	// dailyXP is the XP of a daily claim before the multiplier.
	dailyXP = 10
	// workXPDivisor turns a work payout into XP.
	workXPDivisor = 10

	// robMinTargetCoins is the poorest target worth robbing.
	robMinTargetCoins = 500
	// robMinBalance is what a robber must hold to attempt a rob.
	robMinBalance = 100
	// robMinChance is the success floor, whatever the defense.
	robMinChance = 0.10
	robStealMin  = 0.10
	robStealSpan = 0.20

	sellRateNumerator   = 6
	sellRateDenominator = 10
)

// SellPrice is what the shop pays back for an item: floor(price * 0.6).
func SellPrice(price int64) int64 {
	return price * sellRateNumerator / sellRateDenominator
}

// RobChance is the success probability against a defense value, never below 10%.
func RobChance(base, defense float64) float64 {
	return max(robMinChance, base-defense)
}

func (app *App) daily(ctx context.Context, c call) (*models.Outcome, error) {
	s := c.settings
	streak := progression.NextStreak(c.account.DailyStreak, c.account.LastDaily, c.now)
	reward := progression.DailyReward(s.DailyBaseAmount, streak)
	bonus := reward - s.DailyBaseAmount
	xp := progression.ScaleXP(dailyXP, s.XPMultiplier)

	if out, err := app.claim(ctx, models.ActionDaily, c, models.CommandDaily, effects.Hours(s.DailyCooldownHours)); out != nil || err != nil {
		return out, err
	}

	accounts, err := app.db.ApplyDeltas(ctx, models.AccountDelta{
		AccountID:   c.account.ID,
		Coins:       reward,
		XP:          xp,
		DailyStreak: &streak,
		LastDaily:   &c.now,
	})
	if err != nil {
		app.release(ctx, models.ActionDaily, c.account.ID, models.CommandDaily)
		return nil, fmt.Errorf("app: apply daily reward: %w", err)
	}

	details := map[string]any{"streak": streak, "bonus": bonus, "xp_gain": xp}
	app.audit.Record(ctx, models.Transaction{
		AccountID: c.account.ID,
		Action:    models.TxDaily,
		Amount:    ptr(reward),
		Metadata:  details,
		CreatedAt: c.now,
	})
	return succeeded(models.ActionDaily, accounts[0], reward, xp, details), nil
}

func (app *App) work(ctx context.Context, c call) (*models.Outcome, error) {
	s := c.settings
	inv, err := app.inv.Snapshot(ctx, c.account.ID)
	if err != nil {
		return nil, err
	}

	base := s.WorkMinAmount
	if span := s.WorkMaxAmount - s.WorkMinAmount; span > 0 {
		base += app.rng.Int63n(span + 1)
	}
	boost := app.effects.WorkBoost(inv)
	bonus := int64(math.Floor(float64(base) * boost.Value))
	total := base + bonus
	xp := progression.ScaleXP(total/workXPDivisor, s.XPMultiplier)
	d, reduction := app.effects.Cooldown(inv, models.CommandWork, effects.Hours(s.WorkCooldownHours))

	if out, err := app.claim(ctx, models.ActionWork, c, models.CommandWork, d); out != nil || err != nil {
		return out, err
	}

	accounts, err := app.db.ApplyDeltas(ctx, models.AccountDelta{
		AccountID: c.account.ID,
		Coins:     total,
		XP:        xp,
		LastWork:  &c.now,
	})
	if err != nil {
		app.release(ctx, models.ActionWork, c.account.ID, models.CommandWork)
		return nil, fmt.Errorf("app: apply work reward: %w", err)
	}

	details := map[string]any{
		"base":             base,
		"boost":            bonus,
		"boost_rate":       boost.Value,
		"tool":             boost.Source(),
		"xp_gain":          xp,
		"cooldown_seconds": int64(d.Seconds()),
		"cooldown_items":   reduction.Sources,
	}
	app.audit.Record(ctx, models.Transaction{
		AccountID: c.account.ID,
		Action:    models.TxWork,
		Amount:    ptr(total),
		Metadata:  details,
		CreatedAt: c.now,
	})
	return succeeded(models.ActionWork, accounts[0], total, xp, details), nil
}

// counterparty validates the target of pay and rob and loads it, creating it on first mention.
func (app *App) counterparty(ctx context.Context, action models.Action, c call) (*models.Account, *models.Outcome, error) {
	p := c.params
	target := strings.TrimSpace(p.TargetID)
	switch {
	case target == "":
		return nil, rejectWith(action, c.account, models.ReasonInvalidTarget, "no target given"), nil
	case target == c.account.ID:
		return nil, rejectWith(action, c.account, models.ReasonInvalidTarget, "cannot target yourself"), nil
	case p.TargetIsBot:
		return nil, rejectWith(action, c.account, models.ReasonInvalidTarget, "bots do not take part in the economy"), nil
	}

	account, err := app.db.EnsureAccount(ctx, models.Account{ID: target, DisplayName: p.TargetName, Coins: app.startingCoins})
	if err != nil {
		return nil, nil, err
	}
	if account.IsBot {
		return nil, rejectWith(action, c.account, models.ReasonInvalidTarget, "bots do not take part in the economy"), nil
	}
	return account, nil, nil
}

// fundsRejection reports insufficient funds using a fresh read of the balance.
func (app *App) fundsRejection(ctx context.Context, action models.Action, accountID string, required int64) (*models.Outcome, error) {
	account, err := app.db.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return rejected(action, account, models.FundsRejection(required, account.Coins)), nil
}

func (app *App) pay(ctx context.Context, c call) (*models.Outcome, error) {
	amount := c.params.Amount
	if strings.TrimSpace(c.params.TargetID) == c.account.ID {
		return rejectWith(models.ActionPay, c.account, models.ReasonInvalidTarget, "cannot target yourself"), nil
	}
	if amount <= 0 {
		return rejectWith(models.ActionPay, c.account, models.ReasonInvalidAmount, "amount must be a positive number of coins"), nil
	}
	if c.account.Coins < amount {
		return rejected(models.ActionPay, c.account, models.FundsRejection(amount, c.account.Coins)), nil
	}

	recipient, out, err := app.counterparty(ctx, models.ActionPay, c)
	if out != nil || err != nil {
		return out, err
	}

	accounts, err := app.db.ApplyDeltas(ctx,
		models.AccountDelta{AccountID: c.account.ID, Coins: -amount},
		models.AccountDelta{AccountID: recipient.ID, Coins: amount},
	)
	if errors.Is(err, storage.ErrInsufficientFunds) {
		return app.fundsRejection(ctx, models.ActionPay, c.account.ID, amount)
	}
	if err != nil {
		return nil, fmt.Errorf("app: transfer coins: %w", err)
	}

	correlation := audit.NewCorrelationID()
	app.audit.Record(ctx,
		models.Transaction{
			AccountID: c.account.ID,
			Action:    models.TxPaySent,
			Amount:    ptr(-amount),
			TargetID:  ptr(recipient.ID),
			Metadata:  map[string]any{"correlation_id": correlation},
			CreatedAt: c.now,
		},
		models.Transaction{
			AccountID: recipient.ID,
			Action:    models.TxPayRecv,
			Amount:    ptr(amount),
			TargetID:  ptr(c.account.ID),
			Metadata:  map[string]any{"correlation_id": correlation},
			CreatedAt: c.now,
		},
	)

	out = succeeded(models.ActionPay, accounts[0], -amount, 0, map[string]any{"amount": amount, "recipient": recipient.ID})
	out.Target = accounts[1]
	return out, nil
}

func (app *App) rob(ctx context.Context, c call) (*models.Outcome, error) {
	s := c.settings
	if strings.TrimSpace(c.params.TargetID) == c.account.ID {
		return rejectWith(models.ActionRob, c.account, models.ReasonInvalidTarget, "cannot target yourself"), nil
	}
	if out, err := app.gate(ctx, models.ActionRob, c, models.CommandRob); out != nil || err != nil {
		return out, err
	}

	// Checked before the target is resolved; resolving may create the target account.
	if c.account.Coins < robMinBalance {
		return rejected(models.ActionRob, c.account, models.FundsRejection(robMinBalance, c.account.Coins)), nil
	}

	victim, out, err := app.counterparty(ctx, models.ActionRob, c)
	if out != nil || err != nil {
		return out, err
	}
	if victim.Coins < robMinTargetCoins {
		return rejectWith(models.ActionRob, c.account, models.ReasonInvalidTarget,
			fmt.Sprintf("target needs at least %d coins", robMinTargetCoins)), nil
	}

	victimInv, err := app.inv.Snapshot(ctx, victim.ID)
	if err != nil {
		return nil, err
	}
	defense := app.effects.RobDefense(victimInv)
	chance := RobChance(s.RobBaseSuccessRate, defense.Value)

	// Reduction items do not apply to rob.
	if out, err := app.claim(ctx, models.ActionRob, c, models.CommandRob, effects.Hours(s.RobCooldownHours)); out != nil || err != nil {
		return out, err
	}

	success := app.rng.Float64() < chance
	var (
		amount int64
		deltas []models.AccountDelta
	)
	if success {
		rate := robStealMin + app.rng.Float64()*robStealSpan
		amount = int64(math.Floor(float64(victim.Coins) * rate))
		deltas = []models.AccountDelta{
			{AccountID: c.account.ID, Coins: amount, RobAttempts: 1},
			{AccountID: victim.ID, Coins: -amount},
		}
	} else {
		amount = -int64(math.Floor(float64(c.account.Coins) * s.RobPenaltyPercent))
		deltas = []models.AccountDelta{{AccountID: c.account.ID, Coins: amount, RobAttempts: 1}}
	}

	accounts, err := app.db.ApplyDeltas(ctx, deltas...)
	if err != nil {
		app.release(ctx, models.ActionRob, c.account.ID, models.CommandRob)
		if !errors.Is(err, storage.ErrInsufficientFunds) {
			return nil, fmt.Errorf("app: resolve rob: %w", err)
		}
		// A balance moved after it was read; the attempt is void.
		if success {
			return rejectWith(models.ActionRob, c.account, models.ReasonInvalidTarget, "target no longer has enough coins"), nil
		}
		return app.fundsRejection(ctx, models.ActionRob, c.account.ID, -amount)
	}

	correlation := audit.NewCorrelationID()
	details := map[string]any{
		"success":        success,
		"amount":         amount,
		"chance":         chance,
		"defense":        defense.Value,
		"defense_item":   defense.Source(),
		"target":         victim.ID,
		"correlation_id": correlation,
	}
	records := []models.Transaction{{
		AccountID: c.account.ID,
		Action:    models.TxRob,
		Amount:    ptr(amount),
		TargetID:  ptr(victim.ID),
		Metadata:  details,
		CreatedAt: c.now,
	}}
	target := victim
	if success {
		target = accounts[1]
		records = append(records, models.Transaction{
			AccountID: victim.ID,
			Action:    models.TxRobbed,
			Amount:    ptr(-amount),
			TargetID:  ptr(c.account.ID),
			Metadata:  map[string]any{"correlation_id": correlation, "defense": defense.Value},
			CreatedAt: c.now,
		})
	}
	app.audit.Record(ctx, records...)

	out = succeeded(models.ActionRob, accounts[0], amount, 0, details)
	out.Target = target
	return out, nil
}

func (app *App) buy(ctx context.Context, c call) (*models.Outcome, error) {
	ref := strings.TrimSpace(c.params.Item)
	if ref == "" {
		return rejectWith(models.ActionBuy, c.account, models.ReasonItemNotFound, "no item given"), nil
	}
	item, err := app.db.GetItem(ctx, ref)
	if errors.Is(err, storage.ErrItemNotFound) {
		return rejectWith(models.ActionBuy, c.account, models.ReasonItemNotFound, ref), nil
	}
	if err != nil {
		return nil, err
	}
	if c.account.Coins < item.Price {
		return rejected(models.ActionBuy, c.account, models.FundsRejection(item.Price, c.account.Coins)), nil
	}

	account, quantity, err := app.inv.Add(ctx, models.AccountDelta{AccountID: c.account.ID, Coins: -item.Price}, item.ID)
	switch {
	case errors.Is(err, storage.ErrInsufficientFunds):
		return app.fundsRejection(ctx, models.ActionBuy, c.account.ID, item.Price)
	case errors.Is(err, storage.ErrItemNotFound):
		return rejectWith(models.ActionBuy, c.account, models.ReasonItemNotFound, ref), nil
	case err != nil:
		return nil, fmt.Errorf("app: buy %s: %w", item.Name, err)
	}

	details := map[string]any{"item": item.Name, "quantity": quantity}
	app.audit.Record(ctx, models.Transaction{
		AccountID: c.account.ID,
		Action:    models.TxBuy,
		Amount:    ptr(-item.Price),
		ItemID:    ptr(item.ID),
		Metadata:  details,
		CreatedAt: c.now,
	})
	return succeeded(models.ActionBuy, account, -item.Price, 0, details), nil
}

// owned finds an item in the caller's inventory. When it is missing the outcome tells
// apart an unknown item from one that is simply not held.
func (app *App) owned(ctx context.Context, action models.Action, c call) (models.InventoryEntry, *models.Outcome, error) {
	ref := strings.TrimSpace(c.params.Item)
	if ref == "" {
		return models.InventoryEntry{}, rejectWith(action, c.account, models.ReasonItemNotFound, "no item given"), nil
	}

	snapshot, err := app.inv.Snapshot(ctx, c.account.ID)
	if err != nil {
		return models.InventoryEntry{}, nil, err
	}
	if entry, ok := snapshot.Find(ref); ok {
		return entry, nil, nil
	}

	_, err = app.db.GetItem(ctx, ref)
	if errors.Is(err, storage.ErrItemNotFound) {
		return models.InventoryEntry{}, rejectWith(action, c.account, models.ReasonItemNotFound, ref), nil
	}
	if err != nil {
		return models.InventoryEntry{}, nil, err
	}
	return models.InventoryEntry{}, rejectWith(action, c.account, models.ReasonNotOwned, ref), nil
}

func (app *App) sell(ctx context.Context, c call) (*models.Outcome, error) {
	entry, out, err := app.owned(ctx, models.ActionSell, c)
	if out != nil || err != nil {
		return out, err
	}

	price := SellPrice(entry.Item.Price)
	account, quantity, err := app.inv.Remove(ctx, models.AccountDelta{AccountID: c.account.ID, Coins: price}, entry.Item.ID)
	if errors.Is(err, storage.ErrNotOwned) {
		return rejectWith(models.ActionSell, c.account, models.ReasonNotOwned, entry.Item.Name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("app: sell %s: %w", entry.Item.Name, err)
	}

	details := map[string]any{"item": entry.Item.Name, "quantity": quantity}
	app.audit.Record(ctx, models.Transaction{
		AccountID: c.account.ID,
		Action:    models.TxSell,
		Amount:    ptr(price),
		ItemID:    ptr(entry.Item.ID),
		Metadata:  details,
		CreatedAt: c.now,
	})
	return succeeded(models.ActionSell, account, price, 0, details), nil
}

func (app *App) use(ctx context.Context, c call) (*models.Outcome, error) {
	entry, out, err := app.owned(ctx, models.ActionUse, c)
	if out != nil || err != nil {
		return out, err
	}

	result, ok := app.effects.Consume(entry.Item.Effect)
	if !ok {
		return rejectWith(models.ActionUse, c.account, models.ReasonNotUsable, entry.Item.Name), nil
	}

	delta := models.AccountDelta{AccountID: c.account.ID, Coins: result.Coins, XP: result.XP}
	account, quantity, err := app.inv.Remove(ctx, delta, entry.Item.ID)
	if errors.Is(err, storage.ErrNotOwned) {
		return rejectWith(models.ActionUse, c.account, models.ReasonNotOwned, entry.Item.Name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("app: use %s: %w", entry.Item.Name, err)
	}

	details := map[string]any{"item": entry.Item.Name, "quantity": quantity, "effect": result.Descriptor}
	if result.ResetCommand != "" {
		// The item is already consumed; a failed clear leaves the use recorded without cooldown_cleared.
		if err := app.tracker.Release(ctx, c.account.ID, result.ResetCommand); err != nil {
			metrics.CompensationsTotal.WithLabelValues(string(models.ActionUse)).Inc()
			app.log.ForAccount(c.account.ID, string(models.ActionUse)).Error("failed to clear cooldown",
				zap.String("command", string(result.ResetCommand)),
				zap.Error(err))
		} else {
			details["cooldown_cleared"] = string(result.ResetCommand)
		}
	}

	app.audit.Record(ctx, models.Transaction{
		AccountID: c.account.ID,
		Action:    models.TxUse,
		Amount:    ptr(result.Coins),
		ItemID:    ptr(entry.Item.ID),
		Metadata:  details,
		CreatedAt: c.now,
	})
	return succeeded(models.ActionUse, account, result.Coins, result.XP, details), nil
}
