package app

import (
	"context"
	"strings"

	"chat_economy/internal/inventory"
	"chat_economy/internal/models"
	"chat_economy/internal/pkg/auth"
	"chat_economy/internal/pkg/security"
)

// infoTransactions is how many audit records /api/info returns.
const infoTransactions = 20

// ProcessAuth checks the dispatcher key, makes sure the account exists and issues
// a token acting for it.
func (app *App) ProcessAuth(ctx context.Context, req models.AuthRequest) (string, error) {
	accountID := strings.TrimSpace(req.AccountID)
	if accountID == "" {
		return "", ErrMissingAccount
	}

	if app.dispatcherKeyHash != "" {
		if err := security.CheckKey(app.dispatcherKeyHash, req.DispatcherKey); err != nil {
			return "", ErrInvalidDispatcherKey
		}
	}

	if _, err := app.EnsureAccount(ctx, accountID, req.DisplayName); err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(accountID)
	if err != nil {
		return "", err
	}

	return token, nil
}

// EnsureAccount returns the account, creating it with the starting balance on first use.
// A non-empty displayName replaces the stored one.
func (app *App) EnsureAccount(ctx context.Context, accountID, displayName string) (*models.Account, error) {
	if accountID == "" {
		return nil, ErrMissingAccount
	}
	return app.db.EnsureAccount(ctx, models.Account{ID: accountID, DisplayName: displayName, Coins: app.startingCoins})
}

// Catalog lists the shop ordered by price. An empty category lists everything.
func (app *App) Catalog(ctx context.Context, category models.Category) ([]models.Item, error) {
	if category != "" && !category.Valid() {
		return nil, ErrUnknownCategory
	}
	return app.db.ListItems(ctx, category)
}

// Inventory returns the inventory of an account.
func (app *App) Inventory(ctx context.Context, accountID string) (inventory.Snapshot, error) {
	if accountID == "" {
		return nil, ErrMissingAccount
	}
	return app.inv.Snapshot(ctx, accountID)
}

// Leaderboard ranks accounts by coins or xp. An empty metric ranks by coins.
func (app *App) Leaderboard(ctx context.Context, metric models.Metric, limit int) ([]models.LeaderboardEntry, error) {
	switch metric {
	case "":
		metric = models.MetricCoins
	case models.MetricCoins, models.MetricXP:
	default:
		return nil, ErrUnknownMetric
	}
	return app.db.Leaderboard(ctx, metric, limit)
}

// ProcessInfo aggregates the account, its inventory and its most recent audit records.
func (app *App) ProcessInfo(ctx context.Context, accountID string) (*models.InfoResponse, error) {
	account, err := app.EnsureAccount(ctx, accountID, "")
	if err != nil {
		return nil, err
	}

	inv, err := app.inv.Snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}

	transactions, err := app.db.ListTransactions(ctx, accountID, infoTransactions)
	if err != nil {
		return nil, err
	}

	if inv == nil {
		inv = inventory.Snapshot{}
	}
	return &models.InfoResponse{Account: account, Inventory: inv, Transactions: transactions}, nil
}
