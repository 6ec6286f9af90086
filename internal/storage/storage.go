// Package storage provides primitives for connecting to and interacting with data storage systems.
// It defines the Storage interface for the six economy relations (accounts, items, inventory,
// cooldowns, settings and audit transactions) along with a PostgreSQL implementation and an
// in-memory implementation with the same semantics.
package storage

//go:generate mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"chat_economy/internal/models"
)

// Domain errors returned by every Storage implementation.
var (
	// ErrAccountNotFound indicates that no account has the requested id.
	ErrAccountNotFound = errors.New("storage: account not found")
	// ErrItemNotFound indicates that no catalog item matches the requested reference.
	ErrItemNotFound = errors.New("storage: item not found")
	// ErrInsufficientFunds indicates that a delta would drive a balance below zero.
	ErrInsufficientFunds = errors.New("storage: insufficient funds")
	// ErrNotOwned indicates that an inventory decrement found too few units.
	ErrNotOwned = errors.New("storage: item not owned")
	// ErrSettingsNotFound indicates that the settings record was never seeded.
	ErrSettingsNotFound = errors.New("storage: settings not found")
)

// Storage defines the methods required for data storage operations.
// Every method that mutates more than one row does so atomically.
type Storage interface {
	// Close closes the database connection.
	Close()

	// Account methods.
	EnsureAccount(ctx context.Context, account models.Account) (*models.Account, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	ApplyDeltas(ctx context.Context, deltas ...models.AccountDelta) ([]*models.Account, error)

	// Catalog methods.
	ListItems(ctx context.Context, category models.Category) ([]models.Item, error)
	GetItem(ctx context.Context, ref string) (*models.Item, error)
	UpsertItems(ctx context.Context, items []models.Item) error

	// Inventory methods.
	GetInventory(ctx context.Context, accountID string) ([]models.InventoryEntry, error)
	ExchangeItem(ctx context.Context, delta models.AccountDelta, itemID int64, quantityDelta int) (*models.Account, int, error)

	// Cooldown methods.
	GetCooldown(ctx context.Context, accountID string, command models.Command) (*models.Cooldown, error)
	UpsertCooldown(ctx context.Context, cooldown models.Cooldown) error
	ClaimCooldown(ctx context.Context, cooldown models.Cooldown, now time.Time) (*models.Cooldown, bool, error)
	DeleteCooldown(ctx context.Context, accountID string, command models.Command) error

	// Settings methods.
	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Audit methods.
	AppendTransactions(ctx context.Context, records ...models.Transaction) error
	ListTransactions(ctx context.Context, accountID string, limit int) ([]models.Transaction, error)

	// Leaderboard method.
	Leaderboard(ctx context.Context, metric models.Metric, limit int) ([]models.LeaderboardEntry, error)
}

// DefaultLimit bounds listings when the caller passes a non-positive limit.
const DefaultLimit = 10

// MaxLimit bounds every listing.
const MaxLimit = 100

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}
