// Package inventory provides the per-account item ledger: point-in-time snapshots used
// for effect lookup and display, and single-unit add/remove operations.
package inventory

import (
	"context"
	"strconv"
	"strings"

	"chat_economy/internal/models"
)

// Store is the part of the ledger store the inventory needs.
type Store interface {
	GetInventory(ctx context.Context, accountID string) ([]models.InventoryEntry, error)
	ExchangeItem(ctx context.Context, delta models.AccountDelta, itemID int64, quantityDelta int) (*models.Account, int, error)
}

// Snapshot is the inventory of one account at one point in time.
type Snapshot []models.InventoryEntry

// Find looks an entry up by item id or by case-insensitive item name.
func (s Snapshot) Find(ref string) (models.InventoryEntry, bool) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, e := range s {
			if e.Item.ID == id {
				return e, true
			}
		}
	}
	for _, e := range s {
		if strings.EqualFold(e.Item.Name, ref) {
			return e, true
		}
	}
	return models.InventoryEntry{}, false
}

// Holding returns the entries whose item carries an effect of the given kind.
func (s Snapshot) Holding(kind models.EffectKind) []models.InventoryEntry {
	var out []models.InventoryEntry
	for _, e := range s {
		if e.Quantity > 0 && e.Item.Effect != nil && e.Item.Effect.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// Ledger reads and changes inventories through the store.
type Ledger struct {
	store Store
}

// NewLedger creates a Ledger over the given store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Snapshot loads the current inventory of an account.
func (l *Ledger) Snapshot(ctx context.Context, accountID string) (Snapshot, error) {
	entries, err := l.store.GetInventory(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return Snapshot(entries), nil
}

// Add grants one unit of an item, applying delta to the account in the same transaction.
// It returns the updated account and the new quantity.
func (l *Ledger) Add(ctx context.Context, delta models.AccountDelta, itemID int64) (*models.Account, int, error) {
	return l.store.ExchangeItem(ctx, delta, itemID, 1)
}

// Remove takes one unit of an item, applying delta to the account in the same transaction.
// The entry disappears when its quantity reaches zero.
func (l *Ledger) Remove(ctx context.Context, delta models.AccountDelta, itemID int64) (*models.Account, int, error) {
	return l.store.ExchangeItem(ctx, delta, itemID, -1)
}
