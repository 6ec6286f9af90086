package storage

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"chat_economy/internal/catalog"
	"chat_economy/internal/models"
	"chat_economy/internal/progression"
)

type inventoryKey struct {
	accountID string
	itemID    int64
}

type cooldownKey struct {
	accountID string
	command   models.Command
}

// Memory implements the Storage interface in process memory. It is used by tests
// and by single-process deployments that do not need durability.
type Memory struct {
	mu           sync.Mutex
	now          func() time.Time
	accounts     map[string]*models.Account
	items        map[int64]*models.Item
	nextItemID   int64
	inventory    map[inventoryKey]int
	cooldowns    map[cooldownKey]time.Time
	settings     *models.Settings
	transactions []models.Transaction
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		now:       time.Now,
		accounts:  make(map[string]*models.Account),
		items:     make(map[int64]*models.Item),
		inventory: make(map[inventoryKey]int),
		cooldowns: make(map[cooldownKey]time.Time),
	}
}

// Close is a no-op.
func (m *Memory) Close() {}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	if a.LastDaily != nil {
		t := *a.LastDaily
		c.LastDaily = &t
	}
	if a.LastWork != nil {
		t := *a.LastWork
		c.LastWork = &t
	}
	return &c
}

// EnsureAccount creates the account if needed and returns the stored record.
func (m *Memory) EnsureAccount(_ context.Context, account models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stored, ok := m.accounts[account.ID]; ok {
		if account.DisplayName != "" {
			stored.DisplayName = account.DisplayName
		}
		stored.IsBot = stored.IsBot || account.IsBot
		return copyAccount(stored), nil
	}

	if account.Coins < 0 {
		return nil, ErrInsufficientFunds
	}
	stored := &models.Account{
		ID:          account.ID,
		DisplayName: account.DisplayName,
		IsBot:       account.IsBot,
		Coins:       account.Coins,
		Level:       progression.Level(0),
		CreatedAt:   m.now().UTC(),
	}
	m.accounts[account.ID] = stored
	return copyAccount(stored), nil
}

// GetAccount retrieves one account by id.
func (m *Memory) GetAccount(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return copyAccount(a), nil
}

// checkDelta validates a delta against the current state without applying it.
func (m *Memory) checkDelta(d models.AccountDelta, pending map[string]int64) error {
	a, ok := m.accounts[d.AccountID]
	if !ok {
		return ErrAccountNotFound
	}
	pending[d.AccountID] += d.Coins
	if a.Coins+pending[d.AccountID] < 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (m *Memory) applyDelta(d models.AccountDelta) *models.Account {
	a := m.accounts[d.AccountID]
	a.Coins += d.Coins
	a.XP += d.XP
	a.Level = progression.Level(a.XP)
	a.RobAttempts += d.RobAttempts
	if d.DailyStreak != nil {
		a.DailyStreak = *d.DailyStreak
	}
	if d.LastDaily != nil {
		t := *d.LastDaily
		a.LastDaily = &t
	}
	if d.LastWork != nil {
		t := *d.LastWork
		a.LastWork = &t
	}
	return copyAccount(a)
}

// ApplyDeltas applies every delta or none of them.
func (m *Memory) ApplyDeltas(_ context.Context, deltas ...models.AccountDelta) ([]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := make(map[string]int64, len(deltas))
	for _, d := range deltas {
		if err := m.checkDelta(d, pending); err != nil {
			return nil, err
		}
	}

	accounts := make([]*models.Account, len(deltas))
	for i, d := range deltas {
		accounts[i] = m.applyDelta(d)
	}
	return accounts, nil
}

func (m *Memory) sortedItems(category models.Category) []models.Item {
	items := make([]models.Item, 0, len(m.items))
	for _, it := range m.items {
		items = append(items, *it)
	}
	items = catalog.Filter(items, category)
	catalog.SortByPrice(items)
	return items
}

// ListItems returns the catalog ordered by price, optionally filtered by category.
func (m *Memory) ListItems(_ context.Context, category models.Category) ([]models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sortedItems(category), nil
}

func (m *Memory) findItem(ref string) (*models.Item, bool) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if it, ok := m.items[id]; ok {
			return it, true
		}
	}
	for _, it := range m.items {
		if strings.EqualFold(it.Name, ref) {
			return it, true
		}
	}
	return nil, false
}

// GetItem resolves an item by numeric id or by case-insensitive name.
func (m *Memory) GetItem(_ context.Context, ref string) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.findItem(ref)
	if !ok {
		return nil, ErrItemNotFound
	}
	c := *it
	return &c, nil
}

// UpsertItems seeds catalog items. Items already present by name are left untouched.
func (m *Memory) UpsertItems(_ context.Context, items []models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, it := range items {
		if _, ok := m.findItem(it.Name); ok {
			continue
		}
		m.nextItemID++
		c := it
		c.ID = m.nextItemID
		m.items[c.ID] = &c
	}
	return nil
}

// GetInventory returns the positive inventory entries of an account.
func (m *Memory) GetInventory(_ context.Context, accountID string) ([]models.InventoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []models.InventoryEntry
	for _, it := range m.sortedItems("") {
		if q := m.inventory[inventoryKey{accountID, it.ID}]; q > 0 {
			entries = append(entries, models.InventoryEntry{AccountID: accountID, Item: it, Quantity: q})
		}
	}
	return entries, nil
}

// ExchangeItem changes one inventory entry and applies delta to the owner atomically.
func (m *Memory) ExchangeItem(_ context.Context, delta models.AccountDelta, itemID int64, quantityDelta int) (*models.Account, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[delta.AccountID]; !ok {
		return nil, 0, ErrAccountNotFound
	}
	if _, ok := m.items[itemID]; !ok {
		return nil, 0, ErrItemNotFound
	}

	key := inventoryKey{delta.AccountID, itemID}
	quantity := m.inventory[key] + quantityDelta
	if quantity < 0 {
		return nil, 0, ErrNotOwned
	}
	if err := m.checkDelta(delta, map[string]int64{}); err != nil {
		return nil, 0, err
	}

	if quantity == 0 {
		delete(m.inventory, key)
	} else {
		m.inventory[key] = quantity
	}
	return m.applyDelta(delta), quantity, nil
}

// GetCooldown returns the stored cooldown or nil when none is recorded.
func (m *Memory) GetCooldown(_ context.Context, accountID string, command models.Command) (*models.Cooldown, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.cooldowns[cooldownKey{accountID, command}]
	if !ok {
		return nil, nil
	}
	return &models.Cooldown{AccountID: accountID, Command: command, ExpiresAt: expiresAt}, nil
}

// UpsertCooldown sets the expiry of a cooldown unconditionally.
func (m *Memory) UpsertCooldown(_ context.Context, cooldown models.Cooldown) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cooldowns[cooldownKey{cooldown.AccountID, cooldown.Command}] = cooldown.ExpiresAt
	return nil
}

// ClaimCooldown arms cooldown only if no unexpired cooldown exists at now.
func (m *Memory) ClaimCooldown(_ context.Context, cooldown models.Cooldown, now time.Time) (*models.Cooldown, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cooldownKey{cooldown.AccountID, cooldown.Command}
	if expiresAt, ok := m.cooldowns[key]; ok && expiresAt.After(now) {
		return &models.Cooldown{AccountID: cooldown.AccountID, Command: cooldown.Command, ExpiresAt: expiresAt}, false, nil
	}
	m.cooldowns[key] = cooldown.ExpiresAt
	return &cooldown, true, nil
}

// DeleteCooldown removes a cooldown.
func (m *Memory) DeleteCooldown(_ context.Context, accountID string, command models.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.cooldowns, cooldownKey{accountID, command})
	return nil
}

// GetSettings reads the settings record.
func (m *Memory) GetSettings(_ context.Context) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settings == nil {
		return nil, ErrSettingsNotFound
	}
	s := *m.settings
	return &s, nil
}

// SaveSettings writes the settings record.
func (m *Memory) SaveSettings(_ context.Context, settings models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = &settings
	return nil
}

// AppendTransactions appends audit records.
func (m *Memory) AppendTransactions(_ context.Context, records ...models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions = append(m.transactions, records...)
	return nil
}

// ListTransactions returns the most recent audit records of an account, newest first.
func (m *Memory) ListTransactions(_ context.Context, accountID string, limit int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit = clampLimit(limit)
	records := make([]models.Transaction, 0, limit)
	for i := len(m.transactions) - 1; i >= 0 && len(records) < limit; i-- {
		if m.transactions[i].AccountID == accountID {
			records = append(records, m.transactions[i])
		}
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })
	return records, nil
}

// Leaderboard ranks non-bot accounts by the given metric, ties broken by id.
func (m *Memory) Leaderboard(_ context.Context, metric models.Metric, limit int) ([]models.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]models.LeaderboardEntry, 0, len(m.accounts))
	for _, a := range m.accounts {
		if a.IsBot {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			AccountID:   a.ID,
			DisplayName: a.DisplayName,
			Coins:       a.Coins,
			XP:          a.XP,
			Level:       a.Level,
		})
	}

	value := func(e models.LeaderboardEntry) int64 {
		if metric == models.MetricXP {
			return e.XP
		}
		return e.Coins
	}
	sort.Slice(entries, func(i, j int) bool {
		if value(entries[i]) != value(entries[j]) {
			return value(entries[i]) > value(entries[j])
		}
		return entries[i].AccountID < entries[j].AccountID
	})

	entries = entries[:min(len(entries), clampLimit(limit))]
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
