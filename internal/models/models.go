// Package models defines the data structures used throughout the application.
// It includes the persistent economy state (accounts, catalog items, inventory entries,
// cooldowns, audit transactions and server settings) as well as the request and response
// payloads exchanged with the chat dispatcher.
package models

import "time"

// AuthRequest represents the authentication request payload sent by the chat dispatcher.
// It identifies the chat user the dispatcher acts for and proves the dispatcher's identity.
type AuthRequest struct {
	AccountID     string `json:"account_id"`
	DisplayName   string `json:"display_name"`
	DispatcherKey string `json:"dispatcher_key"`
}

// AuthResponse represents the authentication response payload.
// It contains the generated token upon successful authentication.
type AuthResponse struct {
	Token string `json:"token"`
}

// ErrorResponse represents a generic error response payload.
// It contains a string describing the encountered error.
type ErrorResponse struct {
	Errors string `json:"errors"`
}

// Account represents one user's persistent economy state.
// Level is derived from XP and is rewritten by every write that touches XP.
type Account struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	IsBot       bool       `json:"is_bot"`
	Coins       int64      `json:"coins"`
	XP          int64      `json:"xp"`
	Level       int        `json:"level"`
	DailyStreak int        `json:"daily_streak"`
	LastDaily   *time.Time `json:"last_daily,omitempty"`
	LastWork    *time.Time `json:"last_work,omitempty"`
	RobAttempts int        `json:"rob_attempts"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AccountDelta describes one atomic change to an account.
// Coins, XP and RobAttempts are applied as increments; the pointer fields overwrite
// the stored value when set.
type AccountDelta struct {
	AccountID   string
	Coins       int64
	XP          int64
	RobAttempts int
	DailyStreak *int
	LastDaily   *time.Time
	LastWork    *time.Time
}

// Category is the catalog category of an item.
type Category string

// Item categories.
const (
	CategoryTool        Category = "tool"
	CategoryWeapon      Category = "weapon"
	CategoryCollectible Category = "collectible"
	CategoryConsumable  Category = "consumable"
	CategoryUpgrade     Category = "upgrade"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTool, CategoryWeapon, CategoryCollectible, CategoryConsumable, CategoryUpgrade:
		return true
	}
	return false
}

// Rarity is the rarity tier of an item.
type Rarity string

// Item rarities.
const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Valid reports whether r is one of the known rarities.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// Item represents a catalog entry available in the shop.
// Items are immutable once seeded; Effect is nil for items without resolver logic.
type Item struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    Category `json:"category"`
	Rarity      Rarity   `json:"rarity"`
	Effect      Effect   `json:"-"`
}

// InventoryEntry represents a positive quantity of one item held by one account.
type InventoryEntry struct {
	AccountID string `json:"-"`
	Item      Item   `json:"item"`
	Quantity  int    `json:"quantity"`
}

// Command names an action that can be put on cooldown.
type Command string

// Cooldown-gated commands.
const (
	CommandDaily Command = "daily"
	CommandWork  Command = "work"
	CommandRob   Command = "rob"
)

// Valid reports whether c is one of the cooldown-gated commands.
func (c Command) Valid() bool {
	switch c {
	case CommandDaily, CommandWork, CommandRob:
		return true
	}
	return false
}

// Cooldown is the expiry gate of one command for one account.
type Cooldown struct {
	AccountID string    `json:"account_id"`
	Command   Command   `json:"command"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Transaction is one append-only audit record of an economic mutation.
// Amount is the signed coin delta seen by AccountID.
type Transaction struct {
	ID        string         `json:"id"`
	AccountID string         `json:"account_id"`
	Action    string         `json:"action"`
	Amount    *int64         `json:"amount,omitempty"`
	TargetID  *string        `json:"target_id,omitempty"`
	ItemID    *int64         `json:"item_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Audit action names recorded in transactions. Pay writes one record per side and a
// successful rob also writes a record for the victim.
const (
	TxDaily   = "daily"
	TxWork    = "work"
	TxPaySent = "pay_sent"
	TxPayRecv = "pay_received"
	TxRob     = "rob"
	TxRobbed  = "robbed"
	TxBuy     = "shop_buy"
	TxSell    = "shop_sell"
	TxUse     = "use_item"
)

// Settings is the single server configuration record read by the action engine.
// RobPenaltyPercent and RobBaseSuccessRate are fractions in [0, 1].
type Settings struct {
	DailyBaseAmount    int64   `json:"daily_base_amount"`
	DailyCooldownHours float64 `json:"daily_cooldown_hours"`
	WorkMinAmount      int64   `json:"work_min_amount"`
	WorkMaxAmount      int64   `json:"work_max_amount"`
	WorkCooldownHours  float64 `json:"work_cooldown_hours"`
	RobBaseSuccessRate float64 `json:"rob_base_success_rate"`
	RobCooldownHours   float64 `json:"rob_cooldown_hours"`
	RobPenaltyPercent  float64 `json:"rob_penalty_percent"`
	XPMultiplier       float64 `json:"xp_multiplier"`
}

// Metric selects the leaderboard ordering.
type Metric string

// Leaderboard metrics.
const (
	MetricCoins Metric = "coins"
	MetricXP    Metric = "xp"
)

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	AccountID   string `json:"account_id"`
	DisplayName string `json:"display_name"`
	Coins       int64  `json:"coins"`
	XP          int64  `json:"xp"`
	Level       int    `json:"level"`
}

// ActionRequest represents the payload of an action invocation.
// Which fields are used depends on the action.
type ActionRequest struct {
	TargetID    string `json:"target_id,omitempty"`
	TargetName  string `json:"target_name,omitempty"`
	TargetIsBot bool   `json:"target_is_bot,omitempty"`
	Amount      int64  `json:"amount,omitempty"`
	Item        string `json:"item,omitempty"`
}

// InfoResponse represents the response payload for the /api/info endpoint.
// It contains the account state, its inventory and its most recent audit records.
type InfoResponse struct {
	Account      *Account         `json:"account"`
	Inventory    []InventoryEntry `json:"inventory"`
	Transactions []Transaction    `json:"transactions"`
}
