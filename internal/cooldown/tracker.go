// Package cooldown gates the daily, work and rob commands per account.
//
// A Tracker answers how long a command stays blocked and arms new cooldowns. TryArm is
// the claim the action engine uses: it arms the cooldown only if none is active, so two
// concurrent invocations of the same command cannot both pass the gate.
package cooldown

import (
	"context"
	"time"

	"chat_economy/internal/models"
	"chat_economy/internal/pkg/logger"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Tracker stores cooldown expiries.
type Tracker interface {
	// Check returns the time left before command can run again, 0 when it is ready.
	Check(ctx context.Context, accountID string, command models.Command, now time.Time) (time.Duration, error)
	// Arm sets the cooldown to expire at expiresAt, replacing any existing one.
	Arm(ctx context.Context, accountID string, command models.Command, expiresAt time.Time) error
	// TryArm arms a cooldown of length d only if command is ready at now.
	// When it is not, ok is false and remaining is the time left on the active cooldown.
	TryArm(ctx context.Context, accountID string, command models.Command, now time.Time, d time.Duration) (remaining time.Duration, ok bool, err error)
	// Release clears the cooldown.
	Release(ctx context.Context, accountID string, command models.Command) error
}

// Store is the part of the ledger store a StoreTracker needs.
type Store interface {
	GetCooldown(ctx context.Context, accountID string, command models.Command) (*models.Cooldown, error)
	UpsertCooldown(ctx context.Context, cooldown models.Cooldown) error
	ClaimCooldown(ctx context.Context, cooldown models.Cooldown, now time.Time) (*models.Cooldown, bool, error)
	DeleteCooldown(ctx context.Context, accountID string, command models.Command) error
}

// NewTracker returns a RedisTracker when client is set and a StoreTracker otherwise.
func NewTracker(store Store, client *redis.Client, log *logger.Logger) Tracker {
	if client != nil {
		return NewRedisTracker(client)
	}
	return NewStoreTracker(store, log)
}

// StoreTracker keeps cooldowns in the cooldowns relation of the ledger store.
type StoreTracker struct {
	store Store
	log   *logger.Logger
}

// NewStoreTracker creates a StoreTracker.
func NewStoreTracker(store Store, log *logger.Logger) *StoreTracker {
	return &StoreTracker{store: store, log: log}
}

// Check reads the cooldown and removes it when it has expired. The removal is best effort.
func (t *StoreTracker) Check(ctx context.Context, accountID string, command models.Command, now time.Time) (time.Duration, error) {
	c, err := t.store.GetCooldown(ctx, accountID, command)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, nil
	}
	if remaining := c.ExpiresAt.Sub(now); remaining > 0 {
		return remaining, nil
	}

	if err := t.store.DeleteCooldown(ctx, accountID, command); err != nil {
		t.log.Warn("failed to delete expired cooldown",
			zap.String("account_id", accountID),
			zap.String("command", string(command)),
			zap.Error(err))
	}
	return 0, nil
}

// Arm sets the cooldown unconditionally.
func (t *StoreTracker) Arm(ctx context.Context, accountID string, command models.Command, expiresAt time.Time) error {
	return t.store.UpsertCooldown(ctx, models.Cooldown{AccountID: accountID, Command: command, ExpiresAt: expiresAt})
}

// TryArm claims the cooldown through the store's conditional upsert.
func (t *StoreTracker) TryArm(ctx context.Context, accountID string, command models.Command, now time.Time, d time.Duration) (time.Duration, bool, error) {
	claim := models.Cooldown{AccountID: accountID, Command: command, ExpiresAt: now.Add(d)}
	existing, ok, err := t.store.ClaimCooldown(ctx, claim, now)
	if err != nil {
		return 0, false, err
	}
	if ok {
		return 0, true, nil
	}
	if existing == nil {
		// Deleted between the claim and the read; the caller may retry.
		return time.Second, false, nil
	}
	return max(existing.ExpiresAt.Sub(now), time.Second), false, nil
}

// Release deletes the cooldown.
func (t *StoreTracker) Release(ctx context.Context, accountID string, command models.Command) error {
	return t.store.DeleteCooldown(ctx, accountID, command)
}
