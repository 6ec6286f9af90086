package cooldown

import (
	"context"
	"time"

	"chat_economy/internal/models"

	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "cooldown:"

// RedisTracker keeps cooldowns as expiring Redis keys. Expiry is measured by the Redis
// server clock, so the now arguments only set the length of new cooldowns.
type RedisTracker struct {
	client *redis.Client
}

// NewRedisTracker creates a RedisTracker.
func NewRedisTracker(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client}
}

// NewRedisClient connects to Redis and pings it. An empty addr returns a nil client.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func key(accountID string, command models.Command) string {
	return keyPrefix + string(command) + ":" + accountID
}

// Check returns the remaining TTL of the cooldown key.
func (t *RedisTracker) Check(ctx context.Context, accountID string, command models.Command, _ time.Time) (time.Duration, error) {
	ttl, err := t.client.PTTL(ctx, key(accountID, command)).Result()
	if err != nil {
		return 0, err
	}
	// -2 is a missing key and -1 a key without expiry; neither blocks.
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

// Arm sets the cooldown key to expire at expiresAt. An expiry already passed clears it.
func (t *RedisTracker) Arm(ctx context.Context, accountID string, command models.Command, expiresAt time.Time) error {
	if time.Until(expiresAt) <= 0 {
		return t.Release(ctx, accountID, command)
	}
	return t.client.SetArgs(ctx, key(accountID, command), expiresAt.UnixMilli(), redis.SetArgs{ExpireAt: expiresAt}).Err()
}

// TryArm claims the cooldown with SET NX PX. A non-positive d never blocks, so nothing is armed;
// SET NX with a zero expiry would leave a key that never expires.
func (t *RedisTracker) TryArm(ctx context.Context, accountID string, command models.Command, now time.Time, d time.Duration) (time.Duration, bool, error) {
	if d <= 0 {
		return 0, true, nil
	}
	k := key(accountID, command)
	ok, err := t.client.SetNX(ctx, k, now.Add(d).UnixMilli(), d).Result()
	if err != nil {
		return 0, false, err
	}
	if ok {
		return 0, true, nil
	}

	remaining, err := t.Check(ctx, accountID, command, now)
	if err != nil {
		return 0, false, err
	}
	return max(remaining, time.Second), false, nil
}

// Release deletes the cooldown key.
func (t *RedisTracker) Release(ctx context.Context, accountID string, command models.Command) error {
	return t.client.Del(ctx, key(accountID, command)).Err()
}
