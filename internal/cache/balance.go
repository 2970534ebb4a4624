// Package cache keeps computed balances in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const keyPrefix = "minhasfinancas:saldo:"

// Connect returns a client for addr, or nil when addr is empty or Redis does
// not answer a ping. A nil client disables caching.
func Connect(ctx context.Context, addr, password string, db int) *redis.Client {
	if addr == "" {
		slog.Warn("REDIS_ADDR not set, balance cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("connecting to redis, balance cache disabled", "addr", addr, "error", err)
		_ = rdb.Close()

		return nil
	}

	slog.Info("connected to redis", "addr", addr)

	return rdb
}

type BalanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBalanceCache returns a cache backed by rdb. Every method is a no-op when rdb is nil.
func NewBalanceCache(rdb *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{rdb: rdb, ttl: ttl}
}

// Balances are stored under the user's current generation. Invalidate bumps
// the generation instead of deleting, so a balance computed before a write
// lands under a key nobody reads anymore.
func genKey(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10) + ":geracao"
}

func balanceKey(userID, gen int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(gen, 10)
}

// Get returns the cached balance of userID and its generation. On a miss the
// generation is still returned so the caller can Set under it.
func (c *BalanceCache) Get(ctx context.Context, userID int64) (decimal.Decimal, int64, bool, error) {
	if c.rdb == nil {
		return decimal.Zero, 0, false, nil
	}

	gen, err := c.rdb.Get(ctx, genKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return decimal.Zero, 0, false, fmt.Errorf("reading balance generation: %w", err)
	}

	val, err := c.rdb.Get(ctx, balanceKey(userID, gen)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, gen, false, nil
		}

		return decimal.Zero, 0, false, fmt.Errorf("reading balance: %w", err)
	}

	balance, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, 0, false, fmt.Errorf("parsing cached balance %q: %w", val, err)
	}

	return balance, gen, true, nil
}

func (c *BalanceCache) Set(ctx context.Context, userID, gen int64, balance decimal.Decimal) error {
	if c.rdb == nil {
		return nil
	}

	if err := c.rdb.Set(ctx, balanceKey(userID, gen), balance.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("storing balance: %w", err)
	}

	return nil
}

func (c *BalanceCache) Invalidate(ctx context.Context, userID int64) error {
	if c.rdb == nil {
		return nil
	}

	if err := c.rdb.Incr(ctx, genKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidating balance: %w", err)
	}

	return nil
}
