package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // redis.Nil detection
	"strconv"       // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// balanceKeyPrefix namespaces wallet records in a shared Redis database
const balanceKeyPrefix = "wallet:balance:"

// BalanceKey returns the cache key holding a wallet record
func BalanceKey(walletID int) string {
	return balanceKeyPrefix + strconv.Itoa(walletID)
}

// VersionKey returns the key counting writes to a wallet record. Wallet ids
// are bounded, so version keys are kept without expiry.
func VersionKey(walletID int) string {
	return BalanceKey(walletID) + ":v"
}

// GetCache reads key and unmarshals it into dest. A missing key reports false.
func GetCache(ctx context.Context, rdb redis.Cmdable, key string, dest any) (bool, error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// Unreadable entries are dropped so the next read repopulates them
		_ = rdb.Del(ctx, key).Err()
		return false, err
	}
	return true, nil
}

// GetVersion returns the counter stored under versionKey, 0 when absent
func GetVersion(ctx context.Context, rdb redis.Cmdable, versionKey string) (int64, error) {
	return versionOf(rdb.Get(ctx, versionKey))
}

func versionOf(cmd *redis.StringCmd) (int64, error) {
	v, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// BumpVersion increments versionKey and drops key in one transaction. Readers
// that sampled the old version can no longer store their value.
func BumpVersion(ctx context.Context, rdb redis.Cmdable, key, versionKey string) error {
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, versionKey)
		p.Del(ctx, key)
		return nil
	})
	return err
}

// SetCacheIfVersion stores value under key only while versionKey still holds
// version. It reports whether the value was stored.
func SetCacheIfVersion(ctx context.Context, rdb redis.UniversalClient, key, versionKey string, version int64, value any, ttl time.Duration) (bool, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return false, err
	}

	stored := false
	err = rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := versionOf(tx.Get(ctx, versionKey))
		if err != nil {
			return err
		}
		if current != version {
			return nil // A write happened since the value was read
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, versionKey)

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil // versionKey changed between WATCH and EXEC
	}
	return stored, err
}
