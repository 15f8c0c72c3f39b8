package repository

import (
	"context"
	"time"

	"wallet_balance/internal/domain"
	"wallet_balance/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type cachedRepository struct {
	next WalletRepository
	rdb  redis.UniversalClient
	ttl  time.Duration
}

// NewCachedRepository puts a Redis read-through cache in front of next.
// Redis failures are logged and the call falls through to next.
//
// Every write bumps a per-wallet version before returning. A read only
// caches what it loaded if the version it sampled beforehand is unchanged,
// so a read racing a write never leaves the older balance behind.
func NewCachedRepository(next WalletRepository, rdb redis.UniversalClient, ttl time.Duration) WalletRepository {
	return &cachedRepository{next: next, rdb: rdb, ttl: ttl}
}

func (r *cachedRepository) Create(ctx context.Context, rec domain.WalletBalance) error {
	if err := r.next.Create(ctx, rec); err != nil {
		return err
	}
	r.invalidate(ctx, rec.ID)
	return nil
}

func (r *cachedRepository) Get(ctx context.Context, id int) (domain.WalletBalance, error) {
	key := utils.BalanceKey(id)

	var rec domain.WalletBalance
	found, err := utils.GetCache(ctx, r.rdb, key, &rec)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache read failed")
	}
	if found {
		return rec, nil
	}

	versionKey := utils.VersionKey(id)
	version, verr := utils.GetVersion(ctx, r.rdb, versionKey)
	if verr != nil {
		logrus.WithError(verr).WithField("key", versionKey).Warn("Cache version read failed")
	}

	rec, err = r.next.Get(ctx, id)
	if err != nil || verr != nil {
		// Without a version sample the value cannot be cached safely
		return rec, err
	}
	if _, err := utils.SetCacheIfVersion(ctx, r.rdb, key, versionKey, version, rec, r.ttl); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return rec, nil
}

func (r *cachedRepository) UpdateBalance(ctx context.Context, id, amount int) (domain.WalletBalance, error) {
	rec, err := r.next.UpdateBalance(ctx, id, amount)
	// Invalidated whatever the outcome, a failed call may still race a reader
	r.invalidate(ctx, id)
	return rec, err
}

func (r *cachedRepository) Delete(ctx context.Context, id int) error {
	err := r.next.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

func (r *cachedRepository) Ping(ctx context.Context) error {
	if err := r.next.Ping(ctx); err != nil {
		return err
	}
	return r.rdb.Ping(ctx).Err()
}

func (r *cachedRepository) invalidate(ctx context.Context, id int) {
	if err := utils.BumpVersion(ctx, r.rdb, utils.BalanceKey(id), utils.VersionKey(id)); err != nil {
		logrus.WithError(err).WithField("wallet_id", id).Warn("Cache invalidation failed")
	}
}
