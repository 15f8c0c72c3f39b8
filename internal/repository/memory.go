package repository

import (
	"context"
	"sync"

	"wallet_balance/internal/domain"
)

type memoryRepository struct {
	mu      sync.RWMutex
	wallets map[int]domain.WalletBalance
}

// NewMemoryRepository returns a process local repository for DB_DRIVER=memory
// and tests. The map lock plays the role of the primary key constraint.
func NewMemoryRepository() WalletRepository {
	return &memoryRepository{wallets: make(map[int]domain.WalletBalance)}
}

func (r *memoryRepository) Create(_ context.Context, rec domain.WalletBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[rec.ID]; ok {
		return ErrWalletExists
	}
	r.wallets[rec.ID] = rec
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id int) (domain.WalletBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.wallets[id]
	if !ok {
		return domain.WalletBalance{}, ErrWalletNotFound
	}
	return rec, nil
}

func (r *memoryRepository) UpdateBalance(_ context.Context, id, amount int) (domain.WalletBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.wallets[id]
	if !ok {
		return domain.WalletBalance{}, ErrWalletNotFound
	}
	rec.Balance = amount
	r.wallets[id] = rec
	return rec, nil
}

func (r *memoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[id]; !ok {
		return ErrWalletNotFound
	}
	delete(r.wallets, id)
	return nil
}

func (r *memoryRepository) Ping(context.Context) error { return nil }
