// Package repository persists wallet balance records.
//
// Every write runs inside its own unit of work that is committed or rolled
// back before the call returns. Absent records are reported as
// ErrWalletNotFound instead of surfacing driver specific errors.
package repository

import (
	"context"
	"errors"

	"wallet_balance/internal/domain"
)

var (
	// ErrWalletExists is returned by Create when the id is already taken
	ErrWalletExists = errors.New("wallet already exists")
	// ErrWalletNotFound is returned when no record carries the id
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrIntegrity is returned when the database rejects an update
	ErrIntegrity = errors.New("integrity violation")
)

// WalletRepository is the data access contract used by the HTTP handlers
type WalletRepository interface {
	// Create inserts a new record
	Create(ctx context.Context, rec domain.WalletBalance) error
	// Get returns the record for id
	Get(ctx context.Context, id int) (domain.WalletBalance, error)
	// UpdateBalance overwrites the balance of an existing record and returns
	// the record as committed
	UpdateBalance(ctx context.Context, id, amount int) (domain.WalletBalance, error)
	// Delete removes the record for id
	Delete(ctx context.Context, id int) error
	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error
}
