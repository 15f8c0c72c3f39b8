package repository

import (
	"context"
	"errors"

	"wallet_balance/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values of the operations counter
const (
	OutcomeOK        = "ok"
	OutcomeExists    = "exists"
	OutcomeNotFound  = "not_found"
	OutcomeIntegrity = "integrity"
	OutcomeError     = "error"
)

type instrumentedRepository struct {
	next WalletRepository
	ops  *prometheus.CounterVec
}

// Instrument counts every call to next by operation and outcome. ops must
// carry the labels "op" and "outcome".
func Instrument(next WalletRepository, ops *prometheus.CounterVec) WalletRepository {
	return &instrumentedRepository{next: next, ops: ops}
}

func (r *instrumentedRepository) Create(ctx context.Context, rec domain.WalletBalance) error {
	err := r.next.Create(ctx, rec)
	r.observe("create", err)
	return err
}

func (r *instrumentedRepository) Get(ctx context.Context, id int) (domain.WalletBalance, error) {
	rec, err := r.next.Get(ctx, id)
	r.observe("get", err)
	return rec, err
}

func (r *instrumentedRepository) UpdateBalance(ctx context.Context, id, amount int) (domain.WalletBalance, error) {
	rec, err := r.next.UpdateBalance(ctx, id, amount)
	r.observe("update", err)
	return rec, err
}

func (r *instrumentedRepository) Delete(ctx context.Context, id int) error {
	err := r.next.Delete(ctx, id)
	r.observe("delete", err)
	return err
}

func (r *instrumentedRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

func (r *instrumentedRepository) observe(op string, err error) {
	r.ops.WithLabelValues(op, Outcome(err)).Inc()
}

// Outcome classifies a repository error for metrics and logs
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrWalletExists):
		return OutcomeExists
	case errors.Is(err, ErrWalletNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrIntegrity):
		return OutcomeIntegrity
	default:
		return OutcomeError
	}
}
