package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wallet_balance/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository returns a repository backed by a SQL database. The
// handle must be opened with TranslateError so duplicates surface as
// gorm.ErrDuplicatedKey.
func NewGormRepository(db *gorm.DB) WalletRepository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, rec domain.WalletBalance) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrWalletExists
	default:
		return fmt.Errorf("create wallet %d: %w", rec.ID, err)
	}
}

func (r *gormRepository) Get(ctx context.Context, id int) (domain.WalletBalance, error) {
	var rec domain.WalletBalance
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.First(&rec, id).Error
	})
	if err != nil {
		return domain.WalletBalance{}, notFoundOr(err, "get wallet %d", id)
	}
	return rec, nil
}

func (r *gormRepository) UpdateBalance(ctx context.Context, id, amount int) (domain.WalletBalance, error) {
	var rec domain.WalletBalance
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&rec).Update("wallet_balance", amount).Error; err != nil {
			return err
		}
		// Reload the row as this transaction wrote it
		return tx.First(&rec, id).Error
	})
	if err != nil {
		if isIntegrityViolation(err) {
			return domain.WalletBalance{}, fmt.Errorf("%w: %v", ErrIntegrity, err)
		}
		return domain.WalletBalance{}, notFoundOr(err, "update wallet %d", id)
	}
	return rec, nil
}

func (r *gormRepository) Delete(ctx context.Context, id int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec domain.WalletBalance
		if err := tx.First(&rec, id).Error; err != nil {
			return err
		}
		return tx.Delete(&rec).Error
	})
	if err != nil {
		return notFoundOr(err, "delete wallet %d", id)
	}
	return nil
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFoundOr(err error, format string, id int) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrWalletNotFound
	}
	return fmt.Errorf(format+": %w", id, err)
}

// isIntegrityViolation matches translated GORM errors and, for drivers GORM
// does not translate, PostgreSQL class 23 codes.
func isIntegrityViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23")
}
