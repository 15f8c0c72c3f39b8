package db

import (
	"context"
	"errors"
	"fmt"

	"wallet_balance/internal/config"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// duplicate_database
const pgDuplicateDatabase = "42P04"

// EnsureDatabase creates cfg.DBName through the maintenance database. An
// already existing database is logged and treated as success.
func EnsureDatabase(ctx context.Context, cfg *config.Config) error {
	if cfg.DBDriver == config.DriverMemory {
		return nil
	}

	admin, err := openURL(ctx, cfg, cfg.MaintenanceURL())
	if err != nil {
		return err
	}
	defer func() {
		if err := Close(admin); err != nil {
			logrus.WithError(err).Warn("Failed to close maintenance connection")
		}
	}()

	return createDatabase(ctx, admin, cfg.DBDriver, cfg.DBName)
}

func createDatabase(ctx context.Context, admin *gorm.DB, driver, name string) error {
	stmt := "CREATE DATABASE ?"
	if driver == config.DriverMySQL {
		stmt = "CREATE DATABASE IF NOT EXISTS ?"
	}

	err := admin.WithContext(ctx).Exec(stmt, clause.Table{Name: name}).Error
	if isDuplicateDatabase(err) {
		logrus.WithField("database", name).Info("Attempt to create existing database, nothing to do")
		return nil
	}
	if err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}

	logrus.WithField("database", name).Info("Database ready")
	return nil
}

func isDuplicateDatabase(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgDuplicateDatabase
}
