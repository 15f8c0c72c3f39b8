package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"wallet_balance/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), GormConfig())
	require.NoError(t, err)
	return gdb, mock
}

func TestCreateDatabaseSwallowsDuplicate(t *testing.T) {
	gdb, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE DATABASE "wallets"`)).
		WillReturnError(&pgconn.PgError{Code: pgDuplicateDatabase, Message: `database "wallets" already exists`})

	err := createDatabase(context.Background(), gdb, config.DriverPostgres, "wallets")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDatabaseCreates(t *testing.T) {
	gdb, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE DATABASE "wallets"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, createDatabase(context.Background(), gdb, config.DriverPostgres, "wallets"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDatabasePropagatesOtherErrors(t *testing.T) {
	gdb, mock := newMockPostgres(t)
	boom := errors.New("permission denied")
	mock.ExpectExec(regexp.QuoteMeta(`CREATE DATABASE "wallets"`)).WillReturnError(boom)

	err := createDatabase(context.Background(), gdb, config.DriverPostgres, "wallets")
	assert.ErrorIs(t, err, boom)
}

func TestCreateDatabaseMySQLIsIdempotentSQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), GormConfig())
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE DATABASE IF NOT EXISTS `wallets`")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, createDatabase(context.Background(), gdb, config.DriverMySQL, "wallets"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDatabaseSkipsMemoryDriver(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverMemory}
	assert.NoError(t, EnsureDatabase(context.Background(), cfg))
}
