package db

import (
	"wallet_balance/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Revisions is the schema history of the wallet_balance table, oldest first.
// Revision ids follow the twelve hex digit format of the existing deployments.
var Revisions = []Revision{
	{
		ID:        "1c2e3c821ef8",
		Message:   "create wallet_balance",
		Upgrade:   createWalletBalance,
		Downgrade: dropWalletBalance,
	},
	{
		ID:           "19314184658e",
		DownRevision: "1c2e3c821ef8",
		Message:      "add additional_info",
		Upgrade:      addAdditionalInfo,
		Downgrade:    dropAdditionalInfo,
	},
}

// walletBalanceV1 is the table as created by 1c2e3c821ef8
type walletBalanceV1 struct {
	ID            int `gorm:"primaryKey;autoIncrement:false"`
	WalletBalance int `gorm:"not null"`
}

func (walletBalanceV1) TableName() string { return domain.WalletTableName }

func createWalletBalance(tx *gorm.DB) error {
	return tx.Migrator().CreateTable(&walletBalanceV1{})
}

func dropWalletBalance(tx *gorm.DB) error {
	return tx.Migrator().DropTable(domain.WalletTableName)
}

// The column is NOT NULL without a default. Existing rows are backfilled
// through a temporary '' default that is dropped right after.
func addAdditionalInfo(tx *gorm.DB) error {
	table := clause.Table{Name: domain.WalletTableName}
	column := clause.Column{Name: "additional_info"}

	if err := tx.Exec("ALTER TABLE ? ADD COLUMN ? VARCHAR(255) NOT NULL DEFAULT ''", table, column).Error; err != nil {
		return err
	}
	return tx.Exec("ALTER TABLE ? ALTER COLUMN ? DROP DEFAULT", table, column).Error
}

func dropAdditionalInfo(tx *gorm.DB) error {
	return tx.Migrator().DropColumn(domain.WalletTableName, "additional_info")
}
