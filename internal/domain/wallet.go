package domain

// Wallet identifier and balance bounds. The API enforces them through the
// binding tags in internal/api/params.go, which must mirror these values;
// TestBindingTagsMatchDomainBounds keeps the two in sync.
const (
	MinWalletID     = 1     // Lowest wallet id (inclusive)
	MaxWalletID     = 1000  // Highest wallet id (inclusive)
	MaxBalance      = 50000 // Highest balance accepted on write (inclusive)
	MaxInfoLength   = 255   // Longest additional_info accepted on write
	WalletTableName = "wallet_balance"
)

// WalletBalance Model
type WalletBalance struct {
	ID             int    `gorm:"primaryKey;autoIncrement:false" json:"id"`                // Externally supplied wallet id
	Balance        int    `gorm:"column:wallet_balance;not null" json:"wallet_balance"`   // Last written balance
	AdditionalInfo string `gorm:"column:additional_info;not null" json:"additional_info"` // Free-form metadata
}

// TableName pins the table name regardless of GORM's naming strategy
func (WalletBalance) TableName() string {
	return WalletTableName
}
