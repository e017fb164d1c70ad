package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes settlement obligations
type TransactionType string

const (
	TransactionTypePayout TransactionType = "payout"
	TransactionTypeFee    TransactionType = "fee"
)

// TransactionStatus tracks the signing flow. Only pending is written here;
// the signer advances the status when it fills Txid and broadcasts.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSigned    TransactionStatus = "signed"
	TransactionStatusBroadcast TransactionStatus = "broadcast"
)

// Transaction is a settlement record: an obligation to pay prize or fee.
// Actual fund movement happens elsewhere. RoundID ties the record to the
// closure event that produced it so reconciliation can find rounds that
// closed without settlement records.
type Transaction struct {
	ID        uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	RoundID   uint64            `gorm:"index;not null" json:"round_id"`
	Txid      *string           `gorm:"type:varchar(128)" json:"txid"` // filled by the signer on withdrawal
	Type      TransactionType   `gorm:"type:varchar(16);not null" json:"type"`
	Status    TransactionStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Amount    decimal.Decimal   `gorm:"type:decimal(18,8);not null" json:"amount"`
	Address   string            `gorm:"type:varchar(128);not null" json:"address"`
	Timestamp time.Time         `gorm:"not null" json:"timestamp"`
}

// TableName overrides the table name
func (Transaction) TableName() string {
	return "transactions"
}
