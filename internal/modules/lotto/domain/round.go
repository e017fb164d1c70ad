package domain

import (
	"time"
)

// RoundStatus defines the lifecycle state of a lottery round
type RoundStatus string

const (
	RoundStatusOpen   RoundStatus = "open"
	RoundStatusClosed RoundStatus = "closed"
)

// RoundCapacity is the number of participant slots per round. A round is
// closeable once this many participants have arrived; later arrivals are
// excluded from that round's draw.
const RoundCapacity = 10

// Round represents one cycle of RoundCapacity participant slots sharing the
// single fixed deposit address, ending in a winner draw.
type Round struct {
	ID             uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	DepositAddress string      `gorm:"type:varchar(128);not null;index" json:"deposit_address"`
	Status         RoundStatus `gorm:"type:varchar(16);not null;default:'open';index" json:"status"`
	OpenedAt       time.Time   `gorm:"not null" json:"opened_at"`
	ClosedAt       *time.Time  `json:"closed_at"`
	Winner         string      `gorm:"type:varchar(128)" json:"winner"` // payout address, set at closure only
}

// TableName overrides the table name
func (Round) TableName() string {
	return "rounds"
}

// IsOpen reports whether the round can still be acted on by the closer.
func (r *Round) IsOpen() bool {
	return r.Status == RoundStatusOpen
}
