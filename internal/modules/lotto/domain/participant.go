package domain

import (
	"time"
)

// Participant is one paid-in entry of a round. CreatedAt is the arrival
// order: it decides both slot capacity (first RoundCapacity entries) and the
// position each entry occupies in the draw.
type Participant struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoundID    uint64    `gorm:"index;not null" json:"round_id"`
	BTCAddress string    `gorm:"column:btc_address;type:varchar(128);not null" json:"btc_address"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
	RoundIndex *int      `gorm:"column:round_index" json:"round_index"` // 1..RoundCapacity, assigned at closure
}

// TableName overrides the table name
func (Participant) TableName() string {
	return "participants"
}
