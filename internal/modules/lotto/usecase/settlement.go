package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
)

// Settings carries the deployment constants of the lottery: the single
// shared deposit address, the admin fee destination, the per-entry amount
// and the prize rate.
type Settings struct {
	DepositAddress  string
	AdminFeeAddress string
	EntryAmount     decimal.Decimal // BTC per participant
	PrizeRate       decimal.Decimal // e.g. 0.99; admin fee is the remainder
}

// DefaultSettings mirrors the production deployment: 0.1 BTC entries,
// 99% prize / 1% fee.
func DefaultSettings(depositAddress, adminFeeAddress string) Settings {
	return Settings{
		DepositAddress:  depositAddress,
		AdminFeeAddress: adminFeeAddress,
		EntryAmount:     decimal.RequireFromString("0.1"),
		PrizeRate:       decimal.RequireFromString("0.99"),
	}
}

// amountScale is the fixed-point precision of BTC amounts (1 satoshi).
const amountScale = 8

// totalPool is the full round pool: entry amount times capacity.
func (s Settings) totalPool() decimal.Decimal {
	return s.EntryAmount.Mul(decimal.NewFromInt(domain.RoundCapacity))
}

// splitPool computes the settlement amounts. The prize is pool times rate
// rounded half-up to 8 decimal places; the fee is the exact remainder, so
// prize + fee always reconciles to the pool with no rounding leak.
func (s Settings) splitPool() (prize, fee decimal.Decimal) {
	pool := s.totalPool()
	prize = pool.Mul(s.PrizeRate).Round(amountScale)
	fee = pool.Sub(prize)
	return prize, fee
}
