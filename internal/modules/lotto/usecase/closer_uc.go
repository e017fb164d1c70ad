// Package usecase implements the round lifecycle: closing a full round with
// a beacon-driven draw, settlement recording, and opening the successor.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/beacon"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/draw"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/lock"
	"github.com/frankieli/lotto_pool/pkg/logger"
)

// CloseResult reports the outcome of a completed closure
type CloseResult struct {
	RoundID          uint64          `json:"round_id"`
	ParticipantCount int             `json:"participant_count"`
	BeaconHash       string          `json:"beacon_hash"`
	WinnerIndex      int             `json:"winner_index"` // zero-based draw index
	WinnerAddress    string          `json:"winner_address"`
	PrizeAmount      decimal.Decimal `json:"prize_amount"`
	FeeAmount        decimal.Decimal `json:"fee_amount"`
	ClosedAt         time.Time       `json:"closed_at"`
	NextRoundID      uint64          `json:"next_round_id"` // zero if successor creation failed
}

// Closer runs the round closure state machine
type Closer struct {
	ledger   domain.Ledger
	beacon   beacon.Source
	registry *Registry
	locker   lock.CloseLocker // optional; nil skips advisory locking
	settings Settings
}

// NewCloser creates a round closer. locker may be nil.
func NewCloser(ledger domain.Ledger, source beacon.Source, registry *Registry, locker lock.CloseLocker, settings Settings) *Closer {
	return &Closer{
		ledger:   ledger,
		beacon:   source,
		registry: registry,
		locker:   locker,
		settings: settings,
	}
}

// CloseRound closes the round: validates it is closeable, assigns draw
// indices in arrival order, fetches a fresh beacon value, commits the draw
// with an atomic conditional status flip, records settlement and opens the
// successor round.
//
// Any failure before the status flip leaves the round open; only the index
// assignment may have persisted, and re-running reassigns identically.
// Failures after the flip never reopen the round: they are returned wrapped
// in ErrSettlementFailed alongside the result, and the reconciler replays
// the missing steps later.
func (c *Closer) CloseRound(ctx context.Context, roundID uint64) (*CloseResult, error) {
	ctx = logger.WithFields(ctx, map[string]interface{}{"round_id": roundID})

	if c.locker != nil {
		release, err := c.locker.Acquire(ctx, roundID)
		if err != nil {
			logger.Warn(ctx).Err(err).Msg("closure already in progress")
			return nil, err
		}
		defer release()
	}

	if _, err := c.ledger.GetOpenRound(ctx, roundID); err != nil {
		logger.Warn(ctx).Err(err).Msg("round not closeable")
		return nil, err
	}

	participants, err := c.ledger.ListParticipants(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if len(participants) < domain.RoundCapacity {
		logger.Info(ctx).
			Int("participant_count", len(participants)).
			Int("capacity", domain.RoundCapacity).
			Msg("round not full, leaving open")
		return nil, fmt.Errorf("%w: %d of %d", domain.ErrInsufficientParticipants, len(participants), domain.RoundCapacity)
	}

	// Only the first RoundCapacity arrivals take part in the draw.
	drawSet := participants[:domain.RoundCapacity]
	if err := c.ledger.AssignRoundIndices(ctx, roundID, drawSet); err != nil {
		return nil, err
	}

	beaconHash, err := c.beacon.TipHash(ctx)
	if err != nil {
		// Indices stay assigned; a retry refetches a fresh beacon and
		// reassigns the same indices.
		logger.Warn(ctx).Err(err).Msg("beacon fetch failed, round stays open")
		return nil, err
	}

	winnerIdx, err := draw.WinnerIndex(beaconHash, len(drawSet))
	if err != nil {
		return nil, err
	}
	winner := drawSet[winnerIdx].BTCAddress

	// Commit point. After this succeeds the draw is final for this round
	// and must never be recomputed.
	closedAt := time.Now().UTC()
	if err := c.ledger.CloseRound(ctx, roundID, winner, closedAt); err != nil {
		logger.Warn(ctx).Err(err).Msg("lost closure race, aborting without side effects")
		return nil, err
	}

	prize, fee := c.settings.splitPool()
	result := &CloseResult{
		RoundID:          roundID,
		ParticipantCount: len(drawSet),
		BeaconHash:       beaconHash,
		WinnerIndex:      winnerIdx,
		WinnerAddress:    winner,
		PrizeAmount:      prize,
		FeeAmount:        fee,
		ClosedAt:         closedAt,
	}

	logger.Info(ctx).
		Int("participant_count", len(drawSet)).
		Str("beacon_hash", beaconHash).
		Int("winner_index", winnerIdx).
		Str("winner_address", winner).
		Msg("round closed")

	// Best-effort continuations; failures here are surfaced but never
	// reverse the closure.
	var postErrs []error

	if err := c.recordSettlement(ctx, roundID, winner, closedAt, prize, fee); err != nil {
		logger.Error(ctx).Err(err).Msg("settlement recording failed, reconciliation required")
		postErrs = append(postErrs, fmt.Errorf("record settlement: %w", err))
	} else {
		logger.Info(ctx).
			Str("prize_amount", prize.StringFixed(amountScale)).
			Str("fee_amount", fee.StringFixed(amountScale)).
			Msg("settlement recorded")
	}

	next, err := c.registry.OpenNextRound(ctx)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("failed to open successor round")
		postErrs = append(postErrs, fmt.Errorf("open next round: %w", err))
	} else {
		result.NextRoundID = next.ID
	}

	if len(postErrs) > 0 {
		return result, fmt.Errorf("%w: %w", domain.ErrSettlementFailed, errors.Join(postErrs...))
	}
	return result, nil
}

// recordSettlement inserts the pending payout and fee transactions
func (c *Closer) recordSettlement(ctx context.Context, roundID uint64, winner string, closedAt time.Time, prize, fee decimal.Decimal) error {
	txs := []*domain.Transaction{
		{
			RoundID:   roundID,
			Type:      domain.TransactionTypePayout,
			Status:    domain.TransactionStatusPending,
			Amount:    prize,
			Address:   winner,
			Timestamp: closedAt,
		},
		{
			RoundID:   roundID,
			Type:      domain.TransactionTypeFee,
			Status:    domain.TransactionStatusPending,
			Amount:    fee,
			Address:   c.settings.AdminFeeAddress,
			Timestamp: closedAt,
		},
	}
	return c.ledger.CreateTransactions(ctx, txs)
}
