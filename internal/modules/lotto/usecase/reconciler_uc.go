package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
	"github.com/frankieli/lotto_pool/pkg/logger"
)

// ReconcileReport summarizes a reconciliation run
type ReconcileReport struct {
	Checked       int      `json:"checked"`
	Repaired      []uint64 `json:"repaired"`
	Failed        []uint64 `json:"failed"`
	OpenedRoundID uint64   `json:"opened_round_id"` // zero unless a missing open round was created
}

// Reconciler repairs rounds whose closure committed but whose settlement
// recording failed afterwards. It replays only the settlement step, using
// the winner already recorded on the round; the draw is final and is never
// recomputed.
type Reconciler struct {
	ledger   domain.Ledger
	registry *Registry
	settings Settings
	batch    int
}

// NewReconciler creates a reconciler processing up to batch rounds per run
func NewReconciler(ledger domain.Ledger, registry *Registry, settings Settings, batch int) *Reconciler {
	if batch <= 0 {
		batch = 100
	}
	return &Reconciler{ledger: ledger, registry: registry, settings: settings, batch: batch}
}

// Run finds closed rounds lacking settlement records and inserts the missing
// payout and fee transactions for each.
func (r *Reconciler) Run(ctx context.Context) (*ReconcileReport, error) {
	rounds, err := r.ledger.ListUnsettledRounds(ctx, r.batch)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Checked: len(rounds)}
	prize, fee := r.settings.splitPool()

	for _, round := range rounds {
		rctx := logger.WithFields(ctx, map[string]interface{}{"round_id": round.ID})

		if round.Winner == "" {
			// Closed without a winner should be impossible; flag it
			// rather than inventing a payout destination.
			logger.Error(rctx).Msg("closed round has no recorded winner, skipping")
			report.Failed = append(report.Failed, round.ID)
			continue
		}

		now := time.Now().UTC()
		txs := []*domain.Transaction{
			{
				RoundID:   round.ID,
				Type:      domain.TransactionTypePayout,
				Status:    domain.TransactionStatusPending,
				Amount:    prize,
				Address:   round.Winner,
				Timestamp: now,
			},
			{
				RoundID:   round.ID,
				Type:      domain.TransactionTypeFee,
				Status:    domain.TransactionStatusPending,
				Amount:    fee,
				Address:   r.settings.AdminFeeAddress,
				Timestamp: now,
			},
		}
		if err := r.ledger.CreateTransactions(rctx, txs); err != nil {
			logger.Error(rctx).Err(err).Msg("settlement replay failed")
			report.Failed = append(report.Failed, round.ID)
			continue
		}

		logger.Info(rctx).
			Str("winner_address", round.Winner).
			Str("prize_amount", prize.StringFixed(amountScale)).
			Str("fee_amount", fee.StringFixed(amountScale)).
			Msg("settlement replayed for closed round")
		report.Repaired = append(report.Repaired, round.ID)
	}

	// Successor creation is also a post-closure continuation that can have
	// failed: if the deployment has no open round, open one.
	count, err := r.ledger.CountOpenRounds(ctx)
	if err != nil {
		return report, err
	}
	if count == 0 {
		next, err := r.registry.OpenNextRound(ctx)
		if err != nil {
			return report, err
		}
		report.OpenedRoundID = next.ID
	}

	if len(report.Failed) > 0 {
		return report, fmt.Errorf("%w: %d of %d rounds not repaired", domain.ErrSettlementFailed, len(report.Failed), report.Checked)
	}
	return report, nil
}
