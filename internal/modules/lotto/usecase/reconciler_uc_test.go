package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/repository/memory"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/usecase"
)

func newReconciler(ledger domain.Ledger) *usecase.Reconciler {
	settings := usecase.DefaultSettings(depositAddress, adminFeeAddress)
	registry := usecase.NewRegistry(ledger, depositAddress)
	return usecase.NewReconciler(ledger, registry, settings, 100)
}

func TestReconcilerReplaysSettlement(t *testing.T) {
	ledger := memory.NewLedgerRepository()

	// A round that closed with a recorded winner but never recorded its
	// settlement: the exact state a post-commit failure leaves behind.
	round := seedRound(t, ledger, 10)
	require.NoError(t, ledger.CloseRound(context.Background(), round.ID, "bc1qplayer03", time.Now().UTC()))

	report, err := newReconciler(ledger).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, []uint64{round.ID}, report.Repaired)
	assert.Empty(t, report.Failed)

	// Settlement uses the recorded winner; the draw is never recomputed.
	txs := ledger.Transactions()
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, round.ID, tx.RoundID)
		assert.Equal(t, domain.TransactionStatusPending, tx.Status)
		if tx.Type == domain.TransactionTypePayout {
			assert.Equal(t, "bc1qplayer03", tx.Address)
			assert.Equal(t, "0.99000000", tx.Amount.StringFixed(8))
		}
	}

	// The missing successor round was opened too.
	assert.NotZero(t, report.OpenedRoundID)
	next, err := ledger.GetRound(context.Background(), report.OpenedRoundID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoundStatusOpen, next.Status)
	assert.Equal(t, depositAddress, next.DepositAddress)
}

func TestReconcilerSkipsSettledRounds(t *testing.T) {
	ledger := memory.NewLedgerRepository()
	round := seedRound(t, ledger, 10)

	settings := usecase.DefaultSettings(depositAddress, adminFeeAddress)
	registry := usecase.NewRegistry(ledger, depositAddress)
	closer := usecase.NewCloser(ledger, &fakeBeacon{hashes: []string{"1a"}}, registry, nil, settings)
	_, err := closer.CloseRound(context.Background(), round.ID)
	require.NoError(t, err)

	report, err := newReconciler(ledger).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Checked)
	assert.Empty(t, report.Repaired)
	assert.Zero(t, report.OpenedRoundID) // closer already opened the successor

	// Still exactly one settlement pair.
	assert.Len(t, ledger.Transactions(), 2)
}

func TestReconcilerFlagsRoundWithoutWinner(t *testing.T) {
	ledger := memory.NewLedgerRepository()
	round := seedRound(t, ledger, 10)
	require.NoError(t, ledger.CloseRound(context.Background(), round.ID, "", time.Now().UTC()))

	report, err := newReconciler(ledger).Run(context.Background())
	assert.True(t, errors.Is(err, domain.ErrSettlementFailed), "got %v", err)
	require.NotNil(t, report)
	assert.Equal(t, []uint64{round.ID}, report.Failed)
	assert.Empty(t, ledger.Transactions())
}
