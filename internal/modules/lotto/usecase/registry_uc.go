package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
	"github.com/frankieli/lotto_pool/pkg/logger"
)

// Registry owns the "currently open round" of the deployment. Every round
// it opens is bound to the same fixed deposit address; membership is
// inferred from arrival order and capacity, never from address uniqueness.
type Registry struct {
	ledger         domain.Ledger
	depositAddress string
}

// NewRegistry creates a round registry bound to the fixed deposit address
func NewRegistry(ledger domain.Ledger, depositAddress string) *Registry {
	return &Registry{ledger: ledger, depositAddress: depositAddress}
}

// CurrentRound returns the authoritative open round
func (g *Registry) CurrentRound(ctx context.Context) (*domain.Round, error) {
	return g.ledger.CurrentOpenRound(ctx)
}

// OpenNextRound creates a new open round on the fixed deposit address. It
// refuses when an open round already exists: one open round at a time is an
// enforced invariant here, not an operational convention.
func (g *Registry) OpenNextRound(ctx context.Context) (*domain.Round, error) {
	count, err := g.ledger.CountOpenRounds(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %d open", domain.ErrRoundAlreadyOpen, count)
	}

	round := &domain.Round{
		DepositAddress: g.depositAddress,
		Status:         domain.RoundStatusOpen,
		OpenedAt:       time.Now().UTC(),
	}
	if err := g.ledger.CreateRound(ctx, round); err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint64("round_id", round.ID).
		Str("deposit_address", round.DepositAddress).
		Msg("opened new round")
	return round, nil
}
