package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
	"gorm.io/gorm"
)

// LedgerRepository is the Postgres-backed Ledger
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// AutoMigrate creates or updates the lotto tables
func (r *LedgerRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Round{}, &domain.Participant{}, &domain.Transaction{})
}

// GetOpenRound loads the round by id if it is still open
func (r *LedgerRepository) GetOpenRound(ctx context.Context, id uint64) (*domain.Round, error) {
	round, err := r.GetRound(ctx, id)
	if err != nil {
		return nil, err
	}
	if !round.IsOpen() {
		return nil, fmt.Errorf("%w: round %d is %s", domain.ErrRoundNotOpen, id, round.Status)
	}
	return round, nil
}

// GetRound loads the round by id regardless of status
func (r *LedgerRepository) GetRound(ctx context.Context, id uint64) (*domain.Round, error) {
	var round domain.Round
	if err := r.db.WithContext(ctx).First(&round, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrRoundNotFound, id)
		}
		return nil, fmt.Errorf("failed to load round %d: %w", id, err)
	}
	return &round, nil
}

// CurrentOpenRound returns the oldest open round
func (r *LedgerRepository) CurrentOpenRound(ctx context.Context) (*domain.Round, error) {
	var round domain.Round
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.RoundStatusOpen).
		Order("opened_at ASC, id ASC").
		First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no open round", domain.ErrRoundNotFound)
		}
		return nil, fmt.Errorf("failed to load current open round: %w", err)
	}
	return &round, nil
}

// CountOpenRounds reports how many rounds are currently open
func (r *LedgerRepository) CountOpenRounds(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Round{}).
		Where("status = ?", domain.RoundStatusOpen).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count open rounds: %w", err)
	}
	return count, nil
}

// ListParticipants returns the round's participants in arrival order
func (r *LedgerRepository) ListParticipants(ctx context.Context, roundID uint64) ([]*domain.Participant, error) {
	var participants []*domain.Participant
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("created_at ASC, id ASC").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of round %d: %w", roundID, err)
	}
	return participants, nil
}

// AssignRoundIndices writes round_index 1..n in the given order, in one
// transaction. Indices derive from arrival order only, so re-running the
// same assignment is a no-op.
func (r *LedgerRepository) AssignRoundIndices(ctx context.Context, roundID uint64, participants []*domain.Participant) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, p := range participants {
			idx := i + 1
			res := tx.Model(&domain.Participant{}).
				Where("id = ? AND round_id = ?", p.ID, roundID).
				Update("round_index", idx)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("participant %d not found in round %d", p.ID, roundID)
			}
			p.RoundIndex = &idx
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to assign round indices for round %d: %w", roundID, err)
	}
	return nil
}

// CloseRound flips status open -> closed atomically. The conditional WHERE
// is the at-most-once guard: a concurrent closer that lost the race matches
// zero rows and gets ErrRoundNotOpen.
func (r *LedgerRepository) CloseRound(ctx context.Context, id uint64, winner string, closedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Round{}).
		Where("id = ? AND status = ?", id, domain.RoundStatusOpen).
		Updates(map[string]interface{}{
			"status":    domain.RoundStatusClosed,
			"closed_at": closedAt,
			"winner":    winner,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to close round %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: round %d not open at commit", domain.ErrRoundNotOpen, id)
	}
	return nil
}

// CreateTransactions inserts settlement records as one unit
func (r *LedgerRepository) CreateTransactions(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&txs).Error; err != nil {
		return fmt.Errorf("failed to create transactions: %w", err)
	}
	return nil
}

// CreateRound inserts a new round
func (r *LedgerRepository) CreateRound(ctx context.Context, round *domain.Round) error {
	if err := r.db.WithContext(ctx).Create(round).Error; err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

// ListUnsettledRounds returns closed rounds with no settlement transactions
func (r *LedgerRepository) ListUnsettledRounds(ctx context.Context, limit int) ([]*domain.Round, error) {
	var rounds []*domain.Round
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.RoundStatusClosed).
		Where("NOT EXISTS (SELECT 1 FROM transactions t WHERE t.round_id = rounds.id)").
		Order("closed_at ASC, id ASC").
		Limit(limit).
		Find(&rounds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled rounds: %w", err)
	}
	return rounds, nil
}
