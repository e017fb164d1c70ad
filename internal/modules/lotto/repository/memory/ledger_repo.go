// Package memory implements the Ledger in process memory. It backs unit
// tests and mirrors the transactional semantics of the db implementation,
// including the conditional close that guards against concurrent closers.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
)

// LedgerRepository is an in-memory Ledger
type LedgerRepository struct {
	mu           sync.Mutex
	rounds       map[uint64]*domain.Round
	participants map[uint64]*domain.Participant
	transactions map[uint64]*domain.Transaction
	nextRoundID  uint64
	nextPartID   uint64
	nextTxID     uint64
}

// NewLedgerRepository creates an empty in-memory ledger
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		rounds:       make(map[uint64]*domain.Round),
		participants: make(map[uint64]*domain.Participant),
		transactions: make(map[uint64]*domain.Transaction),
		nextRoundID:  1,
		nextPartID:   1,
		nextTxID:     1,
	}
}

// AddParticipant registers an entry for a round (test seeding helper; entry
// recording itself is out of closure scope).
func (r *LedgerRepository) AddParticipant(roundID uint64, btcAddress string, createdAt time.Time) *domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := &domain.Participant{
		ID:         r.nextPartID,
		RoundID:    roundID,
		BTCAddress: btcAddress,
		CreatedAt:  createdAt,
	}
	r.nextPartID++
	r.participants[p.ID] = p
	return p
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
	r.mu.Lock()
	defer r.mu.Unlock()

	round, ok := r.rounds[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrRoundNotFound, id)
	}
	copied := *round
	return &copied, nil
}

// CurrentOpenRound returns the oldest open round
func (r *LedgerRepository) CurrentOpenRound(ctx context.Context) (*domain.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current *domain.Round
	for _, round := range r.rounds {
		if round.Status != domain.RoundStatusOpen {
			continue
		}
		if current == nil || round.OpenedAt.Before(current.OpenedAt) ||
			(round.OpenedAt.Equal(current.OpenedAt) && round.ID < current.ID) {
			current = round
		}
	}
	if current == nil {
		return nil, fmt.Errorf("%w: no open round", domain.ErrRoundNotFound)
	}
	copied := *current
	return &copied, nil
}

// CountOpenRounds reports how many rounds are currently open
func (r *LedgerRepository) CountOpenRounds(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, round := range r.rounds {
		if round.Status == domain.RoundStatusOpen {
			count++
		}
	}
	return count, nil
}

// ListParticipants returns the round's participants in arrival order
func (r *LedgerRepository) ListParticipants(ctx context.Context, roundID uint64) ([]*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Participant
	for _, p := range r.participants {
		if p.RoundID == roundID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// AssignRoundIndices writes round_index 1..n in the given order
func (r *LedgerRepository) AssignRoundIndices(ctx context.Context, roundID uint64, participants []*domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range participants {
		stored, ok := r.participants[p.ID]
		if !ok || stored.RoundID != roundID {
			return fmt.Errorf("participant %d not found in round %d", p.ID, roundID)
		}
		idx := i + 1
		stored.RoundIndex = &idx
		p.RoundIndex = &idx
	}
	return nil
}

// CloseRound flips status open -> closed under the repository lock,
// matching the conditional UPDATE of the db implementation
func (r *LedgerRepository) CloseRound(ctx context.Context, id uint64, winner string, closedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	round, ok := r.rounds[id]
	if !ok {
		return fmt.Errorf("%w: id %d", domain.ErrRoundNotFound, id)
	}
	if round.Status != domain.RoundStatusOpen {
		return fmt.Errorf("%w: round %d not open at commit", domain.ErrRoundNotOpen, id)
	}

	round.Status = domain.RoundStatusClosed
	round.ClosedAt = &closedAt
	round.Winner = winner
	return nil
}

// CreateTransactions inserts settlement records as one unit
func (r *LedgerRepository) CreateTransactions(ctx context.Context, txs []*domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tx := range txs {
		tx.ID = r.nextTxID
		r.nextTxID++
		copied := *tx
		r.transactions[tx.ID] = &copied
	}
	return nil
}

// CreateRound inserts a new round
func (r *LedgerRepository) CreateRound(ctx context.Context, round *domain.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	round.ID = r.nextRoundID
	r.nextRoundID++
	copied := *round
	r.rounds[round.ID] = &copied
	return nil
}

// ListUnsettledRounds returns closed rounds with no settlement transactions
func (r *LedgerRepository) ListUnsettledRounds(ctx context.Context, limit int) ([]*domain.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settled := make(map[uint64]bool)
	for _, tx := range r.transactions {
		settled[tx.RoundID] = true
	}

	var out []*domain.Round
	for _, round := range r.rounds {
		if round.Status == domain.RoundStatusClosed && !settled[round.ID] {
			copied := *round
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Transactions returns all settlement records (test inspection helper)
func (r *LedgerRepository) Transactions() []*domain.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Transaction
	for _, tx := range r.transactions {
		copied := *tx
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
