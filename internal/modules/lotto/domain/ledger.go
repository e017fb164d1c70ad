package domain

import (
	"context"
	"time"
)

// Ledger defines the persistence boundary for rounds, participants and
// settlement transactions. Implementations must make CloseRound an atomic
// conditional write: it only succeeds while the round is still open, so two
// concurrent closers cannot both finalize a draw.
type Ledger interface {
	// GetOpenRound loads the round by id if its status is open.
	// Returns ErrRoundNotFound if no such round exists, ErrRoundNotOpen if
	// it exists but is already closed.
	GetOpenRound(ctx context.Context, id uint64) (*Round, error)

	// GetRound loads the round by id regardless of status.
	GetRound(ctx context.Context, id uint64) (*Round, error)

	// CurrentOpenRound returns the oldest open round, or ErrRoundNotFound.
	CurrentOpenRound(ctx context.Context) (*Round, error)

	// CountOpenRounds reports how many rounds are currently open.
	CountOpenRounds(ctx context.Context) (int64, error)

	// ListParticipants returns the round's participants ordered by arrival
	// time (created_at, id as tiebreak).
	ListParticipants(ctx context.Context, roundID uint64) ([]*Participant, error)

	// AssignRoundIndices persists round_index 1..len(participants) in the
	// given order, in one transaction. Idempotent: indices derive from
	// arrival order only, re-running never renumbers.
	AssignRoundIndices(ctx context.Context, roundID uint64, participants []*Participant) error

	// CloseRound flips the round to closed and records winner and close
	// time, atomically and only while status is still open. Returns
	// ErrRoundNotOpen when the conditional write matches no row.
	CloseRound(ctx context.Context, id uint64, winner string, closedAt time.Time) error

	// CreateTransactions inserts settlement records as one unit.
	CreateTransactions(ctx context.Context, txs []*Transaction) error

	// CreateRound inserts a new round.
	CreateRound(ctx context.Context, round *Round) error

	// ListUnsettledRounds returns closed rounds that have no settlement
	// transactions, oldest first, up to limit.
	ListUnsettledRounds(ctx context.Context, limit int) ([]*Round, error)
}
