package domain

import "errors"

var (
	// ErrRoundNotFound is returned when no round exists for the given id.
	ErrRoundNotFound = errors.New("round not found")

	// ErrRoundNotOpen is returned when the round exists but is not open,
	// including the case where a concurrent closer won the commit race.
	ErrRoundNotOpen = errors.New("round not open")

	// ErrInsufficientParticipants is returned when a round has fewer than
	// RoundCapacity participants. No state is mutated.
	ErrInsufficientParticipants = errors.New("insufficient participants")

	// ErrBeaconUnavailable is returned when the randomness beacon cannot
	// supply a value. The closure attempt aborts; retrying refetches fresh.
	ErrBeaconUnavailable = errors.New("randomness beacon unavailable")

	// ErrInvalidRandomness is returned when a beacon value is empty or not
	// parseable as a hexadecimal integer.
	ErrInvalidRandomness = errors.New("invalid randomness value")

	// ErrNoParticipants is returned by the draw when asked to pick from an
	// empty set.
	ErrNoParticipants = errors.New("no participants to draw from")

	// ErrSettlementFailed wraps failures after the closure commit point.
	// The round stays closed; the reconciler replays settlement later.
	ErrSettlementFailed = errors.New("settlement recording failed")

	// ErrRoundAlreadyOpen is returned by the registry when asked to open a
	// round while another one is still open.
	ErrRoundAlreadyOpen = errors.New("an open round already exists")

	// ErrCloseInProgress is returned when another closer holds the advisory
	// lock for the same round.
	ErrCloseInProgress = errors.New("round closure already in progress")
)
