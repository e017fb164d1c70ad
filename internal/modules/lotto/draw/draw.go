// Package draw implements the deterministic fair-draw algorithm. The winner
// is the big-integer value of an externally sourced block hash modulo the
// participant count. Bias is negligible because the hash range dwarfs the
// participant count, and the hash did not exist when participants committed.
package draw

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
)

// WinnerIndex maps a hexadecimal beacon value and a participant count to a
// zero-based winner index in [0, participantCount). Pure: same inputs always
// produce the same index.
func WinnerIndex(randomHex string, participantCount int) (int, error) {
	if participantCount <= 0 {
		return 0, domain.ErrNoParticipants
	}

	h := strings.TrimSpace(randomHex)
	h = strings.TrimPrefix(h, "0x")
	if h == "" {
		return 0, domain.ErrInvalidRandomness
	}

	value, ok := new(big.Int).SetString(h, 16)
	if !ok || value.Sign() < 0 {
		return 0, fmt.Errorf("%w: %q is not a hex integer", domain.ErrInvalidRandomness, randomHex)
	}

	mod := new(big.Int).Mod(value, big.NewInt(int64(participantCount)))
	return int(mod.Int64()), nil
}
