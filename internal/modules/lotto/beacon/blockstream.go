// Package beacon fetches the external randomness value used for the draw:
// the hash of the most recently finalized Bitcoin block, from a
// Blockstream-compatible block explorer API.
package beacon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
	"github.com/frankieli/lotto_pool/pkg/logger"
)

// Source supplies a fresh beacon value. Every closure attempt must call it
// again: reusing a value from a failed prior attempt would let participants
// who saw it game a retried draw.
type Source interface {
	TipHash(ctx context.Context) (string, error)
}

// DefaultBaseURL is the public Blockstream esplora API.
const DefaultBaseURL = "https://blockstream.info/api"

// maxHashBody bounds the response read; a block hash is 64 hex chars.
const maxHashBody = 256

// BlockstreamSource fetches the chain tip hash over HTTP.
type BlockstreamSource struct {
	baseURL string
	client  *http.Client
}

// NewBlockstreamSource creates a source against baseURL (DefaultBaseURL if
// empty) with the given request timeout.
func NewBlockstreamSource(baseURL string, timeout time.Duration) *BlockstreamSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BlockstreamSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// TipHash returns the hash of the current chain tip as a hex string.
func (s *BlockstreamSource) TipHash(ctx context.Context) (string, error) {
	url := s.baseURL + "/blocks/tip/hash"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrBeaconUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("url", url).Msg("beacon request failed")
		return "", fmt.Errorf("%w: %v", domain.ErrBeaconUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn(ctx).Int("status", resp.StatusCode).Str("url", url).Msg("beacon returned non-OK status")
		return "", fmt.Errorf("%w: status %d", domain.ErrBeaconUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHashBody))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrBeaconUnavailable, err)
	}

	hash := strings.TrimSpace(string(body))
	if hash == "" || !isHex(hash) {
		return "", fmt.Errorf("%w: body %q is not a hex hash", domain.ErrBeaconUnavailable, hash)
	}

	logger.Debug(ctx).Str("tip_hash", hash).Msg("fetched beacon value")
	return hash, nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
