package beacon_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/beacon"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
)

const tipHash = "00000000000000000002a7c4c1e48d76c5a37902165a270156b7a8d72728a054"

func TestTipHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blocks/tip/hash", r.URL.Path)
		w.Write([]byte(tipHash + "\n"))
	}))
	defer srv.Close()

	src := beacon.NewBlockstreamSource(srv.URL, time.Second)
	hash, err := src.TipHash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tipHash, hash)
}

func TestTipHashNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := beacon.NewBlockstreamSource(srv.URL, time.Second)
	_, err := src.TipHash(context.Background())
	assert.True(t, errors.Is(err, domain.ErrBeaconUnavailable), "got %v", err)
}

func TestTipHashNonHexBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not a hash</html>"))
	}))
	defer srv.Close()

	src := beacon.NewBlockstreamSource(srv.URL, time.Second)
	_, err := src.TipHash(context.Background())
	assert.True(t, errors.Is(err, domain.ErrBeaconUnavailable), "got %v", err)
}

func TestTipHashEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	src := beacon.NewBlockstreamSource(srv.URL, time.Second)
	_, err := src.TipHash(context.Background())
	assert.True(t, errors.Is(err, domain.ErrBeaconUnavailable), "got %v", err)
}

func TestTipHashTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(tipHash))
	}))
	defer srv.Close()

	src := beacon.NewBlockstreamSource(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := src.TipHash(context.Background())
	assert.True(t, errors.Is(err, domain.ErrBeaconUnavailable), "got %v", err)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "fetch did not respect timeout")
}

func TestTipHashTransportError(t *testing.T) {
	src := beacon.NewBlockstreamSource("http://127.0.0.1:1", time.Second)
	_, err := src.TipHash(context.Background())
	assert.True(t, errors.Is(err, domain.ErrBeaconUnavailable), "got %v", err)
}
