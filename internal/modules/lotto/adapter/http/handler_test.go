package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lottohttp "github.com/frankieli/lotto_pool/internal/modules/lotto/adapter/http"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/repository/memory"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/usecase"
	"github.com/frankieli/lotto_pool/pkg/logger"
)

const (
	depositAddress  = "bc1qsingleaddress1234567890"
	adminFeeAddress = "bc1qadminfeeaddress1234567890"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Init(logger.Config{Level: "error", Output: io.Discard})
	m.Run()
}

type fixedBeacon struct{ hash string }

func (f *fixedBeacon) TipHash(ctx context.Context) (string, error) {
	return f.hash, nil
}

func newTestEngine(t *testing.T) (*gin.Engine, *memory.LedgerRepository) {
	t.Helper()
	ledger := memory.NewLedgerRepository()
	settings := usecase.DefaultSettings(depositAddress, adminFeeAddress)
	registry := usecase.NewRegistry(ledger, depositAddress)
	closer := usecase.NewCloser(ledger, &fixedBeacon{hash: "1a"}, registry, nil, settings)
	handler := lottohttp.NewHandler(closer, registry, ledger)
	return lottohttp.NewEngine(handler), ledger
}

func seedFullRound(t *testing.T, ledger *memory.LedgerRepository) *domain.Round {
	t.Helper()
	round := &domain.Round{
		DepositAddress: depositAddress,
		Status:         domain.RoundStatusOpen,
		OpenedAt:       time.Now().UTC(),
	}
	require.NoError(t, ledger.CreateRound(context.Background(), round))
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < domain.RoundCapacity; i++ {
		ledger.AddParticipant(round.ID, fmt.Sprintf("bc1qplayer%02d", i+1), base.Add(time.Duration(i)*time.Minute))
	}
	return round
}

func doRequest(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestCloseRoundEndpoint(t *testing.T) {
	engine, ledger := newTestEngine(t)
	round := seedFullRound(t, ledger)

	w := doRequest(engine, http.MethodPost, fmt.Sprintf("/api/rounds/%d/close", round.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result usecase.CloseResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, round.ID, result.RoundID)
	assert.Equal(t, "bc1qplayer07", result.WinnerAddress)
	assert.NotZero(t, result.NextRoundID)

	// Closing again conflicts: the draw is final.
	w = doRequest(engine, http.MethodPost, fmt.Sprintf("/api/rounds/%d/close", round.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCloseRoundEndpointNotFull(t *testing.T) {
	engine, ledger := newTestEngine(t)

	round := &domain.Round{DepositAddress: depositAddress, Status: domain.RoundStatusOpen, OpenedAt: time.Now().UTC()}
	require.NoError(t, ledger.CreateRound(context.Background(), round))
	ledger.AddParticipant(round.ID, "bc1qplayer01", time.Now().UTC())

	w := doRequest(engine, http.MethodPost, fmt.Sprintf("/api/rounds/%d/close", round.ID))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCloseRoundEndpointNotFound(t *testing.T) {
	engine, _ := newTestEngine(t)
	w := doRequest(engine, http.MethodPost, "/api/rounds/999/close")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCloseRoundEndpointBadID(t *testing.T) {
	engine, _ := newTestEngine(t)
	w := doRequest(engine, http.MethodPost, "/api/rounds/abc/close")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCurrentRoundEndpoint(t *testing.T) {
	engine, ledger := newTestEngine(t)
	round := seedFullRound(t, ledger)

	w := doRequest(engine, http.MethodGet, "/api/rounds/current")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Round            domain.Round `json:"round"`
		ParticipantCount int          `json:"participant_count"`
		Capacity         int          `json:"capacity"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, round.ID, body.Round.ID)
	assert.Equal(t, depositAddress, body.Round.DepositAddress)
	assert.Equal(t, domain.RoundCapacity, body.ParticipantCount)
	assert.Equal(t, domain.RoundCapacity, body.Capacity)
}

func TestCurrentRoundEndpointEmpty(t *testing.T) {
	engine, _ := newTestEngine(t)
	w := doRequest(engine, http.MethodGet, "/api/rounds/current")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRoundEndpoint(t *testing.T) {
	engine, ledger := newTestEngine(t)
	round := seedFullRound(t, ledger)

	w := doRequest(engine, http.MethodGet, fmt.Sprintf("/api/rounds/%d", round.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Round        domain.Round          `json:"round"`
		Participants []*domain.Participant `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, round.ID, body.Round.ID)
	assert.Len(t, body.Participants, domain.RoundCapacity)
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestEngine(t)
	w := doRequest(engine, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}
