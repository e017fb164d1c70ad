// Package http exposes the operational surface of the lottery: a manual
// closure trigger and round inspection endpoints.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/frankieli/lotto_pool/internal/modules/lotto/domain"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/usecase"
	"github.com/frankieli/lotto_pool/pkg/logger"
)

// Handler handles HTTP requests for the lotto module
type Handler struct {
	closer   *usecase.Closer
	registry *usecase.Registry
	ledger   domain.Ledger
}

// NewHandler creates a new HTTP handler
func NewHandler(closer *usecase.Closer, registry *usecase.Registry, ledger domain.Ledger) *Handler {
	return &Handler{
		closer:   closer,
		registry: registry,
		ledger:   ledger,
	}
}

// RegisterRoutes registers all lotto routes to the given router group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	rounds := router.Group("/rounds")
	rounds.POST("/:id/close", h.CloseRound)
	rounds.GET("/current", h.CurrentRound)
	rounds.GET("/:id", h.GetRound)
}

// NewEngine builds the gin engine with middleware and routes
func NewEngine(handler *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	handler.RegisterRoutes(api)
	return r
}

// CloseRound triggers closure of the round in the path
func (h *Handler) CloseRound(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round id"})
		return
	}

	result, err := h.closer.CloseRound(ctx, id)
	if err != nil {
		// Post-commit failures still carry a final draw; report both.
		if result != nil {
			logger.Error(ctx).Err(err).Uint64("round_id", id).Msg("round closed with post-closure errors")
			c.JSON(http.StatusInternalServerError, gin.H{
				"result": result,
				"error":  err.Error(),
			})
			return
		}
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CurrentRound returns the open round with its participant count
func (h *Handler) CurrentRound(c *gin.Context) {
	ctx := c.Request.Context()

	round, err := h.registry.CurrentRound(ctx)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	participants, err := h.ledger.ListParticipants(ctx, round.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"round":             round,
		"participant_count": len(participants),
		"capacity":          domain.RoundCapacity,
	})
}

// GetRound returns a round with its participants
func (h *Handler) GetRound(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round id"})
		return
	}

	round, err := h.ledger.GetRound(ctx, id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	participants, err := h.ledger.ListParticipants(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"round":        round,
		"participants": participants,
	})
}

// statusFor maps the domain error taxonomy to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRoundNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRoundNotOpen),
		errors.Is(err, domain.ErrCloseInProgress),
		errors.Is(err, domain.ErrRoundAlreadyOpen):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientParticipants):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBeaconUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
