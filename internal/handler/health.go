package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trace-ops/backend/internal/model"
)

// LedgerPinger reports ledger reachability for the health endpoint.
type LedgerPinger interface {
	Ping(ctx context.Context) string
}

type HealthHandler struct {
	ledger LedgerPinger
}

func NewHealthHandler(ledger LedgerPinger) *HealthHandler {
	return &HealthHandler{ledger: ledger}
}

// Health godoc
// @Summary Service health
// @Description Own status plus ledger reachability (connected, issue, unreachable).
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status: "ok",
		Ledger: h.ledger.Ping(c.Request.Context()),
	})
}
