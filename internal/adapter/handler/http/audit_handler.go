package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/salon-billing/internal/infrastructure/audit"
)

type AuditStatsSource interface {
	Stats() audit.Stats
}

// AuditHandler exposes the audit publisher counters
type AuditHandler struct {
	source AuditStatsSource
}

func NewAuditHandler(source AuditStatsSource) *AuditHandler {
	return &AuditHandler{source: source}
}

func (h *AuditHandler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.source.Stats())
}
