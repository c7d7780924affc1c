package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/salon-billing/internal/analytics"
	pkgErrors "github.com/wekeepgrowing/salon-billing/pkg/errors"
	"go.uber.org/zap"
)

type MetricsReporter interface {
	Report(ctx context.Context, period analytics.Period, now time.Time) (*analytics.Report, error)
}

type MetricsHandler struct {
	metrics MetricsReporter
	logger  *zap.Logger
}

func NewMetricsHandler(metrics MetricsReporter, logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, logger: logger}
}

// GetMetrics computes the report of the period containing now. Nothing is
// returned unless every metric was computed.
func (h *MetricsHandler) GetMetrics(c echo.Context) error {
	period, err := analytics.ParsePeriod(c.QueryParam("period"))
	if err != nil {
		return httpError(err)
	}

	report, err := h.metrics.Report(c.Request().Context(), period, time.Now())
	if err != nil {
		pkgErrors.LogError(h.logger, pkgErrors.Wrap(err, "metrics report"), "Failed to compute metrics",
			zap.String("period", string(period)))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, report.DTO())
}
