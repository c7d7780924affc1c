package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/salon-billing/internal/accounting"
	"github.com/wekeepgrowing/salon-billing/internal/domain/dto"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/middleware/auth"
	"github.com/wekeepgrowing/salon-billing/internal/usecase"
	pkgErrors "github.com/wekeepgrowing/salon-billing/pkg/errors"
	"go.uber.org/zap"
)

type AccountingExporter interface {
	Export(ctx context.Context, salonID uuid.UUID, req usecase.ExportRequest) (*usecase.ExportFile, error)
}

type ExportHandler struct {
	exporter AccountingExporter
	location *time.Location
	logger   *zap.Logger
}

func NewExportHandler(exporter AccountingExporter, location *time.Location, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exporter: exporter, location: location, logger: logger}
}

// ExportAccounting streams a fully rendered file as an attachment.
func (h *ExportHandler) ExportAccounting(c echo.Context) error {
	salonID, err := auth.GetSalonID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "salonId required")
	}

	var q dto.ExportQuery
	if err := bindAndValidate(c, &q); err != nil {
		return httpError(err)
	}

	req, err := h.exportRequest(q)
	if err != nil {
		return httpError(err)
	}

	file, err := h.exporter.Export(c.Request().Context(), salonID, req)
	if err != nil {
		switch {
		case pkgErrors.Is(err, domainErrors.ErrValidation), pkgErrors.Is(err, domainErrors.ErrNotFound):
			return httpError(err)
		default:
			pkgErrors.LogError(h.logger, pkgErrors.Wrap(err, "accounting export"), "Accounting export failed",
				zap.String("salon_id", salonID.String()))
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return c.Blob(http.StatusOK, file.ContentType, file.Body)
}

func (h *ExportHandler) exportRequest(q dto.ExportQuery) (usecase.ExportRequest, error) {
	format, err := accounting.ParseFormat(q.Format)
	if err != nil {
		return usecase.ExportRequest{}, err
	}
	start, err := usecase.ParseExportDate(q.Start, h.location)
	if err != nil {
		return usecase.ExportRequest{}, err
	}
	end, err := usecase.ParseExportDate(q.End, h.location)
	if err != nil {
		return usecase.ExportRequest{}, err
	}
	return usecase.ExportRequest{Start: start, End: end, Format: format, OnlyPaid: q.OnlyPaid}, nil
}
