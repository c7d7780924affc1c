package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/salon-billing/internal/accounting"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"go.uber.org/zap"
)

// ExportRequest selects the invoices of an accounting export. Start and End
// are calendar days; End is included.
type ExportRequest struct {
	Start    time.Time
	End      time.Time
	Format   accounting.Format
	OnlyPaid bool
}

// ExportFile is a fully rendered export
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ExportService struct {
	invoices repository.InvoiceRepository
	salons   repository.SalonRepository
	opts     accounting.Options
	logger   *zap.Logger
}

func NewExportService(
	invoices repository.InvoiceRepository,
	salons repository.SalonRepository,
	opts accounting.Options,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		invoices: invoices,
		salons:   salons,
		opts:     opts,
		logger:   logger,
	}
}

// ParseExportDate reads a YYYY-MM-DD day at midnight in loc.
func ParseExportDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, domainErrors.Validationf("invalid date %q", s)
	}
	return t, nil
}

// Export renders the salon's invoices issued within [Start, End].
func (s *ExportService) Export(ctx context.Context, salonID uuid.UUID, req ExportRequest) (*ExportFile, error) {
	if req.End.Before(req.Start) {
		return nil, domainErrors.Validationf("export end %s is before start %s",
			req.End.Format("2006-01-02"), req.Start.Format("2006-01-02"))
	}
	if req.Format == "" {
		req.Format = accounting.FormatCSV
	}

	salon, err := s.salons.GetByID(ctx, salonID)
	if err != nil {
		return nil, err
	}
	if salon == nil {
		return nil, fmt.Errorf("%w: salon %s", domainErrors.ErrNotFound, salonID)
	}

	from := req.Start
	to := req.End.AddDate(0, 0, 1)
	filter := repository.InvoiceFilter{
		SalonID:    &salonID,
		IssuedFrom: &from,
		IssuedTo:   &to,
	}
	if req.OnlyPaid {
		filter.Statuses = []entity.InvoiceStatus{entity.InvoiceStatusPaid}
	}

	invoices, err := s.invoices.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to load invoices for export",
			zap.String("salon_id", salonID.String()),
			zap.Error(err))
		return nil, err
	}

	var body []byte
	switch req.Format {
	case accounting.FormatFEC:
		body, err = accounting.RenderFEC(invoices, s.opts)
	default:
		body, err = accounting.RenderCSV(invoices, s.opts)
	}
	if err != nil {
		if errors.Is(err, domainErrors.ErrLedgerUnbalanced) {
			s.logger.Error("Refusing to emit unbalanced ledger",
				zap.String("salon_id", salonID.String()),
				zap.Int("invoices", len(invoices)),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Accounting export rendered",
		zap.String("salon_id", salonID.String()),
		zap.String("format", string(req.Format)),
		zap.Int("invoices", len(invoices)),
		zap.Int("bytes", len(body)))

	return &ExportFile{
		Filename:    accounting.Filename(salon.Name, req.Start, req.End, req.Format),
		ContentType: req.Format.ContentType(),
		Body:        body,
	}, nil
}
