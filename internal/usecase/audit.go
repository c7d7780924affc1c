package usecase

import (
	"context"

	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
)

// AuditRecorder receives applied billing transitions. Record must not block.
type AuditRecorder interface {
	Record(rec entity.AuditRecord) bool
}

type correlationKey struct{}

// WithCorrelationID attaches the inbound request id to ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id attached by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

type nopRecorder struct{}

func (nopRecorder) Record(entity.AuditRecord) bool { return true }
