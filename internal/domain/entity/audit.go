package entity

import "time"

type AuditAction string

const (
	AuditSubscriptionActivated AuditAction = "subscription.activated"
	AuditSubscriptionRenewed   AuditAction = "subscription.renewed"
	AuditSubscriptionCanceled  AuditAction = "subscription.canceled"
	AuditEventSkipped          AuditAction = "webhook.skipped"
	AuditInvoiceCreated        AuditAction = "invoice.created"
	AuditInvoicePaid           AuditAction = "invoice.paid"
	AuditInvoiceCancelled      AuditAction = "invoice.cancelled"
)

// AuditRecord is one applied billing transition, published off the request path.
type AuditRecord struct {
	Action        AuditAction       `json:"action"`
	EventID       string            `json:"event_id,omitempty"`
	EventType     string            `json:"event_type,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Subject       string            `json:"subject"`
	Details       map[string]string `json:"details,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}
