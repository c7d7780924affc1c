package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
)

// IsOpen reports whether an invoice in this status may still be paid or cancelled.
func (s InvoiceStatus) IsOpen() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue:
		return true
	default:
		return false
	}
}

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusCancelled, InvoiceStatusOverdue:
		return true
	default:
		return false
	}
}

// Invoice is a salon-scoped billing document.
type Invoice struct {
	ID            uuid.UUID       `json:"id"`
	SalonID       uuid.UUID       `json:"salon_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	IssuedAt      time.Time       `json:"issued_at"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
	Status        InvoiceStatus   `json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvoiceDraft is the input of invoice creation. Amounts are derived from it.
type InvoiceDraft struct {
	ClientName string
	IssuedAt   time.Time
	Subtotal   decimal.Decimal
	TaxRate    decimal.Decimal
	Notes      string
	Status     InvoiceStatus
}

var hundred = decimal.NewFromInt(100)

// InvoiceAmounts returns taxAmount and total for a subtotal and a percentage rate.
// Both are rounded to cents so total == subtotal + taxAmount holds exactly.
func InvoiceAmounts(subtotal, taxRate decimal.Decimal) (taxAmount, total decimal.Decimal) {
	subtotal = subtotal.Round(2)
	taxAmount = subtotal.Mul(taxRate).Div(hundred).Round(2)
	return taxAmount, subtotal.Add(taxAmount)
}

// FormatInvoiceNumber renders the per-salon yearly sequence value.
func FormatInvoiceNumber(year, seq int) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}
