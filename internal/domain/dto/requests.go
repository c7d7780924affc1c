package dto

import "time"

// CreateInvoiceRequest is the body of invoice creation
type CreateInvoiceRequest struct {
	ClientName string    `json:"client_name" validate:"required,max=255"`
	IssuedAt   time.Time `json:"issued_at" validate:"required"`
	Subtotal   string    `json:"subtotal" validate:"required,numeric"`
	TaxRate    string    `json:"tax_rate" validate:"required,numeric"`
	Notes      string    `json:"notes" validate:"max=2000"`
	Send       bool      `json:"send"`
}

// MarkPaidRequest is the body of the pay transition
type MarkPaidRequest struct {
	PaymentMethod string     `json:"payment_method" validate:"required,oneof=cash card transfer check other"`
	PaidAt        *time.Time `json:"paid_at"`
}

// CheckoutRequest starts a hosted checkout for a plan price
type CheckoutRequest struct {
	PriceID string `json:"price_id" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

// ExportQuery is the query of the accounting export
type ExportQuery struct {
	Start    string `query:"start" validate:"required,datetime=2006-01-02"`
	End      string `query:"end" validate:"required,datetime=2006-01-02"`
	Format   string `query:"format" validate:"omitempty,oneof=csv fec"`
	OnlyPaid bool   `query:"onlyPaid"`
}

// ListInvoicesQuery pages through a salon's invoices
type ListInvoicesQuery struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Status string `query:"status" validate:"omitempty,oneof=draft sent paid cancelled overdue"`
}
