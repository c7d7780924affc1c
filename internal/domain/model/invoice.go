package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is a salon billing document. Number is unique per salon.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SalonID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_salon_number,priority:1;index:idx_invoices_salon_issued,priority:1" json:"salon_id"`
	InvoiceNumber string          `gorm:"size:32;not null;uniqueIndex:idx_invoices_salon_number,priority:2" json:"invoice_number"`
	ClientName    string          `gorm:"size:255;not null" json:"client_name"`
	IssuedAt      time.Time       `gorm:"not null;index:idx_invoices_salon_issued,priority:2" json:"issued_at"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TaxRate       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"tax_rate"`
	TaxAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax_amount"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Status        string          `gorm:"size:20;not null;index" json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod *string         `gorm:"size:50" json:"payment_method,omitempty"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceSequence holds the last allocated invoice number per salon and year
type InvoiceSequence struct {
	SalonID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"salon_id"`
	Year      int       `gorm:"primaryKey;autoIncrement:false" json:"year"`
	LastValue int       `gorm:"not null" json:"last_value"`
}

// TableName specifies the table name for GORM
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}
