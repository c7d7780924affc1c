// Package accounting renders invoice history into accounting import files:
// a generic CSV and a balanced fiscal ledger (FEC).
package accounting

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatFEC Format = "fec"
)

// ParseFormat accepts csv or fec. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatFEC:
		return FormatFEC, nil
	default:
		return "", domainErrors.Validationf("unknown export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatFEC {
		return "text/plain; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Extension() string {
	if f == FormatFEC {
		return "txt"
	}
	return "csv"
}

// Accounts is the chart of accounts used by the ledger export
type Accounts struct {
	JournalCode       string
	JournalLabel      string
	ReceivableAccount string
	ReceivableLabel   string
	RevenueAccount    string
	RevenueLabel      string
	TaxAccount        string
	TaxLabel          string
}

func DefaultAccounts() Accounts {
	return Accounts{
		JournalCode:       "VE",
		JournalLabel:      "Ventes",
		ReceivableAccount: "411000",
		ReceivableLabel:   "Clients",
		RevenueAccount:    "706000",
		RevenueLabel:      "Prestations de services",
		TaxAccount:        "445710",
		TaxLabel:          "TVA collectee",
	}
}

type Options struct {
	Accounts Accounts
	// Location renders dates; nil is UTC
	Location *time.Location
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) accounts() Accounts {
	if o.Accounts.JournalCode == "" {
		return DefaultAccounts()
	}
	return o.Accounts
}

// utf8BOM prefixes every export for spreadsheet compatibility
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Tolerance is the accepted absolute difference between debits and credits
var Tolerance = decimal.RequireFromString("0.01")

// amount renders 2 decimals with a comma separator.
func amount(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}
