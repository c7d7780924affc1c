package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ServiceConfig struct {
	Name                string      `yaml:"name"`
	Environment         string      `yaml:"environment"`
	Version             string      `yaml:"version"`
	ClientURL           string      `yaml:"client_url"`
	StripeSecretKey     string      `yaml:"stripe_secret_key"`
	StripeWebhookSecret string      `yaml:"stripe_webhook_secret"`
	Prices              PriceConfig `yaml:"prices"`
}

// PriceConfig is the allow-list of provider price identifiers.
type PriceConfig struct {
	Monthly string `yaml:"monthly"`
	Yearly  string `yaml:"yearly"`
}

func (p PriceConfig) Validate() error {
	if p.Monthly == "" || p.Yearly == "" {
		return fmt.Errorf("service.prices.monthly and service.prices.yearly are required")
	}
	if p.Monthly == p.Yearly {
		return fmt.Errorf("service.prices.monthly and service.prices.yearly must differ")
	}
	return nil
}

// ProviderConfig bounds the synchronous round-trip to the payment provider.
type ProviderConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
	// BaseURL overrides the provider API endpoint (stripe-mock, tests)
	BaseURL string `yaml:"base_url"`
}

// ReportingConfig drives metric windows. AcquisitionCost is the marketing
// spend per period; empty leaves CAC untracked.
type ReportingConfig struct {
	Timezone        string `yaml:"timezone"`
	TrendMonths     int    `yaml:"trend_months"`
	AcquisitionCost string `yaml:"acquisition_cost"`
}

// AcquisitionCostValue returns nil when no spend is configured.
func (r ReportingConfig) AcquisitionCostValue() (*decimal.Decimal, error) {
	if r.AcquisitionCost == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(r.AcquisitionCost)
	if err != nil {
		return nil, fmt.Errorf("reporting.acquisition_cost: %w", err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("reporting.acquisition_cost must not be negative")
	}
	return &d, nil
}

// AuditConfig configures the audit side channel
type AuditConfig struct {
	Channel        string        `yaml:"channel"`
	BufferSize     int           `yaml:"buffer_size"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

func (r ReportingConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("reporting.timezone: %w", err)
	}
	return loc, nil
}

// AccountingConfig holds the chart of accounts used by the fiscal ledger export.
type AccountingConfig struct {
	JournalCode       string `yaml:"journal_code"`
	JournalLabel      string `yaml:"journal_label"`
	ReceivableAccount string `yaml:"receivable_account"`
	ReceivableLabel   string `yaml:"receivable_label"`
	RevenueAccount    string `yaml:"revenue_account"`
	RevenueLabel      string `yaml:"revenue_label"`
	TaxAccount        string `yaml:"tax_account"`
	TaxLabel          string `yaml:"tax_label"`
}

func DefaultAccounting() AccountingConfig {
	return AccountingConfig{
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
