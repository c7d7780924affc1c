package entity

import (
	"sort"

	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
)

type PlanTag string

const (
	PlanTrial   PlanTag = "trial"
	PlanMonthly PlanTag = "monthly"
	PlanYearly  PlanTag = "yearly"
)

// PlanCatalog is the static allow-list of provider price identifiers.
type PlanCatalog struct {
	byPrice map[string]PlanTag
}

func NewPlanCatalog(monthlyPriceID, yearlyPriceID string) *PlanCatalog {
	return &PlanCatalog{
		byPrice: map[string]PlanTag{
			monthlyPriceID: PlanMonthly,
			yearlyPriceID:  PlanYearly,
		},
	}
}

// PlanForPrice maps a provider price identifier to a plan tag.
func (c *PlanCatalog) PlanForPrice(priceID string) (PlanTag, error) {
	if priceID == "" {
		return "", domainErrors.Validationf("empty price id")
	}
	plan, ok := c.byPrice[priceID]
	if !ok {
		return "", domainErrors.Validationf("unrecognized price id %q", priceID)
	}
	return plan, nil
}

func (c *PlanCatalog) Allowed(priceID string) bool {
	_, err := c.PlanForPrice(priceID)
	return err == nil
}

// PlanEntry is one offered price
type PlanEntry struct {
	PriceID string  `json:"price_id"`
	Plan    PlanTag `json:"plan"`
}

// Entries lists the offered prices, monthly first.
func (c *PlanCatalog) Entries() []PlanEntry {
	out := make([]PlanEntry, 0, len(c.byPrice))
	for price, plan := range c.byPrice {
		out = append(out, PlanEntry{PriceID: price, Plan: plan})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plan < out[j].Plan })
	return out
}
