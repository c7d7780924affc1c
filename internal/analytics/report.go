package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportDTO is the JSON shape of a report. Rounding happens only here.
type ReportDTO struct {
	Period                 Period          `json:"period"`
	WindowStart            time.Time       `json:"windowStart"`
	WindowEnd              time.Time       `json:"windowEnd"`
	MRR                    float64         `json:"mrr"`
	ARR                    float64         `json:"arr"`
	ChurnRate              float64         `json:"churnRate"`
	LTV                    float64         `json:"ltv"`
	CAC                    float64         `json:"cac"`
	CACTracked             bool            `json:"cacTracked"`
	PaybackPeriodMonths    float64         `json:"paybackPeriodMonths"`
	MonthOverMonthGrowth   float64         `json:"monthOverMonthGrowth"`
	ActiveSubscriptions    int             `json:"activeSubscriptions"`
	NewSubscriptions       int             `json:"newSubscriptions"`
	CancelledSubscriptions int             `json:"cancelledSubscriptions"`
	ActiveUsers            int             `json:"activeUsers"`
	TotalRealizedRevenue   float64         `json:"totalRealizedRevenue"`
	GrowthTrend            []TrendPointDTO `json:"growthTrend"`
}

type TrendPointDTO struct {
	Month   string  `json:"month"`
	Users   int     `json:"users"`
	Revenue float64 `json:"revenue"`
}

func currency(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }
func percent(d decimal.Decimal) float64  { return d.Round(1).InexactFloat64() }

func (r Report) DTO() ReportDTO {
	dto := ReportDTO{
		Period:                 r.Window.Period,
		WindowStart:            r.Window.Start,
		WindowEnd:              r.Window.End,
		MRR:                    currency(r.MRR),
		ARR:                    currency(r.ARR),
		ChurnRate:              percent(r.ChurnRate),
		LTV:                    currency(r.LTV),
		CAC:                    currency(r.CAC),
		CACTracked:             r.CACTracked,
		PaybackPeriodMonths:    percent(r.PaybackPeriodMonths),
		MonthOverMonthGrowth:   percent(r.MonthOverMonthGrowth),
		ActiveSubscriptions:    r.ActiveSubscriptions,
		NewSubscriptions:       r.NewSubscriptions,
		CancelledSubscriptions: r.CancelledSubscriptions,
		ActiveUsers:            r.ActiveUsers,
		TotalRealizedRevenue:   currency(r.TotalRealizedRevenue),
		GrowthTrend:            make([]TrendPointDTO, len(r.GrowthTrend)),
	}
	for i, p := range r.GrowthTrend {
		dto.GrowthTrend[i] = TrendPointDTO{
			Month:   p.Month.Format("2006-01"),
			Users:   p.Users,
			Revenue: currency(p.Revenue),
		}
	}
	return dto
}
