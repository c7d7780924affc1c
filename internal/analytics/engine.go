// Package analytics computes recurring-revenue and retention metrics from
// subscription, invoice and user snapshots. Everything here is pure.
package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
)

// DefaultTrendMonths is the length of the growth trend
const DefaultTrendMonths = 6

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Snapshot is the input of Compute. AcquisitionCost nil means not tracked.
// Cancellations is the cancellation history; a cancellation already on a
// subscription row is not counted twice.
type Snapshot struct {
	Subscriptions   []*entity.Subscription
	Cancellations   []*entity.Cancellation
	Invoices        []*entity.Invoice
	Users           []*entity.User
	AcquisitionCost *decimal.Decimal
}

type Options struct {
	Location    *time.Location
	TrendMonths int
}

// TrendPoint is the cumulative state as of the last instant of Month.
type TrendPoint struct {
	Month   time.Time
	Users   int
	Revenue decimal.Decimal
}

// Report holds full-precision results. Round with DTO.
type Report struct {
	Window                 Window
	MRR                    decimal.Decimal
	ARR                    decimal.Decimal
	ChurnRate              decimal.Decimal
	LTV                    decimal.Decimal
	CAC                    decimal.Decimal
	CACTracked             bool
	PaybackPeriodMonths    decimal.Decimal
	MonthOverMonthGrowth   decimal.Decimal
	ActiveSubscriptions    int
	NewSubscriptions       int
	CancelledSubscriptions int
	ActiveUsers            int
	TotalRealizedRevenue   decimal.Decimal
	GrowthTrend            []TrendPoint
}

// Compute derives every metric for window w. now is the entitlement instant.
func Compute(s Snapshot, w Window, now time.Time, opts Options) Report {
	if opts.TrendMonths <= 0 {
		opts.TrendMonths = DefaultTrendMonths
	}
	loc := opts.Location
	if loc == nil {
		loc = w.Start.Location()
	}
	prev := w.Previous()

	r := Report{Window: w}

	mrr := decimal.Zero
	for _, sub := range s.Subscriptions {
		if contributesToMRR(sub, w) {
			mrr = mrr.Add(sub.MonthlyRevenue())
			r.ActiveSubscriptions++
		}
		if w.Contains(sub.CreatedAt) {
			r.NewSubscriptions++
		}
	}
	r.CancelledSubscriptions = cancelledIn(s, w)
	r.MRR = mrr
	r.ARR = mrr.Mul(twelve)

	activeAtPrevStart := 0
	currentActive, previousActive := 0, 0
	for _, sub := range s.Subscriptions {
		if activeAt(sub, prev.Start) {
			activeAtPrevStart++
		}
		if activeDuring(sub, w) {
			currentActive++
		}
		if activeDuring(sub, prev) {
			previousActive++
		}
	}
	r.ChurnRate = ratio(decimal.NewFromInt(int64(r.CancelledSubscriptions)), decimal.NewFromInt(int64(activeAtPrevStart))).Mul(hundred)
	r.MonthOverMonthGrowth = growth(currentActive, previousActive)

	r.ActiveUsers = activeUsers(s.Subscriptions, now)
	r.TotalRealizedRevenue = realizedRevenue(s.Invoices, w.End)
	r.LTV = ratio(r.TotalRealizedRevenue, decimal.NewFromInt(int64(r.ActiveUsers)))

	if s.AcquisitionCost != nil {
		r.CACTracked = true
		r.CAC = ratio(*s.AcquisitionCost, decimal.NewFromInt(int64(r.NewSubscriptions)))
	}

	perCustomer := ratio(r.MRR, decimal.NewFromInt(int64(r.ActiveSubscriptions)))
	if !r.CAC.IsZero() && !perCustomer.IsZero() {
		r.PaybackPeriodMonths = r.CAC.Div(perCustomer)
	}

	// The trend trails the current month, not the end of a longer window.
	ref := w.End.Add(-time.Nanosecond)
	if now.Before(ref) {
		ref = now
	}
	r.GrowthTrend = trend(s, ref, loc, opts.TrendMonths)
	return r
}

// contributesToMRR: status active and [periodStart, periodEnd] overlaps w.
func contributesToMRR(s *entity.Subscription, w Window) bool {
	return s.Status == entity.SubscriptionStatusActive &&
		s.CurrentPeriodStart.Before(w.End) &&
		!s.CurrentPeriodEnd.Before(w.Start)
}

// activeAt reports whether the subscription existed and was not canceled at t.
func activeAt(s *entity.Subscription, t time.Time) bool {
	if s.CreatedAt.After(t) {
		return false
	}
	return s.CanceledAt == nil || s.CanceledAt.After(t)
}

// activeDuring reports whether the subscription was live at any instant of w.
func activeDuring(s *entity.Subscription, w Window) bool {
	if !s.CreatedAt.Before(w.End) {
		return false
	}
	return s.CanceledAt == nil || !s.CanceledAt.Before(w.Start)
}

func activeUsers(subs []*entity.Subscription, now time.Time) int {
	owners := make(map[string]struct{})
	for _, s := range subs {
		if s.IsEntitled(now) {
			owners[s.OwnerID.String()] = struct{}{}
		}
	}
	return len(owners)
}

// realizedRevenue sums paid invoice totals paid before end.
func realizedRevenue(invoices []*entity.Invoice, end time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invoices {
		if inv.Status != entity.InvoiceStatusPaid {
			continue
		}
		paidAt := inv.IssuedAt
		if inv.PaidAt != nil {
			paidAt = *inv.PaidAt
		}
		if paidAt.Before(end) {
			total = total.Add(inv.Total)
		}
	}
	return total
}

func trend(s Snapshot, ref time.Time, loc *time.Location, months int) []TrendPoint {
	windows := monthWindows(ref, loc, months)
	points := make([]TrendPoint, len(windows))
	for i, mw := range windows {
		last := mw.End.Add(-time.Nanosecond)
		p := TrendPoint{Month: mw.Start, Revenue: decimal.Zero}
		for _, u := range s.Users {
			if !u.CreatedAt.After(last) {
				p.Users++
			}
		}
		for _, sub := range s.Subscriptions {
			if activeAt(sub, last) {
				p.Revenue = p.Revenue.Add(sub.MonthlyRevenue())
			}
		}
		points[i] = p
	}
	return points
}

type cancellationKey struct {
	subscription uuid.UUID
	at           int64
}

// cancelledIn counts distinct cancellations inside w across the history and
// the current rows.
func cancelledIn(s Snapshot, w Window) int {
	seen := make(map[cancellationKey]struct{})
	for _, c := range s.Cancellations {
		if w.Contains(c.CanceledAt) {
			seen[cancellationKey{c.SubscriptionID, c.CanceledAt.UnixMicro()}] = struct{}{}
		}
	}
	for _, sub := range s.Subscriptions {
		if sub.CanceledAt != nil && w.Contains(*sub.CanceledAt) {
			seen[cancellationKey{sub.ID, sub.CanceledAt.UnixMicro()}] = struct{}{}
		}
	}
	return len(seen)
}

// ratio is a / b, or zero when b is zero.
func ratio(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

func growth(current, previous int) decimal.Decimal {
	if previous == 0 {
		if current > 0 {
			return hundred
		}
		return decimal.Zero
	}
	diff := decimal.NewFromInt(int64(current - previous))
	return diff.Div(decimal.NewFromInt(int64(previous))).Mul(hundred)
}
