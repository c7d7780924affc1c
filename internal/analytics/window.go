package analytics

import (
	"strings"
	"time"

	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
)

type Period string

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// ParsePeriod accepts month, quarter or year. Empty means month.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case "", PeriodMonth:
		return PeriodMonth, nil
	case PeriodQuarter:
		return PeriodQuarter, nil
	case PeriodYear:
		return PeriodYear, nil
	default:
		return "", domainErrors.Validationf("unknown period %q", s)
	}
}

func (p Period) months() int {
	switch p {
	case PeriodQuarter:
		return 3
	case PeriodYear:
		return 12
	default:
		return 1
	}
}

// Window is the half-open interval [Start, End).
type Window struct {
	Period Period
	Start  time.Time
	End    time.Time
}

// WindowFor returns the calendar period containing now, in loc.
func WindowFor(p Period, now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	n := now.In(loc)

	var start time.Time
	switch p {
	case PeriodQuarter:
		firstMonth := time.Month((int(n.Month())-1)/3*3 + 1)
		start = time.Date(n.Year(), firstMonth, 1, 0, 0, 0, 0, loc)
	case PeriodYear:
		start = time.Date(n.Year(), time.January, 1, 0, 0, 0, 0, loc)
	default:
		p = PeriodMonth
		start = time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, loc)
	}

	return Window{Period: p, Start: start, End: start.AddDate(0, p.months(), 0)}
}

// Previous returns the window of the same period immediately before w.
func (w Window) Previous() Window {
	return Window{
		Period: w.Period,
		Start:  w.Start.AddDate(0, -w.Period.months(), 0),
		End:    w.Start,
	}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// monthWindows returns the n calendar months ending with the month containing
// ref, oldest first.
func monthWindows(ref time.Time, loc *time.Location, n int) []Window {
	current := WindowFor(PeriodMonth, ref, loc)
	out := make([]Window, n)
	w := current
	for i := n - 1; i >= 0; i-- {
		out[i] = w
		w = w.Previous()
	}
	return out
}
