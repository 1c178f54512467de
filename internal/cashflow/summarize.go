package cashflow

import (
	"fmt"
	"time"

	"budgetcal/internal/core"
)

// Summarize totals the raw events whose own date falls in [start, end].
// Recurring events count once, at their anchor, and only if the anchor is in
// range. Events with unparseable dates are left out.
func Summarize(events []core.Event, start, end core.Date) (core.PeriodSummary, error) {
	if start.After(end) {
		return core.PeriodSummary{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}
	var s core.PeriodSummary
	for _, e := range events {
		d, err := core.ParseDate(e.Date)
		if err != nil || d.Before(start) || d.After(end) {
			continue
		}
		if e.Amount.IsNegative() {
			s.Expense = s.Expense.Add(e.Amount.Abs())
		} else {
			s.Income = s.Income.Add(e.Amount)
		}
	}
	return s, nil
}

// SummarizeMonth totals the events dated in the given calendar month.
func SummarizeMonth(events []core.Event, year int, month time.Month) core.PeriodSummary {
	start := core.NewDate(year, month, 1)
	end := core.NewDate(year, month, core.DaysIn(year, month))
	s, _ := Summarize(events, start, end)
	return s
}
