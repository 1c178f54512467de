package cashflow

import (
	"fmt"

	"budgetcal/internal/core"
)

// Aggregate folds occurrences into one BalancePoint per calendar day of
// [start, end]. The running total starts at opening and absorbs each day's
// net delta, so the last point equals opening plus every in-range amount.
// Days without activity carry the previous balance forward. Occurrences
// outside the range are ignored.
func Aggregate(occs []core.Occurrence, start, end core.Date, opening core.Money) ([]core.BalancePoint, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}
	days := start.DaysUntil(end) + 1

	deltas := make([]int64, days)
	for _, o := range occs {
		idx := start.DaysUntil(o.On)
		if idx < 0 || idx >= days {
			continue
		}
		deltas[idx] += o.Amount.Cents
	}

	points := make([]core.BalancePoint, days)
	running := opening.Cents
	for i := range points {
		running += deltas[i]
		points[i] = core.BalancePoint{Date: start.AddDays(i), Balance: core.Money{Cents: running}}
	}
	return points, nil
}

// DailyNet returns the net delta per day for the occurrences dated in
// [start, end], keyed by ISO date. Days without activity are absent.
func DailyNet(occs []core.Occurrence, start, end core.Date) map[string]core.Money {
	net := make(map[string]core.Money)
	for _, o := range occs {
		if o.On.Before(start) || o.On.After(end) {
			continue
		}
		key := o.On.String()
		net[key] = net[key].Add(o.Amount)
	}
	return net
}
