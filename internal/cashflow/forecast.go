package cashflow

import (
	"fmt"

	"github.com/shopspring/decimal"

	"budgetcal/internal/core"
)

// DefaultLookbackDays is the trailing window used for the trend.
const DefaultLookbackDays = 30

type ForecastParams struct {
	// HorizonDays is the number of points to project. Zero yields none.
	HorizonDays int
	// LookbackDays is the trailing window for the average daily change.
	// Zero means DefaultLookbackDays.
	LookbackDays int
	// Today anchors the projection when history is empty.
	Today core.Date
}

// Forecast extends a balance series linearly. The slope is the average daily
// change across the last min(LookbackDays, len(history)) points, and point i
// (1-based) sits i days after the last historical date at
// last + round(i*slope), each point rounded independently so that no rounding
// error accumulates. With fewer than two points to look at the slope is zero.
// An empty history projects flat from a zero balance at Today.
func Forecast(history []core.BalancePoint, p ForecastParams) ([]core.BalancePoint, error) {
	if p.HorizonDays < 0 || p.HorizonDays > MaxHorizonDays {
		return nil, fmt.Errorf("%w: %d (0..%d)", ErrInvalidHorizon, p.HorizonDays, MaxHorizonDays)
	}
	if p.LookbackDays < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLookback, p.LookbackDays)
	}

	last, lastDate := core.Zero, p.Today
	if n := len(history); n > 0 {
		last, lastDate = history[n-1].Balance, history[n-1].Date
	}
	delta, span := trend(history, p.LookbackDays)

	out := make([]core.BalancePoint, p.HorizonDays)
	for i := range out {
		step := int64(i + 1)
		shift := decimal.NewFromInt(delta).Mul(decimal.NewFromInt(step)).
			Div(decimal.NewFromInt(span)).
			Round(0).IntPart()
		out[i] = core.BalancePoint{
			Date:      lastDate.AddDays(i + 1),
			Balance:   core.Money{Cents: last.Cents + shift},
			Projected: true,
		}
	}
	return out, nil
}

// AverageDailyDelta is the slope Forecast would use, in currency units per day.
func AverageDailyDelta(history []core.BalancePoint, lookbackDays int) decimal.Decimal {
	delta, span := trend(history, lookbackDays)
	return decimal.New(delta, -2).Div(decimal.NewFromInt(span))
}

// trend returns the balance change across the lookback window and the number
// of day steps it spans. A window of fewer than two points is flat.
func trend(history []core.BalancePoint, lookbackDays int) (delta, span int64) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	window := min(lookbackDays, len(history))
	if window < 2 {
		return 0, 1
	}
	first := history[len(history)-window].Balance
	last := history[len(history)-1].Balance
	return last.Cents - first.Cents, int64(window - 1)
}
